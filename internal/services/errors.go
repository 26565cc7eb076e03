package services

import "github.com/gofiber/fiber/v2"

// PaymentError is a structured error for the payment lifecycle. The Code
// names the failure class; Status is the HTTP status handlers respond with.
type PaymentError struct {
	Code    string
	Status  int
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

var (
	// ErrInvalidAmount rejects non-positive or mismatched amounts before any gateway call.
	ErrInvalidAmount = &PaymentError{
		Code:    "InvalidAmount",
		Status:  fiber.StatusBadRequest,
		Message: "invalid amount",
	}

	// ErrGatewayUnavailable wraps network or 5xx failures from the payment gateway.
	ErrGatewayUnavailable = &PaymentError{
		Code:    "GatewayUnavailable",
		Status:  fiber.StatusBadGateway,
		Message: "payment gateway unavailable",
	}

	// ErrAmountMismatch fires when the authoritative gateway amount disagrees
	// with the persisted order amount. Treated as a potential fraud signal.
	ErrAmountMismatch = &PaymentError{
		Code:    "AmountMismatch",
		Status:  fiber.StatusBadRequest,
		Message: "amount mismatch - potential fraud attempt",
	}

	// ErrOrderNotFound indicates the order ID has no local record.
	ErrOrderNotFound = &PaymentError{
		Code:    "OrderNotFound",
		Status:  fiber.StatusNotFound,
		Message: "order not found",
	}

	// ErrCourseNotFound indicates the course being purchased does not exist.
	ErrCourseNotFound = &PaymentError{
		Code:    "CourseNotFound",
		Status:  fiber.StatusNotFound,
		Message: "course not found",
	}
)
