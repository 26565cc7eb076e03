package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

// ErrUnavailable indicates a network failure or non-2xx response from Cashfree.
// Callers decide whether to retry or surface the failure.
var ErrUnavailable = errors.New("payment gateway unavailable")

const apiVersion = "2022-09-01"

// Config carries the Cashfree credentials injected at construction.
type Config struct {
	AppID         string
	SecretKey     string
	APIURL        string
	WebhookSecret string
	FrontendURL   string
	BackendURL    string
}

// Client is a stateless translation layer over the Cashfree order APIs.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient constructs a Cashfree client with a bounded request timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logrus.WithField("component", "cashfree"),
	}
}

// CreateOrderRequest is the payload for the Cashfree order-create call.
type CreateOrderRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	Note          string
	CustomerID    string
	CustomerEmail string
	CustomerPhone string
}

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type cashfreeOrderMeta struct {
	ReturnURL    string `json:"return_url"`
	NotifyURL    string `json:"notify_url"`
	UPINotifyURL string `json:"upi_notify_url"`
}

type cashfreeCreateOrder struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     decimal.Decimal   `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	OrderNote       string            `json:"order_note"`
	CustomerDetails cashfreeCustomer  `json:"customer_details"`
	OrderMeta       cashfreeOrderMeta `json:"order_meta"`
}

type cashfreeOrderResponse struct {
	OrderID          string          `json:"order_id"`
	OrderAmount      decimal.Decimal `json:"order_amount"`
	OrderCurrency    string          `json:"order_currency"`
	OrderStatus      string          `json:"order_status"`
	PaymentSessionID string          `json:"payment_session_id"`
	Message          string          `json:"message"`
}

// CreateOrder registers an order with Cashfree and returns the payment session ID.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	phone := req.CustomerPhone
	if phone == "" {
		phone = "+91-0000000000"
	}

	payload := cashfreeCreateOrder{
		OrderID:       req.OrderID,
		OrderAmount:   req.Amount,
		OrderCurrency: req.Currency,
		OrderNote:     req.Note,
		CustomerDetails: cashfreeCustomer{
			CustomerID:    req.CustomerID,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: phone,
		},
		OrderMeta: cashfreeOrderMeta{
			ReturnURL:    fmt.Sprintf("%s/payment/success?order_id=%s", strings.TrimRight(c.cfg.FrontendURL, "/"), req.OrderID),
			NotifyURL:    strings.TrimRight(c.cfg.BackendURL, "/") + "/api/payments/cashfree/webhook",
			UPINotifyURL: strings.TrimRight(c.cfg.BackendURL, "/") + "/api/payments/cashfree/webhook",
		},
	}

	var resp cashfreeOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &resp); err != nil {
		return "", err
	}

	if resp.PaymentSessionID == "" {
		c.log.WithField("order_id", req.OrderID).Warn("cashfree response missing payment_session_id")
		return "", fmt.Errorf("%w: missing payment session id", ErrUnavailable)
	}

	return resp.PaymentSessionID, nil
}

// OrderStatus is the authoritative state reported by Cashfree for an order.
type OrderStatus struct {
	Status   string
	Amount   decimal.Decimal
	Currency string
}

// GetOrderStatus fetches the authoritative order state from Cashfree and
// maps the gateway status string onto the internal order status enum.
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	var resp cashfreeOrderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &resp); err != nil {
		return nil, err
	}

	return &OrderStatus{
		Status:   MapOrderStatus(resp.OrderStatus),
		Amount:   resp.OrderAmount,
		Currency: resp.OrderCurrency,
	}, nil
}

// MapOrderStatus translates a Cashfree order_status string into the internal enum.
// Unknown statuses are treated as still pending so callers keep polling.
func MapOrderStatus(gatewayStatus string) string {
	switch strings.ToUpper(gatewayStatus) {
	case "PAID":
		return models.OrderStatusPaid
	case "EXPIRED":
		return models.OrderStatusExpired
	case "TERMINATED", "CANCELLED", "FAILED":
		return models.OrderStatusFailed
	default:
		return models.OrderStatusPending
	}
}

// VerifyWebhookSignature checks the Cashfree webhook signature: the base64
// encoding of HMAC-SHA256 over timestamp concatenated with the raw body,
// keyed by the shared webhook secret.
func (c *Client) VerifyWebhookSignature(timestamp string, body []byte, signature string) bool {
	if c.cfg.WebhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	url := strings.TrimRight(c.cfg.APIURL, "/") + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal cashfree payload: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create cashfree request: %w", err)
	}

	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("x-client-id", c.cfg.AppID)
	req.Header.Set("x-client-secret", c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("cashfree request failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read cashfree response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("cashfree returned non-2xx")
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode cashfree response: %w", err)
		}
	}

	return nil
}
