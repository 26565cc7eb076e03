package models

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents an authenticated student or administrator.
type User struct {
	BaseModel
	Name         string       `json:"name"`
	Email        string       `gorm:"uniqueIndex" json:"email"`
	Phone        string       `json:"phone"`
	PasswordHash string       `json:"-"`
	Role         string       `gorm:"default:student" json:"role"`
	Enrollments  []Enrollment `json:"enrollments,omitempty"`
	Orders       []Order      `json:"orders,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
