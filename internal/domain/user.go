package domain

import (
	"errors"
	"strings"
	"time"

	emailaddress "github.com/mcnijman/go-emailaddress"
)

// Common validation errors
var (
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrNegativeAge   = errors.New("age cannot be negative")
)

// User represents an account managed by the admin panel.
// Email doubles as the login name; there is no separate username.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	// Password holds the raw value only until registration encodes it.
	// Once persisted it always contains the encoded form.
	Password  string    `json:"-"`
	Age       int       `json:"age"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates an unsaved User with an empty role set.
// The ID is assigned by the store on first save.
func NewUser(email, password string) *User {
	return &User{
		Email:    NormalizeEmail(email),
		Password: password,
		Roles:    []Role{},
	}
}

// NormalizeEmail trims surrounding whitespace from an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// EnsureRoles replaces a nil role set with an empty one and removes duplicates.
func (u *User) EnsureRoles() {
	u.Roles = NewRoleSet(u.Roles...)
}

// HasRole reports whether the user has been granted the named role.
func (u *User) HasRole(name string) bool {
	return HasRole(u.Roles, name)
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}

	if !ValidateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Age < 0 {
		return ErrNegativeAge
	}

	if u.Password == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidateEmailFormat reports whether email is a syntactically valid address.
func ValidateEmailFormat(email string) bool {
	_, err := emailaddress.Parse(strings.TrimSpace(email))
	return err == nil
}
