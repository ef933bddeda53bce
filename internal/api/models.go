package api

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/phrazzld/useradmin/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the self-registration endpoint.
type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,max=72"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name"  validate:"max=100"`
	Age       int    `json:"age"        validate:"gte=0"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string   `json:"expires_at"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// CreateUserRequest is the admin payload for creating a user.
// Roles are names such as "ROLE_ADMIN" or "ADMIN"; empty means the default role.
type CreateUserRequest struct {
	Email     string   `json:"email"      validate:"required,email"`
	Password  string   `json:"password"   validate:"required,max=72"`
	FirstName string   `json:"first_name" validate:"max=100"`
	LastName  string   `json:"last_name"  validate:"max=100"`
	Age       int      `json:"age"        validate:"gte=0"`
	Roles     []string `json:"roles"`
}

// UpdateUserRequest is the admin payload for editing a user. A blank
// password keeps the current one; the role list replaces the stored set.
type UpdateUserRequest struct {
	Email     *string  `json:"email"      validate:"omitempty,email"`
	Password  string   `json:"password"   validate:"max=72"`
	FirstName string   `json:"first_name" validate:"max=100"`
	LastName  string   `json:"last_name"  validate:"max=100"`
	Age       int      `json:"age"        validate:"gte=0"`
	Roles     []string `json:"roles"`
}

// UserResponse is the public representation of a user. The password never
// leaves the service.
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Age       int       `json:"age"`
	RoleNames []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleResponse is the public representation of a role.
type RoleResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// toUserResponse converts a domain user into its API representation.
func toUserResponse(user *domain.User) (UserResponse, error) {
	var resp UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		return UserResponse{}, err
	}
	resp.RoleNames = domain.RoleNames(user.Roles)
	return resp, nil
}

func toUserResponses(users []*domain.User) ([]UserResponse, error) {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		resp, err := toUserResponse(user)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func toRoleResponses(roles []domain.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, RoleResponse{
			ID:          role.ID,
			Name:        role.Authority(),
			DisplayName: role.ShortName(),
		})
	}
	return out
}
