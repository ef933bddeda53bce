package auth

import (
	"context"
	"time"

	"github.com/phrazzld/useradmin/internal/domain"
)

// JWTService defines operations for managing bearer access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token whose subject is the
	// user's email and which carries the user's role names.
	// Returns the token string and its expiry.
	GenerateToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	// Subject is the login name (email) of the user the token was issued for.
	Subject   string    `json:"sub,omitempty"`
	UserID    int64     `json:"uid,omitempty"`
	Roles     []string  `json:"roles,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Principal converts the claims into the request principal.
func (c *Claims) Principal() *Principal {
	return NewPrincipal(c.Subject, c.Roles...)
}
