package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptEncoder_Cost(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{"valid cost", 12, 12},
		{"minimum cost", bcrypt.MinCost, bcrypt.MinCost},
		{"zero uses default", 0, bcrypt.DefaultCost},
		{"too low uses default", 3, bcrypt.DefaultCost},
		{"too high uses default", 32, bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBcryptEncoder(tt.cost).Cost())
		})
	}
}

func TestBcryptEncoder_EncodeAndVerify(t *testing.T) {
	encoder := NewBcryptEncoder(bcrypt.MinCost)
	verifier := NewBcryptVerifier()

	hash, err := encoder.Encode("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.NoError(t, verifier.Compare(hash, "correct horse battery staple"))
	assert.ErrorIs(t, verifier.Compare(hash, "wrong"), bcrypt.ErrMismatchedHashAndPassword)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestBcryptEncoder_TooLong(t *testing.T) {
	_, err := NewBcryptEncoder(bcrypt.MinCost).Encode(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = NewBcryptEncoder(bcrypt.MinCost).Encode(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestPrincipal_HasRole(t *testing.T) {
	p := NewPrincipal("ada@example.com", "ROLE_USER")

	assert.True(t, p.HasRole("ROLE_USER"))
	assert.False(t, p.HasRole("ROLE_ADMIN"))
	assert.NotNil(t, NewPrincipal("x@example.com").Roles)

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasRole("ROLE_USER"))
}
