// Package identity implements ports.IdentityService on JWT bearer
// tokens, grounded on
// Hola-to-network_logistics_problem/services/auth-svc/internal/token/jwt.go's
// manager-wraps-library shape, using golang-jwt/jwt/v5 directly rather
// than that repo's custom passhash wrapper.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

// ErrInvalidToken is returned for any token that fails parsing,
// signature verification, or expiry.
var ErrInvalidToken = errors.New("identity: invalid token")

// claims is the JWT payload this service expects to have been issued by
// the platform's auth service.
type claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	SmeID string `json:"sme_id,omitempty"`
}

// Manager validates bearer tokens signed with a shared secret.
type Manager struct {
	secret []byte
	issuer string
}

// NewManager constructs a Manager.
func NewManager(secret []byte, issuer string) *Manager {
	return &Manager{secret: secret, issuer: issuer}
}

// ValidateToken implements ports.IdentityService.
func (m *Manager) ValidateToken(ctx context.Context, token string) (ports.IdentityUser, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return ports.IdentityUser{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return ports.IdentityUser{}, ErrInvalidToken
	}

	return ports.IdentityUser{
		UserID: c.Subject,
		Role:   c.Role,
		SmeID:  c.SmeID,
	}, nil
}
