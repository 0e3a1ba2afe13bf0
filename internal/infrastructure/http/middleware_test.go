package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

type fakeIdentity struct {
	user ports.IdentityUser
	err  error
}

func (f fakeIdentity) ValidateToken(ctx context.Context, token string) (ports.IdentityUser, error) {
	return f.user, f.err
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	handler := RequireAuth(fakeIdentity{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/dispatch/summary", nil)
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	user := ports.IdentityUser{UserID: "u1", Role: "COURIER"}
	handler := RequireAuth(fakeIdentity{user: user}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, user, actor)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/dispatch/summary", nil)
	r.Header.Set("Authorization", "Bearer good-token")
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}
