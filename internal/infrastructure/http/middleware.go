package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

type actorKey struct{}

// WithActor attaches an already-validated identity to ctx, for tests that
// skip the HTTP layer's token parsing.
func WithActor(ctx context.Context, u ports.IdentityUser) context.Context {
	return context.WithValue(ctx, actorKey{}, u)
}

// ActorFromContext returns the identity attached by the auth middleware.
func ActorFromContext(ctx context.Context) (ports.IdentityUser, bool) {
	u, ok := ctx.Value(actorKey{}).(ports.IdentityUser)
	return u, ok
}

// RequireAuth validates the bearer token on every request via
// ports.IdentityService (spec.md §6 "called on every authenticated
// request") and attaches the resolved identity to the request context.
func RequireAuth(identity ports.IdentityService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, &ports.NotAssignedError{Reason: "missing bearer token"})
			return
		}

		user, err := identity.ValidateToken(r.Context(), token)
		if err != nil {
			writeError(w, &ports.NotAssignedError{Reason: "invalid bearer token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), user)))
	})
}
