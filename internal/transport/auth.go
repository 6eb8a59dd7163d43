package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/tasksync/internal/identity"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type principalKey struct{}

// PrincipalFromContext returns the request principal, if present.
func PrincipalFromContext(ctx context.Context) (*identity.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*identity.Principal)
	return p, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// AuthMiddleware enforces bearer token authentication. The token must belong to the
// principal currently signed in to the session; the daemon mirrors one identity only.
func AuthMiddleware(verifier identity.TokenVerifier, session identity.Signal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeProblem(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
				return
			}

			p, err := verifier.Verify(token)
			if err != nil || p == nil {
				writeProblem(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid bearer token")
				return
			}

			current, err := session.Current(r.Context())
			if err != nil || current == nil {
				writeProblem(w, http.StatusUnauthorized, "UNAUTHENTICATED", "no active session")
				return
			}
			if current.ID != p.ID {
				writeProblem(w, http.StatusForbidden, "PERMISSION_DENIED", "token belongs to another principal")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
