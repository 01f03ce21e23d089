package middleware

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
)

// Checker admits or denies a raw Authorization header.
type Checker interface {
	Check(ctx context.Context, header string) (*auth.Principal, bool)
}

// UserResolver maps an admitted principal to its local user.
type UserResolver interface {
	Resolve(ctx context.Context, p *auth.Principal) (*models.User, error)
}

// AuthnDependencies bundles collaborators required by the authentication middleware.
type AuthnDependencies struct {
	Checker  Checker
	Resolver UserResolver
	Logger   zerolog.Logger

	// Realm is advertised in WWW-Authenticate. Defaults to "taskapi".
	Realm string
}

// RequireAuthentication rejects requests the checker denies with 401 and
// attaches the principal and current user to the context of admitted ones.
func RequireAuthentication(deps AuthnDependencies) func(http.Handler) http.Handler {
	realm := deps.Realm
	if realm == "" {
		realm = "taskapi"
	}
	challenge := `Basic realm="` + realm + `", Bearer realm="` + realm + `"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := deps.Checker.Check(ctx, r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", challenge)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			user, err := deps.Resolver.Resolve(ctx, principal)
			if err != nil {
				deps.Logger.Error().Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("resolve current user")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx = auth.SetPrincipal(ctx, principal)
			ctx = auth.SetCurrentUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
