package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hiredeck/hireauth"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal injected by [Authenticate].
func PrincipalFromContext(ctx context.Context) (hireauth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(hireauth.Principal)
	return p, ok
}

// Authenticate verifies the Authorization bearer token and stores the
// resolved principal in the request context. Requests without a token or
// with an invalid one are rejected with 401.
func Authenticate(engine *hireauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			p, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose principal does not hold
// exactly the given role. A request that never passed [Authenticate] gets 401.
func RequireRole(engine *hireauth.Engine, role hireauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if err := engine.Authorize(p, role); err != nil {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guard chains [Authenticate] and [RequireRole].
func Guard(engine *hireauth.Engine, role hireauth.Role) func(http.Handler) http.Handler {
	authn := Authenticate(engine)
	authz := RequireRole(engine, role)
	return func(next http.Handler) http.Handler {
		return authn(authz(next))
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
