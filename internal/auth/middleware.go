package auth

import (
	"net/http"
	"strings"

	"github.com/newhope/newhope-admin/internal/platform/httpx"
	"github.com/newhope/newhope-admin/internal/shared"
)

const loginPath = "/auth/login"

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireAPIAdmin authenticates JSON API requests. A bearer token wins over
// the session cookie; either must belong to an administrator.
func RequireAPIAdmin(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, ok := BearerToken(r); ok {
				principal, err := tokens.Parse(raw)
				if err != nil {
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid bearer token")
					return
				}
				r = r.WithContext(shared.ContextWithAuth(r.Context(), principal))
			}
			principal := shared.AuthFromContext(r.Context())
			switch {
			case !principal.Authenticated():
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			case !principal.IsAdmin():
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "administrator role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards HTML screens, redirecting anonymous visitors to the
// login page.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := shared.AuthFromContext(r.Context())
		if !principal.IsAdmin() {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
