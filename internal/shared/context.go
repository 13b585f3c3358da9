package shared

import "context"

type sessionContextKey struct{}

type authContextKey struct{}

// Roles stored on USERS documents.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// AuthContext identifies the operator behind a request. Handlers receive it
// from the request context instead of consulting a global auth listener.
type AuthContext struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Authenticated reports whether the context carries a signed-in user.
func (a AuthContext) Authenticated() bool {
	return a.UserID != ""
}

// IsAdmin reports whether the user may operate the dashboard.
func (a AuthContext) IsAdmin() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ContextWithAuth attaches the resolved AuthContext.
func ContextWithAuth(ctx context.Context, auth AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// AuthFromContext returns the AuthContext for the request. When no explicit
// value was attached it falls back to the session principal.
func AuthFromContext(ctx context.Context) AuthContext {
	if auth, ok := ctx.Value(authContextKey{}).(AuthContext); ok {
		return auth
	}
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.Principal()
	}
	return AuthContext{}
}
