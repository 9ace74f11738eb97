package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/CaioWing/paddock/internal/api/response"
	"github.com/CaioWing/paddock/internal/auth"
	"github.com/CaioWing/paddock/internal/domain"
)

type contextKey string

const callerKey contextKey = "caller"

// SessionCookie holds the same token the API accepts as a bearer token.
const SessionCookie = "paddock_session"

// CallerFrom returns the authenticated caller, if any.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey).(domain.Caller)
	return c, ok && c.ID != ""
}

// WithCaller is used by tests and by handlers that authenticate inline.
func WithCaller(ctx context.Context, c domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func tokenFrom(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token := strings.TrimPrefix(header, "Bearer "); token != header {
			return token
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func authenticate(jwtMgr *auth.JWTManager, r *http.Request) (domain.Caller, bool) {
	token := tokenFrom(r)
	if token == "" {
		return domain.Caller{}, false
	}
	caller, err := jwtMgr.Validate(token)
	if err != nil {
		return domain.Caller{}, false
	}
	return caller, true
}

// APIAuth rejects anonymous requests with a JSON 401.
func APIAuth(jwtMgr *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := authenticate(jwtMgr, r)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// PageAuth sends anonymous visitors to loginPath.
func PageAuth(jwtMgr *auth.JWTManager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := authenticate(jwtMgr, r)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}
