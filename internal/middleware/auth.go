package middleware

import (
	"context"
	"net/http"

	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/auth"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/credential"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/model"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/response"
	"github.com/charlesabhishekreddy-spec/VerdentVisionFinal-sub000/internal/session"
)

type sessionKey struct{}

// SessionFromContext returns the resolved session row for the request.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*model.Session)
	return sess, ok
}

// RequireAuth resolves the session cookie into a Principal. Failures clear
// both cookies and answer 401.
func RequireAuth(mgr *session.Manager, cookies credential.CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if cookie, err := r.Cookie(credential.SessionCookieName); err == nil {
				raw = cookie.Value
			}

			user, sess, err := mgr.Resolve(raw)
			if err != nil {
				for _, c := range credential.ClearCookies(cookies) {
					http.SetCookie(w, c)
				}
				response.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			principal := auth.Principal{
				UserID:    user.ID,
				Email:     user.Email,
				Role:      user.Role,
				SessionID: sess.ID,
			}
			ctx := auth.WithPrincipal(r.Context(), principal)
			ctx = context.WithValue(ctx, sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCSRF verifies the X-CSRF-Token header against the token bound to
// the caller's session for every state-changing method.
func RequireCSRF(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			sess, ok := SessionFromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}
			if err := mgr.VerifyCSRF(sess, r.Header.Get("X-CSRF-Token")); err != nil {
				response.Error(w, http.StatusForbidden, "csrf_required", "missing or invalid CSRF token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a handler on the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			response.Error(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
