package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/momager/momager-core/internal/ctxkeys"
	"github.com/momager/momager-core/internal/service"
)

// AuthMiddleware resolves the session cookie, refreshes the session and adds
// the session and its user to the context. Requests without a usable session
// continue anonymously.
func AuthMiddleware(authService *service.AuthService, sessionService *service.SessionService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := r.Cookie(service.SessionCookieName); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			sid, err := authService.SessionID(r)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessionService.Get(ctx, sid)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			previous := session.Expires
			err = sessionService.Refresh(ctx, session)
			if err != nil {
				if !errors.Is(err, service.ErrSessionExpired) {
					slog.Error("session refresh failed", "error", err, "session_id", sid)
				}
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// The cookie expiry mirrors the row; re-issue it when the row moved.
			if !session.Expires.Equal(previous) {
				err = authService.SetSessionCookie(w, session)
				if err != nil {
					slog.Error("failed to re-issue session cookie", "error", err, "session_id", sid)
				}
			}

			user, err := userService.ByID(ctx, session.UserID)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Credentials never travel in the context.
			user.Password = ""
			user.Salt = ""

			ctx = ctxkeys.WithSession(ctx, session)
			ctx = ctxkeys.WithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends anonymous visitors to the sign-in page
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			http.Redirect(w, r, "/sign-in", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest sends signed-in users to their dashboard
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) != nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}
