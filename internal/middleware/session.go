package middleware

import (
	"context"
	"net/http"

	"inventorypro/internal/domain"
	"inventorypro/internal/service"
)

// SessionCookie is the session token cookie name.
const SessionCookie = "inventorypro_session"

const sessionKey contextKey = "session"

// WithSession ensures every request carries a live session, creating one
// (and setting the cookie) when the token is missing or expired. The session
// owns the request's cart.
func WithSession(sessions *service.SessionManager, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session *service.Session
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				session = sessions.Get(cookie.Value)
			}

			if session == nil {
				created, err := sessions.Create()
				if err != nil {
					GetLogger(r.Context()).Error("failed to create session", "error", err)
					respondWithError(w, http.StatusInternalServerError, domain.EINTERNAL,
						"An internal error occurred. Please try again later.")
					return
				}
				session = created

				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    session.Token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the request's session, or nil outside WithSession.
func GetSession(ctx context.Context) *service.Session {
	if session, ok := ctx.Value(sessionKey).(*service.Session); ok {
		return session
	}
	return nil
}

// RequireUser rejects requests whose session has no logged-in user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r.Context())
		if session == nil || !session.Authenticated() {
			respondWithError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED,
				"Authentication required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects sessions whose user does not hold the admin role.
func RequireAdmin(users domain.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r.Context())
			if session == nil || !session.Authenticated() {
				respondWithError(w, http.StatusUnauthorized, domain.EUNAUTHORIZED,
					"Authentication required.")
				return
			}

			user, err := users.GetUserByID(r.Context(), session.UserID)
			if err != nil || !user.IsAdmin() {
				respondWithError(w, http.StatusForbidden, domain.EFORBIDDEN,
					"Admin access required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
