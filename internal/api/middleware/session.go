package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type sessionContextKey string

const SessionIDKey = sessionContextKey("cart_session")

const sessionCookieName = "cart_session"

// CartSession assigns every visitor a stable cart session ID via cookie.
// Guests get a cart before they ever sign in.
func CartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		var sessionID string

		cookie, err := r.Cookie(sessionCookieName)
		if err == nil && uuid.Validate(cookie.Value) == nil {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.NewString()

			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok && sessionID != ""
}
