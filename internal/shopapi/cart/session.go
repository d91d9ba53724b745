package cart

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookie identifies a browser session for cart purposes. The cart is
// session-scoped, not user-scoped: logging in does not migrate a cart.
const SessionCookie = "techstore_session"

const sessionTTL = 24 * time.Hour

type sessionKey struct{}

// SessionIDFromContext returns the session id set by SessionMiddleware.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// SessionMiddleware ensures every request carries a session cookie, minting
// one when absent.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string

		if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(sessionTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
