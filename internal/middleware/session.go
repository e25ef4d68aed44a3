package middleware

import (
	"context"
	"net/http"

	"github.com/prepost/prepost-go/internal/crypto"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "session"

// SessionUser is the identity carried by a validated session credential.
type SessionUser struct {
	ID    string
	Email string
}

// Session verifies the session cookie on every request. A missing, invalid
// or expired credential yields an anonymous context, never an error —
// handlers decide whether anonymity is acceptable for their operation.
func Session(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err == nil && cookie.Value != "" {
				if claims, err := crypto.ParseSessionToken(cookie.Value, secret); err == nil {
					ctx := context.WithValue(r.Context(), sessionKey, &SessionUser{
						ID:    claims.UserID,
						Email: claims.Email,
					})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext extracts the authenticated session user, if any.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(sessionKey).(*SessionUser)
	return u, ok
}

// SetSessionCookie attaches the session credential to the response.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session credential.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
