package middleware

import (
	"net/http"
)

// RequireAdmin gates a subtree behind the admin allow-list. isAdmin is the
// externally configured membership check against the session's verified
// email. An anonymous caller gets 401; a signed-in non-admin gets 403.
func RequireAdmin(isAdmin func(email string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !isAdmin(user.Email) {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
