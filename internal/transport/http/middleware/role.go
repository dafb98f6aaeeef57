package middleware

import (
	"net/http"
	"strings"
)

// RequireRole admits requests whose token carries one of roles. It must run
// after Auth; a request without claims is treated as unauthenticated.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	denied := "requires role " + strings.Join(roles, " or ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				writeJSONError(w, http.StatusForbidden, "forbidden", denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
