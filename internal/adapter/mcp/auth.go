package mcp

import (
	"net/http"
	"strings"
)

// AuthMiddleware requires a bearer token accepted by verify. A nil verify
// passes all requests through.
func AuthMiddleware(verify func(token string) error, next http.Handler) http.Handler {
	if verify == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || verify(token) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
