package middleware

import (
	"net/http"
)

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers may override it, e.g. problem responses and /metrics.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}
