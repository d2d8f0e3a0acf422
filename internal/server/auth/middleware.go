package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKeyMiddleware wraps next with API key authentication on every request.
//
// Behaviour:
//   - If mode != "apikey" or key == "", all requests are allowed (pass-through).
//   - Otherwise the middleware reads the value of header from the incoming
//     request and compares it to key in constant time.
//   - A missing, empty, or incorrect key returns 401 with a JSON error body.
func APIKeyMiddleware(mode, header, key string, next http.Handler) http.Handler {
	// Non-apikey modes or unconfigured key → allow everything.
	if mode != "apikey" || key == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(header)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"}) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}
