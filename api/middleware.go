package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// APIKeyHeader carries the shared key on settings requests.
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware rejects requests that do not present the shared key.
// The key can be sent in X-API-Key, as a Bearer token, or as ?apiKey=.
// An empty key disables the check.
func APIKeyMiddleware(getKey func() string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			expected := strings.TrimSpace(getKey())
			if expected == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := extractKey(r)
			if provided == "" {
				writeAuthError(w, "api key required")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				writeAuthError(w, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("apiKey"))
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
