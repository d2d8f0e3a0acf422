package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		key      string
		sendKey  string
		wantCode int
	}{
		{"mode none passes through", "none", "secret", "", http.StatusOK},
		{"apikey mode with empty key passes through", "apikey", "", "", http.StatusOK},
		{"correct key allowed", "apikey", "secret", "secret", http.StatusOK},
		{"missing key rejected", "apikey", "secret", "", http.StatusUnauthorized},
		{"wrong key rejected", "apikey", "secret", "nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKeyMiddleware(tt.mode, "X-API-Key", tt.key, okHandler())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			if tt.sendKey != "" {
				req.Header.Set("X-API-Key", tt.sendKey)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestAPIKeyMiddleware_RejectionBodyIsJSON(t *testing.T) {
	h := APIKeyMiddleware("apikey", "X-API-Key", "secret", okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}
