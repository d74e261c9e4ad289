package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		cfg        CORSConfig
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		{name: "disabled", cfg: CORSConfig{}, method: http.MethodGet, origin: "https://app.example.com", wantStatus: 200},
		{name: "allowed origin", cfg: CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}, method: http.MethodGet, origin: "https://app.example.com", wantStatus: 200, wantOrigin: "https://app.example.com"},
		{name: "unlisted origin served without headers", cfg: CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}, method: http.MethodGet, origin: "https://evil.example.com", wantStatus: 200},
		{name: "wildcard", cfg: CORSConfig{AllowedOrigins: []string{"*"}}, method: http.MethodGet, origin: "https://any.example.com", wantStatus: 200, wantOrigin: "*"},
		{name: "preflight", cfg: CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 600}, method: http.MethodOptions, origin: "https://app.example.com", preflight: true, wantStatus: http.StatusNoContent, wantOrigin: "https://app.example.com"},
		{name: "no origin header", cfg: CORSConfig{AllowedOrigins: []string{"*"}}, method: http.MethodGet, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/leaderboard", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "GET")
			}
			rr := httptest.NewRecorder()
			CORS(tt.cfg)(ok).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.preflight {
				if got := rr.Header().Get("Access-Control-Allow-Methods"); got != corsMethods {
					t.Errorf("Allow-Methods = %q", got)
				}
				if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
					t.Errorf("Max-Age = %q", got)
				}
			}
		})
	}
}
