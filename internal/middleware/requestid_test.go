package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantReused bool
	}{
		{name: "generates when missing", header: "", wantReused: false},
		{name: "reuses client id", header: "client-abc", wantReused: true},
		{name: "replaces oversized id", header: strings.Repeat("x", 200), wantReused: false},
		{name: "replaces id with control characters", header: "abc\x7fdef", wantReused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if got := rr.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header %q != context id %q", got, seen)
			}
			if tt.wantReused {
				if seen != tt.header {
					t.Errorf("request id = %q, want %q", seen, tt.header)
				}
				return
			}
			if _, err := uuid.Parse(seen); err != nil {
				t.Errorf("generated id %q is not a UUID: %v", seen, err)
			}
		})
	}
}
