package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testLogEntry represents a parsed JSON log entry for testing.
type testLogEntry struct {
	Level     string `json:"level"`
	Msg       string `json:"msg"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Query     string `json:"query"`
	Status    int    `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Size      int    `json:"size"`
	RequestID string `json:"request_id"`
	ErrorCode string `json:"error_code"`
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func parseLogEntry(t *testing.T, buf *bytes.Buffer) testLogEntry {
	t.Helper()
	var entry testLogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v, log: %s", err, buf.String())
	}
	return entry
}

func TestLogging_BasicFields(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := Logging(newTestLogger(buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/leaderboard?page=2&limit=5", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := parseLogEntry(t, buf)
	if entry.Method != "GET" || entry.Path != "/leaderboard" {
		t.Errorf("method/path = %s %s", entry.Method, entry.Path)
	}
	if entry.Query != "page=2&limit=5" {
		t.Errorf("query = %q", entry.Query)
	}
	if entry.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", entry.Status)
	}
	if entry.Size != 5 {
		t.Errorf("size = %d, want 5", entry.Size)
	}
	if entry.Level != "INFO" || entry.Msg != "request completed" {
		t.Errorf("level/msg = %s/%s", entry.Level, entry.Msg)
	}
	if entry.ErrorCode != "" {
		t.Errorf("unexpected error_code %q on success", entry.ErrorCode)
	}
}

func TestLogging_LevelsAndErrorCode(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      string
		wantLevel string
	}{
		{name: "client error", status: http.StatusBadRequest, code: "invalid_cursor", wantLevel: "WARN"},
		{name: "not found", status: http.StatusNotFound, code: "not_found", wantLevel: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, code: "internal_error", wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler := Logging(newTestLogger(buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				SetErrorCode(r.Context(), tt.code)
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leaderboard/cursor", nil))

			entry := parseLogEntry(t, buf)
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", entry.Level, tt.wantLevel)
			}
			if entry.ErrorCode != tt.code {
				t.Errorf("error_code = %q, want %q", entry.ErrorCode, tt.code)
			}
		})
	}
}

func TestLogging_IncludesRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := RequestID(Logging(newTestLogger(buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if entry := parseLogEntry(t, buf); entry.RequestID != "req-123" {
		t.Errorf("request_id = %q, want req-123", entry.RequestID)
	}
}

func TestSetErrorCode_WithoutLogging(t *testing.T) {
	ctx := SetErrorCode(context.Background(), "validation_error")
	if got := GetErrorCode(ctx); got != "validation_error" {
		t.Errorf("GetErrorCode() = %q", got)
	}
	if got := GetErrorCode(context.Background()); got != "" {
		t.Errorf("GetErrorCode(empty) = %q", got)
	}
}

func TestResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)
	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK)
	if rw.statusCode != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status = %d/%d, want 418", rw.statusCode, rec.Code)
	}
}

func TestNewLogger(t *testing.T) {
	if NewLogger("production") == nil || NewLogger("development") == nil {
		t.Fatal("NewLogger returned nil")
	}
	if !NewLogger("development").Enabled(context.Background(), slog.LevelDebug) {
		t.Error("development logger should enable debug")
	}
	if NewLogger("production").Enabled(context.Background(), slog.LevelDebug) {
		t.Error("production logger should not enable debug")
	}
}
