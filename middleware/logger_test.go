package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lyrics-resolver-go/logcolors"
)

func TestGetStatusColor(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		expected   string
	}{
		{name: "2xx is green", statusCode: http.StatusOK, expected: logcolors.Green},
		{name: "3xx is cyan", statusCode: http.StatusFound, expected: logcolors.Cyan},
		{name: "4xx is yellow", statusCode: http.StatusTooManyRequests, expected: logcolors.Yellow},
		{name: "5xx is red", statusCode: http.StatusInternalServerError, expected: logcolors.Red},
		{name: "1xx is reset", statusCode: http.StatusContinue, expected: logcolors.Reset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getStatusColor(tt.statusCode); got != tt.expected {
				t.Errorf("getStatusColor(%d) = %q, want %q", tt.statusCode, got, tt.expected)
			}
		})
	}
}

func TestResponseRecorder(t *testing.T) {
	rec := NewResponseRecorder(httptest.NewRecorder())

	if rec.StatusCode != http.StatusOK {
		t.Errorf("Default status = %d, want 200", rec.StatusCode)
	}

	rec.WriteHeader(http.StatusAccepted)
	if rec.StatusCode != http.StatusAccepted {
		t.Errorf("StatusCode = %d, want 202", rec.StatusCode)
	}

	if _, err := rec.Write([]byte("hello")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if rec.BodySize != 5 {
		t.Errorf("BodySize = %d, want 5", rec.BodySize)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest("GET", "/lyrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("Status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("Body = %q", rec.Body.String())
	}
}

func TestResponseRecorderFlush(t *testing.T) {
	rec := NewResponseRecorder(httptest.NewRecorder())

	// httptest.ResponseRecorder implements http.Flusher; this must not
	// panic and must reach the underlying writer.
	rec.Flush()
}
