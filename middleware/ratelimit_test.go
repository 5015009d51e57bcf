package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/time/rate"
)

func TestGetLimiterReusesPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(5), 10)

	a := limiter.GetLimiter("1.2.3.4")
	b := limiter.GetLimiter("1.2.3.4")
	c := limiter.GetLimiter("5.6.7.8")

	if a != b {
		t.Error("Same IP should share a limiter")
	}
	if a == c {
		t.Error("Different IPs should not share a limiter")
	}
}

func TestRateLimitRejectsOverBurst(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/nowplaying", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("First two requests should pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("Third request should be limited, got %d", statuses[2])
	}
}

func TestRateLimitIsolatesIPs(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest("GET", "/nowplaying", nil)
	first.RemoteAddr = "1.1.1.1:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	handler.ServeHTTP(httptest.NewRecorder(), first)

	other := httptest.NewRequest("GET", "/nowplaying", nil)
	other.RemoteAddr = "2.2.2.2:1000"
	otherRec := httptest.NewRecorder()
	handler.ServeHTTP(otherRec, other)

	if otherRec.Code != http.StatusOK {
		t.Errorf("Fresh IP should not be limited, got %d", otherRec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{name: "remote addr with port", remoteAddr: "10.0.0.1:5000", expected: "10.0.0.1"},
		{name: "forwarded header wins", remoteAddr: "10.0.0.1:5000", forwarded: "203.0.113.7", expected: "203.0.113.7"},
		{name: "remote addr without port", remoteAddr: "10.0.0.1", expected: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := ClientIP(req); got != tt.expected {
				t.Errorf("ClientIP = %q, want %q", got, tt.expected)
			}
		})
	}
}
