package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerVisitorBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 2, newTestLogger())
	defer rl.Stop()
	h := Visitor()(rl.Handler(http.HandlerFunc(okHandler)))

	send := func(visitor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/utterances", nil)
		req.Header.Set(VisitorIDHeader, visitor)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("alice"))
	assert.Equal(t, http.StatusOK, send("alice"))
	assert.Equal(t, http.StatusTooManyRequests, send("alice"))
	assert.Equal(t, http.StatusOK, send("bob"))
}

func TestRateLimiter_FallsBackToIP(t *testing.T) {
	rl := NewRateLimiter(1, 1, newTestLogger())
	defer rl.Stop()
	h := rl.Handler(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rec)["code"])
}

func TestLimiterStore_CleanupEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newLimiterStore(1, 1, time.Minute)
	s.nowFunc = func() time.Time { return now }

	s.limiter("a")
	now = now.Add(2 * time.Minute)
	s.limiter("b")
	s.cleanup()

	assert.Equal(t, 1, s.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded chain", "198.51.100.1, 10.0.0.1", "", "10.0.0.2:80", "198.51.100.1"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:80", "198.51.100.7"},
		{"garbage header", "nonsense", "", "10.0.0.2:80", "10.0.0.2"},
		{"remote addr", "", "", "192.0.2.4:1234", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1, newTestLogger())
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}
