package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowance(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, rl.allow("10.0.0.1"))
	}
	require.False(t, rl.allow("10.0.0.1"))

	// Other clients keep their own allowance.
	require.True(t, rl.allow("10.0.0.2"))

	require.Greater(t, rl.retryAfter("10.0.0.1"), 0)
	require.Equal(t, 0, rl.retryAfter("10.0.0.9"))
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	require.True(t, rl.allow("10.0.0.1"))
	require.False(t, rl.allow("10.0.0.1"))

	time.Sleep(15 * time.Millisecond)
	require.True(t, rl.allow("10.0.0.1"))
}

func TestRateLimiterWrap(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	handler := rl.Wrap(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
		req.RemoteAddr = "192.0.2.7:54321"
		handler(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "192.0.2.7:54321"
	handler(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// A different port is still the same client.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "192.0.2.7:60000"
	handler(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}
