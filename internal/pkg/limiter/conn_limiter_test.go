package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestAllowAddr_BurstThenDeny(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 2)

	assert.True(t, l.AllowAddr("10.0.0.1:40000"))
	assert.True(t, l.AllowAddr("10.0.0.1:40001"))
	assert.False(t, l.AllowAddr("10.0.0.1:40002"))

	// A different address has its own bucket.
	assert.True(t, l.AllowAddr("10.0.0.2:40000"))
}

func TestAllowAddr_BareHost(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)

	assert.True(t, l.AllowAddr("10.0.0.3"))
	assert.False(t, l.AllowAddr("10.0.0.3"))
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.4:1234"
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
