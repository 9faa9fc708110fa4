package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLimiter_DisabledAllowsEverything(t *testing.T) {
	limiter := newIPLimiter(0, 0)

	for i := 0; i < 100; i++ {
		require.True(t, limiter.allow("10.0.0.1"))
	}
}

func TestIPLimiter_BurstThenDeny(t *testing.T) {
	limiter := newIPLimiter(1, 3)

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"), "burst exhausted")

	// A different client has its own bucket.
	assert.True(t, limiter.allow("10.0.0.2"))
}

func TestWithRateLimit_LoginReturns429WhenExhausted(t *testing.T) {
	fx := newTestFixture(t)
	fx.handler.limiter = newIPLimiter(1, 2)

	body := `{"email":"admin@example.com","password":"secret"}`

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.RemoteAddr = "203.0.113.9:4455"
		rec := httptest.NewRecorder()
		fx.router.ServeHTTP(rec, req)
		last = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestWithRateLimit_RedeemIsAlsoLimited(t *testing.T) {
	fx := newTestFixture(t)
	fx.handler.limiter = newIPLimiter(1, 1)

	body := `{"identifier":"jane@example.com","code":"ABCDE-FGHJK"}`

	req := httptest.NewRequest(http.MethodPost, "/api/activation/redeem", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:4455"
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	require.NotEqual(t, http.StatusTooManyRequests, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/activation/redeem", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:4455"
	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
