package http

import (
	"net/http"
	"sync"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/utils"
	"golang.org/x/time/rate"
)

// ipLimiter hands out a token-bucket limiter per client IP. Credential
// guessing against login and redeem is the threat; a per-minute rate with a
// small burst keeps interactive use unaffected.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	limit rate.Limit
	burst int
}

// newIPLimiter builds a limiter allowing perMinute requests per client IP
// with the given burst. A non-positive rate disables limiting entirely.
func newIPLimiter(perMinute, burst int) *ipLimiter {
	if perMinute <= 0 {
		return &ipLimiter{}
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	if l.limiters == nil {
		return true
	}

	l.mu.Lock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := utils.GetRequesterIPFromContext(r.Context())

		if !h.limiter.allow(ip) {
			logger.FromRequest(r).Warn().Str("ip", ip).Msg("rate limit exceeded")
			utils.WriteError(w, "rate_limited", "too many requests, slow down", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
