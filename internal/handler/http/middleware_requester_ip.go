package http

import (
	"context"
	"net"
	"net/http"

	"github.com/fieldscope/survey-console/internal/utils"
)

// withRequesterIP records the originating client address in the request
// context for audit trail attribution. Runs after chi's RealIP middleware,
// so RemoteAddr already reflects X-Forwarded-For when a proxy set it.
func (h *Handler) withRequesterIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}

		ctx := context.WithValue(r.Context(), utils.RequesterIPCtxKey, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
