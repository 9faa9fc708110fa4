package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Init assembles the gateway router.
//
// Route map:
//   - credential-bearing endpoints (login, redeem) sit behind the per-IP
//     rate limiter;
//   - everything under /api/auth manages the session cookies directly;
//   - the admin API and the platform proxy sit behind the route guard;
//   - /metrics is unauthenticated, intended for a private scrape network.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(h.withTraceID)
	router.Use(h.withRequesterIP)
	router.Use(h.withLogging)
	router.Use(h.withMetrics)
	router.Use(middleware.Compress(5))

	router.Group(func(r chi.Router) {
		r.Use(h.withRateLimit)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/activation/redeem", h.redeem)
	})

	router.Post("/api/auth/refresh", h.refresh)
	router.Post("/api/auth/logout", h.logout)
	router.Get(h.cfg.Session.LoginPath, h.loginGate)

	router.Group(func(r chi.Router) {
		r.Use(h.guard)

		r.Get("/api/auth/me", h.me)

		r.Route("/api/admin", func(r chi.Router) {
			r.Post("/whitelist", h.createWhitelistEntry)
			r.Get("/whitelist", h.listWhitelistEntries)
			r.Get("/whitelist/{whitelistID}", h.getWhitelistEntry)

			r.Post("/codes", h.generateCode)
			r.Get("/codes/{codeID}", h.getCode)
			r.Post("/codes/{codeID}/revoke", h.revokeCode)
			r.Post("/codes/{codeID}/extend", h.extendCode)
			r.Post("/codes/{codeID}/resend-email", h.resendCodeEmail)

			r.Get("/audit", h.listAuditTrail)
		})

		r.HandleFunc("/api/platform/*", h.proxyPlatform)
	})

	router.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{}))

	return router
}
