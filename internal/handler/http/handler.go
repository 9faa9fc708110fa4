// Package http implements the gateway's inbound HTTP surface: the session
// endpoints, the route guard, the activation-code and whitelist admin API,
// the public redemption endpoint, and the authenticated pass-through proxy
// to the upstream platform.
package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/service"
	"github.com/fieldscope/survey-console/internal/session"
	"github.com/fieldscope/survey-console/models"
)

// ctxKey is a private type for context keys set by this package's middleware.
type ctxKey string

// sessionCtxKey carries the request's token pair from the route guard to
// handlers that call the upstream on the operator's behalf. The guard stores
// the refreshed pair when it had to rotate mid-request, so handlers always
// see a usable access credential.
const sessionCtxKey = ctxKey("sessionTokens")

// Handler owns every inbound route of the gateway.
type Handler struct {
	services *service.Services
	platform adapter.PlatformAdapter

	sessions    *session.Custodian
	coordinator *session.Coordinator
	hydrator    *session.Hydrator

	cfg     *config.StructuredConfig
	metrics *metrics
	limiter *ipLimiter

	upstreamBase   *url.URL
	upstreamClient *http.Client

	logger *logger.Logger
}

// NewHandler wires the transport layer over the domain services and the
// session machinery. The upstream base URL comes from the same configuration
// the platform adapter uses, so the proxy and the typed adapter always talk
// to the same host.
func NewHandler(
	services *service.Services,
	platform adapter.PlatformAdapter,
	sessions *session.Custodian,
	coordinator *session.Coordinator,
	hydrator *session.Hydrator,
	cfg *config.StructuredConfig,
	logger *logger.Logger,
) (*Handler, error) {
	base, err := url.Parse(normalizeBaseURL(cfg.Upstream.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}

	logger.Info().Msg("http handler created")

	return &Handler{
		services:    services,
		platform:    platform,
		sessions:    sessions,
		coordinator: coordinator,
		hydrator:    hydrator,
		cfg:         cfg,
		metrics:     newMetrics(),
		limiter:     newIPLimiter(cfg.Server.LoginRatePerMinute, cfg.Server.LoginRateBurst),
		upstreamBase: base,
		upstreamClient: &http.Client{
			Timeout: cfg.Upstream.RequestTimeout,
		},
		logger: logger,
	}, nil
}

func normalizeBaseURL(baseURL string) string {
	if baseURL != "" && !strings.Contains(baseURL, "://") {
		return "https://" + baseURL
	}
	return baseURL
}

// tokenPairFromContext retrieves the pair the route guard stored for this
// request.
func tokenPairFromContext(ctx context.Context) (models.TokenPair, bool) {
	pair, ok := ctx.Value(sessionCtxKey).(models.TokenPair)
	return pair, ok
}
