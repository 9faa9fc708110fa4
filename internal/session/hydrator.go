package session

import (
	"context"
	"sync"
	"time"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/models"
	"golang.org/x/sync/singleflight"
)

// hydrationCacheTTL bounds how long a resolved profile is reused before the
// upstream is asked again. Short on purpose: a deactivated user must lose
// access within this window even with a still-valid access token.
const hydrationCacheTTL = 30 * time.Second

type cachedProfile struct {
	profile  models.UserProfile
	cachedAt time.Time
}

// Hydrator resolves an access token to the owning user's profile, with a
// small per-token cache and request coalescing. The route guard calls it on
// every protected navigation; without the cache each page load would cost an
// upstream round trip.
type Hydrator struct {
	identity adapter.IdentityClient
	timeout  time.Duration
	logger   *logger.Logger

	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cachedProfile
}

// NewHydrator constructs a profile hydrator. The timeout bounds every
// upstream resolution; the route guard relies on it to fail closed instead
// of hanging a navigation.
func NewHydrator(identity adapter.IdentityClient, timeout time.Duration, logger *logger.Logger) *Hydrator {
	return &Hydrator{
		identity: identity,
		timeout:  timeout,
		logger:   logger,
		cache:    make(map[string]cachedProfile),
	}
}

// Hydrate resolves the access token's owner. Concurrent resolutions of the
// same token are coalesced; results are cached briefly per token.
func (h *Hydrator) Hydrate(ctx context.Context, accessToken string) (models.UserProfile, error) {
	if accessToken == "" {
		return models.UserProfile{}, ErrNoSession
	}

	h.mu.Lock()
	if entry, ok := h.cache[accessToken]; ok && time.Since(entry.cachedAt) < hydrationCacheTTL {
		h.mu.Unlock()
		return entry.profile, nil
	}
	h.mu.Unlock()

	result, err, _ := h.group.Do(accessToken, func() (any, error) {
		hctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		profile, err := h.identity.Me(hctx, accessToken)
		if err != nil {
			return models.UserProfile{}, err
		}

		h.mu.Lock()
		h.cache[accessToken] = cachedProfile{profile: profile, cachedAt: time.Now()}
		h.mu.Unlock()

		return profile, nil
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	return result.(models.UserProfile), nil
}

// Invalidate drops the cached profile for a token. Called when the token is
// rotated or the session is destroyed.
func (h *Hydrator) Invalidate(accessToken string) {
	h.mu.Lock()
	delete(h.cache, accessToken)
	h.mu.Unlock()
}
