package session

import (
	"context"
	"errors"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
	"golang.org/x/sync/singleflight"
)

// Coordinator coalesces concurrent refresh attempts. The upstream rotates
// refresh tokens on use, so two simultaneous refreshes with the same token
// would invalidate each other; the singleflight group keyed by the refresh
// token guarantees that N callers holding the same token trigger exactly one
// upstream exchange and all receive the same rotated pair.
type Coordinator struct {
	identity adapter.IdentityClient
	group    singleflight.Group
	logger   *logger.Logger
}

// NewCoordinator constructs a refresh coordinator over the identity client.
func NewCoordinator(identity adapter.IdentityClient, logger *logger.Logger) *Coordinator {
	return &Coordinator{identity: identity, logger: logger}
}

// Refresh exchanges the pair's refresh token for a rotated pair, coalescing
// concurrent callers per token.
//
// Failure semantics, in order:
//   - no refresh token present → [ErrSessionExpired]
//   - upstream rejects the token (401) → [ErrSessionExpired]
//   - upstream unreachable → the adapter error, wrapped; the session is NOT
//     declared dead, callers surface a retryable failure instead
//
// When the upstream keeps the old refresh token (returns none), the rotated
// pair retains the caller's refresh token.
func (c *Coordinator) Refresh(ctx context.Context, pair models.TokenPair) (models.TokenPair, error) {
	if !pair.HasRefresh() {
		return models.TokenPair{}, ErrSessionExpired
	}

	log := logger.FromContext(ctx)

	// The exchange runs detached from the first caller's cancellation: the
	// flight is shared by every coalesced waiter, and one closed browser tab
	// must not fail the whole wave. The adapter's request timeout still
	// bounds the call.
	exchangeCtx := context.WithoutCancel(ctx)

	result, err, shared := c.group.Do(pair.RefreshToken, func() (any, error) {
		rotated, err := c.identity.Refresh(exchangeCtx, pair.RefreshToken)
		if err != nil {
			return models.TokenPair{}, err
		}

		if !rotated.HasRefresh() {
			rotated.RefreshToken = pair.RefreshToken
		}
		if rotated.AccessExpiresAt.IsZero() {
			if exp, err := utils.ParseTokenExpiry(rotated.AccessToken); err == nil {
				rotated.AccessExpiresAt = exp
			}
		}

		return rotated, nil
	})

	if err != nil {
		if errors.Is(err, adapter.ErrUnauthorized) {
			log.Info().Bool("shared", shared).Msg("refresh token rejected, session expired")
			return models.TokenPair{}, ErrSessionExpired
		}
		log.Err(err).Msg("refresh exchange failed")
		return models.TokenPair{}, err
	}

	return result.(models.TokenPair), nil
}
