// SPDX-License-Identifier: Apache-2.0

// Package adapter provides the transport layer for talking to the upstream
// survey platform.
//
// The gateway consumes three upstream surfaces: the identity endpoints that
// issue and rotate token pairs, the user directory used to validate
// supervisor assignments, and the notification service that delivers
// activation emails. All three are served by the same platform API and are
// implemented here by a single resty-backed adapter.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401). Network-level failures,
// including timeouts, map to [ErrUpstreamUnavailable] and are never confused
// with authorization failures.
package adapter

import (
	"context"

	"github.com/fieldscope/survey-console/models"
)

// IdentityClient talks to the upstream identity endpoints. Token pairs pass
// through these methods and nowhere else.
type IdentityClient interface {
	// Login exchanges credentials for a fresh token pair.
	// Returns [ErrUnauthorized] when the credentials are rejected.
	Login(ctx context.Context, email, password string) (models.TokenPair, error)

	// Refresh exchanges a refresh token for a rotated pair. The upstream
	// may keep the refresh token; in that case the returned pair carries an
	// empty RefreshToken and the caller keeps the old one.
	// Returns [ErrUnauthorized] when the refresh token is stale.
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Logout invalidates the session server-side. Best effort: local
	// credential disposal must not depend on its success.
	Logout(ctx context.Context, accessToken string) error

	// Me returns the profile of the token's owner.
	Me(ctx context.Context, accessToken string) (models.UserProfile, error)
}

// DirectoryClient reads user records from the upstream directory.
type DirectoryClient interface {
	// GetUser fetches a platform user by id. Used to check that a
	// supervisor reference points at an active supervising user.
	GetUser(ctx context.Context, accessToken string, id int64) (models.UserProfile, error)
}

// ActivationEmail is the payload handed to the notification service when an
// activation code is generated with delivery enabled. It is the only moment
// the plaintext code leaves the gateway.
type ActivationEmail struct {
	Recipient     string `json:"recipient"`
	FullName      string `json:"full_name"`
	Code          string `json:"code"`
	Template      string `json:"template,omitempty"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// NotifierClient talks to the upstream notification service.
type NotifierClient interface {
	// SendActivationEmail delivers the one-time code presentation and
	// returns the delivery reference used for later resends.
	SendActivationEmail(ctx context.Context, accessToken string, email ActivationEmail) (string, error)

	// ResendActivationEmail redelivers a previous presentation by its
	// delivery reference. The plaintext is never read back.
	ResendActivationEmail(ctx context.Context, accessToken, deliveryID, customMessage string) (string, error)
}

// PlatformAdapter aggregates every upstream surface the gateway consumes.
type PlatformAdapter interface {
	IdentityClient
	DirectoryClient
	NotifierClient
}
