package store

import (
	"context"
	"time"

	"github.com/fieldscope/survey-console/models"
)

// WhitelistRepository persists pre-authorisation records.
type WhitelistRepository interface {
	Create(ctx context.Context, entry models.WhitelistEntry) (models.WhitelistEntry, error)
	GetByID(ctx context.Context, id int64) (models.WhitelistEntry, error)
	GetByIdentifier(ctx context.Context, identifier string) (models.WhitelistEntry, error)
	List(ctx context.Context) ([]models.WhitelistEntry, error)
}

// ActivationCodeRepository persists activation codes and performs their
// guarded state transitions. Every transition-out-of-active method matches
// only rows still in the active state and reports [ErrCodeNotActive] when a
// concurrent transition got there first.
type ActivationCodeRepository interface {
	Create(ctx context.Context, code models.ActivationCode) (models.ActivationCode, error)
	GetByID(ctx context.Context, id int64) (models.ActivationCode, error)
	GetActiveByWhitelistID(ctx context.Context, whitelistID int64) (models.ActivationCode, error)

	// GetLatestByWhitelistID returns the entry's most recent code in any
	// state, so redemption can report why a terminal code is unusable.
	GetLatestByWhitelistID(ctx context.Context, whitelistID int64) (models.ActivationCode, error)

	// RedeemSuccess marks the code used and flips the owning whitelist
	// entry to activated in a single transaction.
	RedeemSuccess(ctx context.Context, codeID, whitelistID int64, usedAt time.Time) error

	// RecordFailedAttempt atomically increments the failure counter and
	// locks the code when the attempt budget is exhausted. It returns the
	// post-increment row.
	RecordFailedAttempt(ctx context.Context, id int64) (models.ActivationCode, error)

	Revoke(ctx context.Context, id int64, reason string, revokedAt time.Time) (models.ActivationCode, error)
	MarkExpired(ctx context.Context, id int64) error
	ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) (models.ActivationCode, error)
	SetEmailDelivery(ctx context.Context, id int64, deliveryID string) error

	// ExpireOverdue transitions every active code whose deadline has passed
	// and returns the ids it touched.
	ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error)
}

// AuditRepository appends and queries the immutable activation audit trail.
type AuditRepository interface {
	Append(ctx context.Context, entry models.AuditLogEntry) (models.AuditLogEntry, error)
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogEntry, error)
}
