// SPDX-License-Identifier: Apache-2.0

// Package service implements the gateway's domain logic: the activation-code
// lifecycle state machine, whitelist management, and the read side of the
// audit trail. Persistence goes through internal/store; upstream lookups and
// notification hand-offs go through internal/adapter.
package service

import (
	"context"

	"github.com/fieldscope/survey-console/models"
)

// ActivationService drives the activation-code state machine. Every
// transition appends to the audit trail in the same operation.
type ActivationService interface {
	// Generate issues a new code for a whitelist entry and returns the
	// plaintext exactly once. The accessToken is the calling operator's
	// credential, used for upstream supervisor checks and email hand-off.
	Generate(ctx context.Context, accessToken string, req models.GenerateCodeRequest) (models.GeneratedCode, error)

	// Redeem attempts a public redemption by identifier and plaintext code.
	Redeem(ctx context.Context, req models.RedeemRequest) (models.RedeemResult, error)

	// Revoke invalidates an active code with a mandatory reason.
	Revoke(ctx context.Context, id int64, reason string) (models.ActivationCode, error)

	// Extend pushes an active code's deadline forward by whole hours.
	Extend(ctx context.Context, id int64, additionalHours int) (models.ExtendResult, error)

	// ResendEmail redelivers the code's original one-time presentation by
	// its delivery reference.
	ResendEmail(ctx context.Context, accessToken string, id int64, customMessage string) error

	// Get returns a single code row (hash never serialised).
	Get(ctx context.Context, id int64) (models.ActivationCode, error)
}

// WhitelistService manages pre-authorisation entries.
type WhitelistService interface {
	Create(ctx context.Context, accessToken string, req models.CreateWhitelistRequest) (models.WhitelistEntry, error)
	Get(ctx context.Context, id int64) (models.WhitelistEntry, error)
	List(ctx context.Context) ([]models.WhitelistEntry, error)
}

// AuditService exposes the read side of the audit trail. There is no write
// side here: entries are appended only by lifecycle transitions.
type AuditService interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogEntry, error)
}
