// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/models"
	"github.com/jackc/pgerrcode"
)

// activationCodeRepository is the PostgreSQL-backed implementation of
// [ActivationCodeRepository]. Rows in "activation_codes" are never deleted;
// lifecycle transitions are guarded UPDATEs that only match rows still in the
// active state.
type activationCodeRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewActivationCodeRepository constructs an [ActivationCodeRepository]
// backed by the provided database connection and logger.
func NewActivationCodeRepository(db *DB, logger *logger.Logger) ActivationCodeRepository {
	logger.Debug().Msg("creating activation code repository")
	return &activationCodeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new code row. The one-active-code-per-entry invariant is
// enforced by a partial unique index; a violation surfaces as
// [ErrActiveCodeExists] so the service can tell the operator to revoke or
// regenerate instead.
func (r *activationCodeRepository) Create(ctx context.Context, code models.ActivationCode) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createActivationCode,
		code.WhitelistID, code.CodeHash, code.Status, code.ExpiresAt, code.MaxAttempts)

	saved, err := scanActivationCode(row)
	if err != nil {
		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.ActivationCode{}, ErrActiveCodeExists
		case pgerrcode.ForeignKeyViolation:
			return models.ActivationCode{}, ErrWhitelistNotFound
		}
		log.Err(err).Str("func", "*activationCodeRepository.Create").Msg("error inserting activation code")
		return models.ActivationCode{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return saved, nil
}

// GetByID retrieves a code by its primary key.
// Returns [ErrCodeNotFound] when no row matches.
func (r *activationCodeRepository) GetByID(ctx context.Context, id int64) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	code, err := scanActivationCode(r.db.QueryRowContext(ctx, getActivationCodeByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActivationCode{}, ErrCodeNotFound
		}
		log.Err(err).Str("func", "*activationCodeRepository.GetByID").Msg("error querying activation code")
		return models.ActivationCode{}, errors.Join(ErrExecutingQuery, err)
	}

	return code, nil
}

// GetActiveByWhitelistID retrieves the single active code of a whitelist
// entry. Returns [ErrCodeNotFound] when the entry has no active code.
func (r *activationCodeRepository) GetActiveByWhitelistID(ctx context.Context, whitelistID int64) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	code, err := scanActivationCode(r.db.QueryRowContext(ctx, getActiveCodeByWhitelistID, whitelistID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActivationCode{}, ErrCodeNotFound
		}
		log.Err(err).Str("func", "*activationCodeRepository.GetActiveByWhitelistID").Msg("error querying active code")
		return models.ActivationCode{}, errors.Join(ErrExecutingQuery, err)
	}

	return code, nil
}

// GetLatestByWhitelistID retrieves the entry's most recent code regardless
// of state. Returns [ErrCodeNotFound] when the entry never had a code.
func (r *activationCodeRepository) GetLatestByWhitelistID(ctx context.Context, whitelistID int64) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	code, err := scanActivationCode(r.db.QueryRowContext(ctx, getLatestCodeByWhitelistID, whitelistID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActivationCode{}, ErrCodeNotFound
		}
		log.Err(err).Str("func", "*activationCodeRepository.GetLatestByWhitelistID").Msg("error querying latest code")
		return models.ActivationCode{}, errors.Join(ErrExecutingQuery, err)
	}

	return code, nil
}

// RedeemSuccess marks the code used and flips the owning whitelist entry to
// activated in one transaction. Either both rows change or neither does.
//
// Returns [ErrCodeNotActive] if the code left the active state between the
// caller's hash check and this call.
func (r *activationCodeRepository) RedeemSuccess(ctx context.Context, codeID, whitelistID int64, usedAt time.Time) error {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.RedeemSuccess").Msg("error beginning transaction")
		return errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, markCodeUsed, codeID, usedAt)
	if err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.RedeemSuccess").Msg("error marking code used")
		return errors.Join(ErrExecutingQuery, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCodeNotActive
	}

	res, err = tx.ExecContext(ctx, activateWhitelistEntry, whitelistID)
	if err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.RedeemSuccess").Msg("error activating whitelist entry")
		return errors.Join(ErrExecutingQuery, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrAlreadyActivated
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.RedeemSuccess").Msg("error committing transaction")
		return errors.Join(ErrCommitingTransaction, err)
	}

	return nil
}

// RecordFailedAttempt increments the failure counter and locks the code when
// the budget is exhausted, atomically in a single UPDATE. The returned row
// reflects the post-increment state, so the caller can report remaining
// attempts or observe the lock.
func (r *activationCodeRepository) RecordFailedAttempt(ctx context.Context, id int64) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	code, err := scanActivationCode(r.db.QueryRowContext(ctx, recordFailedAttempt, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActivationCode{}, ErrCodeNotActive
		}
		log.Err(err).Str("func", "*activationCodeRepository.RecordFailedAttempt").Msg("error recording failed attempt")
		return models.ActivationCode{}, errors.Join(ErrExecutingQuery, err)
	}

	return code, nil
}

// Revoke transitions an active code to revoked with the operator-supplied
// reason. Returns [ErrCodeNotActive] when the code is not active.
func (r *activationCodeRepository) Revoke(ctx context.Context, id int64, reason string, revokedAt time.Time) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	code, err := scanActivationCode(r.db.QueryRowContext(ctx, revokeActivationCode, id, revokedAt, reason))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActivationCode{}, ErrCodeNotActive
		}
		log.Err(err).Str("func", "*activationCodeRepository.Revoke").Msg("error revoking code")
		return models.ActivationCode{}, errors.Join(ErrExecutingQuery, err)
	}

	return code, nil
}

// MarkExpired transitions an active code to expired. Used when expiry is
// observed during a read, before the sweeper gets to the row.
func (r *activationCodeRepository) MarkExpired(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, markCodeExpired, id)
	if err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.MarkExpired").Msg("error marking code expired")
		return errors.Join(ErrExecutingQuery, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCodeNotActive
	}

	return nil
}

// ExtendExpiry moves an active code's deadline to the given instant.
func (r *activationCodeRepository) ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) (models.ActivationCode, error) {
	log := logger.FromContext(ctx)

	code, err := scanActivationCode(r.db.QueryRowContext(ctx, extendCodeExpiry, id, expiresAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ActivationCode{}, ErrCodeNotActive
		}
		log.Err(err).Str("func", "*activationCodeRepository.ExtendExpiry").Msg("error extending code expiry")
		return models.ActivationCode{}, errors.Join(ErrExecutingQuery, err)
	}

	return code, nil
}

// SetEmailDelivery records the notification-service delivery reference
// created when the plaintext was handed off.
func (r *activationCodeRepository) SetEmailDelivery(ctx context.Context, id int64, deliveryID string) error {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, setCodeEmailDelivery, id, deliveryID)
	if err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.SetEmailDelivery").Msg("error storing delivery reference")
		return errors.Join(ErrExecutingQuery, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCodeNotFound
	}

	return nil
}

// ExpireOverdue transitions every active code whose deadline passed before
// the given instant and returns the ids it touched, for per-code audit
// entries.
func (r *activationCodeRepository) ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, expireOverdueCodes, now)
	if err != nil {
		log.Err(err).Str("func", "*activationCodeRepository.ExpireOverdue").Msg("error expiring overdue codes")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, errors.Join(ErrScanningRows, err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningRows, err)
	}

	return ids, nil
}

func scanActivationCode(row *sql.Row) (models.ActivationCode, error) {
	var code models.ActivationCode
	var revokeReason sql.NullString
	err := row.Scan(&code.ID, &code.WhitelistID, &code.CodeHash, &code.Status, &code.ExpiresAt,
		&code.UsedAt, &code.RevokedAt, &revokeReason, &code.FailedAttempts, &code.MaxAttempts,
		&code.EmailDeliveryID, &code.CreatedAt, &code.UpdatedAt)
	code.RevokeReason = revokeReason.String
	return code, err
}
