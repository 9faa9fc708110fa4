// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
	"golang.org/x/crypto/bcrypt"
)

// Lifetime bounds, in hours, for generate clamping and extend validation.
const (
	minTTLHours = 1
	maxTTLHours = 720
)

// activationService is the concrete implementation of [ActivationService].
// It owns the code state machine end to end: hashing, transitions, attempt
// budgeting, audit, and the one-time plaintext hand-offs.
type activationService struct {
	whitelist store.WhitelistRepository
	codes     store.ActivationCodeRepository
	audit     store.AuditRepository

	directory adapter.DirectoryClient
	notifier  adapter.NotifierClient

	defaultTTLHours int
	maxAttempts     int
	bcryptCost      int

	// now is stubbed in tests.
	now func() time.Time

	logger *logger.Logger
}

// NewActivationService constructs an [ActivationService] wired to the given
// repositories and upstream adapter, with policy knobs from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewActivationService(repos *store.Repositories, platform adapter.PlatformAdapter, cfg config.Activation, logger *logger.Logger) ActivationService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &activationService{
		whitelist:       repos.Whitelist,
		codes:           repos.Codes,
		audit:           repos.Audit,
		directory:       platform,
		notifier:        platform,
		defaultTTLHours: cfg.DefaultTTLHours,
		maxAttempts:     cfg.MaxAttempts,
		bcryptCost:      cost,
		now:             time.Now,
		logger:          logger,
	}
}

// Generate issues a new activation code for a whitelist entry.
//
// The requested lifetime is clamped to [1,720] hours; zero selects the
// configured default. A field-agent entry requires a supervisor reference
// that resolves upstream to an active supervising user. The plaintext is
// returned exactly once; only its bcrypt hash is stored.
//
// Returns:
//   - [store.ErrWhitelistNotFound] for an unknown entry.
//   - [ErrValidation] when the entry is already activated.
//   - [ErrSupervisorRequired] when the supervisor check fails.
//   - [ErrConflictingActiveCode] when an active code already exists.
func (s *activationService) Generate(ctx context.Context, accessToken string, req models.GenerateCodeRequest) (models.GeneratedCode, error) {
	log := logger.FromContext(ctx)

	entry, err := s.whitelist.GetByID(ctx, req.WhitelistID)
	if err != nil {
		return models.GeneratedCode{}, fmt.Errorf("whitelist lookup failed: %w", err)
	}
	if entry.IsActivated {
		return models.GeneratedCode{}, fmt.Errorf("%w: entry is already activated", ErrValidation)
	}

	if entry.Role == models.RoleFieldAgent {
		if err = s.checkSupervisor(ctx, accessToken, entry.SupervisorID); err != nil {
			return models.GeneratedCode{}, err
		}
	}

	// the event vocabulary distinguishes a first code from a replacement
	event := models.AuditGenerated
	if _, err = s.codes.GetLatestByWhitelistID(ctx, entry.ID); err == nil {
		event = models.AuditRegenerated
	} else if !errors.Is(err, store.ErrCodeNotFound) {
		return models.GeneratedCode{}, fmt.Errorf("prior code lookup failed: %w", err)
	}

	plaintext, err := utils.GenerateActivationCode()
	if err != nil {
		return models.GeneratedCode{}, err
	}

	// the hash covers the normalised form so redemption tolerates the
	// hyphen and letter case
	hash, err := bcrypt.GenerateFromPassword([]byte(utils.NormalizeActivationCode(plaintext)), s.bcryptCost)
	if err != nil {
		return models.GeneratedCode{}, fmt.Errorf("error hashing activation code: %w", err)
	}

	expiresAt := s.now().Add(time.Duration(s.clampTTL(req.ExpiresInHours)) * time.Hour)

	code, err := s.codes.Create(ctx, models.ActivationCode{
		WhitelistID: entry.ID,
		CodeHash:    string(hash),
		Status:      models.CodeActive,
		ExpiresAt:   &expiresAt,
		MaxAttempts: s.maxAttempts,
	})
	if err != nil {
		if errors.Is(err, store.ErrActiveCodeExists) {
			return models.GeneratedCode{}, fmt.Errorf("%w: revoke it before generating another", ErrConflictingActiveCode)
		}
		return models.GeneratedCode{}, fmt.Errorf("code creation failed: %w", err)
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:    code.ID,
		EventType: event,
		Success:   true,
	})

	if req.SendEmail {
		s.deliverEmail(ctx, accessToken, &code, entry, plaintext, req)
	}

	log.Info().
		Int64("whitelist_id", entry.ID).
		Int64("code_id", code.ID).
		Str("identifier", utils.MaskIdentifier(entry.Identifier)).
		Msg("activation code generated")

	return models.GeneratedCode{
		ActivationCode:   code,
		Code:             plaintext,
		MaskedIdentifier: utils.MaskIdentifier(entry.Identifier),
	}, nil
}

// deliverEmail hands the plaintext to the notification service. This is the
// only hand-off: afterwards the gateway retains just the delivery reference.
// A delivery failure does not fail the generation; the operator still holds
// the plaintext from the response and the failure is audited.
func (s *activationService) deliverEmail(ctx context.Context, accessToken string, code *models.ActivationCode, entry models.WhitelistEntry, plaintext string, req models.GenerateCodeRequest) {
	log := logger.FromContext(ctx)

	deliveryID, err := s.notifier.SendActivationEmail(ctx, accessToken, adapter.ActivationEmail{
		Recipient:     entry.Identifier,
		FullName:      entry.FullName,
		Code:          plaintext,
		Template:      req.EmailTemplate,
		CustomMessage: req.CustomMessage,
	})
	if err != nil {
		log.Err(err).Int64("code_id", code.ID).Msg("activation email delivery failed")
		s.appendAudit(ctx, models.AuditLogEntry{
			CodeID:        code.ID,
			EventType:     models.AuditEmailSent,
			Success:       false,
			FailureReason: "notification service delivery failed",
		})
		return
	}

	if err = s.codes.SetEmailDelivery(ctx, code.ID, deliveryID); err != nil {
		log.Err(err).Int64("code_id", code.ID).Msg("error storing delivery reference")
	} else {
		code.EmailDeliveryID = &deliveryID
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:    code.ID,
		EventType: models.AuditEmailSent,
		Success:   true,
		Metadata:  map[string]any{"delivery_id": deliveryID},
	})
}

// Redeem attempts a public redemption.
//
// The identifier locates the whitelist entry and its most recent code; the
// submitted plaintext is compared against the stored bcrypt hash. A mismatch
// spends one attempt and locks the code when the budget runs out. Expiry
// observed here transitions the row before rejecting. Terminal states reject
// with their matching error and never mutate the row.
//
// An unknown identifier and a wrong code both come back as [ErrInvalidCode]:
// the endpoint is public and must not confirm which identifiers exist.
func (s *activationService) Redeem(ctx context.Context, req models.RedeemRequest) (models.RedeemResult, error) {
	log := logger.FromContext(ctx)

	if req.Identifier == "" || req.Code == "" {
		return models.RedeemResult{}, fmt.Errorf("%w: identifier and code are required", ErrValidation)
	}

	entry, err := s.whitelist.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, store.ErrWhitelistNotFound) {
			return models.RedeemResult{}, ErrInvalidCode
		}
		return models.RedeemResult{}, fmt.Errorf("whitelist lookup failed: %w", err)
	}

	code, err := s.codes.GetLatestByWhitelistID(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotFound) {
			return models.RedeemResult{}, ErrInvalidCode
		}
		return models.RedeemResult{}, fmt.Errorf("code lookup failed: %w", err)
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:    code.ID,
		EventType: models.AuditAttemptedUse,
		Success:   true,
	})

	if err = s.rejectTerminal(code); err != nil {
		return models.RedeemResult{}, err
	}

	now := s.now()
	if code.ExpiredAt(now) {
		if err = s.codes.MarkExpired(ctx, code.ID); err != nil && !errors.Is(err, store.ErrCodeNotActive) {
			return models.RedeemResult{}, fmt.Errorf("error expiring code: %w", err)
		}
		s.appendAudit(ctx, models.AuditLogEntry{
			CodeID:        code.ID,
			EventType:     models.AuditExpired,
			Success:       true,
			FailureReason: "expiry observed during redemption",
		})
		return models.RedeemResult{}, ErrCodeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(code.CodeHash), []byte(utils.NormalizeActivationCode(req.Code))) != nil {
		return models.RedeemResult{}, s.spendAttempt(ctx, code)
	}

	if err = s.codes.RedeemSuccess(ctx, code.ID, entry.ID, now); err != nil {
		if errors.Is(err, store.ErrCodeNotActive) || errors.Is(err, store.ErrAlreadyActivated) {
			// a concurrent redemption won
			return models.RedeemResult{}, ErrCodeAlreadyUsed
		}
		return models.RedeemResult{}, fmt.Errorf("redemption failed: %w", err)
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:    code.ID,
		EventType: models.AuditSuccessfulUse,
		Success:   true,
	})

	// identifiers in log output are display-masked, never raw
	log.Info().
		Int64("whitelist_id", entry.ID).
		Int64("code_id", code.ID).
		Str("identifier", utils.MaskIdentifier(entry.Identifier)).
		Msg("activation code redeemed")

	return models.RedeemResult{
		WhitelistID: entry.ID,
		Role:        entry.Role,
		ActivatedAt: now,
	}, nil
}

// spendAttempt records a failed redemption, locking the code when the budget
// is exhausted. The final failed attempt audits both failed_use and locked.
func (s *activationService) spendAttempt(ctx context.Context, code models.ActivationCode) error {
	updated, err := s.codes.RecordFailedAttempt(ctx, code.ID)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotActive) {
			return ErrInvalidCode
		}
		return fmt.Errorf("error recording failed attempt: %w", err)
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:        updated.ID,
		EventType:     models.AuditFailedUse,
		Success:       false,
		FailureReason: "code mismatch",
		Metadata:      map[string]any{"attempts_left": updated.AttemptsLeft()},
	})

	if updated.Status == models.CodeLocked {
		s.appendAudit(ctx, models.AuditLogEntry{
			CodeID:        updated.ID,
			EventType:     models.AuditLocked,
			Success:       false,
			FailureReason: "attempt budget exhausted",
		})
		return ErrAttemptLimitExceeded
	}

	return ErrInvalidCode
}

// Revoke invalidates an active code. The reason is mandatory and surfaces
// verbatim in the audit trail.
func (s *activationService) Revoke(ctx context.Context, id int64, reason string) (models.ActivationCode, error) {
	if reason == "" {
		return models.ActivationCode{}, fmt.Errorf("%w: a revocation reason is required", ErrValidation)
	}

	code, err := s.codes.GetByID(ctx, id)
	if err != nil {
		return models.ActivationCode{}, fmt.Errorf("code lookup failed: %w", err)
	}
	if err = s.rejectTerminal(code); err != nil {
		return models.ActivationCode{}, err
	}

	revoked, err := s.codes.Revoke(ctx, id, reason, s.now())
	if err != nil {
		if errors.Is(err, store.ErrCodeNotActive) {
			return models.ActivationCode{}, ErrCodeRevoked
		}
		return models.ActivationCode{}, fmt.Errorf("revocation failed: %w", err)
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:        revoked.ID,
		EventType:     models.AuditRevoked,
		Success:       true,
		FailureReason: reason,
	})

	return revoked, nil
}

// Extend pushes an active code's deadline forward by additionalHours, which
// must lie in [1,720]; out-of-range values are rejected and the row is left
// untouched. The extension is accepted even when the stored deadline already
// passed, as long as the row has not been transitioned: the new deadline is
// the old one plus the extension, always strictly later.
func (s *activationService) Extend(ctx context.Context, id int64, additionalHours int) (models.ExtendResult, error) {
	if additionalHours < minTTLHours || additionalHours > maxTTLHours {
		return models.ExtendResult{}, fmt.Errorf("%w: additional hours must lie in [%d,%d]", ErrValidation, minTTLHours, maxTTLHours)
	}

	code, err := s.codes.GetByID(ctx, id)
	if err != nil {
		return models.ExtendResult{}, fmt.Errorf("code lookup failed: %w", err)
	}
	if err = s.rejectTerminal(code); err != nil {
		return models.ExtendResult{}, err
	}

	base := s.now()
	if code.ExpiresAt != nil {
		base = *code.ExpiresAt
	}
	newExpiry := base.Add(time.Duration(additionalHours) * time.Hour)

	extended, err := s.codes.ExtendExpiry(ctx, id, newExpiry)
	if err != nil {
		if errors.Is(err, store.ErrCodeNotActive) {
			return models.ExtendResult{}, ErrCodeRevoked
		}
		return models.ExtendResult{}, fmt.Errorf("extension failed: %w", err)
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:    extended.ID,
		EventType: models.AuditExtended,
		Success:   true,
		Metadata:  map[string]any{"additional_hours": additionalHours, "new_expires_at": newExpiry},
	})

	return models.ExtendResult{NewExpiresAt: newExpiry}, nil
}

// ResendEmail redelivers the code's original presentation through the
// notification service, by delivery reference only. A code generated without
// an email send has no reference and cannot be resent: the manager holds no
// plaintext to deliver.
func (s *activationService) ResendEmail(ctx context.Context, accessToken string, id int64, customMessage string) error {
	code, err := s.codes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("code lookup failed: %w", err)
	}
	if err = s.rejectTerminal(code); err != nil {
		return err
	}
	if code.EmailDeliveryID == nil {
		return fmt.Errorf("%w: code was generated without email delivery", ErrValidation)
	}

	deliveryID, err := s.notifier.ResendActivationEmail(ctx, accessToken, *code.EmailDeliveryID, customMessage)
	if err != nil {
		s.appendAudit(ctx, models.AuditLogEntry{
			CodeID:        code.ID,
			EventType:     models.AuditEmailResent,
			Success:       false,
			FailureReason: "notification service delivery failed",
		})
		return fmt.Errorf("resend failed: %w", err)
	}

	if deliveryID != "" && deliveryID != *code.EmailDeliveryID {
		if err = s.codes.SetEmailDelivery(ctx, code.ID, deliveryID); err != nil {
			logger.FromContext(ctx).Err(err).Int64("code_id", code.ID).Msg("error storing delivery reference")
		}
	}

	s.appendAudit(ctx, models.AuditLogEntry{
		CodeID:    code.ID,
		EventType: models.AuditEmailResent,
		Success:   true,
		Metadata:  map[string]any{"delivery_id": deliveryID},
	})

	return nil
}

// Get returns a single code row.
func (s *activationService) Get(ctx context.Context, id int64) (models.ActivationCode, error) {
	return s.codes.GetByID(ctx, id)
}

// rejectTerminal maps a terminal status to its operation error. Active codes
// pass.
func (s *activationService) rejectTerminal(code models.ActivationCode) error {
	switch code.Status {
	case models.CodeUsed:
		return ErrCodeAlreadyUsed
	case models.CodeRevoked:
		return ErrCodeRevoked
	case models.CodeExpired:
		return ErrCodeExpired
	case models.CodeLocked:
		return ErrAttemptLimitExceeded
	}
	return nil
}

// checkSupervisor validates the role↔supervisor invariant against the
// upstream directory: the reference must exist and point at an active
// admin or supervisor.
func (s *activationService) checkSupervisor(ctx context.Context, accessToken string, supervisorID *int64) error {
	if supervisorID == nil {
		return ErrSupervisorRequired
	}

	profile, err := s.directory.GetUser(ctx, accessToken, *supervisorID)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			return fmt.Errorf("%w: supervisor %d not found", ErrSupervisorRequired, *supervisorID)
		}
		return fmt.Errorf("supervisor lookup failed: %w", err)
	}
	if !profile.IsActive || !profile.Role.CanSupervise() {
		return fmt.Errorf("%w: user %d cannot supervise", ErrSupervisorRequired, *supervisorID)
	}

	return nil
}

func (s *activationService) clampTTL(hours int) int {
	if hours == 0 {
		hours = s.defaultTTLHours
	}
	if hours < minTTLHours {
		return minTTLHours
	}
	if hours > maxTTLHours {
		return maxTTLHours
	}
	return hours
}

// appendAudit stamps the requester IP from the context and appends the
// entry. Audit failures are logged, never propagated: an audit hiccup must
// not roll back a completed transition.
func (s *activationService) appendAudit(ctx context.Context, entry models.AuditLogEntry) {
	entry.RequesterIP = utils.GetRequesterIPFromContext(ctx)
	if _, err := s.audit.Append(ctx, entry); err != nil {
		logger.FromContext(ctx).Err(err).
			Int64("code_id", entry.CodeID).
			Str("event", string(entry.EventType)).
			Msg("error appending audit entry")
	}
}
