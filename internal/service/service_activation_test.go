// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type activationFixture struct {
	svc       *activationService
	whitelist *fakeWhitelist
	codes     *fakeCodes
	audit     *fakeAudit
	platform  *fakePlatform
	now       time.Time
}

func newActivationFixture(t *testing.T) *activationFixture {
	t.Helper()

	whitelist := newFakeWhitelist()
	codes := newFakeCodes()
	audit := &fakeAudit{}
	platform := newFakePlatform()

	svc := NewActivationService(&store.Repositories{
		Whitelist: whitelist,
		Codes:     codes,
		Audit:     audit,
	}, platform, config.Activation{
		DefaultTTLHours: 72,
		MaxAttempts:     3,
		BcryptCost:      bcrypt.MinCost, // keep the suite fast
	}, logger.Nop()).(*activationService)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &activationFixture{
		svc:       svc,
		whitelist: whitelist,
		codes:     codes,
		audit:     audit,
		platform:  platform,
		now:       now,
	}
}

func (f *activationFixture) addEntry(t *testing.T, entry models.WhitelistEntry) models.WhitelistEntry {
	t.Helper()
	created, err := f.whitelist.Create(context.Background(), entry)
	require.NoError(t, err)
	return created
}

func supervisorEntry(identifier string) models.WhitelistEntry {
	return models.WhitelistEntry{
		Identifier:     identifier,
		IdentifierType: models.IdentifierEmail,
		FullName:       "Test Subject",
		Role:           models.RoleSupervisor,
	}
}

func TestGenerate_Success(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
		WhitelistID: entry.ID,
	})
	require.NoError(t, err)

	// plaintext format: two groups of five, unambiguous alphabet
	require.Len(t, generated.Code, 11)
	assert.Equal(t, byte('-'), generated.Code[5])
	assert.NotContains(t, generated.Code, "O")

	// only the hash of the normalised form is stored
	stored, err := f.codes.GetByID(context.Background(), generated.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.CodeHash, generated.Code)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.CodeHash),
		[]byte(utils.NormalizeActivationCode(generated.Code)),
	))

	// default lifetime applies when the request omits hours
	require.NotNil(t, stored.ExpiresAt)
	assert.Equal(t, f.now.Add(72*time.Hour), *stored.ExpiresAt)

	assert.Equal(t, []models.AuditEvent{models.AuditGenerated}, f.audit.events())
}

func TestGenerate_ResponseMasksIdentifier(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
		WhitelistID: entry.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "ja***@example.com", generated.MaskedIdentifier)
	assert.NotEqual(t, entry.Identifier, generated.MaskedIdentifier)
}

func TestGenerate_ClampsRequestedLifetime(t *testing.T) {
	f := newActivationFixture(t)

	tests := []struct {
		name     string
		hours    int
		expected time.Duration
	}{
		{name: "above ceiling", hours: 10000, expected: 720 * time.Hour},
		{name: "below floor", hours: -5, expected: time.Hour},
		{name: "in range", hours: 48, expected: 48 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := f.addEntry(t, supervisorEntry(tt.name+"@example.com"))

			generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
				WhitelistID:    entry.ID,
				ExpiresInHours: tt.hours,
			})
			require.NoError(t, err)
			require.NotNil(t, generated.ExpiresAt)
			assert.Equal(t, f.now.Add(tt.expected), *generated.ExpiresAt)
		})
	}
}

func TestGenerate_UnknownEntry(t *testing.T) {
	f := newActivationFixture(t)

	_, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: 404})
	assert.ErrorIs(t, err, store.ErrWhitelistNotFound)
}

func TestGenerate_AlreadyActivatedEntry(t *testing.T) {
	f := newActivationFixture(t)
	entry := supervisorEntry("jane@example.com")
	entry.IsActivated = true
	created := f.addEntry(t, entry)

	_, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: created.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGenerate_SecondActiveCodeConflicts(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	_, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: entry.ID})
	require.NoError(t, err)

	_, err = f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: entry.ID})
	assert.ErrorIs(t, err, ErrConflictingActiveCode)
}

func TestGenerate_AuditsRegeneratedWhenPriorCodeExists(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	first, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: entry.ID})
	require.NoError(t, err)

	_, err = f.svc.Revoke(context.Background(), first.ID, "reissue")
	require.NoError(t, err)

	_, err = f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: entry.ID})
	require.NoError(t, err)

	events := f.audit.events()
	assert.Equal(t, models.AuditRegenerated, events[len(events)-1])
}

func TestGenerate_FieldAgentSupervisorChecks(t *testing.T) {
	supervisorID := int64(77)

	tests := []struct {
		name      string
		entry     func() models.WhitelistEntry
		users     map[int64]models.UserProfile
		wantErr   error
		wantsCode bool
	}{
		{
			name: "missing supervisor reference",
			entry: func() models.WhitelistEntry {
				e := supervisorEntry("agent@example.com")
				e.Role = models.RoleFieldAgent
				return e
			},
			wantErr: ErrSupervisorRequired,
		},
		{
			name: "supervisor unknown upstream",
			entry: func() models.WhitelistEntry {
				e := supervisorEntry("agent@example.com")
				e.Role = models.RoleFieldAgent
				e.SupervisorID = &supervisorID
				return e
			},
			wantErr: ErrSupervisorRequired,
		},
		{
			name: "supervisor inactive",
			entry: func() models.WhitelistEntry {
				e := supervisorEntry("agent@example.com")
				e.Role = models.RoleFieldAgent
				e.SupervisorID = &supervisorID
				return e
			},
			users: map[int64]models.UserProfile{
				supervisorID: {ID: supervisorID, Role: models.RoleSupervisor, IsActive: false},
			},
			wantErr: ErrSupervisorRequired,
		},
		{
			name: "supervisor is a field agent",
			entry: func() models.WhitelistEntry {
				e := supervisorEntry("agent@example.com")
				e.Role = models.RoleFieldAgent
				e.SupervisorID = &supervisorID
				return e
			},
			users: map[int64]models.UserProfile{
				supervisorID: {ID: supervisorID, Role: models.RoleFieldAgent, IsActive: true},
			},
			wantErr: ErrSupervisorRequired,
		},
		{
			name: "active supervisor passes",
			entry: func() models.WhitelistEntry {
				e := supervisorEntry("agent@example.com")
				e.Role = models.RoleFieldAgent
				e.SupervisorID = &supervisorID
				return e
			},
			users: map[int64]models.UserProfile{
				supervisorID: {ID: supervisorID, Role: models.RoleSupervisor, IsActive: true},
			},
			wantsCode: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newActivationFixture(t)
			for id, user := range tt.users {
				f.platform.users[id] = user
			}
			entry := f.addEntry(t, tt.entry())

			generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: entry.ID})
			if tt.wantsCode {
				require.NoError(t, err)
				assert.NotEmpty(t, generated.Code)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerate_EmailHandOff(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
		WhitelistID: entry.ID,
		SendEmail:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.platform.sendCalls)
	assert.Equal(t, "jane@example.com", f.platform.lastEmail.Recipient)
	assert.Equal(t, generated.Code, f.platform.lastEmail.Code)

	stored, err := f.codes.GetByID(context.Background(), generated.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EmailDeliveryID)
	assert.Equal(t, "dlv-1", *stored.EmailDeliveryID)

	assert.Equal(t, []models.AuditEvent{models.AuditGenerated, models.AuditEmailSent}, f.audit.events())
}

func TestGenerate_EmailFailureDoesNotFailGeneration(t *testing.T) {
	f := newActivationFixture(t)
	f.platform.sendErr = assert.AnError
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
		WhitelistID: entry.ID,
		SendEmail:   true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Code)
	assert.Nil(t, generated.EmailDeliveryID)

	events := f.audit.events()
	require.Len(t, events, 2)
	assert.Equal(t, models.AuditEmailSent, events[1])
	assert.False(t, f.audit.entries[1].Success)
}

// generateFor returns a redeemable entry and its plaintext code.
func generateFor(t *testing.T, f *activationFixture, identifier string) (models.WhitelistEntry, string) {
	t.Helper()
	entry := f.addEntry(t, supervisorEntry(identifier))
	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{WhitelistID: entry.ID})
	require.NoError(t, err)
	f.audit.entries = nil // focus assertions on redemption events
	return entry, generated.Code
}

func TestRedeem_Success(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	result, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: entry.Identifier,
		Code:       code,
	})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, result.WhitelistID)
	assert.Equal(t, models.RoleSupervisor, result.Role)
	assert.Equal(t, f.now, result.ActivatedAt)

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CodeUsed, stored.Status)

	assert.Equal(t, []models.AuditEvent{models.AuditAttemptedUse, models.AuditSuccessfulUse}, f.audit.events())
}

func TestRedeem_ToleratesFormattingDifferences(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	// lowercased, hyphen dropped, surrounding whitespace
	scrambled := "  " + strings.ToLower(strings.ReplaceAll(code, "-", "")) + " "

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: entry.Identifier,
		Code:       scrambled,
	})
	assert.NoError(t, err)
}

func TestRedeem_UnknownIdentifierIsGeneric(t *testing.T) {
	f := newActivationFixture(t)

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: "nobody@example.com",
		Code:       "ABCDE-FGHJK",
	})
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, f.audit.entries, "no code, nothing to audit")
}

func TestRedeem_WrongCodeSpendsAttempt(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: entry.Identifier,
		Code:       "WRONG-WRONG",
	})
	assert.ErrorIs(t, err, ErrInvalidCode)

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedAttempts)
	assert.Equal(t, models.CodeActive, stored.Status)

	assert.Equal(t, []models.AuditEvent{models.AuditAttemptedUse, models.AuditFailedUse}, f.audit.events())
	assert.Equal(t, 2, f.audit.entries[1].Metadata["attempts_left"])
}

func TestRedeem_LocksWhenBudgetExhausted(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	// budget is 3; spend all attempts
	for i := 0; i < 2; i++ {
		_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
			Identifier: entry.Identifier,
			Code:       "WRONG-WRONG",
		})
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: entry.Identifier,
		Code:       "WRONG-WRONG",
	})
	assert.ErrorIs(t, err, ErrAttemptLimitExceeded)

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CodeLocked, stored.Status)
	assert.Equal(t, 3, stored.FailedAttempts)

	// the right code no longer works, locked is terminal
	_, err = f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: entry.Identifier,
		Code:       code,
	})
	assert.ErrorIs(t, err, ErrAttemptLimitExceeded)

	// the final failed attempt audited both failed_use and locked
	events := f.audit.events()
	assert.Contains(t, events, models.AuditLocked)
	lockedIdx := -1
	for i, e := range events {
		if e == models.AuditLocked {
			lockedIdx = i
		}
	}
	require.Greater(t, lockedIdx, 0)
	assert.Equal(t, models.AuditFailedUse, events[lockedIdx-1])
}

func TestRedeem_ExpiryObservedAtRead(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	// move the clock past the 72h default lifetime
	f.svc.now = func() time.Time { return f.now.Add(73 * time.Hour) }

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{
		Identifier: entry.Identifier,
		Code:       code,
	})
	assert.ErrorIs(t, err, ErrCodeExpired)

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CodeExpired, stored.Status)

	assert.Equal(t, []models.AuditEvent{models.AuditAttemptedUse, models.AuditExpired}, f.audit.events())
}

func TestRedeem_UsedCodeRejected(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{Identifier: entry.Identifier, Code: code})
	require.NoError(t, err)

	_, err = f.svc.Redeem(context.Background(), models.RedeemRequest{Identifier: entry.Identifier, Code: code})
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)
}

func TestRedeem_RevokedCodeRejected(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	_, err = f.svc.Revoke(context.Background(), stored.ID, "compromised")
	require.NoError(t, err)

	_, err = f.svc.Redeem(context.Background(), models.RedeemRequest{Identifier: entry.Identifier, Code: code})
	assert.ErrorIs(t, err, ErrCodeRevoked)
}

func TestRevoke_RequiresReason(t *testing.T) {
	f := newActivationFixture(t)

	_, err := f.svc.Revoke(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRevoke_Success(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)

	revoked, err := f.svc.Revoke(context.Background(), stored.ID, "issued by mistake")
	require.NoError(t, err)
	assert.Equal(t, models.CodeRevoked, revoked.Status)
	assert.Equal(t, "issued by mistake", revoked.RevokeReason)
	require.NotNil(t, revoked.RevokedAt)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditRevoked, f.audit.entries[0].EventType)
	assert.Equal(t, "issued by mistake", f.audit.entries[0].FailureReason)
}

func TestRevoke_UsedCodeConflicts(t *testing.T) {
	f := newActivationFixture(t)
	entry, code := generateFor(t, f, "jane@example.com")

	_, err := f.svc.Redeem(context.Background(), models.RedeemRequest{Identifier: entry.Identifier, Code: code})
	require.NoError(t, err)

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)

	_, err = f.svc.Revoke(context.Background(), stored.ID, "too late")
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)
}

func TestRevoke_ExpiredCodeConflicts(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.NoError(t, f.codes.MarkExpired(context.Background(), stored.ID))

	// every non-active status is terminal: the dead row stays as it is and
	// the rejection carries the status's own error kind
	_, err = f.svc.Revoke(context.Background(), stored.ID, "cleanup")
	assert.ErrorIs(t, err, ErrCodeExpired)

	after, err := f.codes.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CodeExpired, after.Status)
	assert.Nil(t, after.RevokedAt)
}

func TestExtend_RejectsOutOfRangeHours(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	originalExpiry := *stored.ExpiresAt

	for _, hours := range []int{0, 721, -1} {
		_, err = f.svc.Extend(context.Background(), stored.ID, hours)
		assert.ErrorIs(t, err, ErrValidation, "hours=%d", hours)
	}

	// row untouched
	after, err := f.codes.GetByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, originalExpiry, *after.ExpiresAt)
	assert.Empty(t, f.audit.entries)
}

func TestExtend_PushesDeadlineFromStoredExpiry(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	originalExpiry := *stored.ExpiresAt

	result, err := f.svc.Extend(context.Background(), stored.ID, 24)
	require.NoError(t, err)
	assert.Equal(t, originalExpiry.Add(24*time.Hour), result.NewExpiresAt)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditExtended, f.audit.entries[0].EventType)
	assert.Equal(t, 24, f.audit.entries[0].Metadata["additional_hours"])
}

func TestExtend_AcceptedPastUnobservedExpiry(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	originalExpiry := *stored.ExpiresAt

	// deadline passed but the row is still active: nothing observed it
	f.svc.now = func() time.Time { return f.now.Add(100 * time.Hour) }

	result, err := f.svc.Extend(context.Background(), stored.ID, 48)
	require.NoError(t, err)
	assert.Equal(t, originalExpiry.Add(48*time.Hour), result.NewExpiresAt)
}

func TestExtend_ExpiredCodeRejected(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)
	require.NoError(t, f.codes.MarkExpired(context.Background(), stored.ID))

	_, err = f.svc.Extend(context.Background(), stored.ID, 24)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestResendEmail_WithoutPriorDelivery(t *testing.T) {
	f := newActivationFixture(t)
	entry, _ := generateFor(t, f, "jane@example.com")

	stored, err := f.codes.GetLatestByWhitelistID(context.Background(), entry.ID)
	require.NoError(t, err)

	err = f.svc.ResendEmail(context.Background(), "access-1", stored.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.platform.resendCalls)
}

func TestResendEmail_RedeliversByReference(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
		WhitelistID: entry.ID,
		SendEmail:   true,
	})
	require.NoError(t, err)
	f.audit.entries = nil

	err = f.svc.ResendEmail(context.Background(), "access-1", generated.ID, "reminder")
	require.NoError(t, err)

	assert.Equal(t, 1, f.platform.resendCalls)
	assert.Equal(t, "dlv-1", f.platform.lastResendRef)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, models.AuditEmailResent, f.audit.entries[0].EventType)
}

func TestResendEmail_TerminalCodeRejected(t *testing.T) {
	f := newActivationFixture(t)
	entry := f.addEntry(t, supervisorEntry("jane@example.com"))

	generated, err := f.svc.Generate(context.Background(), "access-1", models.GenerateCodeRequest{
		WhitelistID: entry.ID,
		SendEmail:   true,
	})
	require.NoError(t, err)

	_, err = f.svc.Revoke(context.Background(), generated.ID, "cancelled")
	require.NoError(t, err)

	err = f.svc.ResendEmail(context.Background(), "access-1", generated.ID, "")
	assert.ErrorIs(t, err, ErrCodeRevoked)
}
