package service

import (
	"context"
	"errors"
	"time"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/models"
)

// In-memory fakes implementing the repository and adapter interfaces the
// services depend on.

type fakeWhitelist struct {
	entries   map[int64]models.WhitelistEntry
	nextID    int64
	createErr error
}

func newFakeWhitelist() *fakeWhitelist {
	return &fakeWhitelist{entries: make(map[int64]models.WhitelistEntry), nextID: 1}
}

func (f *fakeWhitelist) Create(ctx context.Context, entry models.WhitelistEntry) (models.WhitelistEntry, error) {
	if f.createErr != nil {
		return models.WhitelistEntry{}, f.createErr
	}
	for _, existing := range f.entries {
		if existing.Identifier == entry.Identifier {
			return models.WhitelistEntry{}, store.ErrIdentifierAlreadyExists
		}
	}
	entry.ID = f.nextID
	f.nextID++
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	f.entries[entry.ID] = entry
	return entry, nil
}

func (f *fakeWhitelist) GetByID(ctx context.Context, id int64) (models.WhitelistEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return models.WhitelistEntry{}, store.ErrWhitelistNotFound
	}
	return entry, nil
}

func (f *fakeWhitelist) GetByIdentifier(ctx context.Context, identifier string) (models.WhitelistEntry, error) {
	for _, entry := range f.entries {
		if entry.Identifier == identifier {
			return entry, nil
		}
	}
	return models.WhitelistEntry{}, store.ErrWhitelistNotFound
}

func (f *fakeWhitelist) List(ctx context.Context) ([]models.WhitelistEntry, error) {
	var out []models.WhitelistEntry
	for _, entry := range f.entries {
		out = append(out, entry)
	}
	return out, nil
}

type fakeCodes struct {
	codes  map[int64]models.ActivationCode
	nextID int64
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{codes: make(map[int64]models.ActivationCode), nextID: 1}
}

func (f *fakeCodes) Create(ctx context.Context, code models.ActivationCode) (models.ActivationCode, error) {
	for _, existing := range f.codes {
		if existing.WhitelistID == code.WhitelistID && existing.Status == models.CodeActive {
			return models.ActivationCode{}, store.ErrActiveCodeExists
		}
	}
	code.ID = f.nextID
	f.nextID++
	code.CreatedAt = time.Now()
	code.UpdatedAt = code.CreatedAt
	f.codes[code.ID] = code
	return code, nil
}

func (f *fakeCodes) GetByID(ctx context.Context, id int64) (models.ActivationCode, error) {
	code, ok := f.codes[id]
	if !ok {
		return models.ActivationCode{}, store.ErrCodeNotFound
	}
	return code, nil
}

func (f *fakeCodes) GetActiveByWhitelistID(ctx context.Context, whitelistID int64) (models.ActivationCode, error) {
	for _, code := range f.codes {
		if code.WhitelistID == whitelistID && code.Status == models.CodeActive {
			return code, nil
		}
	}
	return models.ActivationCode{}, store.ErrCodeNotFound
}

func (f *fakeCodes) GetLatestByWhitelistID(ctx context.Context, whitelistID int64) (models.ActivationCode, error) {
	var latest models.ActivationCode
	found := false
	for _, code := range f.codes {
		if code.WhitelistID == whitelistID && (!found || code.ID > latest.ID) {
			latest = code
			found = true
		}
	}
	if !found {
		return models.ActivationCode{}, store.ErrCodeNotFound
	}
	return latest, nil
}

func (f *fakeCodes) RedeemSuccess(ctx context.Context, codeID, whitelistID int64, usedAt time.Time) error {
	code, ok := f.codes[codeID]
	if !ok || code.Status != models.CodeActive {
		return store.ErrCodeNotActive
	}
	code.Status = models.CodeUsed
	code.UsedAt = &usedAt
	f.codes[codeID] = code
	return nil
}

func (f *fakeCodes) RecordFailedAttempt(ctx context.Context, id int64) (models.ActivationCode, error) {
	code, ok := f.codes[id]
	if !ok || code.Status != models.CodeActive {
		return models.ActivationCode{}, store.ErrCodeNotActive
	}
	code.FailedAttempts++
	if code.FailedAttempts >= code.MaxAttempts {
		code.Status = models.CodeLocked
	}
	f.codes[id] = code
	return code, nil
}

func (f *fakeCodes) Revoke(ctx context.Context, id int64, reason string, revokedAt time.Time) (models.ActivationCode, error) {
	code, ok := f.codes[id]
	if !ok || code.Status != models.CodeActive {
		return models.ActivationCode{}, store.ErrCodeNotActive
	}
	code.Status = models.CodeRevoked
	code.RevokedAt = &revokedAt
	code.RevokeReason = reason
	f.codes[id] = code
	return code, nil
}

func (f *fakeCodes) MarkExpired(ctx context.Context, id int64) error {
	code, ok := f.codes[id]
	if !ok || code.Status != models.CodeActive {
		return store.ErrCodeNotActive
	}
	code.Status = models.CodeExpired
	f.codes[id] = code
	return nil
}

func (f *fakeCodes) ExtendExpiry(ctx context.Context, id int64, expiresAt time.Time) (models.ActivationCode, error) {
	code, ok := f.codes[id]
	if !ok || code.Status != models.CodeActive {
		return models.ActivationCode{}, store.ErrCodeNotActive
	}
	code.ExpiresAt = &expiresAt
	f.codes[id] = code
	return code, nil
}

func (f *fakeCodes) SetEmailDelivery(ctx context.Context, id int64, deliveryID string) error {
	code, ok := f.codes[id]
	if !ok {
		return store.ErrCodeNotFound
	}
	code.EmailDeliveryID = &deliveryID
	f.codes[id] = code
	return nil
}

func (f *fakeCodes) ExpireOverdue(ctx context.Context, now time.Time) ([]int64, error) {
	var ids []int64
	for id, code := range f.codes {
		if code.Status == models.CodeActive && code.ExpiredAt(now) {
			code.Status = models.CodeExpired
			f.codes[id] = code
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeAudit struct {
	entries []models.AuditLogEntry
}

func (f *fakeAudit) Append(ctx context.Context, entry models.AuditLogEntry) (models.AuditLogEntry, error) {
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeAudit) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLogEntry, error) {
	return f.entries, nil
}

func (f *fakeAudit) events() []models.AuditEvent {
	out := make([]models.AuditEvent, 0, len(f.entries))
	for _, entry := range f.entries {
		out = append(out, entry.EventType)
	}
	return out
}

// fakePlatform implements adapter.PlatformAdapter for the directory and
// notifier surfaces the services touch.
type fakePlatform struct {
	users map[int64]models.UserProfile

	sendCalls     int
	sendErr       error
	resendCalls   int
	resendErr     error
	lastEmail     adapter.ActivationEmail
	lastResendRef string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{users: make(map[int64]models.UserProfile)}
}

func (f *fakePlatform) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	return models.TokenPair{}, errors.New("not implemented")
}

func (f *fakePlatform) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	return models.TokenPair{}, errors.New("not implemented")
}

func (f *fakePlatform) Logout(ctx context.Context, accessToken string) error { return nil }

func (f *fakePlatform) Me(ctx context.Context, accessToken string) (models.UserProfile, error) {
	return models.UserProfile{}, errors.New("not implemented")
}

func (f *fakePlatform) GetUser(ctx context.Context, accessToken string, id int64) (models.UserProfile, error) {
	profile, ok := f.users[id]
	if !ok {
		return models.UserProfile{}, adapter.ErrNotFound
	}
	return profile, nil
}

func (f *fakePlatform) SendActivationEmail(ctx context.Context, accessToken string, email adapter.ActivationEmail) (string, error) {
	f.sendCalls++
	f.lastEmail = email
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "dlv-1", nil
}

func (f *fakePlatform) ResendActivationEmail(ctx context.Context, accessToken, deliveryID, customMessage string) (string, error) {
	f.resendCalls++
	f.lastResendRef = deliveryID
	if f.resendErr != nil {
		return "", f.resendErr
	}
	return deliveryID, nil
}
