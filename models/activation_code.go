package models

import "time"

// CodeStatus is the lifecycle state of an activation code.
type CodeStatus string

// Lifecycle states. Active is the only non-terminal state: once a code
// leaves it (used, expired, revoked or locked) it never returns — a locked
// or lost code is replaced by generating a new one.
const (
	CodeActive  CodeStatus = "active"
	CodeUsed    CodeStatus = "used"
	CodeExpired CodeStatus = "expired"
	CodeRevoked CodeStatus = "revoked"
	CodeLocked  CodeStatus = "locked"
)

// Terminal reports whether the status admits no further transitions.
func (s CodeStatus) Terminal() bool {
	return s != CodeActive
}

// ActivationCode is the security-sensitive invitation entity. The plaintext
// code exists only in the generate response; the row stores a one-way hash
// and the plaintext is never persisted or reconstructible afterwards.
//
// At most one active code may exist per whitelist entry at any time.
// Rows are never deleted; terminal codes are retained for audit.
type ActivationCode struct {
	ID int64 `json:"id"`

	// WhitelistID is the owning pre-authorisation record.
	WhitelistID int64 `json:"whitelist_id"`

	// CodeHash is the bcrypt hash of the plaintext code.
	// Never exposed via JSON.
	CodeHash string `json:"-"`

	Status CodeStatus `json:"status"`

	// ExpiresAt is the expiry deadline; nil means the code never expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	UsedAt       *time.Time `json:"used_at,omitempty"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	RevokeReason string     `json:"revoke_reason,omitempty"`

	// FailedAttempts counts consecutive failed redemptions. It never
	// exceeds MaxAttempts; reaching the budget locks the code.
	FailedAttempts int `json:"failed_attempts"`
	MaxAttempts    int `json:"max_attempts"`

	// EmailDeliveryID references the notification-service delivery created
	// when the plaintext was handed off at generation time. It is the only
	// link to the one-time presentation: resending redelivers by this
	// reference, the manager never re-reads the plaintext. Nil when the
	// code was generated without an email send.
	EmailDeliveryID *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpiredAt reports whether the code's deadline has passed at the given
// instant. Codes without a deadline never expire.
func (c ActivationCode) ExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// AttemptsLeft returns the remaining redemption attempts.
func (c ActivationCode) AttemptsLeft() int {
	if left := c.MaxAttempts - c.FailedAttempts; left > 0 {
		return left
	}
	return 0
}

// TableName returns the name of the database table
// associated with the ActivationCode model.
func (c ActivationCode) TableName() string {
	return "activation_codes"
}
