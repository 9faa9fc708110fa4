package service

import "errors"

// Operation errors surfaced to the transport layer. Handlers map each to a
// status code and a stable machine-readable kind; the messages themselves
// stay internal.
var (
	// ErrValidation marks a request that fails an input rule: out-of-range
	// hours, missing reason, malformed identifier, resend without delivery.
	ErrValidation = errors.New("validation failed")

	// ErrConflictingActiveCode is returned by Generate when the entry
	// already holds an active code. The operator revokes it first.
	ErrConflictingActiveCode = errors.New("entry already has an active code")

	// ErrSupervisorRequired is returned when a field-agent entry carries no
	// supervisor reference, or the reference does not resolve upstream to
	// an active supervising user.
	ErrSupervisorRequired = errors.New("a valid supervisor is required for field agents")

	// ErrInvalidCode is the deliberately generic redemption failure: the
	// identifier is unknown, has no code, or the code does not match. The
	// registrant learns nothing about which.
	ErrInvalidCode = errors.New("invalid identifier or activation code")

	// ErrCodeExpired rejects operations on a code past its deadline.
	ErrCodeExpired = errors.New("activation code has expired")

	// ErrCodeRevoked rejects operations on a revoked code.
	ErrCodeRevoked = errors.New("activation code was revoked")

	// ErrCodeAlreadyUsed rejects operations on a redeemed code.
	ErrCodeAlreadyUsed = errors.New("activation code was already used")

	// ErrAttemptLimitExceeded rejects redemption of a locked code.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded, code is locked")
)
