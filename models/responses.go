package models

import "time"

// GeneratedCode is the one-time generate response. Code carries the
// plaintext exactly once; no other operation can ever reconstruct it.
type GeneratedCode struct {
	ActivationCode

	// Code is the plaintext presented to the operator immediately after
	// generation and then discarded by the manager.
	Code string `json:"code"`

	// MaskedIdentifier is the display form of the owning entry's identifier
	// (jo***@domain.com, ***1234). The raw identifier is never echoed here.
	MaskedIdentifier string `json:"masked_identifier"`
}

// RedeemResult reports a successful redemption.
type RedeemResult struct {
	WhitelistID int64     `json:"whitelist_id"`
	Role        Role      `json:"role"`
	ActivatedAt time.Time `json:"activated_at"`
}

// ExtendResult reports the expiry deadline after a successful extension.
type ExtendResult struct {
	NewExpiresAt time.Time `json:"new_expires_at"`
}

// ErrorResponse is the uniform JSON error body returned by the gateway.
// Code is a stable machine-readable kind; Message is operator-facing and —
// for authentication failures — deliberately generic.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
