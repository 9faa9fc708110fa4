package models

// LoginRequest carries the console login form. The password travels only
// from the browser to the gateway and from the gateway to the upstream
// identity endpoint; it is never logged or stored.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GenerateCodeRequest asks the lifecycle manager to issue a new activation
// code for a whitelist entry.
type GenerateCodeRequest struct {
	WhitelistID int64 `json:"whitelist_id"`

	// ExpiresInHours is clamped to [1,720]; zero selects the configured
	// default lifetime.
	ExpiresInHours int `json:"expires_in_hours,omitempty"`

	// SendEmail hands the plaintext to the notification service exactly
	// once, at generation time.
	SendEmail     bool   `json:"send_email,omitempty"`
	EmailTemplate string `json:"email_template,omitempty"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// RedeemRequest carries a redemption attempt: the pre-authorised identifier
// plus the plaintext code the registrant received.
type RedeemRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

// RevokeCodeRequest invalidates an activation code. Reason is mandatory and
// is surfaced verbatim to operators in the audit trail.
type RevokeCodeRequest struct {
	Reason string `json:"reason"`
}

// ExtendCodeRequest pushes a code's expiry forward by AdditionalHours,
// which must lie in [1,720].
type ExtendCodeRequest struct {
	AdditionalHours int `json:"additional_hours"`
}

// ResendEmailRequest triggers a redelivery of the code's original one-time
// presentation through the notification service.
type ResendEmailRequest struct {
	CustomMessage string `json:"custom_message,omitempty"`
}

// CreateWhitelistRequest registers a new pre-authorisation entry.
type CreateWhitelistRequest struct {
	Identifier     string         `json:"identifier"`
	IdentifierType IdentifierType `json:"identifier_type"`
	FullName       string         `json:"full_name"`
	Role           Role           `json:"role"`
	SupervisorID   *int64         `json:"supervisor_id,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}
