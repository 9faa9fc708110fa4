package models

import "time"

// IdentifierType discriminates the kind of identifier a whitelist entry
// pre-authorises.
type IdentifierType string

const (
	IdentifierEmail IdentifierType = "email"
	IdentifierPhone IdentifierType = "phone"
)

// Valid reports whether the identifier type is known.
func (t IdentifierType) Valid() bool {
	return t == IdentifierEmail || t == IdentifierPhone
}

// WhitelistEntry is a pre-authorisation record: it permits a specific
// identifier to register under a specific role once its linked activation
// code is redeemed.
//
// Invariant: a field_agent entry must carry a supervisor id; entries of any
// other role must not. The invariant is enforced both when the entry is
// created and when a code is generated for it.
type WhitelistEntry struct {
	ID int64 `json:"id"`

	// Identifier is the email address or phone number being pre-authorised.
	// Stored and transmitted unmasked; masking is a display-only transform.
	Identifier     string         `json:"identifier"`
	IdentifierType IdentifierType `json:"identifier_type"`

	FullName string `json:"full_name"`

	// Role the registrant will receive on activation.
	Role Role `json:"role"`

	// SupervisorID references an active admin or supervisor user on the
	// platform. Required when Role is field_agent, forbidden otherwise.
	SupervisorID *int64 `json:"supervisor_id,omitempty"`

	// IsActivated transitions to true exactly once, when the linked code is
	// successfully redeemed.
	IsActivated bool `json:"is_activated"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the WhitelistEntry model.
func (e WhitelistEntry) TableName() string {
	return "whitelist_entries"
}
