package models

import "time"

// AuditEvent is the lifecycle event recorded by an audit log entry.
type AuditEvent string

// Lifecycle events appended by the activation-code manager. The set is
// closed: every state transition and delivery action maps to exactly one of
// these values.
const (
	AuditGenerated     AuditEvent = "generated"
	AuditRegenerated   AuditEvent = "regenerated"
	AuditAttemptedUse  AuditEvent = "attempted_use"
	AuditSuccessfulUse AuditEvent = "successful_use"
	AuditFailedUse     AuditEvent = "failed_use"
	AuditRevoked       AuditEvent = "revoked"
	AuditExtended      AuditEvent = "extended"
	AuditEmailSent     AuditEvent = "email_sent"
	AuditEmailResent   AuditEvent = "email_resent"
	AuditExpired       AuditEvent = "expired"
	AuditLocked        AuditEvent = "locked"
)

// AuditLogEntry is an immutable record of one activation-code lifecycle
// event. Entries are append-only: nothing in the application mutates or
// deletes them after insertion.
type AuditLogEntry struct {
	// ID is a generated UUID; audit rows have no natural key.
	ID string `json:"id"`

	// CodeID is the activation code the event belongs to.
	CodeID int64 `json:"activation_code_id"`

	EventType AuditEvent `json:"event_type"`

	// Success distinguishes e.g. successful_use from failed_use queries
	// without string-matching event types.
	Success bool `json:"success"`

	// RequesterIP is the address the triggering request originated from,
	// when known.
	RequesterIP string `json:"requester_ip,omitempty"`

	// FailureReason carries the operator-facing reason for failed or
	// destructive events (failed_use, revoked, locked).
	FailureReason string `json:"failure_reason,omitempty"`

	// Metadata is free-form event context (e.g. extension hours, delivery
	// id). Stored as JSONB.
	Metadata map[string]any `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the AuditLogEntry model.
func (e AuditLogEntry) TableName() string {
	return "activation_audit_log"
}

// AuditFilter narrows an audit trail listing. Zero fields are ignored.
type AuditFilter struct {
	// CodeID limits entries to one activation code.
	CodeID int64

	// EventType limits entries to one event kind.
	EventType AuditEvent

	// Since / Until bound the creation timestamp (inclusive lower bound,
	// exclusive upper bound).
	Since time.Time
	Until time.Time

	// Limit caps the number of returned entries; repositories apply their
	// own default when zero.
	Limit int
}
