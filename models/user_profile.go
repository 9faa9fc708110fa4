package models

import "time"

// Role is the platform-wide role assigned to a console user.
type Role string

// Roles recognised by the survey platform. Supervisors and admins may be
// referenced as supervisors of field agents; field agents may not.
const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleFieldAgent Role = "field_agent"
)

// CanSupervise reports whether a user holding this role may be assigned as
// the supervisor of a field-agent whitelist entry.
func (r Role) CanSupervise() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// Valid reports whether the role is one of the known platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleFieldAgent:
		return true
	}
	return false
}

// UserProfile is the authenticated user's profile as returned by the
// upstream platform. It holds no secret material: tokens are custodied
// separately and never travel inside this structure.
type UserProfile struct {
	// ID is the platform-assigned user identifier.
	ID int64 `json:"id"`

	// Email is the user's login identifier.
	Email string `json:"email"`

	// FirstName and LastName are display attributes.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Role determines which console screens and operations are available.
	Role Role `json:"role"`

	// Phone is the optional contact phone number.
	Phone string `json:"phone,omitempty"`

	// AvatarURL references the user's avatar; may be empty.
	AvatarURL string `json:"avatar_url,omitempty"`

	// IsActive reports whether the account is enabled on the platform.
	// Inactive users cannot authenticate and cannot act as supervisors.
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
