// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, identifier
// masking, activation-code generation, HTTP response writing, and JWT
// token introspection.
package utils

import (
	"context"

	"github.com/fieldscope/survey-console/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// ProfileCtxKey is the key used to store the hydrated user profile in the
// request context. Set by the route guard after hydration succeeds; typed
// retrieval goes through GetProfileFromContext.
var ProfileCtxKey = contextKey("userProfile")

// RequesterIPCtxKey is the key used to store the originating client IP in
// the context, for audit trail attribution.
var RequesterIPCtxKey = contextKey("requesterIP")

// GetProfileFromContext retrieves the authenticated user's profile from the
// context.
//
// Returns the profile and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
func GetProfileFromContext(ctx context.Context) (models.UserProfile, bool) {
	profile, ok := ctx.Value(ProfileCtxKey).(models.UserProfile)
	return profile, ok
}

// GetRequesterIPFromContext retrieves the originating client IP from the
// context, or an empty string if none was recorded.
func GetRequesterIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(RequesterIPCtxKey).(string)
	return ip
}
