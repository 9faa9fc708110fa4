package models

import "time"

// TokenPair is the session artifact: the access/refresh credential pair
// issued by the upstream identity endpoint. The pair is owned exclusively by
// the session custodian and is transported to the browser only as HTTP-only
// cookies — it must never be serialised into a response body or any storage
// reachable by page scripts.
type TokenPair struct {
	// AccessToken is the short-lived bearer credential attached to every
	// upstream request.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential exchanged for a new pair.
	// The upstream rotates it on use: a stale refresh token is rejected.
	RefreshToken string `json:"refresh_token"`

	// AccessExpiresAt is when the access credential stops being accepted.
	// Zero means the expiry could not be determined from the token itself
	// and the configured default lifetime applies.
	AccessExpiresAt time.Time `json:"-"`
}

// HasRefresh reports whether a refresh credential is available. Without one
// a 401 from the upstream is fatal to the session.
func (p TokenPair) HasRefresh() bool {
	return p.RefreshToken != ""
}
