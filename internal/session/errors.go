package session

import "errors"

var (
	// ErrNoSession is returned when the request carries no session cookies
	// at all.
	ErrNoSession = errors.New("no session credentials present")

	// ErrSessionExpired is returned when the refresh path is exhausted: the
	// refresh token is missing, stale, or rejected. The only recovery is a
	// new login.
	ErrSessionExpired = errors.New("session expired")
)
