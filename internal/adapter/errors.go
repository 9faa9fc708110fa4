package adapter

import "errors"

// Sentinel errors mapped from upstream responses. Callers match them with
// [errors.Is]; the raw status text travels in the wrapping message only.
var (
	ErrBadRequest          = errors.New("upstream rejected request")
	ErrUnauthorized        = errors.New("upstream unauthorized")
	ErrForbidden           = errors.New("upstream forbidden")
	ErrNotFound            = errors.New("upstream resource not found")
	ErrConflict            = errors.New("upstream conflict")
	ErrInternalServerError = errors.New("upstream internal error")

	// ErrUpstreamUnavailable marks network-level failures: timeouts,
	// refused connections, bad gateways. It is deliberately distinct from
	// ErrUnauthorized so that an unreachable platform never destroys a
	// session.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
