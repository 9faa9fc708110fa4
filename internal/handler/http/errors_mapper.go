package http

import (
	"errors"
	"net/http"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/service"
	"github.com/fieldscope/survey-console/internal/store"
	"github.com/fieldscope/survey-console/internal/utils"
)

// errorKinds maps domain sentinels to a status code and a stable
// machine-readable kind, in matching order. First match wins, so specific
// sentinels come before broad ones.
var errorKinds = []struct {
	target error
	status int
	kind   string
}{
	{service.ErrValidation, http.StatusBadRequest, "validation_error"},
	{service.ErrInvalidCode, http.StatusBadRequest, "invalid_code"},
	{service.ErrSupervisorRequired, http.StatusUnprocessableEntity, "supervisor_required"},
	{service.ErrConflictingActiveCode, http.StatusConflict, "conflicting_active_code"},
	{service.ErrCodeExpired, http.StatusGone, "code_expired"},
	{service.ErrCodeRevoked, http.StatusGone, "code_revoked"},
	{service.ErrCodeAlreadyUsed, http.StatusGone, "code_already_used"},
	{service.ErrAttemptLimitExceeded, http.StatusLocked, "attempt_limit_exceeded"},

	{store.ErrWhitelistNotFound, http.StatusNotFound, "whitelist_entry_not_found"},
	{store.ErrCodeNotFound, http.StatusNotFound, "code_not_found"},
	{store.ErrIdentifierAlreadyExists, http.StatusConflict, "identifier_exists"},
	{store.ErrActiveCodeExists, http.StatusConflict, "conflicting_active_code"},
	{store.ErrAlreadyActivated, http.StatusConflict, "already_activated"},
	{store.ErrCodeNotActive, http.StatusConflict, "code_not_active"},

	{adapter.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "upstream_unavailable"},
	{adapter.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{adapter.ErrForbidden, http.StatusForbidden, "forbidden"},
	{adapter.ErrNotFound, http.StatusNotFound, "not_found"},
}

func classifyError(err error) (int, string) {
	for _, candidate := range errorKinds {
		if errors.Is(err, candidate.target) {
			return candidate.status, candidate.kind
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeDomainError converts a service/store/adapter error into the uniform
// JSON error body. Unclassified errors are logged and hidden behind a
// generic 500 message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	status, kind := classifyError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Err(err).Msg("unexpected error")
		utils.WriteError(w, kind, http.StatusText(status), status)
		return
	}

	log.Debug().Err(err).Msg("request rejected")
	utils.WriteError(w, kind, err.Error(), status)
}
