package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
)

// listAuditTrail serves the read side of the audit trail. Filters arrive as
// query parameters: code_id, event_type, since, until (RFC 3339) and limit.
func (h *Handler) listAuditTrail(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilterFromQuery(r)
	if err != nil {
		utils.WriteError(w, "validation_error", err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.services.Audit.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, entries, http.StatusOK) //nolint:errcheck
}

func auditFilterFromQuery(r *http.Request) (models.AuditFilter, error) {
	var filter models.AuditFilter
	query := r.URL.Query()

	if raw := query.Get("code_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return models.AuditFilter{}, errBadQueryParam("code_id")
		}
		filter.CodeID = id
	}

	if raw := query.Get("event_type"); raw != "" {
		filter.EventType = models.AuditEvent(raw)
	}

	if raw := query.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("since")
		}
		filter.Since = since
	}

	if raw := query.Get("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.AuditFilter{}, errBadQueryParam("until")
		}
		filter.Until = until
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return models.AuditFilter{}, errBadQueryParam("limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}

type badQueryParamError struct {
	param string
}

func errBadQueryParam(param string) error {
	return badQueryParamError{param: param}
}

func (e badQueryParamError) Error() string {
	return "invalid query parameter: " + e.param
}
