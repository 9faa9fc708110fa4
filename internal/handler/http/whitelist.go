package http

import (
	"encoding/json"
	"net/http"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
)

func (h *Handler) createWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.CreateWhitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	pair, _ := tokenPairFromContext(ctx)

	entry, err := h.services.Whitelist.Create(ctx, pair.AccessToken, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, entry, http.StatusCreated) //nolint:errcheck
}

func (h *Handler) getWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "whitelistID")
	if !ok {
		return
	}

	entry, err := h.services.Whitelist.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, entry, http.StatusOK) //nolint:errcheck
}

func (h *Handler) listWhitelistEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.services.Whitelist.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, entries, http.StatusOK) //nolint:errcheck
}
