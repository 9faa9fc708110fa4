package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
	"github.com/go-chi/chi/v5"
)

// generateCode issues a new activation code for a whitelist entry. The
// response carries the plaintext exactly once; it is never retrievable
// afterwards.
func (h *Handler) generateCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.GenerateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	pair, _ := tokenPairFromContext(ctx)

	generated, err := h.services.Activation.Generate(ctx, pair.AccessToken, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, generated, http.StatusCreated) //nolint:errcheck
}

// redeem is the public redemption endpoint. Every failure mode the
// registrant can distinguish is deliberate: unknown identifiers and wrong
// codes collapse into one generic rejection.
func (h *Handler) redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.Activation.Redeem(ctx, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, result, http.StatusOK) //nolint:errcheck
}

func (h *Handler) getCode(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "codeID")
	if !ok {
		return
	}

	code, err := h.services.Activation.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, code, http.StatusOK) //nolint:errcheck
}

func (h *Handler) revokeCode(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := pathID(w, r, "codeID")
	if !ok {
		return
	}

	var req models.RevokeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	code, err := h.services.Activation.Revoke(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, code, http.StatusOK) //nolint:errcheck
}

func (h *Handler) extendCode(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	id, ok := pathID(w, r, "codeID")
	if !ok {
		return
	}

	var req models.ExtendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	result, err := h.services.Activation.Extend(r.Context(), id, req.AdditionalHours)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	utils.WriteJSON(w, result, http.StatusOK) //nolint:errcheck
}

func (h *Handler) resendCodeEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	id, ok := pathID(w, r, "codeID")
	if !ok {
		return
	}

	var req models.ResendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	pair, _ := tokenPairFromContext(ctx)

	if err := h.services.Activation.ResendEmail(ctx, pair.AccessToken, id, req.CustomMessage); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a numeric chi URL parameter, answering 400 itself when the
// value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, "validation_error", "invalid id in path", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
