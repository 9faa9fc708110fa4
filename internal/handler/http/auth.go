// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/session"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
)

// login exchanges console credentials for a session. On success both cookies
// are written and only the profile travels back to the browser; tokens never
// appear in a response body.
//
// Rejected credentials and unknown accounts produce the same generic 401, so
// the endpoint is not an account oracle.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, "validation_error", "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.WriteError(w, "validation_error", "email and password are required", http.StatusBadRequest)
		return
	}

	pair, err := h.platform.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, adapter.ErrUnauthorized), errors.Is(err, adapter.ErrBadRequest):
			log.Info().Msg("login rejected")
			utils.WriteError(w, "invalid_credentials", "invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, adapter.ErrUpstreamUnavailable):
			log.Err(err).Msg("identity endpoint unreachable")
			utils.WriteError(w, "upstream_unavailable", "the platform backend is unreachable", http.StatusServiceUnavailable)
		default:
			log.Err(err).Msg("unexpected error during login")
			utils.WriteError(w, "internal_error", http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.sessions.Issue(w, pair)

	profile, err := h.hydrator.Hydrate(ctx, pair.AccessToken)
	if err != nil {
		// The session is established; the profile fetch can be retried by
		// the console on the next navigation.
		log.Err(err).Msg("profile hydration after login failed")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK) //nolint:errcheck
}

// logout invalidates the session upstream on a best-effort basis and always
// clears both cookies.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if pair, err := h.sessions.Read(r); err == nil {
		if pair.AccessToken != "" {
			if err = h.platform.Logout(ctx, pair.AccessToken); err != nil {
				log.Err(err).Msg("upstream logout failed, clearing cookies anyway")
			}
			h.hydrator.Invalidate(pair.AccessToken)
		}
	}

	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// refresh rotates the session cookies using the refresh credential. A
// rejected refresh token ends the session: cookies are cleared and the
// console is told to go through login again.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pair, err := h.sessions.Read(r)
	if err != nil {
		utils.WriteError(w, "session_expired", "session has expired", http.StatusUnauthorized)
		return
	}

	rotated, err := h.coordinator.Refresh(ctx, pair)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionExpired):
			h.sessions.Clear(w)
			utils.WriteError(w, "session_expired", "session has expired", http.StatusUnauthorized)
		case errors.Is(err, adapter.ErrUpstreamUnavailable):
			log.Err(err).Msg("refresh endpoint unreachable")
			utils.WriteError(w, "upstream_unavailable", "the platform backend is unreachable", http.StatusServiceUnavailable)
		default:
			log.Err(err).Msg("unexpected error during refresh")
			utils.WriteError(w, "internal_error", http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.hydrator.Invalidate(pair.AccessToken)
	h.sessions.Issue(w, rotated)
	w.WriteHeader(http.StatusNoContent)
}

// me returns the hydrated profile the route guard resolved for this request.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	profile, ok := utils.GetProfileFromContext(r.Context())
	if !ok {
		utils.WriteError(w, "unauthorized", "authentication required", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, profile, http.StatusOK) //nolint:errcheck
}

// loginGate handles navigation to the login path itself: an already
// authenticated visitor is bounced to the landing path before the console
// fetches anything.
func (h *Handler) loginGate(w http.ResponseWriter, r *http.Request) {
	pair, err := h.sessions.Read(r)
	if err == nil {
		if _, err = h.hydrator.Hydrate(r.Context(), pair.AccessToken); err == nil {
			http.Redirect(w, r, h.cfg.Session.LandingPath, http.StatusFound)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
