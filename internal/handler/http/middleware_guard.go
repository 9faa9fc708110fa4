// SPDX-License-Identifier: Apache-2.0

package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fieldscope/survey-console/internal/adapter"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/session"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
)

// guard is the route guard for the protected console surface.
//
// For each request it resolves the session cookies to a user profile before
// the handler runs:
//   - no session cookies → unauthorized (browser navigation gets a 302 to
//     the login path, API calls get a 401 JSON body);
//   - hydration rejected upstream (stale access token) → exactly one
//     coalesced refresh, then one re-hydration with the rotated pair;
//   - refresh exhausted → cookies cleared, unauthorized;
//   - upstream unreachable or hydration timed out → fail closed: cookies
//     cleared, 503 for API calls, login redirect for navigations.
//
// On success the profile and the (possibly rotated) token pair are stored in
// the request context.
func (h *Handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		pair, err := h.sessions.Read(r)
		if err != nil {
			h.unauthorized(w, r)
			return
		}

		profile, err := h.hydrator.Hydrate(r.Context(), pair.AccessToken)
		if errors.Is(err, adapter.ErrUnauthorized) || errors.Is(err, session.ErrNoSession) {
			pair, err = h.rotateSession(w, r, pair)
			if err == nil {
				profile, err = h.hydrator.Hydrate(r.Context(), pair.AccessToken)
			}
		}

		if err != nil {
			switch {
			case errors.Is(err, session.ErrSessionExpired):
				h.sessions.Clear(w)
				h.unauthorized(w, r)
			case errors.Is(err, adapter.ErrUpstreamUnavailable),
				errors.Is(err, context.DeadlineExceeded):
				log.Err(err).Msg("profile hydration failed, failing closed")
				h.sessions.Clear(w)
				h.unavailable(w, r)
			default:
				log.Err(err).Msg("session rejected")
				h.sessions.Clear(w)
				h.unauthorized(w, r)
			}
			return
		}

		ctx := context.WithValue(r.Context(), utils.ProfileCtxKey, profile)
		ctx = context.WithValue(ctx, sessionCtxKey, pair)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rotateSession performs the single refresh-and-reissue a guard pass is
// allowed. Concurrent requests holding the same refresh token coalesce inside
// the coordinator, so only one upstream exchange happens.
func (h *Handler) rotateSession(w http.ResponseWriter, r *http.Request, pair models.TokenPair) (models.TokenPair, error) {
	rotated, err := h.coordinator.Refresh(r.Context(), pair)
	if err != nil {
		return models.TokenPair{}, err
	}

	h.hydrator.Invalidate(pair.AccessToken)
	h.sessions.Issue(w, rotated)

	return rotated, nil
}

// unauthorized ends the request for a caller with no usable session.
func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	if isBrowserNavigation(r) {
		http.Redirect(w, r, h.cfg.Session.LoginPath, http.StatusFound)
		return
	}
	utils.WriteError(w, "unauthorized", "authentication required", http.StatusUnauthorized)
}

// unavailable ends the request when the session could not be verified
// because the upstream did not answer in time.
func (h *Handler) unavailable(w http.ResponseWriter, r *http.Request) {
	if isBrowserNavigation(r) {
		http.Redirect(w, r, h.cfg.Session.LoginPath, http.StatusFound)
		return
	}
	utils.WriteError(w, "upstream_unavailable", "the platform backend is unreachable", http.StatusServiceUnavailable)
}

// isBrowserNavigation distinguishes a page load from a fetch call: only GET
// requests that prefer an HTML response are treated as navigations.
func isBrowserNavigation(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
