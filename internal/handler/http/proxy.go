// SPDX-License-Identifier: Apache-2.0

package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/session"
	"github.com/fieldscope/survey-console/internal/utils"
)

// platformPrefix is stripped from proxied paths: /api/platform/surveys/7
// reaches the upstream as /surveys/7.
const platformPrefix = "/api/platform"

// maxProxyBodySize bounds the buffered request body. Buffering is required
// because a 401 response triggers a refresh-and-replay of the same body.
const maxProxyBodySize = 10 << 20

// hopHeaders are connection-level headers that must not be forwarded in
// either direction.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// proxyPlatform forwards a console API call to the upstream platform with
// the session's bearer credential attached.
//
// This is the request interceptor of the gateway: a 401 answer triggers at
// most one coalesced refresh followed by one replay with the rotated pair.
// A 403 passes through untouched; permission problems are not session
// problems. Unreachable upstreams surface as 503, never as an
// authentication failure.
func (h *Handler) proxyPlatform(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pair, ok := tokenPairFromContext(ctx)
	if !ok {
		utils.WriteError(w, "unauthorized", "authentication required", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBodySize+1))
	if err != nil {
		log.Err(err).Msg("error reading proxy request body")
		utils.WriteError(w, "validation_error", "error reading request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxProxyBodySize {
		utils.WriteError(w, "validation_error", "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	resp, err := h.forwardUpstream(r, body, pair.AccessToken)
	if err != nil {
		log.Err(err).Msg("upstream call failed")
		utils.WriteError(w, "upstream_unavailable", "the platform backend is unreachable", http.StatusServiceUnavailable)
		return
	}

	if resp.StatusCode == http.StatusUnauthorized && pair.HasRefresh() {
		drain(resp)

		rotated, err := h.coordinator.Refresh(ctx, pair)
		if err != nil {
			if errors.Is(err, session.ErrSessionExpired) {
				h.sessions.Clear(w)
				utils.WriteError(w, "session_expired", "session has expired", http.StatusUnauthorized)
				return
			}
			log.Err(err).Msg("refresh during proxy replay failed")
			utils.WriteError(w, "upstream_unavailable", "the platform backend is unreachable", http.StatusServiceUnavailable)
			return
		}

		h.hydrator.Invalidate(pair.AccessToken)
		h.sessions.Issue(w, rotated)

		resp, err = h.forwardUpstream(r, body, rotated.AccessToken)
		if err != nil {
			log.Err(err).Msg("upstream replay failed")
			utils.WriteError(w, "upstream_unavailable", "the platform backend is unreachable", http.StatusServiceUnavailable)
			return
		}
	}

	defer resp.Body.Close()

	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err = io.Copy(w, resp.Body); err != nil {
		log.Err(err).Msg("error streaming upstream response")
	}
}

// forwardUpstream builds and executes one outbound request carrying the
// given access credential. The caller owns the returned response body.
func (h *Handler) forwardUpstream(r *http.Request, body []byte, accessToken string) (*http.Response, error) {
	target := *h.upstreamBase
	target.Path = strings.TrimSuffix(target.Path, "/") + strings.TrimPrefix(r.URL.Path, platformPrefix)
	target.RawQuery = r.URL.RawQuery

	out, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for name, values := range r.Header {
		if isHopHeader(name) || name == "Cookie" || name == "Authorization" {
			continue
		}
		out.Header[name] = values
	}
	out.Header.Set("Authorization", "Bearer "+accessToken)

	return h.upstreamClient.Do(out)
}

func copyResponseHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopHeader(name) || name == "Set-Cookie" {
			continue
		}
		for _, value := range values {
			dst.Add(name, value)
		}
	}
}

func isHopHeader(name string) bool {
	for _, hop := range hopHeaders {
		if http.CanonicalHeaderKey(name) == hop {
			return true
		}
	}
	return false
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()
}
