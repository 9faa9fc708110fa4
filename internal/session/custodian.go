// SPDX-License-Identifier: Apache-2.0

// Package session implements the gateway's credential custody: token pairs
// live in HTTP-only cookies, are refreshed through a coalescing coordinator,
// and are resolved to user profiles by a bounded hydrator.
//
// The invariant the whole package exists for: token material is never
// readable by page scripts. Cookies are the only transport to the browser,
// and no method here ever serialises a token into a response body.
package session

import (
	"net/http"
	"time"

	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/internal/utils"
	"github.com/fieldscope/survey-console/models"
)

// Cookie names used by the custodian. The browser never needs to know them;
// they are HttpOnly and invisible to the console's scripts.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// Custodian owns the session cookies. It is the only component that writes
// or clears them; handlers and middleware go through it exclusively.
type Custodian struct {
	cfg    config.Session
	logger *logger.Logger
}

// NewCustodian constructs a cookie custodian from the session configuration.
func NewCustodian(cfg config.Session, logger *logger.Logger) *Custodian {
	return &Custodian{cfg: cfg, logger: logger}
}

// Issue writes both session cookies for a freshly obtained token pair.
//
// The access cookie's max-age is derived from the token's own expiry claim
// when one is present; otherwise the configured fallback lifetime applies.
// The refresh cookie always uses the configured refresh lifetime.
func (c *Custodian) Issue(w http.ResponseWriter, pair models.TokenPair) {
	accessTTL := c.cfg.AccessTTL

	expiresAt := pair.AccessExpiresAt
	if expiresAt.IsZero() {
		if parsed, err := utils.ParseTokenExpiry(pair.AccessToken); err == nil && !parsed.IsZero() {
			expiresAt = parsed
		}
	}
	if !expiresAt.IsZero() {
		if until := time.Until(expiresAt); until > 0 {
			accessTTL = until
		}
	}

	http.SetCookie(w, c.cookie(AccessCookieName, pair.AccessToken, int(accessTTL.Seconds())))

	if pair.HasRefresh() {
		http.SetCookie(w, c.cookie(RefreshCookieName, pair.RefreshToken, int(c.cfg.RefreshTTL.Seconds())))
	}
}

// Clear expires both session cookies. Used on logout and when the refresh
// path is exhausted.
func (c *Custodian) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessCookieName, "", -1))
	http.SetCookie(w, c.cookie(RefreshCookieName, "", -1))
}

// Read extracts the token pair from the request cookies. A request with
// neither cookie yields [ErrNoSession]; a request with only a refresh cookie
// yields a pair with an empty AccessToken, which the coordinator treats as
// an immediate refresh.
func (c *Custodian) Read(r *http.Request) (models.TokenPair, error) {
	var pair models.TokenPair

	if cookie, err := r.Cookie(AccessCookieName); err == nil {
		pair.AccessToken = cookie.Value
	}
	if cookie, err := r.Cookie(RefreshCookieName); err == nil {
		pair.RefreshToken = cookie.Value
	}

	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return models.TokenPair{}, ErrNoSession
	}

	return pair, nil
}

func (c *Custodian) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
