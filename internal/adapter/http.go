package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/models"
	"github.com/go-resty/resty/v2"
)

type httpPlatformAdapter struct {
	client *resty.Client
	logger *logger.Logger
}

// NewHTTPPlatformAdapter constructs the HTTP/REST implementation of
// [PlatformAdapter]. It normalises and validates the base URL from
// cfg.BaseURL and configures the underlying resty client with the resolved
// base URL and request timeout. A platform that versions its API carries
// the prefix in the base URL (e.g. "https://host/api/v1"); endpoint paths
// here are relative to it.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL.
func NewHTTPPlatformAdapter(cfg config.Upstream, logger *logger.Logger) (PlatformAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base url: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpPlatformAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Login implements [IdentityClient]. It POSTs the credentials form-encoded
// to /auth/login (the identity endpoint takes `username`/`password` fields,
// where username is the operator's email) and decodes the issued token pair
// from the response body. The pair goes straight to the session custodian;
// it is never logged.
func (h *httpPlatformAdapter) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	var pair models.TokenPair

	resp, err := h.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"username": email, "password": password}).
		SetResult(&pair).
		Post("/auth/login")
	if err != nil {
		return models.TokenPair{}, mapTransportError("login request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Refresh implements [IdentityClient]. It exchanges the refresh token at
// POST /auth/refresh for a rotated pair. An upstream that does not rotate
// refresh tokens leaves RefreshToken empty in the response.
func (h *httpPlatformAdapter) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&pair).
		Post("/auth/refresh")
	if err != nil {
		return models.TokenPair{}, mapTransportError("refresh request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

// Logout implements [IdentityClient]. It POSTs to /auth/logout with the
// access token. Callers treat failures as non-fatal.
func (h *httpPlatformAdapter) Logout(ctx context.Context, accessToken string) error {
	resp, err := h.bearer(ctx, accessToken).Post("/auth/logout")
	if err != nil {
		return mapTransportError("logout request", err)
	}

	return mapHTTPError(resp)
}

// Me implements [IdentityClient]. It GETs /users/me and returns the token
// owner's profile.
func (h *httpPlatformAdapter) Me(ctx context.Context, accessToken string) (models.UserProfile, error) {
	var profile models.UserProfile

	resp, err := h.bearer(ctx, accessToken).
		SetResult(&profile).
		Get("/users/me")
	if err != nil {
		return models.UserProfile{}, mapTransportError("me request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserProfile{}, err
	}

	return profile, nil
}

// GetUser implements [DirectoryClient]. It GETs /admin/users/{id}.
func (h *httpPlatformAdapter) GetUser(ctx context.Context, accessToken string, id int64) (models.UserProfile, error) {
	var profile models.UserProfile

	resp, err := h.bearer(ctx, accessToken).
		SetResult(&profile).
		SetPathParam("id", fmt.Sprintf("%d", id)).
		Get("/admin/users/{id}")
	if err != nil {
		return models.UserProfile{}, mapTransportError("get user request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.UserProfile{}, err
	}

	return profile, nil
}

// SendActivationEmail implements [NotifierClient]. It POSTs the one-time
// presentation to /notifications/activation-email and returns the delivery
// reference.
func (h *httpPlatformAdapter) SendActivationEmail(ctx context.Context, accessToken string, email ActivationEmail) (string, error) {
	var result struct {
		DeliveryID string `json:"delivery_id"`
	}

	resp, err := h.bearer(ctx, accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(email).
		SetResult(&result).
		Post("/notifications/activation-email")
	if err != nil {
		return "", mapTransportError("send activation email request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return result.DeliveryID, nil
}

// ResendActivationEmail implements [NotifierClient]. It POSTs to
// /notifications/{delivery_id}/resend; the notification service redelivers
// from its own copy, the gateway sends no plaintext.
func (h *httpPlatformAdapter) ResendActivationEmail(ctx context.Context, accessToken, deliveryID, customMessage string) (string, error) {
	var result struct {
		DeliveryID string `json:"delivery_id"`
	}

	resp, err := h.bearer(ctx, accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"custom_message": customMessage}).
		SetResult(&result).
		SetPathParam("delivery_id", deliveryID).
		Post("/notifications/{delivery_id}/resend")
	if err != nil {
		return "", mapTransportError("resend activation email request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return result.DeliveryID, nil
}

func (h *httpPlatformAdapter) bearer(ctx context.Context, accessToken string) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if accessToken != "" {
		req.SetHeader("Authorization", "Bearer "+accessToken)
	}
	return req
}
