// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldscope/survey-console/internal/config"
	"github.com/fieldscope/survey-console/internal/logger"
	"github.com/fieldscope/survey-console/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, serverURL string) *httpPlatformAdapter {
	t.Helper()
	a, err := NewHTTPPlatformAdapter(config.Upstream{
		BaseURL:        serverURL,
		RequestTimeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	return a.(*httpPlatformAdapter)
}

func TestNewHTTPPlatformAdapter_InvalidBaseURL(t *testing.T) {
	_, err := NewHTTPPlatformAdapter(config.Upstream{BaseURL: "   "}, logger.Nop())
	require.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)

		// the identity endpoint takes a form, not JSON
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ops@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	pair, err := a.Login(context.Background(), "ops@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "access-1", pair.AccessToken)
	assert.Equal(t, "refresh-1", pair.RefreshToken)
}

func TestLogin_BaseURLCarriesVersionPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.TokenPair{AccessToken: "access-1"})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL+"/api/v1")
	_, err := a.Login(context.Background(), "ops@example.com", "secret")

	require.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid credentials"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), "ops@example.com", "wrong")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	a := newTestAdapter(t, srv.URL)
	_, err := a.Login(context.Background(), "ops@example.com", "secret")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_RotatesPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh_token"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.TokenPair{
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	pair, err := a.Refresh(context.Background(), "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "access-2", pair.AccessToken)
	assert.Equal(t, "refresh-2", pair.RefreshToken)
}

func TestRefresh_StaleToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Refresh(context.Background(), "stale")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMe_AttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/users/me", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.UserProfile{
			ID:    7,
			Email: "ops@example.com",
			Role:  models.RoleAdmin,
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	profile, err := a.Me(context.Background(), "access-1")

	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	assert.Equal(t, models.RoleAdmin, profile.Role)
}

func TestGetUser_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/users/99", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.GetUser(context.Background(), "access-1", 99)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendActivationEmail_ReturnsDeliveryID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/activation-email", r.URL.Path)

		var email ActivationEmail
		require.NoError(t, json.NewDecoder(r.Body).Decode(&email))
		assert.Equal(t, "jane@example.com", email.Recipient)
		assert.NotEmpty(t, email.Code)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"delivery_id":"dlv-123"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	id, err := a.SendActivationEmail(context.Background(), "access-1", ActivationEmail{
		Recipient: "jane@example.com",
		FullName:  "Jane Doe",
		Code:      "ABCDE-FGHJK",
	})

	require.NoError(t, err)
	assert.Equal(t, "dlv-123", id)
}

func TestResendActivationEmail_UsesDeliveryReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notifications/dlv-123/resend", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// no plaintext travels on a resend
		assert.NotContains(t, body, "code")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"delivery_id":"dlv-124"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	id, err := a.ResendActivationEmail(context.Background(), "access-1", "dlv-123", "reminder")

	require.NoError(t, err)
	assert.Equal(t, "dlv-124", id)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "full url", input: "https://api.platform.example/", expected: "https://api.platform.example"},
		{name: "bare host gets https", input: "api.platform.example", expected: "https://api.platform.example"},
		{name: "empty", input: "  ", wantErr: true},
		{name: "scheme only", input: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
