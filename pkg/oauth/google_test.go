package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopmsg/wabridge/pkg/types"
)

func testGoogleClient(tokenURL string) *GoogleClient {
	g := NewGoogleClient(types.GoogleOAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:1994/api/v1/integrations/google/callback",
	})
	g.tokenURL = tokenURL
	return g
}

func TestRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "new-access", "expires_in": 3600, "token_type": "Bearer"}`))
	}))
	defer server.Close()

	client := testGoogleClient(server.URL)
	bundle, err := client.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", bundle.AccessToken)
	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.Empty(t, bundle.RefreshToken)

	expected := time.Now().Add(time.Hour).Unix()
	assert.InDelta(t, expected, bundle.ExpiresAt, 5)
}

func TestRefresh_DefaultsExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token": "new-access"}`))
	}))
	defer server.Close()

	client := testGoogleClient(server.URL)
	bundle, err := client.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), bundle.ExpiresAt, 5)
}

func TestRefresh_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer server.Close()

	client := testGoogleClient(server.URL)
	_, err := client.Refresh(context.Background(), "revoked-refresh")
	assert.ErrorIs(t, err, types.ErrAuthExpired)
}

func TestRefresh_EmptyRefreshToken(t *testing.T) {
	client := testGoogleClient("http://unused")
	_, err := client.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrAuthExpired)
}

func TestNeedsRefresh(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		expiresAt int64
		want      bool
	}{
		{"expired", now.Add(-time.Hour).Unix(), true},
		{"inside margin", now.Add(4 * time.Minute).Unix(), true},
		{"outside margin", now.Add(10 * time.Minute).Unix(), false},
		{"zero expiry", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NeedsRefresh(types.TokenBundle{ExpiresAt: tc.expiresAt}, now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAuthorizeURL(t *testing.T) {
	client := testGoogleClient("http://unused")

	authURL, err := client.AuthorizeURL("state-123", types.PlatformGoogle)
	require.NoError(t, err)

	assert.Contains(t, authURL, "state=state-123")
	assert.Contains(t, authURL, "access_type=offline")
	assert.Contains(t, authURL, "prompt=consent")
	assert.Contains(t, authURL, "gmail.readonly")

	_, err = client.AuthorizeURL("state-123", "notion")
	assert.Error(t, err)
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, testGoogleClient("http://unused").IsConfigured())
	assert.False(t, NewGoogleClient(types.GoogleOAuthConfig{}).IsConfigured())
}
