package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/loopmsg/wabridge/pkg/types"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// RefreshMargin is the validity window below which a token is treated as
// expiring and refreshed before use
const RefreshMargin = 5 * time.Minute

// platformScopes maps platform names to the Google scopes they require
var platformScopes = map[string][]string{
	types.PlatformGoogle: {
		"https://www.googleapis.com/auth/gmail.readonly",
		"https://www.googleapis.com/auth/userinfo.email",
	},
	types.PlatformCalendar: {
		"https://www.googleapis.com/auth/calendar.readonly",
		"https://www.googleapis.com/auth/userinfo.email",
	},
}

// GoogleClient handles Google OAuth operations for platform connections
type GoogleClient struct {
	clientID     string
	clientSecret string
	redirectURL  string
	tokenURL     string
	userInfoURL  string
	httpClient   *http.Client
}

// NewGoogleClient creates a new Google OAuth client from config
func NewGoogleClient(cfg types.GoogleOAuthConfig) *GoogleClient {
	return &GoogleClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		tokenURL:     google.Endpoint.TokenURL,
		userInfoURL:  googleUserInfoURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns true if Google OAuth credentials are present
func (g *GoogleClient) IsConfigured() bool {
	return g.clientID != "" && g.clientSecret != "" && g.redirectURL != ""
}

// AuthorizeURL generates the Google OAuth authorization URL for a platform
func (g *GoogleClient) AuthorizeURL(state, platform string) (string, error) {
	scopes, ok := platformScopes[platform]
	if !ok {
		return "", fmt.Errorf("unsupported platform: %s", platform)
	}

	cfg := g.oauthConfig(scopes)

	// Request offline access to get a refresh token, and always prompt for
	// consent so a refresh token is issued even on re-authorization
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// Exchange exchanges an authorization code for a token bundle
func (g *GoogleClient) Exchange(ctx context.Context, code, platform string) (types.TokenBundle, error) {
	scopes, ok := platformScopes[platform]
	if !ok {
		return types.TokenBundle{}, fmt.Errorf("unsupported platform: %s", platform)
	}

	token, err := g.oauthConfig(scopes).Exchange(ctx, code)
	if err != nil {
		return types.TokenBundle{}, fmt.Errorf("exchange failed: %w", err)
	}

	bundle := types.TokenBundle{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Scope:        strings.Join(scopes, " "),
	}
	if !token.Expiry.IsZero() {
		bundle.ExpiresAt = token.Expiry.Unix()
	}
	return bundle, nil
}

// Refresh exchanges a refresh token for a new access token. The returned
// bundle carries only the fields the provider sent; callers merge it over
// the previous bundle.
func (g *GoogleClient) Refresh(ctx context.Context, refreshToken string) (types.TokenBundle, error) {
	if refreshToken == "" {
		return types.TokenBundle{}, types.ErrAuthExpired
	}

	data := url.Values{
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return types.TokenBundle{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return types.TokenBundle{}, err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return types.TokenBundle{}, fmt.Errorf("parse refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || result.Error != "" || result.AccessToken == "" {
		return types.TokenBundle{}, fmt.Errorf("refresh failed (status %d, error %q): %w", resp.StatusCode, result.Error, types.ErrAuthExpired)
	}

	// Google occasionally omits expires_in; assume the standard lifetime
	if result.ExpiresIn == 0 {
		result.ExpiresIn = 3600
	}

	return types.TokenBundle{
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(result.ExpiresIn) * time.Second).Unix(),
		TokenType:   result.TokenType,
		Scope:       result.Scope,
	}, nil
}

// GoogleUser contains user info from Google
type GoogleUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FetchUserInfo gets the authenticated user's identity from Google
func (g *GoogleClient) FetchUserInfo(ctx context.Context, accessToken string) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo failed: status %d", resp.StatusCode)
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// NeedsRefresh returns true if the bundle expires within the refresh margin
func NeedsRefresh(bundle types.TokenBundle, now time.Time) bool {
	return bundle.ExpiresAt < now.Add(RefreshMargin).Unix()
}

func (g *GoogleClient) oauthConfig(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.clientID,
		ClientSecret: g.clientSecret,
		RedirectURL:  g.redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}
