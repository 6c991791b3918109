package apiv1

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/loopmsg/wabridge/pkg/auth"
	"github.com/loopmsg/wabridge/pkg/common"
	"github.com/loopmsg/wabridge/pkg/oauth"
	"github.com/loopmsg/wabridge/pkg/repository"
	"github.com/loopmsg/wabridge/pkg/types"
)

const (
	stateTTL        = 10 * time.Minute
	exchangeTimeout = 10 * time.Second
)

// OAuthGroup handles the Google authorization-code flow: login, platform
// connect, and the shared callback.
type OAuthGroup struct {
	google   *oauth.GoogleClient
	backend  repository.BackendRepository
	sessions *auth.SessionManager
	appURL   string
}

// NewOAuthGroup creates and registers OAuth routes. The authorize route
// requires a session; login and callback are public.
func NewOAuthGroup(g *echo.Group, google *oauth.GoogleClient, backend repository.BackendRepository, sessions *auth.SessionManager, appURL string, sessionMW echo.MiddlewareFunc) *OAuthGroup {
	og := &OAuthGroup{
		google:   google,
		backend:  backend,
		sessions: sessions,
		appURL:   appURL,
	}

	g.GET("/auth/google/login", og.Login)
	g.GET("/integrations/google/authorize", og.Authorize, sessionMW)
	g.GET("/integrations/google/callback", og.Callback)

	return og
}

// Login starts a login flow: the callback creates the user and mints a
// session
func (og *OAuthGroup) Login(c echo.Context) error {
	return og.beginFlow(c, 0, types.PlatformGoogle)
}

// Authorize starts a platform-connect flow for the authenticated user
func (og *OAuthGroup) Authorize(c echo.Context) error {
	platform := c.QueryParam("platform")
	if platform == "" {
		platform = types.PlatformGoogle
	}
	if !types.KnownPlatform(platform) {
		return ErrorResponse(c, http.StatusBadRequest, "unknown platform")
	}

	user := auth.UserFromContext(c.Request().Context())
	return og.beginFlow(c, user.Id, platform)
}

func (og *OAuthGroup) beginFlow(c echo.Context, userId uint, platform string) error {
	if !og.google.IsConfigured() {
		log.Error().Msg("google oauth not configured")
		return ErrorResponse(c, http.StatusInternalServerError, "oauth not configured")
	}

	state := types.OAuthState{
		State:      common.GenerateStateToken(),
		UserId:     userId,
		Platform:   platform,
		RedirectTo: c.QueryParam("redirect_to"),
		ExpiresAt:  time.Now().Add(stateTTL),
	}
	if err := og.backend.CreateOAuthState(c.Request().Context(), state); err != nil {
		log.Error().Err(err).Msg("failed to create oauth state")
		return ErrorResponse(c, http.StatusInternalServerError, "failed to start oauth flow")
	}

	authorizeURL, err := og.google.AuthorizeURL(state.State, platform)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, err.Error())
	}

	return c.Redirect(http.StatusFound, authorizeURL)
}

// Callback handles the redirect back from Google. The state is consumed
// exactly once regardless of outcome; all failures redirect back to the
// app with a sanitized error message.
func (og *OAuthGroup) Callback(c echo.Context) error {
	state, err := og.backend.ConsumeOAuthState(c.Request().Context(), c.QueryParam("state"))
	if err != nil {
		log.Warn().Err(err).Msg("oauth callback with bad state")
		return og.redirectError(c, "", "Invalid or expired authorization state")
	}

	if errParam := c.QueryParam("error"); errParam != "" {
		log.Warn().Str("error", errParam).Str("platform", state.Platform).Msg("oauth authorization denied")
		return og.redirectError(c, state.RedirectTo, "Authorization was denied")
	}

	code := c.QueryParam("code")
	if code == "" {
		return og.redirectError(c, state.RedirectTo, "Missing authorization code")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), exchangeTimeout)
	defer cancel()

	bundle, err := og.google.Exchange(ctx, code, state.Platform)
	if err != nil {
		log.Error().Err(err).Str("platform", state.Platform).Msg("oauth token exchange failed")
		return og.redirectError(c, state.RedirectTo, "Token exchange failed")
	}

	info, err := og.google.FetchUserInfo(ctx, bundle.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch google user info")
		return og.redirectError(c, state.RedirectTo, "Failed to verify account")
	}

	userId := state.UserId
	if userId == 0 {
		// Login flow: create the user and mint a session
		user, err := og.backend.UpsertUser(ctx, info.Email, info.Name)
		if err != nil {
			log.Error().Err(err).Str("email", info.Email).Msg("failed to upsert user")
			return og.redirectError(c, state.RedirectTo, "Failed to create account")
		}
		userId = user.Id

		token, err := og.sessions.Create(user.ExternalId, user.Email)
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			return og.redirectError(c, state.RedirectTo, "Failed to create session")
		}
		og.sessions.Set(c, token)
	}

	conn, err := og.backend.UpsertConnection(ctx, userId, state.Platform, info.Email, bundle)
	if err != nil {
		log.Error().Err(err).Str("platform", state.Platform).Msg("failed to save connection")
		return og.redirectError(c, state.RedirectTo, "Failed to save connection")
	}

	log.Info().
		Str("connection_id", conn.ExternalId).
		Str("platform", conn.Platform).
		Str("platform_user", conn.PlatformUserId).
		Msg("platform connected")

	return og.redirectWith(c, state.RedirectTo, "google_connected", "true")
}

func (og *OAuthGroup) redirectError(c echo.Context, target, msg string) error {
	return og.redirectWith(c, target, "error", msg)
}

func (og *OAuthGroup) redirectWith(c echo.Context, target, key, value string) error {
	if target == "" {
		target = og.appURL
	}

	u, err := url.Parse(target)
	if err != nil {
		u, _ = url.Parse(og.appURL)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()

	return c.Redirect(http.StatusFound, u.String())
}
