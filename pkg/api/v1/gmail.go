package apiv1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/loopmsg/wabridge/pkg/auth"
	"github.com/loopmsg/wabridge/pkg/oauth"
	"github.com/loopmsg/wabridge/pkg/providers"
	"github.com/loopmsg/wabridge/pkg/repository"
	"github.com/loopmsg/wabridge/pkg/types"
)

// GmailGroup serves normalized Gmail data for the dashboard
type GmailGroup struct {
	backend  repository.BackendRepository
	resolver *oauth.TokenResolver
	gmail    *providers.GmailClient
}

// NewGmailGroup creates and registers Gmail routes
func NewGmailGroup(g *echo.Group, backend repository.BackendRepository, resolver *oauth.TokenResolver, gmail *providers.GmailClient) *GmailGroup {
	gg := &GmailGroup{
		backend:  backend,
		resolver: resolver,
		gmail:    gmail,
	}

	g.GET("/integrations/google/gmail/messages", gg.ListMessages)

	return gg
}

// ListMessages returns the user's most recent inbox messages in the
// normalized shape
func (gg *GmailGroup) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	conn, err := gg.backend.GetActiveConnection(ctx, user.Id, types.PlatformGoogle)
	if err != nil {
		return MapDomainError(c, err)
	}

	token, err := gg.resolver.Resolve(ctx, conn)
	if err != nil {
		return MapDomainError(c, err)
	}

	messages, err := gg.gmail.FetchInbox(ctx, token)
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ExternalId).Msg("gmail fetch failed")
		return MapDomainError(c, err)
	}

	if err := gg.backend.UpdateLastSync(ctx, conn.Id, time.Now()); err != nil {
		log.Warn().Err(err).Str("connection_id", conn.ExternalId).Msg("failed to update last sync")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"messages": messages,
	})
}
