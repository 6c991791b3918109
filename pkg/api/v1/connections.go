package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/loopmsg/wabridge/pkg/auth"
	"github.com/loopmsg/wabridge/pkg/repository"
	"github.com/loopmsg/wabridge/pkg/types"
)

// ConnectionGroup lists and disconnects platform connections
type ConnectionGroup struct {
	backend repository.BackendRepository
}

// NewConnectionGroup creates and registers connection routes
func NewConnectionGroup(g *echo.Group, backend repository.BackendRepository) *ConnectionGroup {
	cg := &ConnectionGroup{backend: backend}

	g.GET("/integrations/connections", cg.List)
	g.DELETE("/integrations/:platform", cg.Disconnect)

	return cg
}

// List returns the user's platform connections without credentials
func (cg *ConnectionGroup) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	conns, err := cg.backend.ListConnections(ctx, user.Id)
	if err != nil {
		log.Error().Err(err).Msg("failed to list connections")
		return MapDomainError(c, err)
	}
	if conns == nil {
		conns = []types.PlatformConnection{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"connections": conns,
	})
}

// Disconnect deactivates the user's active connection for a platform. The
// row is kept; reconnecting creates a fresh one.
func (cg *ConnectionGroup) Disconnect(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	platform := c.Param("platform")
	if !types.KnownPlatform(platform) {
		return ErrorResponse(c, http.StatusBadRequest, "unknown platform")
	}

	if err := cg.backend.DeactivateConnection(ctx, user.Id, platform); err != nil {
		return MapDomainError(c, err)
	}

	log.Info().Str("platform", platform).Msg("platform disconnected")
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
	})
}
