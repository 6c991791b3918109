package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/loopmsg/wabridge/pkg/repository"
)

type HealthGroup struct {
	backend     repository.BackendRepository
	routerGroup *echo.Group
}

func NewHealthGroup(g *echo.Group, backend repository.BackendRepository) *HealthGroup {
	group := &HealthGroup{routerGroup: g, backend: backend}

	g.GET("", group.HealthCheck)

	return group
}

func (h *HealthGroup) HealthCheck(c echo.Context) error {
	if err := h.backend.Ping(c.Request().Context()); err != nil {
		log.Error().Err(err).Msg("health check failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "not ok",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
