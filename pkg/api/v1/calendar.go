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

// CalendarGroup serves normalized Google Calendar data for the dashboard
type CalendarGroup struct {
	backend  repository.BackendRepository
	resolver *oauth.TokenResolver
	calendar *providers.CalendarClient
}

// NewCalendarGroup creates and registers Calendar routes
func NewCalendarGroup(g *echo.Group, backend repository.BackendRepository, resolver *oauth.TokenResolver, calendar *providers.CalendarClient) *CalendarGroup {
	cg := &CalendarGroup{
		backend:  backend,
		resolver: resolver,
		calendar: calendar,
	}

	g.GET("/integrations/calendar/events", cg.ListEvents)

	return cg
}

// ListEvents returns upcoming events sorted ascending by start, grouped by
// date, together with the user's calendar list
func (cg *CalendarGroup) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	conn, err := cg.backend.GetActiveConnection(ctx, user.Id, types.PlatformCalendar)
	if err != nil {
		return MapDomainError(c, err)
	}

	token, err := cg.resolver.Resolve(ctx, conn)
	if err != nil {
		return MapDomainError(c, err)
	}

	calendars, err := cg.calendar.ListCalendars(ctx, token)
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ExternalId).Msg("calendar list fetch failed")
		return MapDomainError(c, err)
	}

	events, err := cg.calendar.ListEvents(ctx, token)
	if err != nil {
		log.Error().Err(err).Str("connection_id", conn.ExternalId).Msg("calendar events fetch failed")
		return MapDomainError(c, err)
	}

	if err := cg.backend.UpdateLastSync(ctx, conn.Id, time.Now()); err != nil {
		log.Warn().Err(err).Str("connection_id", conn.ExternalId).Msg("failed to update last sync")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"events":        events,
		"groupedEvents": providers.GroupEventsByDate(events),
		"calendars":     calendars,
		"totalCount":    len(events),
	})
}
