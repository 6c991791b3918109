package apiv1

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/loopmsg/wabridge/pkg/auth"
	"github.com/loopmsg/wabridge/pkg/repository"
	"github.com/loopmsg/wabridge/pkg/types"
)

// PinGroup manages user-curated pinned messages
type PinGroup struct {
	backend repository.BackendRepository
}

// NewPinGroup creates and registers pin routes
func NewPinGroup(g *echo.Group, backend repository.BackendRepository) *PinGroup {
	pg := &PinGroup{backend: backend}

	g.GET("/messages/pin", pg.List)
	g.POST("/messages/pin", pg.Create)
	g.DELETE("/messages/pin", pg.Delete)

	return pg
}

// List returns the user's pinned messages
func (pg *PinGroup) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	pins, err := pg.backend.ListPinnedMessages(ctx, user.Id)
	if err != nil {
		log.Error().Err(err).Msg("failed to list pinned messages")
		return MapDomainError(c, err)
	}
	if pins == nil {
		pins = []types.PinnedMessage{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"messages": pins,
	})
}

// CreatePinRequest is the body of a pin request
type CreatePinRequest struct {
	MessageId   string `json:"message_id"`
	Sender      string `json:"sender"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	Priority    string `json:"priority"`
	IsRead      bool   `json:"is_read"`
	MessageDate string `json:"message_date"`
}

// Create pins one message. A duplicate message id for the same user is
// rejected with alreadyPinned so clients can treat it as non-fatal.
func (pg *PinGroup) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	var req CreatePinRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.MessageId == "" || req.Subject == "" {
		return ErrorResponse(c, http.StatusBadRequest, "message_id and subject are required")
	}

	conn, err := pg.backend.GetActiveConnection(ctx, user.Id, types.PlatformGoogle)
	if err != nil {
		return MapDomainError(c, err)
	}

	messageDate := time.Now()
	if req.MessageDate != "" {
		if parsed, err := time.Parse(time.RFC3339, req.MessageDate); err == nil {
			messageDate = parsed
		}
	}

	pin, err := pg.backend.CreatePinnedMessage(ctx, types.PinnedMessage{
		ConnectionId: conn.Id,
		UserId:       user.Id,
		MessageId:    req.MessageId,
		Sender:       req.Sender,
		Subject:      req.Subject,
		Content:      req.Content,
		Priority:     req.Priority,
		Status:       types.PinStatusStarred,
		IsRead:       req.IsRead,
		MessageDate:  messageDate,
	})
	if err != nil {
		if !errors.Is(err, types.ErrDuplicatePin) {
			log.Error().Err(err).Str("message_id", req.MessageId).Msg("failed to pin message")
		}
		return MapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "message pinned",
		"id":      pin.ExternalId,
	})
}

// Delete removes one pinned message by id
func (pg *PinGroup) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.UserFromContext(ctx)

	id := c.QueryParam("id")
	if id == "" {
		return ErrorResponse(c, http.StatusBadRequest, "id is required")
	}

	if err := pg.backend.DeletePinnedMessage(ctx, user.Id, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrorResponse(c, http.StatusNotFound, "pinned message not found")
		}
		log.Error().Err(err).Str("id", id).Msg("failed to delete pinned message")
		return MapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
	})
}
