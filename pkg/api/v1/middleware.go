package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopmsg/wabridge/pkg/auth"
	"github.com/loopmsg/wabridge/pkg/repository"
)

// NewSessionAuthMiddleware validates the session JWT and loads the user
// into the request context
func NewSessionAuthMiddleware(sessions *auth.SessionManager, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := sessions.Get(c)
			if claims == nil {
				return ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			}

			user, err := users.GetUserByExternalId(c.Request().Context(), claims.UserID)
			if err != nil || user == nil {
				return ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			}

			c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), user)))
			return next(c)
		}
	}
}
