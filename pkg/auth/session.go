package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/loopmsg/wabridge/pkg/common"
)

const (
	cookieName      = "wabridge_session"
	sessionDuration = 24 * time.Hour
)

// Claims contains the JWT claims for a dashboard session
type Claims struct {
	UserID string `json:"uid"` // User external id
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager handles JWT session creation and validation
type SessionManager struct {
	secret []byte
}

// NewSessionManager creates a new session manager. An empty secret gets a
// random key, so sessions won't persist across restarts.
func NewSessionManager(secret string) *SessionManager {
	if secret == "" {
		secret = common.GenerateRandomID(64)
	}
	return &SessionManager{secret: []byte(secret)}
}

// Create generates a new JWT session token for a user
func (s *SessionManager) Create(userExternalId, email string) (string, error) {
	claims := Claims{
		UserID: userExternalId,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "wabridge",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate parses and validates a JWT token
func (s *SessionManager) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// Get retrieves and validates the session from the request, checking the
// session cookie first and the Authorization header second
func (s *SessionManager) Get(c echo.Context) *Claims {
	var tokenStr string
	if cookie, err := c.Cookie(cookieName); err == nil {
		tokenStr = cookie.Value
	} else if header := c.Request().Header.Get("Authorization"); header != "" {
		tokenStr = strings.TrimPrefix(header, "Bearer ")
	}
	if tokenStr == "" {
		return nil
	}

	claims, err := s.Validate(tokenStr)
	if err != nil {
		return nil
	}
	return claims
}

// Set stores the session token in a cookie
func (s *SessionManager) Set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

// Clear removes the session cookie
func (s *SessionManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:   cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
