package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	sessions := NewSessionManager("test-secret")

	token, err := sessions.Create("user-abc", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sessions.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewSessionManager("secret-a").Create("user-abc", "user@example.com")
	require.NoError(t, err)

	_, err = NewSessionManager("secret-b").Validate(token)
	assert.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := NewSessionManager("test-secret").Validate("not.a.jwt")
	assert.Error(t, err)
}

func echoContext(req *http.Request) echo.Context {
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestGet_FromCookie(t *testing.T) {
	sessions := NewSessionManager("test-secret")
	token, err := sessions.Create("user-abc", "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})

	claims := sessions.Get(echoContext(req))
	require.NotNil(t, claims)
	assert.Equal(t, "user-abc", claims.UserID)
}

func TestGet_FromBearerHeader(t *testing.T) {
	sessions := NewSessionManager("test-secret")
	token, err := sessions.Create("user-abc", "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	claims := sessions.Get(echoContext(req))
	require.NotNil(t, claims)
	assert.Equal(t, "user-abc", claims.UserID)
}

func TestGet_MissingOrInvalid(t *testing.T) {
	sessions := NewSessionManager("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, sessions.Get(echoContext(req)))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "tampered"})
	assert.Nil(t, sessions.Get(echoContext(req)))
}

func TestRandomSecretFallback(t *testing.T) {
	a := NewSessionManager("")
	b := NewSessionManager("")

	token, err := a.Create("user-abc", "user@example.com")
	require.NoError(t, err)

	// each manager gets its own random key
	_, err = b.Validate(token)
	assert.Error(t, err)

	claims, err := a.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-abc", claims.UserID)
}
