package types

import (
	"encoding/json"
	"time"
)

// Platform names for external connections
const (
	PlatformGoogle   = "google"
	PlatformCalendar = "calendar"
)

// KnownPlatform returns true if the platform name is supported
func KnownPlatform(platform string) bool {
	return platform == PlatformGoogle || platform == PlatformCalendar
}

// TokenBundle holds the OAuth tokens for a platform connection.
// ExpiresAt is a unix timestamp in seconds.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// Merge overlays refreshed fields on top of the previous bundle. Refresh
// responses omit the refresh token when it is unchanged, so an empty field
// keeps the previous value.
func (t TokenBundle) Merge(prev TokenBundle) TokenBundle {
	if t.RefreshToken == "" {
		t.RefreshToken = prev.RefreshToken
	}
	if t.TokenType == "" {
		t.TokenType = prev.TokenType
	}
	if t.Scope == "" {
		t.Scope = prev.Scope
	}
	return t
}

// PlatformConnection links one user to one external account on one platform
type PlatformConnection struct {
	Id             uint            `json:"-"`
	ExternalId     string          `json:"id"`
	UserId         uint            `json:"-"`
	Platform       string          `json:"platform"`
	PlatformUserId string          `json:"platform_user_id"` // Provider-side identity, e.g. email
	Credentials    json.RawMessage `json:"-"`
	IsActive       bool            `json:"is_active"`
	LastSyncAt     *time.Time      `json:"last_sync_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Tokens deserializes the stored credentials blob
func (c *PlatformConnection) Tokens() (TokenBundle, error) {
	var bundle TokenBundle
	if err := json.Unmarshal(c.Credentials, &bundle); err != nil {
		return TokenBundle{}, err
	}
	return bundle, nil
}

// OAuthState is a short-lived, single-use token binding an authorization-code
// flow to the user who initiated it
type OAuthState struct {
	State      string
	UserId     uint
	Platform   string
	RedirectTo string
	ExpiresAt  time.Time
}

// PinnedMessage is a user-curated message persisted independently of the
// live provider fetch
type PinnedMessage struct {
	Id           uint      `json:"-"`
	ExternalId   string    `json:"id"`
	ConnectionId uint      `json:"-"`
	UserId       uint      `json:"-"`
	MessageId    string    `json:"message_id"` // Provider message id, unique per user
	Sender       string    `json:"sender"`
	Subject      string    `json:"subject"`
	Content      string    `json:"content"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	IsRead       bool      `json:"is_read"`
	MessageDate  time.Time `json:"message_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// PinStatusStarred marks a pinned message
const PinStatusStarred = "starred"

// User is a dashboard principal
type User struct {
	Id         uint      `json:"-"`
	ExternalId string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
