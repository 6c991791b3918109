package repository

import (
	"context"
	"time"

	"github.com/loopmsg/wabridge/pkg/types"
)

// UserRepository manages dashboard users
type UserRepository interface {
	UpsertUser(ctx context.Context, email, name string) (*types.User, error)
	GetUserByExternalId(ctx context.Context, externalId string) (*types.User, error)
}

// ConnectionRepository manages platform connections and their credentials
type ConnectionRepository interface {
	UpsertConnection(ctx context.Context, userId uint, platform, platformUserId string, bundle types.TokenBundle) (*types.PlatformConnection, error)
	GetActiveConnection(ctx context.Context, userId uint, platform string) (*types.PlatformConnection, error)
	ListConnections(ctx context.Context, userId uint) ([]types.PlatformConnection, error)
	UpdateConnectionCredentials(ctx context.Context, connectionId uint, bundle types.TokenBundle) error
	UpdateLastSync(ctx context.Context, connectionId uint, at time.Time) error
	DeactivateConnection(ctx context.Context, userId uint, platform string) error
}

// OAuthStateRepository manages single-use authorization-code flow states
type OAuthStateRepository interface {
	CreateOAuthState(ctx context.Context, state types.OAuthState) error
	ConsumeOAuthState(ctx context.Context, state string) (*types.OAuthState, error)
}

// PinRepository manages user-curated pinned messages
type PinRepository interface {
	ListPinnedMessages(ctx context.Context, userId uint) ([]types.PinnedMessage, error)
	CreatePinnedMessage(ctx context.Context, pin types.PinnedMessage) (*types.PinnedMessage, error)
	DeletePinnedMessage(ctx context.Context, userId uint, externalId string) error
}

// BackendRepository is the full persistence surface of the gateway
type BackendRepository interface {
	UserRepository
	ConnectionRepository
	OAuthStateRepository
	PinRepository

	Ping(ctx context.Context) error
	Close() error
}
