package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/loopmsg/wabridge/pkg/types"
	"github.com/rs/zerolog/log"
)

// Refresher exchanges a refresh token for a fresh token bundle
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (types.TokenBundle, error)
}

// CredentialStore persists refreshed token bundles
type CredentialStore interface {
	UpdateConnectionCredentials(ctx context.Context, connectionId uint, bundle types.TokenBundle) error
}

// TokenResolver guarantees that outbound provider calls use a token valid
// for at least the immediate request. A token within RefreshMargin of expiry
// is refreshed once and the merged bundle persisted; otherwise the cached
// token is returned with no write.
type TokenResolver struct {
	refresher Refresher
	store     CredentialStore
	now       func() time.Time
}

// NewTokenResolver creates a token resolver
func NewTokenResolver(refresher Refresher, store CredentialStore) *TokenResolver {
	return &TokenResolver{
		refresher: refresher,
		store:     store,
		now:       time.Now,
	}
}

// Resolve returns a usable access token for the connection, refreshing and
// persisting it first when it is about to expire. Returns ErrAuthExpired
// when no refresh is possible; the caller must not retry.
func (r *TokenResolver) Resolve(ctx context.Context, conn *types.PlatformConnection) (string, error) {
	bundle, err := conn.Tokens()
	if err != nil {
		return "", fmt.Errorf("decode credentials: %w", err)
	}

	if !NeedsRefresh(bundle, r.now()) {
		return bundle.AccessToken, nil
	}

	if bundle.RefreshToken == "" {
		log.Warn().
			Str("connection_id", conn.ExternalId).
			Str("platform", conn.Platform).
			Msg("token expiring with no refresh token")
		return "", types.ErrAuthExpired
	}

	refreshed, err := r.refresher.Refresh(ctx, bundle.RefreshToken)
	if err != nil {
		log.Error().Err(err).
			Str("connection_id", conn.ExternalId).
			Str("platform", conn.Platform).
			Msg("token refresh failed")
		return "", types.ErrAuthExpired
	}

	merged := refreshed.Merge(bundle)
	if err := r.store.UpdateConnectionCredentials(ctx, conn.Id, merged); err != nil {
		return "", fmt.Errorf("persist refreshed credentials: %w", err)
	}

	log.Info().
		Str("connection_id", conn.ExternalId).
		Str("platform", conn.Platform).
		Int64("expires_at", merged.ExpiresAt).
		Msg("access token refreshed")

	return merged.AccessToken, nil
}
