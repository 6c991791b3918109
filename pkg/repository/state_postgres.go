package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/loopmsg/wabridge/pkg/types"
)

// CreateOAuthState persists a new state for the authorization-code flow
func (b *PostgresBackend) CreateOAuthState(ctx context.Context, state types.OAuthState) error {
	query := `
		INSERT INTO oauth_states (state, user_id, platform, redirect_to, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var userId *uint
	if state.UserId != 0 {
		userId = &state.UserId
	}
	if _, err := b.db.ExecContext(ctx, query, state.State, userId, state.Platform, state.RedirectTo, state.ExpiresAt); err != nil {
		return fmt.Errorf("create oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState deletes and returns the state in one statement, so a
// state can never be used twice. Expired states are deleted but reported
// as invalid.
func (b *PostgresBackend) ConsumeOAuthState(ctx context.Context, state string) (*types.OAuthState, error) {
	query := `
		DELETE FROM oauth_states WHERE state = $1
		RETURNING state, user_id, platform, redirect_to, expires_at
	`

	var s types.OAuthState
	var userId sql.NullInt64
	var redirectTo sql.NullString
	err := b.db.QueryRowContext(ctx, query, state).Scan(&s.State, &userId, &s.Platform, &redirectTo, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, types.ErrStateInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}
	if userId.Valid {
		s.UserId = uint(userId.Int64)
	}
	s.RedirectTo = redirectTo.String

	if time.Now().After(s.ExpiresAt) {
		return nil, types.ErrStateInvalid
	}
	return &s, nil
}
