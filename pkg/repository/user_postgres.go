package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/loopmsg/wabridge/pkg/types"
)

// UpsertUser creates a user by email or refreshes the display name of an
// existing one
func (b *PostgresBackend) UpsertUser(ctx context.Context, email, name string) (*types.User, error) {
	query := `
		INSERT INTO users (external_id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email)
		DO UPDATE SET name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name)
		RETURNING id, external_id, email, COALESCE(name, ''), created_at
	`

	var u types.User
	err := b.db.QueryRowContext(ctx, query, uuid.New().String(), email, name).Scan(&u.Id, &u.ExternalId, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

// GetUserByExternalId returns a user by external id, or nil when not found
func (b *PostgresBackend) GetUserByExternalId(ctx context.Context, externalId string) (*types.User, error) {
	query := `
		SELECT id, external_id, email, COALESCE(name, ''), created_at
		FROM users WHERE external_id = $1
	`

	var u types.User
	err := b.db.QueryRowContext(ctx, query, externalId).Scan(&u.Id, &u.ExternalId, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
