package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loopmsg/wabridge/pkg/types"
)

const connectionColumns = `id, external_id, user_id, platform, platform_user_id, credentials, is_active, last_sync_at, created_at, updated_at`

func scanConnection(row interface{ Scan(...any) error }) (*types.PlatformConnection, error) {
	var c types.PlatformConnection
	var lastSync sql.NullTime
	err := row.Scan(
		&c.Id, &c.ExternalId, &c.UserId, &c.Platform, &c.PlatformUserId,
		&c.Credentials, &c.IsActive, &lastSync, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastSync.Valid {
		c.LastSyncAt = &lastSync.Time
	}
	return &c, nil
}

// UpsertConnection creates or replaces the active connection for
// (user, platform), storing the serialized token bundle
func (b *PostgresBackend) UpsertConnection(ctx context.Context, userId uint, platform, platformUserId string, bundle types.TokenBundle) (*types.PlatformConnection, error) {
	credBytes, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	query := `
		INSERT INTO platform_connections (external_id, user_id, platform, platform_user_id, credentials, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (user_id, platform) WHERE is_active
		DO UPDATE SET platform_user_id = EXCLUDED.platform_user_id, credentials = EXCLUDED.credentials, updated_at = CURRENT_TIMESTAMP
		RETURNING ` + connectionColumns

	conn, err := scanConnection(b.db.QueryRowContext(ctx, query, uuid.New().String(), userId, platform, platformUserId, credBytes))
	if err != nil {
		return nil, fmt.Errorf("upsert connection: %w", err)
	}
	return conn, nil
}

// GetActiveConnection returns the active connection for (user, platform),
// or ErrNotConnected when none exists
func (b *PostgresBackend) GetActiveConnection(ctx context.Context, userId uint, platform string) (*types.PlatformConnection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM platform_connections WHERE user_id = $1 AND platform = $2 AND is_active
	`

	conn, err := scanConnection(b.db.QueryRowContext(ctx, query, userId, platform))
	if err == sql.ErrNoRows {
		return nil, types.ErrNotConnected
	}
	if err != nil {
		return nil, fmt.Errorf("get active connection: %w", err)
	}
	return conn, nil
}

// ListConnections returns all connections for a user, active first
func (b *PostgresBackend) ListConnections(ctx context.Context, userId uint) ([]types.PlatformConnection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM platform_connections WHERE user_id = $1 ORDER BY is_active DESC, platform, created_at DESC
	`

	rows, err := b.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []types.PlatformConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, *conn)
	}
	return conns, rows.Err()
}

// UpdateConnectionCredentials overwrites the stored token bundle. This is
// the single conditional write the token resolver performs per request.
func (b *PostgresBackend) UpdateConnectionCredentials(ctx context.Context, connectionId uint, bundle types.TokenBundle) error {
	credBytes, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	query := `UPDATE platform_connections SET credentials = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := b.db.ExecContext(ctx, query, connectionId, credBytes); err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	return nil
}

// UpdateLastSync records the time of the last successful data fetch
func (b *PostgresBackend) UpdateLastSync(ctx context.Context, connectionId uint, at time.Time) error {
	query := `UPDATE platform_connections SET last_sync_at = $2 WHERE id = $1`
	if _, err := b.db.ExecContext(ctx, query, connectionId, at); err != nil {
		return fmt.Errorf("update last sync: %w", err)
	}
	return nil
}

// DeactivateConnection logically disconnects a platform; rows are kept for
// audit and the next successful OAuth callback creates a fresh active row
func (b *PostgresBackend) DeactivateConnection(ctx context.Context, userId uint, platform string) error {
	query := `UPDATE platform_connections SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE user_id = $1 AND platform = $2 AND is_active`
	result, err := b.db.ExecContext(ctx, query, userId, platform)
	if err != nil {
		return fmt.Errorf("deactivate connection: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return types.ErrNotConnected
	}
	return nil
}
