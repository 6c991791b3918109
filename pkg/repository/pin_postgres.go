package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/loopmsg/wabridge/pkg/types"
)

const pinColumns = `id, external_id, connection_id, user_id, message_id, COALESCE(sender, ''), COALESCE(subject, ''), COALESCE(content, ''), COALESCE(priority, ''), status, is_read, message_date, created_at`

func scanPin(row interface{ Scan(...any) error }) (*types.PinnedMessage, error) {
	var p types.PinnedMessage
	err := row.Scan(
		&p.Id, &p.ExternalId, &p.ConnectionId, &p.UserId, &p.MessageId,
		&p.Sender, &p.Subject, &p.Content, &p.Priority, &p.Status,
		&p.IsRead, &p.MessageDate, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPinnedMessages returns a user's pinned messages, newest message first
func (b *PostgresBackend) ListPinnedMessages(ctx context.Context, userId uint) ([]types.PinnedMessage, error) {
	query := `
		SELECT ` + pinColumns + `
		FROM pinned_messages WHERE user_id = $1 ORDER BY message_date DESC
	`

	rows, err := b.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("list pinned messages: %w", err)
	}
	defer rows.Close()

	var pins []types.PinnedMessage
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pinned message: %w", err)
		}
		pins = append(pins, *pin)
	}
	return pins, rows.Err()
}

// CreatePinnedMessage pins one provider message. A second pin of the same
// message id for the same user hits the unique constraint and is rejected
// with ErrDuplicatePin, never overwritten.
func (b *PostgresBackend) CreatePinnedMessage(ctx context.Context, pin types.PinnedMessage) (*types.PinnedMessage, error) {
	query := `
		INSERT INTO pinned_messages (external_id, connection_id, user_id, message_id, sender, subject, content, priority, status, is_read, message_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + pinColumns

	status := pin.Status
	if status == "" {
		status = types.PinStatusStarred
	}

	created, err := scanPin(b.db.QueryRowContext(ctx, query,
		uuid.New().String(), pin.ConnectionId, pin.UserId, pin.MessageId, pin.Sender,
		pin.Subject, pin.Content, pin.Priority, status, pin.IsRead, pin.MessageDate,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, types.ErrDuplicatePin
		}
		return nil, fmt.Errorf("create pinned message: %w", err)
	}
	return created, nil
}

// DeletePinnedMessage removes one pin owned by the user
func (b *PostgresBackend) DeletePinnedMessage(ctx context.Context, userId uint, externalId string) error {
	query := `DELETE FROM pinned_messages WHERE user_id = $1 AND external_id = $2`
	result, err := b.db.ExecContext(ctx, query, userId, externalId)
	if err != nil {
		return fmt.Errorf("delete pinned message: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
