package backend_postgres_migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upInitial, downInitial)
}

func upInitial(tx *sql.Tx) error {
	// Ensure UUID extension is available
	if _, err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`); err != nil {
		return err
	}

	createStatements := []string{
		// Dashboard users
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		// Linked external accounts. Credentials hold the serialized token
		// bundle; refresh overwrites it in place.
		`CREATE TABLE IF NOT EXISTS platform_connections (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			platform VARCHAR(50) NOT NULL,
			platform_user_id VARCHAR(255) NOT NULL,
			credentials BYTEA NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_sync_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`,

		// Single-use CSRF states for the authorization-code flow. user_id is
		// NULL for login flows, where the user row is created in the callback.
		`CREATE TABLE IF NOT EXISTS oauth_states (
			state VARCHAR(64) PRIMARY KEY,
			user_id INT REFERENCES users(id) ON DELETE CASCADE,
			platform VARCHAR(50) NOT NULL,
			redirect_to TEXT,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);`,

		// User-curated pinned messages
		`CREATE TABLE IF NOT EXISTS pinned_messages (
			id SERIAL PRIMARY KEY,
			external_id UUID DEFAULT uuid_generate_v4() UNIQUE NOT NULL,
			connection_id INT NOT NULL REFERENCES platform_connections(id) ON DELETE CASCADE,
			user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			message_id VARCHAR(255) NOT NULL,
			sender VARCHAR(512),
			subject TEXT,
			content TEXT,
			priority VARCHAR(50),
			status VARCHAR(50) NOT NULL DEFAULT 'starred',
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			message_date TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, message_id)
		);`,

		// Indexes
		`CREATE INDEX idx_platform_connections_user ON platform_connections(user_id);`,
		`CREATE INDEX idx_oauth_states_expires ON oauth_states(expires_at);`,
		`CREATE INDEX idx_pinned_messages_user ON pinned_messages(user_id);`,

		// At most one active connection per (user, platform)
		`CREATE UNIQUE INDEX idx_platform_connections_active
			ON platform_connections(user_id, platform) WHERE is_active;`,
	}

	for _, stmt := range createStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func downInitial(tx *sql.Tx) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS pinned_messages;`,
		`DROP TABLE IF EXISTS oauth_states;`,
		`DROP TABLE IF EXISTS platform_connections;`,
		`DROP TABLE IF EXISTS users;`,
	}

	for _, stmt := range dropStatements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
