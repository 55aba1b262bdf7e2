package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(database); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return database, nil
}

func runMigrations(database *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            full_name TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'member',
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            created_by INT NOT NULL REFERENCES users(id),
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS room_members (
            room_id INT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            user_id INT NOT NULL REFERENCES users(id),
            joined_at TIMESTAMPTZ DEFAULT NOW(),
            PRIMARY KEY(room_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS room_messages (
            id SERIAL PRIMARY KEY,
            room_id INT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
            sender_id INT NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            message_type TEXT NOT NULL DEFAULT 'text',
            metadata JSONB,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_room_messages_room_created
            ON room_messages (room_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS direct_messages (
            id SERIAL PRIMARY KEY,
            sender_id INT NOT NULL REFERENCES users(id),
            receiver_id INT NOT NULL REFERENCES users(id),
            content TEXT NOT NULL,
            message_type TEXT NOT NULL DEFAULT 'text',
            metadata JSONB,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_direct_messages_pair
            ON direct_messages (sender_id, receiver_id, created_at, id);`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            notification_type TEXT NOT NULL,
            content TEXT NOT NULL,
            metadata JSONB,
            seen BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS tools (
            id SERIAL PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            credit_cost INT NOT NULL CHECK (credit_cost >= 0),
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS member_credits (
            user_id INT PRIMARY KEY REFERENCES users(id),
            balance INT NOT NULL DEFAULT 0 CHECK (balance >= 0),
            updated_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS tool_sessions (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL REFERENCES users(id),
            tool_id INT NOT NULL REFERENCES tools(id),
            credits_spent INT NOT NULL,
            started_at TIMESTAMPTZ DEFAULT NOW(),
            ended_at TIMESTAMPTZ
        );`,
		// One active session per member; the insert path relies on this index
		// to reject a concurrent double-start.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tool_sessions_single_active
            ON tool_sessions (user_id) WHERE ended_at IS NULL;`,
	}

	for _, m := range migrations {
		if _, err := database.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
