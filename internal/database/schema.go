package database

// schema is applied in order by Migrate.
// Replies and likes reference messages with ON DELETE CASCADE, so deleting a
// message removes everything that hangs off it.
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS messages (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username         TEXT NOT NULL,
		content          TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		likes            INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
		file_name        TEXT,
		file_url         TEXT,
		file_size        BIGINT,
		file_type        TEXT,
		file_key         TEXT,
		file_preview_url TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_likes ON messages (likes DESC, id DESC)`,

	`CREATE TABLE IF NOT EXISTS replies (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		message_id UUID NOT NULL REFERENCES messages (id) ON DELETE CASCADE,
		username   TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_replies_message ON replies (message_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS likes (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		message_id UUID NOT NULL REFERENCES messages (id) ON DELETE CASCADE,
		username   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (message_id, username)
	)`,
}
