package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied on startup. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id           TEXT PRIMARY KEY,
		display_name TEXT,
		bio          TEXT,
		location     TEXT,
		avatar_url   TEXT,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS clothing_items (
		id          UUID PRIMARY KEY,
		user_id     TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT,
		size        TEXT,
		category    TEXT,
		condition   TEXT,
		image_url   TEXT,
		price       NUMERIC(10, 2) CHECK (price IS NULL OR price >= 0),
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS clothing_items_feed_idx ON clothing_items (created_at DESC, id) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS clothing_items_user_idx ON clothing_items (user_id)`,
	`CREATE TABLE IF NOT EXISTS swipes (
		id         UUID PRIMARY KEY,
		swiper_id  TEXT NOT NULL,
		item_id    UUID NOT NULL REFERENCES clothing_items (id) ON DELETE CASCADE,
		direction  TEXT NOT NULL CHECK (direction IN ('left', 'right')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT swipes_swiper_item_key UNIQUE (swiper_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id         UUID PRIMARY KEY,
		item_id    UUID NOT NULL,
		liker_id   TEXT NOT NULL,
		owner_id   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT matches_item_liker_key UNIQUE (item_id, liker_id),
		CONSTRAINT matches_not_self CHECK (liker_id <> owner_id)
	)`,
	`CREATE INDEX IF NOT EXISTS matches_liker_idx ON matches (liker_id)`,
	`CREATE INDEX IF NOT EXISTS matches_owner_idx ON matches (owner_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         UUID PRIMARY KEY,
		seq        BIGSERIAL NOT NULL,
		match_id   UUID NOT NULL REFERENCES matches (id),
		sender_id  TEXT NOT NULL,
		content    TEXT NOT NULL CHECK (length(btrim(content)) > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_match_idx ON messages (match_id, created_at, seq)`,
}

// Migrate creates the tables and constraints the repositories rely on
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
