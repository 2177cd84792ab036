package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS gallery`,
	`CREATE TABLE IF NOT EXISTS gallery.users (
		id UUID PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		salt BYTEA NOT NULL,
		derived_hash BYTEA NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'user',
		created_at VARCHAR(40) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gallery.settings (
		owner_id UUID PRIMARY KEY,
		theme VARCHAR(50) NOT NULL,
		accent VARCHAR(6) NOT NULL,
		view_mode VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gallery.galleries (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		icon VARCHAR(255) NOT NULL,
		color VARCHAR(6) NOT NULL,
		pinned BOOLEAN NOT NULL DEFAULT false,
		created_at VARCHAR(40) NOT NULL,
		updated_at VARCHAR(40) NOT NULL,
		deleted_at VARCHAR(40)
	)`,
	`CREATE INDEX IF NOT EXISTS galleries_owner_idx ON gallery.galleries (owner_id)`,
	`CREATE TABLE IF NOT EXISTS gallery.posts (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL,
		gallery_owner_id UUID,
		gallery_id UUID NOT NULL,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at VARCHAR(40) NOT NULL,
		updated_at VARCHAR(40) NOT NULL,
		deleted_at VARCHAR(40),
		deleted_reason VARCHAR(20) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS posts_author_idx ON gallery.posts (author_id)`,
	`CREATE INDEX IF NOT EXISTS posts_gallery_idx ON gallery.posts (gallery_id)`,
	`CREATE TABLE IF NOT EXISTS gallery.comments (
		id UUID PRIMARY KEY,
		author_id UUID NOT NULL,
		post_id UUID NOT NULL,
		body TEXT NOT NULL,
		created_at VARCHAR(40) NOT NULL,
		updated_at VARCHAR(40) NOT NULL,
		deleted_at VARCHAR(40)
	)`,
	`CREATE INDEX IF NOT EXISTS comments_post_idx ON gallery.comments (post_id)`,
}

// Migrate creates the gallery schema and tables if they do not exist.
// Timestamp columns hold the fixed-width RFC 3339 strings produced by
// simplegallery.FormatTime, so index order matches chronological order.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
