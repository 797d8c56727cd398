package database

import (
	"context"
	"database/sql"
)

// schema is applied on every open; each statement is idempotent.
// Images and reviews are stored as JSON arrays.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id             INTEGER PRIMARY KEY,
		name           TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		price          REAL NOT NULL DEFAULT 0,
		discount       INTEGER NOT NULL DEFAULT 0,
		final_price    REAL NOT NULL DEFAULT 0,
		category_id    INTEGER NOT NULL,
		average_rating REAL NOT NULL DEFAULT 0,
		review_count   INTEGER NOT NULL DEFAULT 0,
		stock          INTEGER NOT NULL DEFAULT 0,
		images         TEXT NOT NULL DEFAULT '[]',
		reviews        TEXT NOT NULL DEFAULT '[]'
	)`,

	`CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
