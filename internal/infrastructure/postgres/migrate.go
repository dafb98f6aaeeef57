package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		full_name  TEXT NOT NULL DEFAULT '',
		company_id TEXT REFERENCES companies(id),
		role       TEXT NOT NULL DEFAULT 'employee',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS email_verifications (
		user_id           TEXT PRIMARY KEY,
		email             TEXT NOT NULL,
		verification_code TEXT NOT NULL,
		issued_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at        TIMESTAMPTZ NOT NULL,
		verified          BOOLEAN NOT NULL DEFAULT FALSE,
		verified_at       TIMESTAMPTZ
	)`,
}

// Migrate creates the relational tables if they don't already exist.
// Safe to call on every startup.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
