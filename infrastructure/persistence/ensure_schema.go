package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		user_name TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		user_id BIGINT PRIMARY KEY,
		balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id BIGSERIAL PRIMARY KEY,
		account_id BIGINT NOT NULL REFERENCES accounts(user_id),
		amount BIGINT NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		prompt TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		is_public BOOLEAN NOT NULL DEFAULT false,
		is_featured BOOLEAN NOT NULL DEFAULT false,
		current_bid BIGINT NOT NULL DEFAULT 0,
		featured_until TIMESTAMPTZ NULL,
		votes_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_user ON videos (user_id)`,
	`CREATE TABLE IF NOT EXISTS featured_slot (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		video_id BIGINT NULL REFERENCES videos(id),
		current_bid BIGINT NOT NULL DEFAULT 0,
		featured_until TIMESTAMPTZ NULL,
		version BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`INSERT INTO featured_slot (id, version) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`,
	`CREATE TABLE IF NOT EXISTS referrals (
		id BIGSERIAL PRIMARY KEY,
		referrer_id BIGINT NOT NULL,
		referred_id BIGINT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals (referrer_id)`,
	`CREATE TABLE IF NOT EXISTS weekly_referral_stats (
		id BIGSERIAL PRIMARY KEY,
		referrer_id BIGINT NOT NULL,
		week_start TIMESTAMPTZ NOT NULL,
		week_end TIMESTAMPTZ NOT NULL,
		new_referrals INTEGER NOT NULL DEFAULT 0,
		total_spending BIGINT NOT NULL DEFAULT 0,
		leaderboard_position INTEGER NULL,
		payout_percent INTEGER NULL,
		payout_amount BIGINT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (referrer_id, week_start)
	)`,
}

// EnsureSchema creates the tables this service owns and adds columns that
// older deployments lack. Safe to call at startup.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"videos", "tokens_cost", "ALTER TABLE videos ADD COLUMN tokens_cost BIGINT NOT NULL DEFAULT 0"},
	}
	for _, c := range checks {
		exists, err := columnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
