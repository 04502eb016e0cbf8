package store

import (
	"fmt"
	"strings"
)

// sqliteMigrations and postgresMigrations hold the same schema expressed in
// each dialect. Statements must stay idempotent; "duplicate column" errors
// from ALTER TABLE are swallowed so re-running is safe.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		totp_secret TEXT NOT NULL DEFAULT '',
		totp_enabled INTEGER NOT NULL DEFAULT 0,
		last_login_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		latitude REAL NOT NULL DEFAULT 0,
		longitude REAL NOT NULL DEFAULT 0,
		regular_price REAL NOT NULL DEFAULT 0,
		happy_hour_price REAL,
		status TEXT NOT NULL DEFAULT 'pending',
		submitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		submitted_by_ip TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bar_id INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		reported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		reported_by_ip TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS bans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		banned_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bars_status ON bars(status)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status)`,
	`CREATE INDEX IF NOT EXISTS idx_bans_ip ON bans(ip)`,
	`CREATE INDEX IF NOT EXISTS idx_bans_device ON bans(device_id)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id BIGSERIAL PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		totp_secret TEXT NOT NULL DEFAULT '',
		totp_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		last_login_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS bars (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
		regular_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		happy_hour_price DOUBLE PRECISION,
		status TEXT NOT NULL DEFAULT 'pending',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		submitted_by_ip TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		bar_id BIGINT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		reported_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reported_by_ip TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS bans (
		id BIGSERIAL PRIMARY KEY,
		ip TEXT NOT NULL DEFAULT '',
		device_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		banned_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bars_status ON bars(status)`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status)`,
	`CREATE INDEX IF NOT EXISTS idx_bans_ip ON bans(ip)`,
	`CREATE INDEX IF NOT EXISTS idx_bans_device ON bans(device_id)`,
}

func (s *Store) migrate() error {
	migrations := sqliteMigrations
	if s.driver == "postgres" {
		migrations = postgresMigrations
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			if strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
