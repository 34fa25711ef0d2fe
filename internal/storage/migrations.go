package storage

import (
	"database/sql"
	"fmt"

	"github.com/martinsuchenak/invd/internal/log"
)

// migrations are applied in order, each inside its own transaction. Version 1
// is the initial device schema; later versions append.
var migrations = []struct {
	version int
	apply   func(tx *sql.Tx) error
}{
	{1, migrateV1},
}

// applyMigrations brings the schema up to the latest version idempotently
func (ss *SQLiteStorage) applyMigrations() error {
	_, err := ss.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current sql.NullInt64
	err = ss.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("checking migration version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}

		tx, err := ss.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %d: %w", m.version, err)
		}

		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.version, err)
		}

		log.Info("Applied schema migration", "version", m.version)
	}
	return nil
}

// migrateV1 creates the devices table with the unique ip_address index and
// the query indexes on name and status
func migrateV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			last_checked TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating devices table: %w", err)
	}

	if _, err := tx.Exec(`CREATE UNIQUE INDEX uniq_devices_ip ON devices(ip_address)`); err != nil {
		return fmt.Errorf("creating unique ip index: %w", err)
	}
	if _, err := tx.Exec(`CREATE INDEX idx_devices_name ON devices(name)`); err != nil {
		return fmt.Errorf("creating name index: %w", err)
	}
	if _, err := tx.Exec(`CREATE INDEX idx_devices_status ON devices(status)`); err != nil {
		return fmt.Errorf("creating status index: %w", err)
	}
	return nil
}
