package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// migration is one schema version. Statements are applied in order inside a
// single transaction and recorded in schema_migrations.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_location_points",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS location_points (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id       TEXT    NOT NULL,
				latitude      REAL    NOT NULL,
				longitude     REAL    NOT NULL,
				timestamp_ms  INTEGER NOT NULL,
				accuracy      REAL,
				speed_mps     REAL,
				heading_deg   REAL,
				city_name     TEXT    NOT NULL DEFAULT '',
				province_name TEXT    NOT NULL DEFAULT '',
				created_at    TEXT    NOT NULL DEFAULT (datetime('now'))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_location_points_user_time
				ON location_points(user_id, timestamp_ms)`,
			`CREATE INDEX IF NOT EXISTS idx_location_points_user_city_time
				ON location_points(user_id, city_name, timestamp_ms)`,
		},
	},
	{
		version: 2,
		name:    "create_city_visits",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS city_visits (
				id               INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id          TEXT    NOT NULL,
				city_name        TEXT    NOT NULL,
				province_name    TEXT    NOT NULL,
				first_visit_date TEXT    NOT NULL,
				last_visit_date  TEXT    NOT NULL,
				visit_count      INTEGER NOT NULL DEFAULT 1,
				total_stay_hours REAL    NOT NULL DEFAULT 0,
				is_lighted       INTEGER NOT NULL DEFAULT 0,
				latitude         REAL    NOT NULL,
				longitude        REAL    NOT NULL,
				UNIQUE(user_id, city_name, province_name)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_city_visits_user_last
				ON city_visits(user_id, last_visit_date)`,
		},
	},
}

// Migrate applies all pending migrations
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read schema_migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := Transaction(context.Background(), db, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			if _, err := tx.Exec(
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
				m.version, m.name,
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Printf("Applied migration %d: %s", m.version, m.name)
	}

	return nil
}
