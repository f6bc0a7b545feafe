// Package sqlitemigrate applies embedded SQL migrations to a SQLite
// database, tracking applied files so replays are idempotent.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const versionTable = "schema_migrations"

const upMarker = "-- +migrate Up"
const downMarker = "-- +migrate Down"

type migration struct {
	key string // recorded in the version table
	sql string // statements from the Up section
}

// ApplyMigrations runs every pending .sql file under root in lexical order.
// Each file is applied inside its own transaction and recorded by name, so a
// file runs at most once across restarts.
func ApplyMigrations(sqlDB *sql.DB, migrationFS fs.FS, root string) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}

	pending, err := loadMigrations(migrationFS, root)
	if err != nil {
		return err
	}

	if err := ensureVersionTable(sqlDB); err != nil {
		return err
	}

	for _, m := range pending {
		applied, err := isApplied(sqlDB, m.key)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.key, err)
		}
		if applied || strings.TrimSpace(m.sql) == "" {
			continue
		}
		if err := applyOne(sqlDB, m); err != nil {
			return err
		}
	}
	return nil
}

func loadMigrations(migrationFS fs.FS, root string) ([]migration, error) {
	dir := strings.TrimSpace(root)
	if dir == "" {
		dir = "."
	}

	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var out []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		key := name
		if dir != "." {
			key = path.Join(dir, name)
		}
		content, err := fs.ReadFile(migrationFS, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{key: key, sql: upSection(string(content))})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

func ensureVersionTable(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, versionTable))
	if err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func applyOne(sqlDB *sql.DB, m migration) error {
	tx, err := sqlDB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.key, err)
	}

	if _, err := tx.Exec(m.sql); err != nil {
		// Tolerate DDL that was applied before the version row existed.
		if !isAlreadyExists(err) {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", m.key, err)
		}
	}

	record := fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", versionTable)
	if _, err := tx.Exec(record, m.key, time.Now().UTC().UnixMilli()); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", m.key, err)
	}
	return tx.Commit()
}

// upSection extracts the statements between the Up and Down markers. A file
// without markers is treated as a single Up migration.
func upSection(content string) string {
	up := strings.Index(content, upMarker)
	if up == -1 {
		return content
	}
	rest := content[up+len(upMarker):]
	if down := strings.Index(rest, downMarker); down != -1 {
		return rest[:down]
	}
	return rest
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}

func isApplied(sqlDB *sql.DB, key string) (bool, error) {
	var found int
	err := sqlDB.QueryRow("SELECT 1 FROM "+versionTable+" WHERE name = ?", key).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
