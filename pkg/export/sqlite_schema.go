package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in the meta table of every snapshot.
const SchemaVersion = 1

// CreateSchema creates the snapshot tables.
func CreateSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity_groups (
			key         TEXT PRIMARY KEY,
			position    INTEGER NOT NULL,
			display     TEXT NOT NULL,
			block_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS columns (
			position INTEGER PRIMARY KEY,
			name     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS group_values (
			group_key   TEXT NOT NULL REFERENCES activity_groups(key),
			kind        TEXT NOT NULL,
			column_name TEXT NOT NULL,
			position    INTEGER NOT NULL,
			value       TEXT NOT NULL,
			PRIMARY KEY (group_key, kind, column_name, position)
		)`,
		`CREATE TABLE IF NOT EXISTS blocks (
			idx          INTEGER PRIMARY KEY,
			group_key    TEXT REFERENCES activity_groups(key),
			timestamp    TEXT,
			user         TEXT,
			is_comment   INTEGER NOT NULL DEFAULT 0,
			comment_text TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS summary_rows (
			group_key       TEXT NOT NULL REFERENCES activity_groups(key),
			column_position INTEGER NOT NULL,
			column_name     TEXT NOT NULL,
			cell            TEXT NOT NULL,
			PRIMARY KEY (group_key, column_position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_group ON blocks(group_key)`,
		`CREATE INDEX IF NOT EXISTS idx_values_column ON group_values(column_name)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// CreateViews adds convenience views for ad-hoc querying.
func CreateViews(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE VIEW IF NOT EXISTS v_group_overview AS
		SELECT g.position, g.display, g.block_count,
		       (SELECT cell FROM summary_rows r WHERE r.group_key = g.key AND r.column_position = 1) AS users
		FROM activity_groups g
		ORDER BY g.position
	`)
	return err
}

// InsertMetaValue upserts one metadata entry.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file after the bulk inserts.
func OptimizeDatabase(db *sql.DB) error {
	if _, err := db.Exec(`ANALYZE`); err != nil {
		return err
	}
	_, err := db.Exec(`VACUUM`)
	return err
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
