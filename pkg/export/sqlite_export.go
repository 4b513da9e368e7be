// Package export writes a consolidated activity summary to files: CSV,
// markdown, JSON, a SQLite snapshot and SVG/PNG charts.
//
// This file implements the SQLiteExporter, which stores one run's groups,
// value sets, rendered rows and source blocks so they can be queried with
// any SQLite client.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/smantzavinos/activity_viewer/pkg/model"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteExporter exports a summary to a SQLite database.
type SQLiteExporter struct {
	Summary *model.Summary
	Table   *model.Table
	Meta    ExportMeta
}

// NewSQLiteExporter creates a new exporter with the given data.
func NewSQLiteExporter(s *model.Summary, t *model.Table, meta ExportMeta) *SQLiteExporter {
	return &SQLiteExporter{Summary: s, Table: t, Meta: meta}
}

// Export writes the database to dbPath, replacing any existing file.
func (e *SQLiteExporter) Export(dbPath string) error {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	// Remove existing database if present
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertColumns(db); err != nil {
		return fmt.Errorf("insert columns: %w", err)
	}
	if err := e.insertGroups(db); err != nil {
		return fmt.Errorf("insert groups: %w", err)
	}
	if err := e.insertValues(db); err != nil {
		return fmt.Errorf("insert values: %w", err)
	}
	if err := e.insertRows(db); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	if err := e.insertBlocks(db); err != nil {
		return fmt.Errorf("insert blocks: %w", err)
	}
	if err := CreateViews(db); err != nil {
		return fmt.Errorf("create views: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	return db.Close()
}

// insertColumns records the table header in order.
func (e *SQLiteExporter) insertColumns(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO columns (position, name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, h := range e.Table.Headers {
		if _, err := stmt.Exec(i, h); err != nil {
			return fmt.Errorf("insert column %q: %w", h, err)
		}
	}
	return tx.Commit()
}

// insertGroups inserts one row per group in table order.
func (e *SQLiteExporter) insertGroups(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO activity_groups (key, position, display, block_count)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range e.Table.Rows {
		_, err := stmt.Exec(string(row.Key), i, row.Key.Display(), len(e.Summary.Blocks[row.Key]))
		if err != nil {
			return fmt.Errorf("insert group %s: %w", row.Key, err)
		}
	}
	return tx.Commit()
}

// insertValues stores every set member with its insertion position.
func (e *SQLiteExporter) insertValues(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO group_values (group_key, kind, column_name, position, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	insertSet := func(key model.GroupKey, kind, column string, set *model.OrderedSet) error {
		for pos, v := range set.Values() {
			if _, err := stmt.Exec(string(key), kind, column, pos, v); err != nil {
				return fmt.Errorf("insert %s value for %s: %w", kind, key, err)
			}
		}
		return nil
	}

	for _, row := range e.Table.Rows {
		g := e.Summary.Group(row.Key)
		if g == nil {
			continue
		}
		if err := insertSet(row.Key, "user", "User", g.Users); err != nil {
			return err
		}
		if e.Summary.TrackComments {
			if err := insertSet(row.Key, "comment", "Comments", g.Comments); err != nil {
				return err
			}
		}
		for _, name := range e.Summary.Schema {
			if err := insertSet(row.Key, "field", name, g.Field(name)); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// insertRows stores the rendered cells exactly as displayed.
func (e *SQLiteExporter) insertRows(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO summary_rows (group_key, column_position, column_name, cell)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range e.Table.Rows {
		for i, cell := range row.Cells {
			if _, err := stmt.Exec(string(row.Key), i, e.Table.Headers[i], cell); err != nil {
				return fmt.Errorf("insert cell %s/%d: %w", row.Key, i, err)
			}
		}
	}
	return tx.Commit()
}

// insertBlocks stores every scraped block, including those left out of
// the summary for lack of a timestamp.
func (e *SQLiteExporter) insertBlocks(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO blocks (idx, group_key, timestamp, user, is_comment, comment_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range e.Summary.Extracted {
		var groupKey, ts *string
		if key, ok := b.Key(); ok {
			k := string(key)
			groupKey = &k
			ts = &b.Timestamp
		}
		isComment := 0
		if b.IsComment {
			isComment = 1
		}
		if _, err := stmt.Exec(b.Index, groupKey, ts, b.User, isComment, b.CommentText); err != nil {
			return fmt.Errorf("insert block %d: %w", b.Index, err)
		}
	}
	return tx.Commit()
}

// insertMeta inserts export metadata.
func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	meta := map[string]string{
		"version":        e.Meta.Version,
		"run_id":         e.Meta.RunID,
		"generated_at":   e.Meta.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		"data_hash":      e.Meta.DataHash,
		"block_count":    strconv.Itoa(e.Summary.TotalBlocks),
		"group_count":    strconv.Itoa(e.Summary.GroupCount()),
		"skipped_count":  strconv.Itoa(e.Summary.SkippedBlocks),
		"schema_version": strconv.Itoa(SchemaVersion),
	}
	if e.Meta.Source != "" {
		meta["source"] = e.Meta.Source
	}
	if e.Meta.Title != "" {
		meta["title"] = e.Meta.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
