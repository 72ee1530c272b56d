// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists page analyses in a SQLite database so earlier
// results can be listed, searched, and exported without re-running the
// backend.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperlens/pkg/types"
)

const dbFile = "history.db"

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the history database at
// cfg.HistoryDir/history.db and creates the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dir:        cfg.HistoryDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			url TEXT PRIMARY KEY,
			title TEXT,
			site TEXT,
			summary TEXT,
			key_points TEXT,
			analyzed_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS equations (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			page_url TEXT NOT NULL REFERENCES pages(url) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			page_index INTEGER NOT NULL,
			format TEXT NOT NULL,
			context TEXT,
			original TEXT NOT NULL,
			readable TEXT NOT NULL,
			type TEXT NOT NULL,
			complexity INTEGER NOT NULL,
			parsed TEXT NOT NULL,
			explanation TEXT,
			explain_error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equations_page_url ON equations(page_url)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_analyzed_at ON pages(analyzed_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 index over equation text, kept in sync by triggers. The docid of
	// each entry is the equation rowid.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='equations_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE equations_fts USING fts4(original, readable)`,
			`CREATE TRIGGER equations_ai AFTER INSERT ON equations BEGIN
				INSERT INTO equations_fts(docid, original, readable) VALUES (new.rowid, new.original, new.readable);
			END`,
			`CREATE TRIGGER equations_ad AFTER DELETE ON equations BEGIN
				DELETE FROM equations_fts WHERE docid = old.rowid;
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record stores an analysis. A page analyzed before is updated in place and
// its equations are replaced.
func (s *Store) Record(ctx context.Context, a types.PageAnalysis) error {
	if a.URL == "" {
		return fmt.Errorf("recording analysis: page has no URL")
	}
	keyPoints, err := json.Marshal(a.KeyPoints)
	if err != nil {
		return fmt.Errorf("encoding key points: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pages (url, title, site, summary, key_points, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			site = excluded.site,
			summary = excluded.summary,
			key_points = excluded.key_points,
			analyzed_at = excluded.analyzed_at`,
		a.URL, a.Title, string(a.Site), a.Summary, string(keyPoints), a.AnalyzedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("upserting page %s: %w", a.URL, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM equations WHERE page_url = ?`, a.URL); err != nil {
		return fmt.Errorf("clearing equations for %s: %w", a.URL, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO equations (page_url, position, page_index, format, context, original, readable,
			type, complexity, parsed, explanation, explain_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing equation insert: %w", err)
	}
	defer stmt.Close()

	for pos, eq := range a.Equations {
		parsed, err := json.Marshal(eq.Parsed)
		if err != nil {
			return fmt.Errorf("encoding equation %d: %w", pos, err)
		}
		var explanation sql.NullString
		if eq.Explanation != nil {
			data, err := json.Marshal(eq.Explanation)
			if err != nil {
				return fmt.Errorf("encoding explanation %d: %w", pos, err)
			}
			explanation = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			a.URL, pos, eq.Index, string(eq.Format), eq.Context, eq.Parsed.Original, eq.Parsed.Readable,
			string(eq.Parsed.Structure.Type), eq.Parsed.Structure.Complexity, string(parsed),
			explanation, eq.ExplainError,
		); err != nil {
			return fmt.Errorf("inserting equation %d: %w", pos, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing analysis: %w", err)
	}
	return nil
}
