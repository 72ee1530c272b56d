// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paperlens/pkg/types"
)

// ErrNotFound is returned by Get for a page that was never recorded.
var ErrNotFound = errors.New("page not found in history")

// PageRecord is one row of the page listing.
type PageRecord struct {
	URL        string     `json:"url" yaml:"url"`
	Title      string     `json:"title" yaml:"title"`
	Site       types.Site `json:"site" yaml:"site"`
	Summary    string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Equations  int        `json:"equations" yaml:"equations"`
	AnalyzedAt time.Time  `json:"analyzedAt" yaml:"analyzedAt"`
}

// SearchResult is an equation matched by a full-text search, with the page
// it came from.
type SearchResult struct {
	PageURL   string                 `json:"pageUrl" yaml:"pageUrl"`
	PageTitle string                 `json:"pageTitle" yaml:"pageTitle"`
	Equation  types.AnalyzedEquation `json:"equation" yaml:"equation"`
}

const equationColumns = `e.page_index, e.format, e.context, e.parsed, e.explanation, e.explain_error`

// Recent returns the most recently analyzed pages, newest first. A
// non-positive limit uses the store default.
func (s *Store) Recent(ctx context.Context, limit int) ([]PageRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.url, p.title, p.site, p.summary, p.analyzed_at,
			(SELECT count(*) FROM equations e WHERE e.page_url = p.url)
		FROM pages p
		ORDER BY p.analyzed_at DESC, p.url
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent pages: %w", err)
	}
	defer rows.Close()

	var out []PageRecord
	for rows.Next() {
		var (
			r       PageRecord
			title   sql.NullString
			site    sql.NullString
			summary sql.NullString
			at      int64
		)
		if err := rows.Scan(&r.URL, &title, &site, &summary, &at, &r.Equations); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		r.Title = title.String
		r.Site = types.Site(site.String)
		r.Summary = summary.String
		r.AnalyzedAt = time.Unix(0, at).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Search runs a full-text query over the original and readable text of
// stored equations. Each whitespace-separated word of query is matched as a
// quoted term, and all terms must match. Results are ordered by complexity,
// most complex first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.url, p.title, `+equationColumns+`
		FROM equations_fts
		JOIN equations e ON e.rowid = equations_fts.docid
		JOIN pages p ON p.url = e.page_url
		WHERE equations_fts MATCH ?
		ORDER BY e.complexity DESC, e.rowid
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			r     SearchResult
			title sql.NullString
		)
		eq, err := scanEquation(rows, &r.PageURL, &title)
		if err != nil {
			return nil, err
		}
		r.PageTitle = title.String
		r.Equation = eq
		out = append(out, r)
	}
	return out, rows.Err()
}

// ftsQuery quotes each word of q as an FTS phrase so user input cannot
// inject query syntax. Double quotes in q are dropped; the tokenizer treats
// them as separators anyway.
func ftsQuery(q string) string {
	var terms []string
	for _, w := range strings.Fields(strings.ReplaceAll(q, `"`, " ")) {
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " ")
}

// Equations returns the stored equations of a page in their recorded
// order.
func (s *Store) Equations(ctx context.Context, url string) ([]types.AnalyzedEquation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+equationColumns+`
		FROM equations e
		WHERE e.page_url = ?
		ORDER BY e.position`, url)
	if err != nil {
		return nil, fmt.Errorf("querying equations for %s: %w", url, err)
	}
	defer rows.Close()

	var out []types.AnalyzedEquation
	for rows.Next() {
		eq, err := scanEquation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, rows.Err()
}

// Get returns the full stored analysis of a page, or ErrNotFound.
func (s *Store) Get(ctx context.Context, url string) (types.PageAnalysis, error) {
	var (
		a         types.PageAnalysis
		title     sql.NullString
		site      sql.NullString
		summary   sql.NullString
		keyPoints sql.NullString
		at        int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT url, title, site, summary, key_points, analyzed_at FROM pages WHERE url = ?`, url,
	).Scan(&a.URL, &title, &site, &summary, &keyPoints, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return types.PageAnalysis{}, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	if err != nil {
		return types.PageAnalysis{}, fmt.Errorf("querying page %s: %w", url, err)
	}
	a.Title = title.String
	a.Site = types.Site(site.String)
	a.Summary = summary.String
	a.AnalyzedAt = time.Unix(0, at).UTC()
	if keyPoints.Valid && keyPoints.String != "" {
		if err := json.Unmarshal([]byte(keyPoints.String), &a.KeyPoints); err != nil {
			return types.PageAnalysis{}, fmt.Errorf("decoding key points for %s: %w", url, err)
		}
	}

	a.Equations, err = s.Equations(ctx, url)
	if err != nil {
		return types.PageAnalysis{}, err
	}
	return a, nil
}

// scanEquation reads the equationColumns of one row, after any leading
// destinations.
func scanEquation(rows *sql.Rows, lead ...any) (types.AnalyzedEquation, error) {
	var (
		eq           types.AnalyzedEquation
		format       string
		eqContext    sql.NullString
		parsed       string
		explanation  sql.NullString
		explainError sql.NullString
	)
	dest := append(lead, &eq.Index, &format, &eqContext, &parsed, &explanation, &explainError)
	if err := rows.Scan(dest...); err != nil {
		return eq, fmt.Errorf("scanning equation row: %w", err)
	}
	eq.Format = types.MarkupFormat(format)
	eq.Context = eqContext.String
	eq.ExplainError = explainError.String
	if err := json.Unmarshal([]byte(parsed), &eq.Parsed); err != nil {
		return eq, fmt.Errorf("decoding parsed equation: %w", err)
	}
	if explanation.Valid {
		eq.Explanation = &types.ExplainResponse{}
		if err := json.Unmarshal([]byte(explanation.String), eq.Explanation); err != nil {
			return eq, fmt.Errorf("decoding explanation: %w", err)
		}
	}
	return eq, nil
}
