// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs the page analysis pipeline: it gathers the equations
// of an extracted page, normalizes each one, ranks them by complexity, and,
// when a backend is configured, requests a page summary and explanations of
// the most complex equations.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paperlens/pkg/types"
)

// ErrNoBackend is returned by operations that need the remote backend when
// none is configured.
var ErrNoBackend = errors.New("no analysis backend configured")

const (
	defaultCacheSize = 512

	// maxContentBytes bounds the page text sent to the backend.
	maxContentBytes = 48 << 10
)

// Backend is the remote service consulted for explanations, summaries, and
// answers. *backend.Client satisfies it.
type Backend interface {
	Explain(ctx context.Context, req types.ExplainRequest) (types.ExplainResponse, error)
	Analyze(ctx context.Context, req types.AnalyzeRequest) (types.AnalyzeResponse, error)
	Ask(ctx context.Context, req types.QuestionRequest) (types.QuestionResponse, error)
}

type cacheKey struct {
	format types.MarkupFormat
	markup string
}

// Analyzer analyzes pages. It is safe for concurrent use.
type Analyzer struct {
	cfg     types.AnalysisConfig
	backend Backend
	log     zerolog.Logger
	cache   *lru.Cache[cacheKey, types.ParsedEquation]
}

// New returns an Analyzer. backend may be nil, in which case AnalyzePage
// only performs local analysis and Ask returns ErrNoBackend.
func New(cfg types.AnalysisConfig, backend Backend, logger zerolog.Logger) *Analyzer {
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[cacheKey, types.ParsedEquation](size)
	return &Analyzer{
		cfg:     cfg,
		backend: backend,
		log:     logger,
		cache:   cache,
	}
}

// AnalyzePage parses every equation on the page and, when a backend is
// configured, requests a summary and explanations for the top ExplainTop
// equations scoring at least MinComplexity. Explain calls run concurrently,
// at most Workers at a time. A failed explanation is recorded on its
// equation; a failed summary is returned as an error alongside the partial
// analysis.
func (a *Analyzer) AnalyzePage(ctx context.Context, page types.PageContent) (types.PageAnalysis, error) {
	analysis := types.PageAnalysis{
		URL:        page.URL,
		Title:      page.Title,
		Site:       page.Site,
		Equations:  a.Equations(page),
		AnalyzedAt: time.Now().UTC(),
	}
	a.log.Info().
		Str("url", page.URL).
		Int("equations", len(analysis.Equations)).
		Msg("parsed page equations")

	if a.backend == nil {
		return analysis, nil
	}

	// Explain calls run on ctx; a failed summary must not cancel them.
	var g errgroup.Group
	g.SetLimit(max(1, a.cfg.Workers))

	var summaryErr error
	g.Go(func() error {
		resp, err := a.backend.Analyze(ctx, types.AnalyzeRequest{
			URL:      page.URL,
			Title:    page.Title,
			Abstract: page.Abstract,
			Authors:  page.Authors,
			Content:  truncate(page.Text(), maxContentBytes),
		})
		if err != nil {
			summaryErr = fmt.Errorf("summarizing %s: %w", page.URL, err)
			return nil
		}
		analysis.Summary = resp.Summary
		analysis.KeyPoints = resp.KeyPoints
		return nil
	})

	for _, i := range a.explainTargets(analysis.Equations) {
		eq := &analysis.Equations[i]
		g.Go(func() error {
			a.explain(ctx, eq)
			return nil
		})
	}

	_ = g.Wait()
	return analysis, summaryErr
}

// explainTargets returns the indexes of the equations to explain. eqs is
// ordered by complexity, most complex first.
func (a *Analyzer) explainTargets(eqs []types.AnalyzedEquation) []int {
	var idx []int
	for i, eq := range eqs {
		if len(idx) >= a.cfg.ExplainTop || eq.Parsed.Structure.Complexity < a.cfg.MinComplexity {
			break
		}
		idx = append(idx, i)
	}
	return idx
}

func (a *Analyzer) explain(ctx context.Context, eq *types.AnalyzedEquation) {
	resp, err := a.backend.Explain(ctx, types.ExplainRequest{
		Equation: eq.Parsed.Original,
		Context:  eq.Context,
		Format:   eq.Format,
	})
	if err != nil {
		a.log.Warn().Err(err).Int("index", eq.Index).Msg("explaining equation")
		eq.ExplainError = err.Error()
		return
	}
	// The backend may leave out what the normalizer already knows.
	if resp.Readable == "" {
		resp.Readable = eq.Parsed.Readable
	}
	if len(resp.Variables) == 0 {
		for _, v := range eq.Parsed.Variables {
			resp.Variables = append(resp.Variables, types.VariableMeaning{Symbol: v.Symbol})
		}
	}
	eq.Explanation = &resp
}

// Ask forwards a question about page to the backend, with the page text as
// context.
func (a *Analyzer) Ask(ctx context.Context, page types.PageContent, question string) (types.QuestionResponse, error) {
	if a.backend == nil {
		return types.QuestionResponse{}, ErrNoBackend
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return types.QuestionResponse{}, fmt.Errorf("empty question")
	}
	resp, err := a.backend.Ask(ctx, types.QuestionRequest{
		Question: question,
		URL:      page.URL,
		Context:  truncate(page.Text(), maxContentBytes),
	})
	if err != nil {
		return types.QuestionResponse{}, fmt.Errorf("asking about %s: %w", page.URL, err)
	}
	return resp, nil
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
