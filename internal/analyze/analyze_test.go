// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperlens/pkg/types"
)

type fakeBackend struct {
	mu        sync.Mutex
	explained []string
	asked     []types.QuestionRequest

	explainErr map[string]error
	analyzeErr error
	delay      time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeBackend) enter() func() {
	n := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return func() { f.inFlight.Add(-1) }
}

// wait simulates a backend round trip that gives up when ctx is done.
func (f *fakeBackend) wait(ctx context.Context) error {
	t := time.NewTimer(f.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *fakeBackend) Explain(ctx context.Context, req types.ExplainRequest) (types.ExplainResponse, error) {
	defer f.enter()()
	f.mu.Lock()
	f.explained = append(f.explained, req.Equation)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return types.ExplainResponse{}, err
	}
	if err := f.explainErr[req.Equation]; err != nil {
		return types.ExplainResponse{}, err
	}
	return types.ExplainResponse{Meaning: "meaning of " + req.Equation, Importance: "high"}, nil
}

func (f *fakeBackend) Analyze(ctx context.Context, req types.AnalyzeRequest) (types.AnalyzeResponse, error) {
	defer f.enter()()
	if f.analyzeErr != nil {
		return types.AnalyzeResponse{}, f.analyzeErr
	}
	if err := f.wait(ctx); err != nil {
		return types.AnalyzeResponse{}, err
	}
	return types.AnalyzeResponse{Summary: "summary of " + req.Title, KeyPoints: []string{"one"}}, nil
}

func (f *fakeBackend) Ask(_ context.Context, req types.QuestionRequest) (types.QuestionResponse, error) {
	f.mu.Lock()
	f.asked = append(f.asked, req)
	f.mu.Unlock()
	return types.QuestionResponse{Answer: "because"}, nil
}

func testConfig() types.AnalysisConfig {
	return types.DefaultAppConfig().Analysis
}

// samplePage has three distinct equations with complexities 1, 5 and 2,
// plus a duplicate and an empty one.
func samplePage() types.PageContent {
	return types.PageContent{
		URL:   "https://example.org/paper",
		Title: "Sample",
		Site:  types.SiteBlog,
		Equations: []types.RawEquation{
			{Markup: "x"},
			{Markup: `\frac{\frac{a}{b}}{c}`, Context: "nested"},
			{Markup: "$x$"},
			{Markup: "  "},
		},
		Sections: []types.Section{
			{Heading: "Method", Level: 1, Text: `We minimize \[ \sum_i x_i \] here.`},
		},
	}
}

func TestEquations_OrderAndDedup(t *testing.T) {
	a := New(testConfig(), nil, zerolog.Nop())
	eqs := a.Equations(samplePage())

	require.Len(t, eqs, 3)
	assert.Equal(t, `\frac{\frac{a}{b}}{c}`, eqs[0].Parsed.Cleaned)
	assert.Equal(t, 5, eqs[0].Parsed.Structure.Complexity)
	assert.Equal(t, 1, eqs[0].Index)
	assert.Equal(t, "nested", eqs[0].Context)

	assert.Equal(t, `\sum_i x_i`, eqs[1].Parsed.Cleaned)
	assert.Equal(t, 2, eqs[1].Index)
	assert.Equal(t, "We minimize here.", eqs[1].Context)

	assert.Equal(t, "x", eqs[2].Parsed.Cleaned)
	assert.Equal(t, 0, eqs[2].Index)
	for _, eq := range eqs {
		assert.Equal(t, types.FormatLaTeX, eq.Format)
	}
}

func TestEquations_StableTies(t *testing.T) {
	a := New(testConfig(), nil, zerolog.Nop())
	eqs := a.Equations(types.PageContent{Equations: []types.RawEquation{
		{Markup: "a"}, {Markup: "b"}, {Markup: "c"},
	}})
	require.Len(t, eqs, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{eqs[0].Index, eqs[1].Index, eqs[2].Index})
}

func TestEquations_MathML(t *testing.T) {
	page := types.PageContent{
		Equations: []types.RawEquation{
			{
				Format: types.FormatMathML,
				Markup: `<math><semantics><mi>x</mi><annotation encoding="application/x-tex">x = \frac{a}{b}</annotation></semantics></math>`,
			},
			{Format: types.FormatMathML, Markup: `<math><mi>z</mi><mo>+</mo><mn>1</mn></math>`},
			{Format: types.FormatMathML, Markup: `<math><mi>broken</math>`},
		},
		HTML: `<p>Here <math><mi>y</mi></math> appears.</p>`,
	}
	a := New(testConfig(), nil, zerolog.Nop())
	eqs := a.Equations(page)

	require.Len(t, eqs, 3)
	byCleaned := map[string]types.AnalyzedEquation{}
	for _, eq := range eqs {
		byCleaned[eq.Parsed.Cleaned] = eq
	}

	annotated, ok := byCleaned[`x = \frac{a}{b}`]
	require.True(t, ok)
	assert.Equal(t, types.FormatLaTeX, annotated.Format)
	assert.Equal(t, "x = (a)/(b)", annotated.Parsed.Readable)

	tree, ok := byCleaned["z+1"]
	require.True(t, ok)
	assert.Equal(t, types.FormatMathML, tree.Format)
	assert.Equal(t, types.DefaultStructure(), tree.Parsed.Structure)

	fromHTML, ok := byCleaned["y"]
	require.True(t, ok)
	assert.Equal(t, types.FormatMathML, fromHTML.Format)
	assert.Equal(t, "Here appears.", fromHTML.Context)
}

func TestEquations_CacheIsNotAliased(t *testing.T) {
	a := New(testConfig(), nil, zerolog.Nop())
	page := types.PageContent{Equations: []types.RawEquation{{Markup: `\alpha + \beta`}}}

	first := a.Equations(page)
	require.Len(t, first, 1)
	require.NotEmpty(t, first[0].Parsed.Variables)
	first[0].Parsed.Variables[0].Symbol = "mutated"

	second := a.Equations(page)
	assert.Equal(t, "α", second[0].Parsed.Variables[0].Symbol)
	assert.Equal(t, 1, a.cache.Len())
}

func TestAnalyzePage_NoBackend(t *testing.T) {
	a := New(testConfig(), nil, zerolog.Nop())
	got, err := a.AnalyzePage(context.Background(), samplePage())
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/paper", got.URL)
	assert.Equal(t, types.SiteBlog, got.Site)
	assert.Empty(t, got.Summary)
	assert.Len(t, got.Equations, 3)
	assert.False(t, got.AnalyzedAt.IsZero())
	for _, eq := range got.Equations {
		assert.Nil(t, eq.Explanation)
	}
}

func TestAnalyzePage_WithBackend(t *testing.T) {
	cfg := testConfig()
	cfg.ExplainTop = 2
	cfg.MinComplexity = 2
	fb := &fakeBackend{explainErr: map[string]error{`\sum_i x_i`: errors.New("boom")}}
	a := New(cfg, fb, zerolog.Nop())

	got, err := a.AnalyzePage(context.Background(), samplePage())
	require.NoError(t, err)

	assert.Equal(t, "summary of Sample", got.Summary)
	assert.Equal(t, []string{"one"}, got.KeyPoints)
	require.Len(t, got.Equations, 3)

	nested := got.Equations[0]
	require.NotNil(t, nested.Explanation)
	assert.Equal(t, `meaning of \frac{\frac{a}{b}}{c}`, nested.Explanation.Meaning)
	assert.Equal(t, "((a)/(b))/(c)", nested.Explanation.Readable)
	assert.Equal(t, []types.VariableMeaning{{Symbol: "a"}, {Symbol: "b"}, {Symbol: "c"}}, nested.Explanation.Variables)

	sum := got.Equations[1]
	assert.Nil(t, sum.Explanation)
	assert.Contains(t, sum.ExplainError, "boom")

	assert.Nil(t, got.Equations[2].Explanation)
	assert.Empty(t, got.Equations[2].ExplainError)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.ElementsMatch(t, []string{`\frac{\frac{a}{b}}{c}`, `\sum_i x_i`}, fb.explained)
}

func TestAnalyzePage_ExplainTopZero(t *testing.T) {
	cfg := testConfig()
	cfg.ExplainTop = 0
	fb := &fakeBackend{}
	a := New(cfg, fb, zerolog.Nop())

	got, err := a.AnalyzePage(context.Background(), samplePage())
	require.NoError(t, err)
	assert.Equal(t, "summary of Sample", got.Summary)
	assert.Empty(t, fb.explained)
}

func TestAnalyzePage_SummaryFailure(t *testing.T) {
	fb := &fakeBackend{analyzeErr: errors.New("backend down"), delay: 20 * time.Millisecond}
	a := New(testConfig(), fb, zerolog.Nop())

	got, err := a.AnalyzePage(context.Background(), samplePage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	assert.Empty(t, got.Summary)
	require.Len(t, got.Equations, 3)
	for _, eq := range got.Equations {
		assert.Empty(t, eq.ExplainError, "equation %d", eq.Index)
		if assert.NotNil(t, eq.Explanation, "equation %d", eq.Index) {
			assert.Equal(t, "meaning of "+eq.Parsed.Original, eq.Explanation.Meaning)
		}
	}
}

func TestAnalyzePage_CallerCancelReachesExplain(t *testing.T) {
	fb := &fakeBackend{delay: time.Minute}
	a := New(testConfig(), fb, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := a.AnalyzePage(ctx, samplePage())
	require.ErrorIs(t, err, context.Canceled)
	for _, eq := range got.Equations {
		assert.Nil(t, eq.Explanation)
		assert.Contains(t, eq.ExplainError, "context canceled")
	}
}

func TestAnalyzePage_BoundedConcurrency(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 2
	cfg.ExplainTop = 10
	cfg.MinComplexity = 0
	fb := &fakeBackend{delay: 10 * time.Millisecond}
	a := New(cfg, fb, zerolog.Nop())

	page := types.PageContent{Title: "Many"}
	for i := range 8 {
		page.Equations = append(page.Equations, types.RawEquation{Markup: fmt.Sprintf("x_{%d}", i)})
	}

	got, err := a.AnalyzePage(context.Background(), page)
	require.NoError(t, err)
	for _, eq := range got.Equations {
		assert.NotNil(t, eq.Explanation)
	}
	assert.LessOrEqual(t, fb.peak.Load(), int32(2))
	assert.Len(t, fb.explained, 8)
}

func TestAsk(t *testing.T) {
	page := samplePage()
	page.Abstract = "We study sums."

	_, err := New(testConfig(), nil, zerolog.Nop()).Ask(context.Background(), page, "why?")
	assert.ErrorIs(t, err, ErrNoBackend)

	fb := &fakeBackend{}
	a := New(testConfig(), fb, zerolog.Nop())

	_, err = a.Ask(context.Background(), page, "   ")
	assert.Error(t, err)

	resp, err := a.Ask(context.Background(), page, " why? ")
	require.NoError(t, err)
	assert.Equal(t, "because", resp.Answer)
	require.Len(t, fb.asked, 1)
	assert.Equal(t, "why?", fb.asked[0].Question)
	assert.Equal(t, page.URL, fb.asked[0].URL)
	assert.True(t, strings.HasPrefix(fb.asked[0].Context, "We study sums."))
}

func TestLoadPage(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "page.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"url": "https://arxiv.org/abs/1234.5678",
		"site": "arxiv",
		"title": "A Paper",
		"equations": [{"markup": "\\alpha", "display": true}],
		"extractedAt": "2026-01-02T03:04:05Z"
	}`), 0o644))

	page, err := LoadPage(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, types.SiteArxiv, page.Site)
	assert.Equal(t, "A Paper", page.Title)
	require.Len(t, page.Equations, 1)
	assert.Equal(t, `\alpha`, page.Equations[0].Markup)
	assert.True(t, page.Equations[0].Display)
	assert.Equal(t, 2026, page.ExtractedAt.Year())

	yamlPath := filepath.Join(dir, "page.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`url: https://example.org/post
site: medium
title: Blog Post
sections:
  - heading: Intro
    level: 1
    text: 'The loss $\mathcal{L}$ is small.'
`), 0o644))

	page, err = LoadPage(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, types.SiteMedium, page.Site)
	require.Len(t, page.Sections, 1)
	assert.Equal(t, `The loss $\mathcal{L}$ is small.`, page.Sections[0].Text)

	_, err = LoadPage(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadPage(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing page")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "a", truncate("aé", 2))
	assert.Equal(t, "", truncate("é", 1))
}
