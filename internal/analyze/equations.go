// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"slices"
	"sort"
	"strings"

	"github.com/pdiddy/paperlens/internal/mathnorm"
	"github.com/pdiddy/paperlens/internal/mathscan"
	"github.com/pdiddy/paperlens/pkg/types"
)

// Equations gathers the equations of a page, parses each one, and returns
// them ordered by complexity, most complex first. Ties keep page order.
//
// Sources are read in this order: the explicit Equations list, delimited
// math in the abstract and section text, then MathML and MathJax blocks in
// the HTML fragment. MathML that carries a TeX annotation is analyzed as
// LaTeX; other MathML goes through the tree entry point, and malformed
// MathML is logged and skipped. Equations whose cleaned form is empty or
// repeats an earlier one are dropped.
func (a *Analyzer) Equations(page types.PageContent) []types.AnalyzedEquation {
	seen := make(map[cacheKey]bool)
	var out []types.AnalyzedEquation
	for _, raw := range a.collect(page) {
		format, parsed, ok := a.parse(raw)
		if !ok || parsed.Cleaned == "" {
			continue
		}
		key := cacheKey{format: format, markup: parsed.Cleaned}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, types.AnalyzedEquation{
			Index:   len(out),
			Format:  format,
			Context: raw.Context,
			Parsed:  parsed,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Parsed.Structure.Complexity > out[j].Parsed.Structure.Complexity
	})
	return out
}

func (a *Analyzer) collect(page types.PageContent) []types.RawEquation {
	raws := slices.Clone(page.Equations)
	raws = append(raws, mathscan.Scan(page.Abstract)...)
	for _, s := range page.Sections {
		raws = append(raws, mathscan.Scan(s.Text)...)
	}
	if strings.TrimSpace(page.HTML) != "" {
		found, err := mathscan.ScanHTML(strings.NewReader(page.HTML))
		if err != nil {
			a.log.Warn().Err(err).Str("url", page.URL).Msg("scanning page html")
		}
		raws = append(raws, found...)
	}
	return raws
}

// parse normalizes one raw equation, memoizing by format and markup. It
// returns the format the equation was analyzed in.
func (a *Analyzer) parse(raw types.RawEquation) (types.MarkupFormat, types.ParsedEquation, bool) {
	format := raw.Format
	if format == "" {
		format = types.FormatLaTeX
	}
	if format == types.FormatMathML {
		if tex, ok := mathnorm.TeXAnnotation(raw.Markup); ok {
			format, raw.Markup = types.FormatLaTeX, tex
		}
	}

	key := cacheKey{format: format, markup: raw.Markup}
	if eq, ok := a.cache.Get(key); ok {
		return format, clone(eq), true
	}

	var eq types.ParsedEquation
	switch format {
	case types.FormatMathML:
		var err error
		eq, err = mathnorm.ParseMathML(raw.Markup)
		if err != nil {
			a.log.Warn().Err(err).Msg("skipping equation")
			return format, types.ParsedEquation{}, false
		}
	default:
		eq = mathnorm.Parse(raw.Markup)
	}
	a.cache.Add(key, eq)
	return format, clone(eq), true
}

// clone copies the slices of a cached parse so callers cannot alias the
// cache entry.
func clone(eq types.ParsedEquation) types.ParsedEquation {
	eq.Variables = slices.Clone(eq.Variables)
	eq.Operators = slices.Clone(eq.Operators)
	eq.Functions = slices.Clone(eq.Functions)
	return eq
}
