// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paperlens/pkg/types"
)

var (
	matrixPattern = regexp.MustCompile(`\\begin\s*\{\s*(?:matrix|pmatrix|bmatrix|Bmatrix|vmatrix|Vmatrix|smallmatrix|array)\s*\}`)

	// \stackrel{def}{=}, \overset{\text{def}}{=}, "defined as".
	definitionPattern = regexp.MustCompile(`(?i)\\(?:stackrel|overset)\s*\{[^}]*def|defined\s+as`)
)

var integralCommands = []string{"int", "iint", "iiint", "oint"}

// bigOperators are the commands counted toward complexity.
var bigOperators = map[string]bool{
	"sum":   true,
	"prod":  true,
	"int":   true,
	"iint":  true,
	"iiint": true,
	"oint":  true,
	"lim":   true,
	"frac":  true,
	"dfrac": true,
	"tfrac": true,
	"cfrac": true,
}

// AnalyzeStructure computes the structural flags, classification, and
// complexity of cleaned markup.
func AnalyzeStructure(cleaned string) types.EquationStructure {
	cmds := commands(cleaned)
	return analyzeStructure(cleaned, cmds, detect(cleaned, cmds, operatorDetectors))
}

func analyzeStructure(s string, cmds map[string]bool, operators []string) types.EquationStructure {
	st := types.EquationStructure{
		IsEquation:   strings.Contains(s, "="),
		IsInequality: strings.ContainsAny(s, "<>≤≥") || anyOf(cmds, "le", "leq", "ge", "geq", "lt", "gt", "leqslant", "geqslant"),
		IsDefinition: strings.Contains(s, ":=") || strings.Contains(s, "=:") ||
			anyOf(cmds, "coloneqq", "eqqcolon", "triangleq", "defeq") ||
			definitionPattern.MatchString(s),
		HasSummation: cmds["sum"],
		HasIntegral:  anyOf(cmds, integralCommands...),
		HasFraction:  anyOf(cmds, "frac", "dfrac", "tfrac", "cfrac"),
		HasMatrix:    matrixPattern.MatchString(s),
		Complexity:   EstimateComplexity(s),
	}
	st.Type = classify(s, cmds, operators, st)
	return st
}

// classify evaluates the classification rules in priority order; the first
// match wins.
func classify(s string, cmds map[string]bool, operators []string, st types.EquationStructure) types.EquationType {
	has := func(tag string) bool {
		for _, op := range operators {
			if op == tag {
				return true
			}
		}
		return false
	}
	switch {
	case st.HasSummation && lossPattern.MatchString(s):
		return types.TypeLossFunction
	case cmds["nabla"] || cmds["partial"]:
		return types.TypeGradient
	case has(types.OpExpectation) || has(types.OpProbability):
		return types.TypeProbability
	case st.HasMatrix:
		return types.TypeMatrixOperation
	case st.HasSummation:
		return types.TypeSummation
	}
	return types.TypeGeneral
}

// EstimateComplexity scores cleaned markup from 1 to 10:
//
//	1
//	+ min(3, length in runes / 50)
//	+ min(2, maximum brace nesting depth)
//	+ min(2, number of \sum, \prod, \int, \lim and \frac tokens)
//	+ 2 when a matrix environment is present
//
// clamped to [1, 10].
func EstimateComplexity(cleaned string) int {
	score := 1
	score += min(3, utf8.RuneCountInString(cleaned)/50)
	score += min(2, braceDepth(cleaned))
	score += min(2, countCommands(cleaned, bigOperators))
	if matrixPattern.MatchString(cleaned) {
		score += 2
	}
	return max(1, min(10, score))
}

// braceDepth returns the maximum number of simultaneously open braces.
// Escaped braces are skipped and an unmatched closing brace never drives the
// running count below zero.
func braceDepth(s string) int {
	depth, deepest := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
			deepest = max(deepest, depth)
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}
