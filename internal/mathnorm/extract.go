// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import (
	"regexp"
	"unicode/utf8"

	"github.com/pdiddy/paperlens/pkg/types"
)

// reservedLetters are never reported as variables: d (differential),
// e (Euler's number) and i (imaginary unit).
var reservedLetters = map[byte]bool{'d': true, 'e': true, 'i': true}

// textCommands take prose arguments that are skipped during variable
// extraction.
var textCommands = map[string]bool{
	"text":         true,
	"textrm":       true,
	"textbf":       true,
	"textit":       true,
	"textsf":       true,
	"texttt":       true,
	"mbox":         true,
	"operatorname": true,
}

// ExtractVariables returns the symbol inventory of cleaned markup: every
// Greek-letter command (kind greek) and every isolated Latin letter other
// than d, e and i (kind latin), deduplicated by symbol in order of first
// appearance.
//
// A Latin letter is isolated when it is not part of a command name and is
// neither preceded nor followed by another ASCII letter. Digits, scripts,
// braces, and punctuation all count as boundaries, so "x2", "x_i" and "{x}"
// each yield x. Arguments of \text-like commands are skipped.
func ExtractVariables(cleaned string) []types.Variable {
	vars := []types.Variable{}
	seen := make(map[string]bool)
	add := func(v types.Variable) {
		if seen[v.Symbol] {
			return
		}
		seen[v.Symbol] = true
		vars = append(vars, v)
	}

	s := cleaned
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\\':
			name, end := commandAt(s, i)
			if name == "" {
				_, end = controlAt(s, i)
				i = end
				continue
			}
			if textCommands[name] {
				if _, after, ok := argumentAt(s, end); ok {
					i = after
					continue
				}
			}
			if sym, ok := Symbols.Lookup(name); ok && sym.Class == ClassGreek {
				add(types.Variable{Symbol: sym.Glyph, Source: `\` + name, Kind: types.KindGreek})
			}
			i = end

		case isLetter(c):
			j := i
			for j < len(s) && isLetter(s[j]) {
				j++
			}
			if j-i == 1 && !reservedLetters[c] {
				add(types.Variable{Symbol: s[i:j], Source: s[i:j], Kind: types.KindLatin})
			}
			i = j

		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(s[i:])
			if sym, ok := Symbols.Greek(string(r)); ok {
				add(types.Variable{Symbol: sym.Glyph, Source: sym.Glyph, Kind: types.KindGreek})
			}
			i += size

		default:
			i++
		}
	}
	return vars
}

// detector is one named presence test over cleaned markup. cmds is the set
// of command names present in the string.
type detector struct {
	tag   string
	match func(s string, cmds map[string]bool) bool
}

var (
	// E[...], E_{x~p}[...], \mathbb{E}, \operatorname{E}.
	expectationPattern = regexp.MustCompile(`\\(?:mathbb|mathrm|mathbf|operatorname\*?)\s*\{\s*E\s*\}|\\mathbb\s+E(?:[^A-Za-z]|$)|(?:^|[^A-Za-z\\])E\s*(?:_\{[^{}]*\}|_\\?[A-Za-z0-9]+)?\s*\[`)

	// p(x), P_\theta(x | z), P\left(...\right), \mathbb{P}.
	probabilityPattern = regexp.MustCompile(`(?:^|[^A-Za-z\\])[Pp]\s*(?:_\{[^{}]*\}|_\\?[A-Za-z0-9]+)?\s*(?:\(|\\left\s*\()|\\mathbb\s*\{\s*P\s*\}`)

	// arg max with whitespace, spacing commands, braces, or a command
	// backslash in between: argmax, \arg\max, \operatorname*{arg\,max}.
	argmaxPattern = regexp.MustCompile(`arg(?:\s|\\[,;:! ]|\\|[{}*])*max`)
	argminPattern = regexp.MustCompile(`arg(?:\s|\\[,;:! ]|\\|[{}*])*min`)

	// e^x, e^{...}; the e must stand alone.
	expPowerPattern = regexp.MustCompile(`(?:^|[^A-Za-z\\])e\s*\^`)

	softmaxPattern = regexp.MustCompile(`(?i)softmax`)
	sigmoidPattern = regexp.MustCompile(`(?i)sigmoid`)
	reluPattern    = regexp.MustCompile(`(?i)relu`)
	tanhPattern    = regexp.MustCompile(`(?i)tanh`)

	// The word "loss" or a calligraphic/script L.
	lossPattern = regexp.MustCompile(`(?i)loss|\\(?:mathcal|mathscr)\s*\{\s*L\s*\}|\\(?:mathcal|mathscr)\s+L(?:[^A-Za-z]|$)`)

	// Paired vertical bars: \| x \|, \lVert x \rVert, || x ||, ‖x‖.
	normPattern = regexp.MustCompile(`\\\|.*?\\\||\\[lr]?Vert.*?\\[lr]?Vert|\|\|.*?\|\||‖.*?‖`)
)

func hasCommand(names ...string) func(string, map[string]bool) bool {
	return func(_ string, cmds map[string]bool) bool { return anyOf(cmds, names...) }
}

func matches(re *regexp.Regexp) func(string, map[string]bool) bool {
	return func(s string, _ map[string]bool) bool { return re.MatchString(s) }
}

// operatorDetectors are evaluated in this order; the order of tags in
// ParsedEquation.Operators follows it.
var operatorDetectors = []detector{
	{types.OpSum, hasCommand("sum")},
	{types.OpProduct, hasCommand("prod")},
	{types.OpIntegral, hasCommand("int", "iint", "iiint", "oint")},
	{types.OpLimit, hasCommand("lim", "liminf", "limsup")},
	{types.OpExpectation, func(s string, cmds map[string]bool) bool {
		return cmds["E"] || expectationPattern.MatchString(s)
	}},
	{types.OpProbability, func(s string, cmds map[string]bool) bool {
		return cmds["Pr"] || probabilityPattern.MatchString(s)
	}},
	{types.OpGradient, hasCommand("nabla")},
	{types.OpArgmax, func(s string, cmds map[string]bool) bool {
		return cmds["argmax"] || argmaxPattern.MatchString(s)
	}},
	{types.OpArgmin, func(s string, cmds map[string]bool) bool {
		return cmds["argmin"] || argminPattern.MatchString(s)
	}},
}

var functionDetectors = []detector{
	{types.FnExponential, func(s string, cmds map[string]bool) bool {
		return cmds["exp"] || expPowerPattern.MatchString(s)
	}},
	{types.FnLogarithm, hasCommand("log", "ln", "lg")},
	{types.FnSoftmax, matches(softmaxPattern)},
	{types.FnSigmoid, func(s string, cmds map[string]bool) bool {
		return cmds["sigma"] || sigmoidPattern.MatchString(s)
	}},
	{types.FnReLU, matches(reluPattern)},
	{types.FnTanh, matches(tanhPattern)},
	{types.FnLoss, matches(lossPattern)},
	{types.FnNorm, matches(normPattern)},
}

func detect(s string, cmds map[string]bool, detectors []detector) []string {
	tags := []string{}
	for _, d := range detectors {
		if d.match(s, cmds) {
			tags = append(tags, d.tag)
		}
	}
	return tags
}

// ExtractOperators returns the named operator tags present in cleaned
// markup. Each detector is a presence test, not a count.
func ExtractOperators(cleaned string) []string {
	return detect(cleaned, commands(cleaned), operatorDetectors)
}

// ExtractFunctions returns the named function tags present in cleaned markup.
func ExtractFunctions(cleaned string) []string {
	return detect(cleaned, commands(cleaned), functionDetectors)
}
