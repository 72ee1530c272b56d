// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// matrixEnvs are environments kept by Clean because they carry structure
// (hasMatrix, complexity). Every other environment is a wrapper.
var matrixEnvs = map[string]bool{
	"matrix":      true,
	"pmatrix":     true,
	"bmatrix":     true,
	"Bmatrix":     true,
	"vmatrix":     true,
	"Vmatrix":     true,
	"smallmatrix": true,
	"array":       true,
}

var dimensionPattern = regexp.MustCompile(`^\s*-?[0-9]*\.?[0-9]+\s*(?:pt|em|ex|mm|cm|in|mu|bp|sp|pc|dd|cc)\s*$`)

// Clean strips math delimiters ($, $$, \( \), \[ \]), environment wrappers
// other than matrix environments, labels and tags, alignment markers (&) and
// forced line breaks (\\, \newline), then collapses whitespace.
//
// Every removed piece is replaced by a space, and the pass is repeated until
// it no longer changes the string, so Clean(Clean(x)) == Clean(x) for every x.
func Clean(markup string) string {
	s := norm.NFC.String(markup)
	// Each changing pass removes at least one non-space byte.
	for range len(s) + 2 {
		next := cleanPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func cleanPass(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '$', '&':
			b.WriteByte(' ')
			i++
		case '\\':
			i = cleanCommand(s, i, &b)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return collapseSpace(b.String())
}

func cleanCommand(s string, i int, b *strings.Builder) int {
	name, end := commandAt(s, i)
	if name == "" {
		ch, next := controlAt(s, i)
		switch ch {
		case "\\":
			b.WriteByte(' ')
			if opt, after, ok := optionAt(s, next); ok && dimensionPattern.MatchString(opt) {
				return after
			}
			return next
		case "[", "]", "(", ")":
			b.WriteByte(' ')
			return next
		}
		b.WriteString(s[i:next])
		return next
	}

	switch name {
	case "begin", "end":
		env, after, ok := groupAt(s, skipSpaces(s, end))
		if !ok {
			break
		}
		if matrixEnvs[strings.TrimSpace(env)] {
			b.WriteString(s[i:after])
			return after
		}
		b.WriteByte(' ')
		return after
	case "label", "tag":
		if _, after, ok := argumentAt(s, end); ok {
			b.WriteByte(' ')
			return after
		}
	case "nonumber", "notag", "newline":
		b.WriteByte(' ')
		return end
	}
	b.WriteString(s[i:end])
	return end
}
