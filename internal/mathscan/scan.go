// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mathscan locates math markup embedded in page text and HTML.
// Extractors often leave equations inline in prose ($x$, \[...\],
// \begin{equation}...) or as MathML and MathJax blocks; Scan and ScanHTML
// lift them out as types.RawEquation records with a short context snippet.
package mathscan

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/paperlens/pkg/types"
)

// contextRadius is the number of bytes of prose kept on each side of an
// equation for its context snippet.
const contextRadius = 80

// displayEnvs are the environments treated as display equations.
var displayEnvs = map[string]bool{
	"equation":    true,
	"equation*":   true,
	"align":       true,
	"align*":      true,
	"gather":      true,
	"gather*":     true,
	"multline":    true,
	"multline*":   true,
	"eqnarray":    true,
	"eqnarray*":   true,
	"displaymath": true,
}

// Scan returns the equations delimited in text, in source order.
//
// Recognized delimiters are $$...$$, \[...\], \(...\), $...$, and the
// display environments (equation, align, gather, multline, eqnarray and
// their starred forms). An inline $...$ follows the pandoc rules: the
// opening $ must be followed by a non-space, the closing $ must be preceded
// by a non-space and not followed by a digit, and the pair may not span a
// blank line. \$ is a literal dollar sign. Unterminated delimiters are
// treated as text. Empty equations are dropped.
func Scan(text string) []types.RawEquation {
	var out []types.RawEquation
	emit := func(start, end int, markup string, display bool) {
		markup = strings.TrimSpace(markup)
		if markup == "" {
			return
		}
		out = append(out, types.RawEquation{
			Markup:  markup,
			Format:  types.FormatLaTeX,
			Context: snippet(text, start, end),
			Display: display,
		})
	}

	s := text
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], `\[`):
			if j := strings.Index(s[i+2:], `\]`); j >= 0 {
				end := i + 2 + j + 2
				emit(i, end, s[i+2:i+2+j], true)
				i = end
				continue
			}
			i += 2

		case strings.HasPrefix(s[i:], `\(`):
			if j := strings.Index(s[i+2:], `\)`); j >= 0 {
				end := i + 2 + j + 2
				emit(i, end, s[i+2:i+2+j], false)
				i = end
				continue
			}
			i += 2

		case strings.HasPrefix(s[i:], `\begin{`):
			if end, ok := environmentAt(s, i); ok {
				emit(i, end, s[i:end], true)
				i = end
				continue
			}
			i += len(`\begin{`)

		case s[i] == '\\':
			// Any other command or control symbol, including \$ and \\.
			i += 2

		case strings.HasPrefix(s[i:], "$$"):
			if j := strings.Index(s[i+2:], "$$"); j >= 0 {
				end := i + 2 + j + 2
				emit(i, end, s[i+2:i+2+j], true)
				i = end
				continue
			}
			i += 2

		case s[i] == '$':
			if end, ok := inlineDollarAt(s, i); ok {
				emit(i, end, s[i+1:end-1], false)
				i = end
				continue
			}
			i++

		default:
			i++
		}
	}
	return out
}

// environmentAt matches \begin{env}...\end{env} for a display environment
// starting at s[i]. It returns the index just past \end{env}.
func environmentAt(s string, i int) (int, bool) {
	open := i + len(`\begin{`)
	n := strings.IndexByte(s[open:], '}')
	if n < 0 {
		return 0, false
	}
	env := s[open : open+n]
	if !displayEnvs[env] {
		return 0, false
	}
	body := open + n + 1
	terminator := `\end{` + env + `}`
	j := strings.Index(s[body:], terminator)
	if j < 0 {
		return 0, false
	}
	return body + j + len(terminator), true
}

// inlineDollarAt finds the closing $ of an inline equation opened at s[i].
// It returns the index just past the closing $.
func inlineDollarAt(s string, i int) (int, bool) {
	if i+1 >= len(s) || isSpace(s[i+1]) {
		return 0, false
	}
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '\n':
			if strings.HasPrefix(strings.TrimLeft(s[j+1:], " \t\r"), "\n") {
				return 0, false
			}
		case '$':
			if j == i+1 || isSpace(s[j-1]) {
				return 0, false
			}
			if j+1 < len(s) && s[j+1] >= '0' && s[j+1] <= '9' {
				continue
			}
			return j + 1, true
		}
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// snippet returns the prose around s[start:end] with whitespace collapsed.
// The equation itself is not part of the snippet.
func snippet(s string, start, end int) string {
	lo := max(0, start-contextRadius)
	for lo > 0 && !utf8.RuneStart(s[lo]) {
		lo++
	}
	hi := min(len(s), end+contextRadius)
	for hi < len(s) && !utf8.RuneStart(s[hi]) {
		hi--
	}
	before := strings.Fields(s[lo:start])
	after := strings.Fields(s[end:hi])
	return strings.Join(append(before, after...), " ")
}
