// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import (
	"strings"
	"unicode/utf8"
)

// A command token is a backslash followed by one or more ASCII letters. A
// backslash followed by any other character is a control symbol covering
// exactly that one character. Every rule in this package scans with these
// helpers, so a command name only ever matches as a whole token.

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// commandAt reads the command starting at s[i] == '\\'. It returns the name
// without the backslash and the index just past it. name is empty when the
// backslash starts a control symbol.
func commandAt(s string, i int) (name string, end int) {
	j := i + 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	return s[i+1 : j], j
}

// controlAt returns the character following a lone backslash at s[i] and the
// index just past it. At the end of input the character is empty.
func controlAt(s string, i int) (string, int) {
	if i+1 >= len(s) {
		return "", len(s)
	}
	_, size := utf8.DecodeRuneInString(s[i+1:])
	return s[i+1 : i+1+size], i + 1 + size
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// groupAt reads a balanced brace group starting at s[i] == '{' and returns
// its content and the index just past the closing brace. Escaped braces do
// not count. ok is false when s[i] is not '{' or the group never closes.
func groupAt(s string, i int) (content string, end int, ok bool) {
	if i >= len(s) || s[i] != '{' {
		return "", i, false
	}
	depth := 0
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i+1 : j], j + 1, true
			}
		}
	}
	return "", i, false
}

// optionAt reads a bracketed optional argument starting at s[i] == '['.
// Brackets inside brace groups are ignored.
func optionAt(s string, i int) (content string, end int, ok bool) {
	if i >= len(s) || s[i] != '[' {
		return "", i, false
	}
	depth := 0
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ']':
			if depth == 0 {
				return s[i+1 : j], j + 1, true
			}
		}
	}
	return "", i, false
}

// argumentAt reads the brace argument of a command ending at i, allowing
// whitespace and a star (as in \operatorname*{...}) in between.
func argumentAt(s string, i int) (content string, end int, ok bool) {
	j := skipSpaces(s, i)
	if j < len(s) && s[j] == '*' {
		j = skipSpaces(s, j+1)
	}
	return groupAt(s, j)
}

// commands returns the set of command names occurring in s.
func commands(s string) map[string]bool {
	set := make(map[string]bool)
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			i++
			continue
		}
		name, end := commandAt(s, i)
		if name == "" {
			_, end = controlAt(s, i)
		} else {
			set[name] = true
		}
		i = end
	}
	return set
}

// countCommands counts occurrences of any of the named commands in s.
func countCommands(s string, names map[string]bool) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			i++
			continue
		}
		name, end := commandAt(s, i)
		if name == "" {
			_, end = controlAt(s, i)
		} else if names[name] {
			n++
		}
		i = end
	}
	return n
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func anyOf(set map[string]bool, names ...string) bool {
	for _, n := range names {
		if set[n] {
			return true
		}
	}
	return false
}
