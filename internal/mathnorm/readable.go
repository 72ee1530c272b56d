// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxRenderDepth bounds recursion on deeply nested groups. Deeper content is
// flattened without structural rewriting.
const maxRenderDepth = 64

var fracCommands = map[string]bool{
	"frac":  true,
	"dfrac": true,
	"tfrac": true,
	"cfrac": true,
}

// wrapperCommands are unwrapped to their argument.
var wrapperCommands = map[string]bool{
	"text":         true,
	"textrm":       true,
	"textbf":       true,
	"textit":       true,
	"textsf":       true,
	"texttt":       true,
	"mbox":         true,
	"mathrm":       true,
	"mathbf":       true,
	"mathit":       true,
	"mathsf":       true,
	"mathtt":       true,
	"mathcal":      true,
	"mathscr":      true,
	"mathbb":       true,
	"mathfrak":     true,
	"boldsymbol":   true,
	"bm":           true,
	"operatorname": true,
}

// ToReadable rewrites cleaned markup into a plain-text approximation.
//
// Rules, applied by a single left-to-right scan:
//
//   - \text{X}, \mathrm{X}, \mathbf{X} and the other font wrappers -> X
//   - \frac{A}{B} -> (A)/(B), recursively, so nested fractions normalize fully
//   - \sqrt{X} -> √(X) and \sqrt[n]{X} -> n√(X)
//   - ^{X} -> ^(X) and _{X} -> _(X); ^x and _x are left as they are
//   - matrix environments -> [ ... ]
//   - symbol-table commands -> their glyphs
//   - every other command is dropped, then remaining braces are dropped
//
// The result has whitespace collapsed and is trimmed.
func ToReadable(cleaned string) string {
	return collapseSpace(render(cleaned, 0))
}

func render(s string, depth int) string {
	if depth > maxRenderDepth {
		return flatten(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\\':
			i = renderCommand(s, i, &b, depth)
		case '^', '_':
			b.WriteByte(c)
			if g, end, ok := groupAt(s, skipSpaces(s, i+1)); ok {
				b.WriteByte('(')
				b.WriteString(render(g, depth+1))
				b.WriteByte(')')
				i = end
			} else {
				i++
			}
		case '{', '}':
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func renderCommand(s string, i int, b *strings.Builder, depth int) int {
	name, end := commandAt(s, i)
	if name == "" {
		ch, next := controlAt(s, i)
		switch ch {
		case ",", ";", ":", "!", " ", "\\", "\t", "\n":
			b.WriteByte(' ')
		case "{", "}", "":
		case "|":
			b.WriteString("‖")
		default:
			b.WriteString(ch)
		}
		return next
	}

	switch {
	case fracCommands[name]:
		num, j, ok := groupAt(s, skipSpaces(s, end))
		if !ok {
			return end
		}
		den, k, ok := groupAt(s, skipSpaces(s, j))
		if !ok {
			return end
		}
		b.WriteByte('(')
		b.WriteString(render(num, depth+1))
		b.WriteString(")/(")
		b.WriteString(render(den, depth+1))
		b.WriteByte(')')
		return k

	case name == "sqrt":
		after := end
		index := ""
		if opt, k, ok := optionAt(s, skipSpaces(s, end)); ok {
			index = strings.TrimSpace(render(opt, depth+1))
			after = k
		}
		b.WriteString(index)
		if arg, k, ok := groupAt(s, skipSpaces(s, after)); ok {
			b.WriteString("√(")
			b.WriteString(render(arg, depth+1))
			b.WriteByte(')')
			return k
		}
		b.WriteString("√")
		return after

	case wrapperCommands[name]:
		if arg, k, ok := argumentAt(s, end); ok {
			b.WriteString(render(arg, depth+1))
			return k
		}
		return end

	case name == "begin" || name == "end":
		env, k, ok := groupAt(s, skipSpaces(s, end))
		if !ok {
			return end
		}
		env = strings.TrimSpace(env)
		if !matrixEnvs[env] {
			return k
		}
		if name == "end" {
			b.WriteString(" ] ")
			return k
		}
		b.WriteString(" [ ")
		if env == "array" {
			// Column specification, e.g. {cc|c}.
			if _, after, ok := groupAt(s, skipSpaces(s, k)); ok {
				return after
			}
		}
		return k
	}

	if sym, ok := Symbols.Lookup(name); ok {
		writeGlyph(b, sym)
	}
	return end
}

// writeGlyph appends sym, separating a function name from a letter written
// just before it so that a\log b reads "a log b".
func writeGlyph(b *strings.Builder, sym Symbol) {
	if sym.Class == ClassFunction {
		if r, _ := utf8.DecodeLastRuneInString(b.String()); unicode.IsLetter(r) {
			b.WriteByte(' ')
		}
	}
	b.WriteString(sym.Glyph)
}

// flatten drops commands and braces without interpreting them.
func flatten(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch s[i] {
		case '\\':
			name, end := commandAt(s, i)
			if name == "" {
				_, end = controlAt(s, i)
			} else if sym, ok := Symbols.Lookup(name); ok {
				b.WriteString(sym.Glyph)
			}
			i = end
		case '{', '}':
			i++
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}
