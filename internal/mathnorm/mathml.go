// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import (
	"encoding/xml"
	"errors"
	"io"
	"maps"
	"strings"

	"github.com/pdiddy/paperlens/pkg/types"
)

// MalformedMarkupError reports MathML input that is not a well-formed tree.
type MalformedMarkupError struct {
	Err error
}

func (e *MalformedMarkupError) Error() string {
	return "malformed math markup: " + e.Err.Error()
}

func (e *MalformedMarkupError) Unwrap() error { return e.Err }

var errNoElement = errors.New("no element found")

// texEncodings are annotation encodings that carry LaTeX source.
var texEncodings = map[string]bool{
	"application/x-tex":   true,
	"application/x-latex": true,
	"text/x-tex":          true,
	"tex":                 true,
	"latex":               true,
}

// mathEntities resolves the HTML named entities plus the MathML ones that
// commonly appear in serialized formulas. Invisible operators resolve to
// nothing.
var mathEntities = func() map[string]string {
	m := maps.Clone(xml.HTMLEntity)
	maps.Copy(m, map[string]string{
		"InvisibleTimes": "",
		"it":             "",
		"ApplyFunction":  "",
		"af":             "",
		"InvisibleComma": "",
		"ic":             "",
		"PlusMinus":      "±",
		"MinusPlus":      "∓",
		"PartialD":       "∂",
		"Integral":       "∫",
		"Sum":            "∑",
		"Product":        "∏",
		"infin":          "∞",
		"LessEqual":      "≤",
		"GreaterEqual":   "≥",
		"NotEqual":       "≠",
		"RightArrow":     "→",
		"Element":        "∈",
		"ThinSpace":      " ",
		"MediumSpace":    " ",
		"nabla":          "∇",
		"Del":            "∇",
	})
	return m
}()

// mathmlTree is the flattened view of a MathML document.
type mathmlTree struct {
	text string
	tex  string
}

func readMathML(markup string) (mathmlTree, error) {
	d := xml.NewDecoder(strings.NewReader(markup))
	d.Strict = true
	d.Entity = mathEntities

	var (
		text, tex strings.Builder
		elements  int
		depth     int
		skipAt    int // depth of the annotation being skipped, 0 if none
		inTeX     bool
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return mathmlTree{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			elements++
			if skipAt == 0 && (t.Name.Local == "annotation" || t.Name.Local == "annotation-xml") {
				skipAt = depth
				inTeX = t.Name.Local == "annotation" && texEncodings[strings.ToLower(attr(t, "encoding"))]
			}
		case xml.EndElement:
			if depth == skipAt {
				skipAt = 0
				inTeX = false
			}
			depth--
		case xml.CharData:
			switch {
			case inTeX:
				tex.Write(t)
			case skipAt == 0:
				text.Write(t)
			}
		}
	}
	if elements == 0 {
		return mathmlTree{}, errNoElement
	}
	return mathmlTree{
		text: collapseSpace(text.String()),
		tex:  strings.TrimSpace(tex.String()),
	}, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// ParseMathML is the entry point for tree-structured math markup (MathML).
// It does no symbolic analysis: the flattened text content, excluding
// annotations, becomes both Cleaned and Readable, the feature lists are
// empty, and the structure is the default one. The text is taken verbatim
// except that runs of whitespace collapse to one space and the ends are
// trimmed. Input that is not a
// well-formed tree yields a *MalformedMarkupError.
func ParseMathML(markup string) (types.ParsedEquation, error) {
	tree, err := readMathML(markup)
	if err != nil {
		return types.ParsedEquation{}, &MalformedMarkupError{Err: err}
	}
	return types.ParsedEquation{
		Original:  markup,
		Cleaned:   tree.text,
		Readable:  tree.text,
		Variables: []types.Variable{},
		Operators: []string{},
		Functions: []string{},
		Structure: types.DefaultStructure(),
	}, nil
}

// TeXAnnotation returns the LaTeX source embedded in a MathML tree through
// an <annotation encoding="application/x-tex"> element, if any.
func TeXAnnotation(markup string) (string, bool) {
	tree, err := readMathML(markup)
	if err != nil || tree.tex == "" {
		return "", false
	}
	return tree.tex, true
}
