// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Site identifies the kind of page an extractor ran on.
type Site string

const (
	SiteArxiv   Site = "arxiv"
	SiteMedium  Site = "medium"
	SiteBlog    Site = "blog"
	SiteGeneric Site = "generic"
)

// MarkupFormat is the representation an equation was found in.
type MarkupFormat string

const (
	FormatLaTeX  MarkupFormat = "latex"
	FormatMathML MarkupFormat = "mathml"
)

// Section is one headed block of page text.
type Section struct {
	Heading string `json:"heading" yaml:"heading"`

	// Level is the heading depth (1 for top-level sections).
	Level int `json:"level" yaml:"level"`

	Text string `json:"text" yaml:"text"`
}

// RawEquation is an equation as found on the page, before normalization.
type RawEquation struct {
	// Markup is the equation source (LaTeX or serialized MathML).
	Markup string `json:"markup" yaml:"markup"`

	// Format defaults to latex when empty.
	Format MarkupFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// Context is the prose surrounding the equation, if known.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// Display is true for block (display-mode) equations.
	Display bool `json:"display,omitempty" yaml:"display,omitempty"`
}

// PageContent is the record produced by the page extractors and consumed by
// the analysis pipeline.
type PageContent struct {
	URL       string        `json:"url" yaml:"url"`
	Site      Site          `json:"site" yaml:"site"`
	Title     string        `json:"title" yaml:"title"`
	Abstract  string        `json:"abstract" yaml:"abstract"`
	Authors   []string      `json:"authors" yaml:"authors"`
	Sections  []Section     `json:"sections" yaml:"sections"`
	Equations []RawEquation `json:"equations" yaml:"equations"`

	// HTML is an optional raw fragment searched for MathML and MathJax blocks.
	HTML string `json:"html,omitempty" yaml:"html,omitempty"`

	ExtractedAt time.Time `json:"extractedAt" yaml:"extractedAt"`
}

// Text joins the abstract and section bodies into one document.
func (p PageContent) Text() string {
	n := len(p.Abstract)
	for _, s := range p.Sections {
		n += len(s.Heading) + len(s.Text) + 2
	}
	b := make([]byte, 0, n)
	if p.Abstract != "" {
		b = append(b, p.Abstract...)
	}
	for _, s := range p.Sections {
		if len(b) > 0 {
			b = append(b, "\n\n"...)
		}
		if s.Heading != "" {
			b = append(b, s.Heading...)
			b = append(b, '\n')
		}
		b = append(b, s.Text...)
	}
	return string(b)
}
