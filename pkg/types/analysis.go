// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalyzedEquation pairs a parsed equation with its optional backend
// explanation.
type AnalyzedEquation struct {
	// Index is the position of the equation in page order.
	Index int `json:"index" yaml:"index"`

	Format  MarkupFormat   `json:"format" yaml:"format"`
	Context string         `json:"context,omitempty" yaml:"context,omitempty"`
	Parsed  ParsedEquation `json:"parsed" yaml:"parsed"`

	Explanation *ExplainResponse `json:"explanation,omitempty" yaml:"explanation,omitempty"`

	// ExplainError records a failed explanation request.
	ExplainError string `json:"explainError,omitempty" yaml:"explainError,omitempty"`
}

// PageAnalysis is the complete result of analyzing one page.
type PageAnalysis struct {
	URL       string   `json:"url" yaml:"url"`
	Title     string   `json:"title" yaml:"title"`
	Site      Site     `json:"site" yaml:"site"`
	Summary   string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	KeyPoints []string `json:"keyPoints,omitempty" yaml:"keyPoints,omitempty"`

	// Equations are ordered by complexity, most complex first.
	Equations []AnalyzedEquation `json:"equations" yaml:"equations"`

	AnalyzedAt time.Time `json:"analyzedAt" yaml:"analyzedAt"`
}
