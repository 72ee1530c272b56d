// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExplainRequest asks the backend to explain one equation.
type ExplainRequest struct {
	// Equation is the original markup.
	Equation string `json:"equation"`

	// Context is the prose around the equation.
	Context string `json:"context"`

	Format MarkupFormat `json:"format"`
}

// VariableMeaning is the backend's description of one symbol.
type VariableMeaning struct {
	Symbol  string `json:"symbol" yaml:"symbol"`
	Meaning string `json:"meaning" yaml:"meaning"`
}

// ExplainResponse is the backend's answer to an ExplainRequest. Readable and
// Variables mirror what the normalizer computes locally; Meaning and
// Importance come only from the backend.
type ExplainResponse struct {
	Readable   string            `json:"readable" yaml:"readable"`
	Meaning    string            `json:"meaning" yaml:"meaning"`
	Variables  []VariableMeaning `json:"variables" yaml:"variables"`
	Importance string            `json:"importance" yaml:"importance"`
}

// AnalyzeRequest asks the backend to summarize a page.
type AnalyzeRequest struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Authors  []string `json:"authors"`
	Content  string   `json:"content"`
}

// AnalyzeResponse carries the page summary and key points.
type AnalyzeResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// QuestionRequest asks a question about a page.
type QuestionRequest struct {
	Question string `json:"question"`
	URL      string `json:"url"`
	Context  string `json:"context"`
}

// QuestionResponse is the backend's answer with the passages it used.
type QuestionResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
