// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperlens pipeline:
// parsed equations, page content produced by the extractors, the backend
// request/response contract, analysis results, and configuration.
package types

// VariableKind tells whether a variable came from a Greek-letter command or
// a bare Latin letter.
type VariableKind string

const (
	KindGreek VariableKind = "greek"
	KindLatin VariableKind = "latin"
)

// Variable is one entry of an equation's symbol inventory.
type Variable struct {
	// Symbol is the readable glyph (e.g. "α" or "x").
	Symbol string `json:"symbol" yaml:"symbol"`

	// Source is the markup token the symbol came from (e.g. `\alpha` or "x").
	Source string `json:"source" yaml:"source"`

	// Kind is greek or latin.
	Kind VariableKind `json:"kind" yaml:"kind"`
}

// EquationType is the structural classification assigned to an equation.
type EquationType string

const (
	TypeLossFunction    EquationType = "loss_function"
	TypeGradient        EquationType = "gradient"
	TypeProbability     EquationType = "probability"
	TypeMatrixOperation EquationType = "matrix_operation"
	TypeSummation       EquationType = "summation"
	TypeGeneral         EquationType = "general"
)

// Operator tags reported in ParsedEquation.Operators.
const (
	OpSum         = "sum"
	OpProduct     = "product"
	OpIntegral    = "integral"
	OpLimit       = "limit"
	OpExpectation = "expectation"
	OpProbability = "probability"
	OpGradient    = "gradient"
	OpArgmax      = "argmax"
	OpArgmin      = "argmin"
)

// Function tags reported in ParsedEquation.Functions.
const (
	FnExponential = "exponential"
	FnLogarithm   = "logarithm"
	FnSoftmax     = "softmax"
	FnSigmoid     = "sigmoid"
	FnReLU        = "relu"
	FnTanh        = "tanh"
	FnLoss        = "loss"
	FnNorm        = "norm"
)

// EquationStructure holds the structural flags, complexity score, and
// classification of an equation. Field names are part of the wire contract
// with the explanation UI and the backend.
type EquationStructure struct {
	IsEquation   bool `json:"isEquation" yaml:"isEquation"`
	IsInequality bool `json:"isInequality" yaml:"isInequality"`
	IsDefinition bool `json:"isDefinition" yaml:"isDefinition"`
	HasSummation bool `json:"hasSummation" yaml:"hasSummation"`
	HasIntegral  bool `json:"hasIntegral" yaml:"hasIntegral"`
	HasFraction  bool `json:"hasFraction" yaml:"hasFraction"`
	HasMatrix    bool `json:"hasMatrix" yaml:"hasMatrix"`

	// Complexity is a heuristic score between 1 and 10.
	Complexity int `json:"complexity" yaml:"complexity"`

	// Type is the first matching classification.
	Type EquationType `json:"type" yaml:"type"`
}

// DefaultStructure returns the structure of an equation with no
// recognizable features.
func DefaultStructure() EquationStructure {
	return EquationStructure{Complexity: 1, Type: TypeGeneral}
}

// ParsedEquation is the normalizer's output for one markup string. It is a
// pure function of the input and is never mutated after construction.
type ParsedEquation struct {
	// Original is the verbatim input.
	Original string `json:"original" yaml:"original"`

	// Cleaned is the input with delimiters, wrappers, and alignment
	// markers stripped and whitespace collapsed.
	Cleaned string `json:"cleaned" yaml:"cleaned"`

	// Readable is the human-readable approximation of Cleaned.
	Readable string `json:"readable" yaml:"readable"`

	// Variables is the deduplicated symbol inventory in order of first appearance.
	Variables []Variable `json:"variables" yaml:"variables"`

	// Operators lists the named operator tags present.
	Operators []string `json:"operators" yaml:"operators"`

	// Functions lists the named function tags present.
	Functions []string `json:"functions" yaml:"functions"`

	Structure EquationStructure `json:"structure" yaml:"structure"`
}

// HasOperator reports whether tag is among the equation's operators.
func (p ParsedEquation) HasOperator(tag string) bool {
	return contains(p.Operators, tag)
}

// HasFunction reports whether tag is among the equation's functions.
func (p ParsedEquation) HasFunction(tag string) bool {
	return contains(p.Functions, tag)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
