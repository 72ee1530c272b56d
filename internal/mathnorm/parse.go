// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mathnorm normalizes LaTeX-like math markup and analyzes equation
// structure. Parse turns one markup string into a types.ParsedEquation:
// a cleaned canonical string, a readable approximation, the variable,
// operator and function inventories, and a structural classification with
// a complexity score.
//
// All functions are pure and total: they never fail on arbitrary text and
// hold no state besides the read-only symbol table, so they are safe for
// concurrent use. Callers that see repeated inputs cache results themselves.
package mathnorm

import "github.com/pdiddy/paperlens/pkg/types"

// Parse normalizes and analyzes one LaTeX-like markup string. Input without
// recognizable structure yields sparse fields rather than an error.
func Parse(markup string) types.ParsedEquation {
	cleaned := Clean(markup)
	cmds := commands(cleaned)
	operators := detect(cleaned, cmds, operatorDetectors)
	return types.ParsedEquation{
		Original:  markup,
		Cleaned:   cleaned,
		Readable:  ToReadable(cleaned),
		Variables: ExtractVariables(cleaned),
		Operators: operators,
		Functions: detect(cleaned, cmds, functionDetectors),
		Structure: analyzeStructure(cleaned, cmds, operators),
	}
}
