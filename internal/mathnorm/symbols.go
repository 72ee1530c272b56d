// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mathnorm

import "sort"

// SymbolClass groups symbol-table entries by role.
type SymbolClass int

const (
	ClassGreek SymbolClass = iota
	ClassOperator
	ClassRelation
	ClassSetLogic
	ClassArrow
	ClassDots
	ClassFunction
	ClassMisc
)

// Symbol maps one command name to its readable glyph.
type Symbol struct {
	Name  string
	Glyph string
	Class SymbolClass
}

// SymbolTable is an immutable, exact-match lookup from command name (without
// the leading backslash) to Symbol.
type SymbolTable struct {
	byName  map[string]Symbol
	byGlyph map[string]Symbol
}

// Lookup returns the symbol for a command name such as "alpha".
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// Greek returns the Greek-letter symbol whose glyph is g, for input that
// already contains Unicode letters.
func (t *SymbolTable) Greek(g string) (Symbol, bool) {
	s, ok := t.byGlyph[g]
	return s, ok
}

// Len returns the number of entries.
func (t *SymbolTable) Len() int { return len(t.byName) }

// Names returns all command names in sorted order.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newSymbolTable(entries []Symbol) *SymbolTable {
	t := &SymbolTable{
		byName:  make(map[string]Symbol, len(entries)),
		byGlyph: make(map[string]Symbol),
	}
	for _, e := range entries {
		if _, dup := t.byName[e.Name]; dup {
			panic("mathnorm: duplicate symbol " + e.Name)
		}
		t.byName[e.Name] = e
		if e.Class == ClassGreek {
			if _, seen := t.byGlyph[e.Glyph]; !seen {
				t.byGlyph[e.Glyph] = e
			}
		}
	}
	return t
}

// Symbols is the process-wide symbol table. It is built once at package
// initialization and never mutated.
var Symbols = newSymbolTable([]Symbol{
	// Greek, lower case.
	{"alpha", "α", ClassGreek},
	{"beta", "β", ClassGreek},
	{"gamma", "γ", ClassGreek},
	{"delta", "δ", ClassGreek},
	{"epsilon", "ε", ClassGreek},
	{"varepsilon", "ε", ClassGreek},
	{"zeta", "ζ", ClassGreek},
	{"eta", "η", ClassGreek},
	{"theta", "θ", ClassGreek},
	{"vartheta", "ϑ", ClassGreek},
	{"iota", "ι", ClassGreek},
	{"kappa", "κ", ClassGreek},
	{"lambda", "λ", ClassGreek},
	{"mu", "μ", ClassGreek},
	{"nu", "ν", ClassGreek},
	{"xi", "ξ", ClassGreek},
	{"pi", "π", ClassGreek},
	{"varpi", "ϖ", ClassGreek},
	{"rho", "ρ", ClassGreek},
	{"varrho", "ϱ", ClassGreek},
	{"sigma", "σ", ClassGreek},
	{"varsigma", "ς", ClassGreek},
	{"tau", "τ", ClassGreek},
	{"upsilon", "υ", ClassGreek},
	{"phi", "φ", ClassGreek},
	{"varphi", "ϕ", ClassGreek},
	{"chi", "χ", ClassGreek},
	{"psi", "ψ", ClassGreek},
	{"omega", "ω", ClassGreek},

	// Greek, upper case.
	{"Gamma", "Γ", ClassGreek},
	{"Delta", "Δ", ClassGreek},
	{"Theta", "Θ", ClassGreek},
	{"Lambda", "Λ", ClassGreek},
	{"Xi", "Ξ", ClassGreek},
	{"Pi", "Π", ClassGreek},
	{"Sigma", "Σ", ClassGreek},
	{"Upsilon", "Υ", ClassGreek},
	{"Phi", "Φ", ClassGreek},
	{"Psi", "Ψ", ClassGreek},
	{"Omega", "Ω", ClassGreek},

	// Large operators and calculus.
	{"sum", "∑", ClassOperator},
	{"prod", "∏", ClassOperator},
	{"coprod", "∐", ClassOperator},
	{"int", "∫", ClassOperator},
	{"iint", "∬", ClassOperator},
	{"iiint", "∭", ClassOperator},
	{"oint", "∮", ClassOperator},
	{"partial", "∂", ClassOperator},
	{"nabla", "∇", ClassOperator},
	{"infty", "∞", ClassMisc},
	{"times", "×", ClassOperator},
	{"cdot", "·", ClassOperator},
	{"div", "÷", ClassOperator},
	{"pm", "±", ClassOperator},
	{"mp", "∓", ClassOperator},
	{"circ", "∘", ClassOperator},
	{"otimes", "⊗", ClassOperator},
	{"oplus", "⊕", ClassOperator},
	{"odot", "⊙", ClassOperator},

	// Relations.
	{"leq", "≤", ClassRelation},
	{"le", "≤", ClassRelation},
	{"geq", "≥", ClassRelation},
	{"ge", "≥", ClassRelation},
	{"neq", "≠", ClassRelation},
	{"ne", "≠", ClassRelation},
	{"approx", "≈", ClassRelation},
	{"equiv", "≡", ClassRelation},
	{"sim", "∼", ClassRelation},
	{"simeq", "≃", ClassRelation},
	{"propto", "∝", ClassRelation},
	{"ll", "≪", ClassRelation},
	{"gg", "≫", ClassRelation},
	{"coloneqq", "≔", ClassRelation},
	{"triangleq", "≜", ClassRelation},

	// Sets and logic.
	{"in", "∈", ClassSetLogic},
	{"notin", "∉", ClassSetLogic},
	{"subset", "⊂", ClassSetLogic},
	{"subseteq", "⊆", ClassSetLogic},
	{"supset", "⊃", ClassSetLogic},
	{"supseteq", "⊇", ClassSetLogic},
	{"cup", "∪", ClassSetLogic},
	{"cap", "∩", ClassSetLogic},
	{"emptyset", "∅", ClassSetLogic},
	{"forall", "∀", ClassSetLogic},
	{"exists", "∃", ClassSetLogic},
	{"neg", "¬", ClassSetLogic},
	{"land", "∧", ClassSetLogic},
	{"lor", "∨", ClassSetLogic},
	{"wedge", "∧", ClassSetLogic},
	{"vee", "∨", ClassSetLogic},

	// Arrows.
	{"to", "→", ClassArrow},
	{"rightarrow", "→", ClassArrow},
	{"leftarrow", "←", ClassArrow},
	{"leftrightarrow", "↔", ClassArrow},
	{"Rightarrow", "⇒", ClassArrow},
	{"Leftarrow", "⇐", ClassArrow},
	{"Leftrightarrow", "⇔", ClassArrow},
	{"implies", "⇒", ClassArrow},
	{"iff", "⇔", ClassArrow},
	{"mapsto", "↦", ClassArrow},

	// Ellipses.
	{"ldots", "…", ClassDots},
	{"dots", "…", ClassDots},
	{"cdots", "⋯", ClassDots},
	{"vdots", "⋮", ClassDots},
	{"ddots", "⋱", ClassDots},

	// Named functions.
	{"sqrt", "√", ClassFunction},
	{"exp", "exp", ClassFunction},
	{"log", "log", ClassFunction},
	{"ln", "ln", ClassFunction},
	{"lg", "lg", ClassFunction},
	{"sin", "sin", ClassFunction},
	{"cos", "cos", ClassFunction},
	{"tan", "tan", ClassFunction},
	{"sinh", "sinh", ClassFunction},
	{"cosh", "cosh", ClassFunction},
	{"tanh", "tanh", ClassFunction},
	{"max", "max", ClassFunction},
	{"min", "min", ClassFunction},
	{"sup", "sup", ClassFunction},
	{"inf", "inf", ClassFunction},
	{"arg", "arg", ClassFunction},
	{"lim", "lim", ClassFunction},
	{"det", "det", ClassFunction},
	{"Pr", "Pr", ClassFunction},

	// Miscellaneous.
	{"ell", "ℓ", ClassMisc},
	{"hbar", "ℏ", ClassMisc},
	{"prime", "′", ClassMisc},
	{"top", "⊤", ClassMisc},
	{"perp", "⊥", ClassMisc},
	{"angle", "∠", ClassMisc},
	{"langle", "⟨", ClassMisc},
	{"rangle", "⟩", ClassMisc},
	{"lVert", "‖", ClassMisc},
	{"rVert", "‖", ClassMisc},
	{"Vert", "‖", ClassMisc},
	{"quad", " ", ClassMisc},
	{"qquad", " ", ClassMisc},
})
