// Package model defines the syntax tree produced by the LESS parser and
// consumed by the evaluator and the renderer.
//
// The set of node types is closed: every operation over nodes (evaluation,
// rendering, canonical representation, tree dumps) is a single function with
// an exhaustive type switch rather than a method on each node.
package model

import "fmt"

// Pos is a location in the source text, both values are 1-based.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// IsValid reports whether position was set by the parser.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// Base is embedded in every node and carries its source position.
type Base struct {
	Pos Pos
}

// Position returns node source position.
func (b *Base) Position() Pos {
	return b.Pos
}

func (*Base) node() {}

// Node is an element of the syntax tree.
type Node interface {
	Position() Pos
	node()
}

type (
	// Anonymous is raw text which is passed to the output as is.
	Anonymous struct {
		Base
		Value string
	}

	// Keyword is an identifier used as a value (bold, true, inherit).
	Keyword struct {
		Base
		Value string
	}

	// Dimension is a number with optional unit (12px, 50%, 1.5).
	Dimension struct {
		Base
		Value float64
		Unit  string
	}

	// Color is an RGBA color. Raw keeps the source spelling of colors which
	// were not produced by an operation.
	Color struct {
		Base
		R, G, B int
		A       float64
		Raw     string
	}

	// Quoted is a string literal, its parts are Anonymous text and curly
	// Variable references. Escaped strings (~"...") are rendered without
	// delimiters. Zero Delim marks raw text with interpolated variables
	// (media features, directive preludes).
	Quoted struct {
		Base
		Delim   byte
		Escaped bool
		Parts   []Node
	}

	// URL is a url(...) value.
	URL struct {
		Base
		Value Node
	}

	// Variable is a reference to a variable: @name, @@name (Indirect) or
	// @{name} (Curly, used inside strings and selectors).
	Variable struct {
		Base
		Name     string
		Curly    bool
		Indirect bool
	}

	// Operation is a binary arithmetic operation.
	Operation struct {
		Base
		Op    byte
		Left  Node
		Right Node
	}

	// Negative is a unary minus applied to a value.
	Negative struct {
		Base
		Value Node
	}

	// Paren is a parenthesized sub expression.
	Paren struct {
		Base
		Value Node
	}

	// Expression is a space separated sequence of values.
	Expression struct {
		Base
		Values []Node
	}

	// ExpressionList is a comma separated sequence of values.
	ExpressionList struct {
		Base
		Values []Node
	}

	// FunctionCall is either a built-in function call or plain CSS function
	// passed through to the output.
	FunctionCall struct {
		Base
		Name string
		Args []Node
	}

	// Condition is a single guard term. Op is one of "and", "or", ">", ">=",
	// "=", "=<", "<" or empty for a bare truth test of Left.
	Condition struct {
		Base
		Op     string
		Left   Node
		Right  Node
		Negate bool
	}

	// Guard is a list of conditions, any of which may be satisfied.
	Guard struct {
		Base
		Conditions []*Condition
	}
)

type (
	// Stylesheet is the root of a parsed file.
	Stylesheet struct {
		Base
		Path  string
		Block *Block
	}

	// Block is an ordered list of rules.
	Block struct {
		Base
		Rules []Node
	}

	// Ruleset is a selector group with a body.
	Ruleset struct {
		Base
		Selectors Selectors
		Guard     *Guard
		Block     *Block
	}

	// Rule is a property declaration.
	Rule struct {
		Base
		Property  string
		Value     Node
		Important bool
	}

	// Definition binds a variable.
	Definition struct {
		Base
		Name  string
		Value Node
	}

	// Parameter is a mixin parameter. Name is empty for pattern parameters
	// which match argument values literally.
	Parameter struct {
		Base
		Name     string
		Value    Node
		Variadic bool
	}

	// MixinParams is the parameter list of a mixin.
	MixinParams struct {
		Base
		Params   []*Parameter
		Variadic bool
	}

	// Argument is a positional (empty Name) or named mixin call argument.
	Argument struct {
		Base
		Name  string
		Value Node
	}

	// MixinCallArgs keeps the delimiter which separated arguments, ';' wins
	// over ',' when both are present.
	MixinCallArgs struct {
		Base
		Delim byte
		Args  []*Argument
	}

	// MixinCall invokes a mixin or a ruleset by path.
	MixinCall struct {
		Base
		Selector  *Selector
		Args      *MixinCallArgs
		Important bool
	}

	// Import is an @import directive.
	Import struct {
		Base
		Path     Node
		Features Node
		Once     bool
	}

	// Media is a @media block.
	Media struct {
		Base
		Features Node
		Block    *Block
	}

	// Directive is any other at-rule, with value (@charset "utf-8";) or with
	// body (@font-face { ... }).
	Directive struct {
		Base
		Name  string
		Value Node
		Block *Block
	}

	// Comment is either block or line comment.
	Comment struct {
		Base
		Body  string
		Block bool
	}

	// Extend is a single target of :extend(...).
	Extend struct {
		Base
		Selector *Selector
		All      bool
	}

	// ExtendList is the content of :extend(...). Inside a block it stands for
	// &:extend(...) and applies to every selector of the enclosing ruleset.
	ExtendList struct {
		Base
		Extends []*Extend
	}
)

// Mixin is a named parameterized block.
type Mixin struct {
	Base
	Name   string
	Params *MixinParams
	Guard  *Guard
	Block  *Block

	closure any
	entries int
}

// Copy returns mixin with a private copy of the body sharing closure with
// the original. Entry count is not copied.
func (m *Mixin) Copy() *Mixin {
	return &Mixin{
		Base:    m.Base,
		Name:    m.Name,
		Params:  m.Params,
		Guard:   m.Guard,
		Block:   CopyBlock(m.Block),
		closure: m.closure,
	}
}

// Capture sets mixin closure. Closure is captured once, subsequent calls are
// ignored and false is returned.
func (m *Mixin) Capture(env any) bool {
	if m.closure != nil {
		return false
	}
	m.closure = env
	return true
}

// Closure returns environment captured when mixin became visible.
func (m *Mixin) Closure() any {
	return m.closure
}

// Enter registers mixin invocation and returns current depth.
func (m *Mixin) Enter() int {
	m.entries++
	return m.entries
}

// Exit must be paired with every Enter.
func (m *Mixin) Exit() {
	m.entries--
}

// Entries returns number of active invocations.
func (m *Mixin) Entries() int {
	return m.entries
}

// Arity returns number of required and maximum number of accepted arguments,
// max is -1 for variadic mixins.
func (p *MixinParams) Arity() (required, max int) {
	if p == nil {
		return 0, 0
	}
	for _, param := range p.Params {
		if param.Variadic {
			return required, -1
		}
		if param.Name == "" || param.Value == nil {
			required++
		}
		max++
	}
	if p.Variadic {
		max = -1
	}
	return required, max
}
