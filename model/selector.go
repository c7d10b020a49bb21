package model

import "strings"

// CombinatorKind identifies relationship between selector parts.
type CombinatorKind byte

const (
	Descendant CombinatorKind = ' '
	Child      CombinatorKind = '>'
	Adjacent   CombinatorKind = '+'
	Sibling    CombinatorKind = '~'
)

// SelectorPart is a node which may appear inside a selector.
type SelectorPart interface {
	Node
	selectorPart()
}

type (
	// TextElement is a simple selector: .class, #id, tag, :pseudo, [attr].
	TextElement struct {
		Base
		Name string
	}

	// Combinator joins two compound selectors.
	Combinator struct {
		Base
		Kind CombinatorKind
	}

	// WildcardElement is the & placeholder replaced by ancestor selectors.
	WildcardElement struct {
		Base
	}

	// ValueElement holds an interpolated value (@{name}) before evaluation
	// and its evaluated value afterwards.
	ValueElement struct {
		Base
		Value Node
	}
)

func (*TextElement) selectorPart()     {}
func (*Combinator) selectorPart()      {}
func (*WildcardElement) selectorPart() {}
func (*ValueElement) selectorPart()    {}

// mixinPath is computed at most once per selector.
type mixinPath struct {
	value string
	ok    bool
}

// selectorState is derived from parts as they are added.
type selectorState struct {
	needsEval   bool
	hasWildcard bool
	hasExtend   bool
	path        *mixinPath
}

// Selector is an ordered sequence of parts with optional extend list and
// guard. Parts are only appended through Add which maintains the derived
// state.
type Selector struct {
	Base
	parts  []SelectorPart
	extend *ExtendList
	guard  *Guard
	state  selectorState
}

// Selectors is an ordered selector group.
type Selectors []*Selector

// NewSelector creates selector from parts.
func NewSelector(parts ...SelectorPart) *Selector {
	s := &Selector{}
	for _, p := range parts {
		s.Add(p)
	}
	return s
}

// Add appends part to the selector. A combinator following descendant
// combinator replaces it, a combinator following any other combinator is
// dropped.
func (s *Selector) Add(part SelectorPart) {
	if c, ok := part.(*Combinator); ok && len(s.parts) > 0 {
		if last, ok := s.parts[len(s.parts)-1].(*Combinator); ok {
			if last.Kind == Descendant {
				s.parts[len(s.parts)-1] = c
			}
			return
		}
	}
	s.parts = append(s.parts, part)

	switch p := part.(type) {
	case *WildcardElement:
		s.state.hasWildcard = true
	case *ValueElement:
		if NeedsEval(p.Value) {
			s.state.needsEval = true
		}
	}
}

// Parts returns selector parts, callers must not modify returned slice.
func (s *Selector) Parts() []SelectorPart {
	return s.parts
}

// Len returns number of parts.
func (s *Selector) Len() int {
	return len(s.parts)
}

// IsEmpty reports selector without parts.
func (s *Selector) IsEmpty() bool {
	return len(s.parts) == 0
}

// HasWildcard reports presence of & anywhere in selector.
func (s *Selector) HasWildcard() bool {
	return s.state.hasWildcard
}

// HasExtend reports whether extend list is attached.
func (s *Selector) HasExtend() bool {
	return s.state.hasExtend
}

// NeedsEval reports whether selector or its extend list contains
// unresolved values.
func (s *Selector) NeedsEval() bool {
	return s.state.needsEval
}

// ExtendList returns attached extend list or nil.
func (s *Selector) ExtendList() *ExtendList {
	return s.extend
}

// SetExtendList attaches extend list to the selector.
func (s *Selector) SetExtendList(list *ExtendList) {
	if list == nil {
		return
	}
	s.extend = list
	s.state.hasExtend = true
	if NeedsEval(list) {
		s.state.needsEval = true
	}
}

// Guard returns guard parsed together with the selector. The parser moves
// it to the enclosing ruleset.
func (s *Selector) Guard() *Guard {
	return s.guard
}

// SetGuard sets selector guard.
func (s *Selector) SetGuard(g *Guard) {
	s.guard = g
}

// MixinPath returns text used for fast mixin matching. Only selectors which
// need no evaluation and consist of text elements, optionally preceded by a
// single wildcard, have a path. The value is computed once.
func (s *Selector) MixinPath() (string, bool) {
	if s.state.path == nil {
		s.state.path = &mixinPath{}
		s.state.path.value, s.state.path.ok = textPath(s)
	}
	return s.state.path.value, s.state.path.ok
}

// PresetMixinPath stores path computed elsewhere (after evaluation). It has
// no effect when path was already built.
func (s *Selector) PresetMixinPath(path string, ok bool) {
	if s.state.path != nil {
		return
	}
	s.state.path = &mixinPath{value: path, ok: ok}
}

func textPath(s *Selector) (string, bool) {
	if s.state.needsEval || len(s.parts) == 0 {
		return "", false
	}
	var sb strings.Builder
	for i, part := range s.parts {
		switch p := part.(type) {
		case *WildcardElement:
			if i != 0 {
				return "", false
			}
		case *TextElement:
			sb.WriteString(p.Name)
		default:
			return "", false
		}
	}
	if sb.Len() == 0 {
		return "", false
	}
	return sb.String(), true
}

// Equal reports structural equality of two selectors: same parts in the same
// order. Positions, caches and extend lists are ignored.
func (s *Selector) Equal(other *Selector) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.parts) != len(other.parts) {
		return false
	}
	for i := range s.parts {
		if !partEqual(s.parts[i], other.parts[i]) {
			return false
		}
	}
	return true
}

func partEqual(a, b SelectorPart) bool {
	switch x := a.(type) {
	case *TextElement:
		y, ok := b.(*TextElement)
		return ok && x.Name == y.Name
	case *Combinator:
		y, ok := b.(*Combinator)
		return ok && x.Kind == y.Kind
	case *WildcardElement:
		_, ok := b.(*WildcardElement)
		return ok
	case *ValueElement:
		y, ok := b.(*ValueElement)
		return ok && Repr(x.Value) == Repr(y.Value)
	}
	return false
}
