package model

import (
	"errors"
	"fmt"
	"testing"
)

func text(name string) *TextElement {
	return &TextElement{Name: name}
}

func comb(kind CombinatorKind) *Combinator {
	return &Combinator{Kind: kind}
}

func TestSelector_AddCollapsesCombinators(t *testing.T) {
	tests := []struct {
		name  string
		parts []SelectorPart
		want  string
	}{
		{name: "descendant replaced", parts: []SelectorPart{text(".a"), comb(Descendant), comb(Child), text(".b")}, want: ".a > .b"},
		{name: "second combinator dropped", parts: []SelectorPart{text(".a"), comb(Child), comb(Adjacent), text(".b")}, want: ".a > .b"},
		{name: "double descendant", parts: []SelectorPart{text(".a"), comb(Descendant), comb(Descendant), text(".b")}, want: ".a .b"},
		{name: "leading combinator", parts: []SelectorPart{comb(Sibling), text(".b")}, want: "~ .b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(tt.parts...)
			if got := Repr(s); got != tt.want {
				t.Errorf("Repr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelector_DerivedState(t *testing.T) {
	s := NewSelector(&WildcardElement{}, text(".a"))
	if !s.HasWildcard() {
		t.Error("expected wildcard")
	}
	if s.NeedsEval() {
		t.Error("plain selector must not need evaluation")
	}

	s.Add(&ValueElement{Value: &Variable{Name: "@x", Curly: true}})
	if !s.NeedsEval() {
		t.Error("interpolated selector must need evaluation")
	}

	plain := NewSelector(text(".b"))
	plain.SetExtendList(&ExtendList{Extends: []*Extend{{Selector: NewSelector(text(".c"))}}})
	if !plain.HasExtend() || plain.NeedsEval() {
		t.Errorf("HasExtend() = %v NeedsEval() = %v, want true false", plain.HasExtend(), plain.NeedsEval())
	}
}

func TestSelector_MixinPath(t *testing.T) {
	tests := []struct {
		name string
		sel  *Selector
		want string
		ok   bool
	}{
		{name: "class", sel: NewSelector(text(".m")), want: ".m", ok: true},
		{name: "compound", sel: NewSelector(text("#ns"), text(".m")), want: "#ns.m", ok: true},
		{name: "leading wildcard", sel: NewSelector(&WildcardElement{}, text(".m")), want: ".m", ok: true},
		{name: "inner wildcard", sel: NewSelector(text(".m"), &WildcardElement{})},
		{name: "combinator", sel: NewSelector(text("#ns"), comb(Child), text(".m"))},
		{name: "needs eval", sel: NewSelector(&ValueElement{Value: &Variable{Name: "@x", Curly: true}})},
		{name: "empty", sel: NewSelector()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.sel.MixinPath()
			if got != tt.want || ok != tt.ok {
				t.Errorf("MixinPath() = %q %v, want %q %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSelector_MixinPathMemoized(t *testing.T) {
	s := NewSelector(text(".m"))
	s.PresetMixinPath(".other", true)
	if got, _ := s.MixinPath(); got != ".other" {
		t.Errorf("preset path ignored, got %q", got)
	}
	s.PresetMixinPath(".third", true)
	if got, _ := s.MixinPath(); got != ".other" {
		t.Errorf("path computed twice, got %q", got)
	}
}

func TestSelector_Equal(t *testing.T) {
	a := NewSelector(text(".a"), comb(Child), text(".b"))
	b := NewSelector(&TextElement{Base: Base{Pos: Pos{Line: 3, Col: 1}}, Name: ".a"}, comb(Child), text(".b"))
	c := NewSelector(text(".a"), comb(Descendant), text(".b"))

	if !a.Equal(b) {
		t.Error("selectors differing only in positions must be equal")
	}
	if a.Equal(c) {
		t.Error("selectors with different combinators must differ")
	}
	if a.Equal(nil) {
		t.Error("selector must not equal nil")
	}
}

func TestMixin_CopyAndClosure(t *testing.T) {
	inner := &Ruleset{Selectors: Selectors{NewSelector(text(".x"))}, Block: &Block{}}
	m := &Mixin{Name: ".m", Block: &Block{Rules: []Node{inner}}}

	if !m.Capture("env") {
		t.Fatal("first capture must succeed")
	}
	if m.Capture("other") {
		t.Error("closure must be captured once")
	}

	c := m.Copy()
	if c.Closure() != "env" {
		t.Errorf("copy closure = %v, want shared closure", c.Closure())
	}
	if c.Block == m.Block || c.Block.Rules[0] == m.Block.Rules[0] {
		t.Error("copy must not share block structure")
	}

	m.Enter()
	if c.Entries() != 0 {
		t.Error("entry count must not be shared")
	}
	if got := m.Enter(); got != 2 {
		t.Errorf("Enter() = %d, want 2", got)
	}
	m.Exit()
	m.Exit()
	if m.Entries() != 0 {
		t.Errorf("Entries() = %d after exits, want 0", m.Entries())
	}
}

func TestMixinParams_Arity(t *testing.T) {
	tests := []struct {
		name     string
		params   *MixinParams
		required int
		max      int
	}{
		{name: "nil", params: nil, required: 0, max: 0},
		{name: "defaults", params: &MixinParams{Params: []*Parameter{{Name: "@a"}, {Name: "@b", Value: &Dimension{Value: 1}}}}, required: 1, max: 2},
		{name: "pattern", params: &MixinParams{Params: []*Parameter{{Value: &Keyword{Value: "dark"}}, {Name: "@a"}}}, required: 2, max: 2},
		{name: "rest", params: &MixinParams{Params: []*Parameter{{Name: "@a"}, {Name: "@rest", Variadic: true}}, Variadic: true}, required: 1, max: -1},
		{name: "ellipsis", params: &MixinParams{Params: []*Parameter{{Name: "@a"}}, Variadic: true}, required: 1, max: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required, max := tt.params.Arity()
			if required != tt.required || max != tt.max {
				t.Errorf("Arity() = %d %d, want %d %d", required, max, tt.required, tt.max)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("compile: %w", Errorf(RecursionLimitExceeded, Pos{Line: 2, Col: 3}, "depth %d", 64))
	if !errors.Is(err, ErrRecursionLimit) {
		t.Error("expected recursion limit error")
	}
	if errors.Is(err, ErrUnmatchedGuard) {
		t.Error("kinds must not match")
	}

	e := &Error{Kind: UnmatchedGuard, Path: "a.less", Pos: Pos{Line: 1, Col: 2}, Msg: ".m(1)", Chain: []string{".a()", ".m(1)"}}
	want := "a.less:1:2: unmatched guard: .m(1) (call chain: .a() -> .m(1))"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValues(t *testing.T) {
	for _, tt := range []struct {
		v    float64
		want string
	}{
		{v: 12, want: "12"}, {v: 0.5, want: "0.5"}, {v: 1.0 / 3, want: "0.33333333"}, {v: -0.000000001, want: "0"},
	} {
		if got := FormatNumber(tt.v); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}

	c, ok := ParseHexColor("#ABC")
	if !ok || c.R != 0xaa || c.G != 0xbb || c.B != 0xcc || c.Raw != "#abc" {
		t.Errorf("ParseHexColor() = %+v %v", c, ok)
	}
	if _, ok := ParseHexColor("#abcd"); ok {
		t.Error("four digit color must be rejected")
	}
	if got := NewColor(300, -5, 17, 1).Hex(false); got != "#ff0011" {
		t.Errorf("Hex() = %q", got)
	}
	if got := NewColor(255, 0, 17, 1).Hex(true); got != "#f01" {
		t.Errorf("short Hex() = %q", got)
	}
	if red, ok := ColorFromKeyword("Red"); !ok || red.R != 255 {
		t.Errorf("ColorFromKeyword() = %+v %v", red, ok)
	}
}
