package eval

import (
	"slices"
	"testing"

	"lessc/model"
	"lessc/parse"
	"lessc/render"
)

func group(t *testing.T, texts ...string) model.Selectors {
	t.Helper()
	sels := make(model.Selectors, 0, len(texts))
	for _, text := range texts {
		s, err := parse.ParseSelector(text)
		if err != nil {
			t.Fatalf("ParseSelector(%q): %v", text, err)
		}
		sels = append(sels, s)
	}
	return sels
}

func texts(sels model.Selectors) []string {
	res := make([]string, 0, len(sels))
	for _, s := range sels {
		res = append(res, render.SelectorString(s))
	}
	return res
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name      string
		ancestors []string
		current   []string
		want      []string
	}{
		{name: "descendant", ancestors: []string{".a"}, current: []string{".b"}, want: []string{".a .b"}},
		{name: "every ancestor", ancestors: []string{".a", ".b"}, current: []string{".c"}, want: []string{".a .c", ".b .c"}},
		{name: "compound wildcard", ancestors: []string{".a"}, current: []string{"&.b"}, want: []string{".a.b"}},
		{name: "pseudo class", ancestors: []string{".a"}, current: []string{"&:hover"}, want: []string{".a:hover"}},
		{name: "suffix", ancestors: []string{".a"}, current: []string{"&-x"}, want: []string{".a-x"}},
		{name: "trailing wildcard", ancestors: []string{".a"}, current: []string{".b &"}, want: []string{".b .a"}},
		{name: "child combinator", ancestors: []string{".a"}, current: []string{"> .b"}, want: []string{".a > .b"}},
		{
			name:      "permutations",
			ancestors: []string{".a", ".b"},
			current:   []string{"& + &"},
			want:      []string{".a + .a", ".a + .b", ".b + .a", ".b + .b"},
		},
		{name: "no ancestors", current: []string{".a > .b"}, want: []string{".a > .b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ancestors model.Selectors
			if tt.ancestors != nil {
				ancestors = group(t, tt.ancestors...)
			}
			got := texts(Combine(ancestors, group(t, tt.current...)))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Combine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCombine_EmptyCurrentFilters(t *testing.T) {
	ancestors := group(t, ".a > &", ".b")
	got := texts(Combine(ancestors, nil))
	want := texts(Filter(ancestors))
	if !slices.Equal(got, want) {
		t.Errorf("Combine() = %q, Filter() = %q", got, want)
	}
	if want[0] != ".a" {
		t.Errorf("wildcard with its combinator must be dropped, got %q", want[0])
	}
}

func TestFilter_Idempotent(t *testing.T) {
	for _, text := range []string{".a > & .b", "& + .c", ".a ~ .b &"} {
		sel := group(t, text)[0]
		once := FilterSelector(sel)
		twice := FilterSelector(once)
		if !once.Equal(twice) {
			t.Errorf("%q: %q filtered again gives %q", text, render.SelectorString(once), render.SelectorString(twice))
		}
	}
}

func TestCombine_KeepsExtendList(t *testing.T) {
	current := group(t, "&.b:extend(.c)")
	got := Combine(group(t, ".a"), current)
	if len(got) != 1 || !got[0].HasExtend() {
		t.Fatalf("extend list lost, got %q", texts(got))
	}
	if target := render.SelectorString(got[0].ExtendList().Extends[0].Selector); target != ".c" {
		t.Errorf("extend target = %q, want .c", target)
	}
}

func TestCompositeMixinPath(t *testing.T) {
	tests := []struct {
		name string
		sel  *model.Selector
		want string
		ok   bool
	}{
		{
			name: "evaluated value",
			sel:  model.NewSelector(&model.TextElement{Name: "."}, &model.ValueElement{Value: &model.Keyword{Value: "m"}}),
			want: ".m",
			ok:   true,
		},
		{
			name: "leading wildcard",
			sel:  model.NewSelector(&model.WildcardElement{}, &model.TextElement{Name: "#ns"}),
			want: "#ns",
			ok:   true,
		},
		{
			name: "unevaluated",
			sel:  model.NewSelector(&model.ValueElement{Value: &model.Variable{Name: "@x", Curly: true}}),
		},
		{
			name: "combinator",
			sel:  model.NewSelector(&model.TextElement{Name: ".a"}, &model.Combinator{Kind: model.Child}, &model.TextElement{Name: ".b"}),
		},
		{name: "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CompositeMixinPath(tt.sel)
			if got != tt.want || ok != tt.ok {
				t.Errorf("CompositeMixinPath() = %q %v, want %q %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
