package eval

import (
	"testing"

	"lessc/model"
)

func TestExtend(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "exact",
			src:  ".a {\n  color: red;\n}\n.b:extend(.a) {\n  x: 1;\n}\n.c {\n  &:extend(.a);\n}\n",
			want: ".a,.b,.c{color:red;}\n.b{x:1;}\n",
		},
		{
			name: "exact does not match compound",
			src:  ".a.x {\n  c: 1;\n}\n.b:extend(.a) {\n  d: 2;\n}\n",
			want: ".a.x{c:1;}\n.b{d:2;}\n",
		},
		{
			name: "all",
			src:  ".a.x {\n  c: 1;\n}\n.b:extend(.a all) {\n  d: 2;\n}\n",
			want: ".a.x,.b{c:1;}\n.b{d:2;}\n",
		},
		{
			name: "all matches descendant selector",
			src:  ".b .c {\n  x: 1;\n}\n.a:extend(.b all) {\n  y: 2;\n}\n",
			want: ".b .c,.a{x:1;}\n.a{y:2;}\n",
		},
		{
			name: "all adds owner selector as is",
			src:  ".ab {\n  x: 1;\n}\n.z:extend(.a all) {\n  y: 2;\n}\n",
			want: ".ab,.z{x:1;}\n.z{y:2;}\n",
		},
		{
			name: "no duplicates",
			src:  ".a {\n  c: 1;\n}\n.b:extend(.a) {\n  d: 2;\n}\n.b:extend(.a) {\n  e: 3;\n}\n",
			want: ".a,.b{c:1;}\n.b{d:2;}\n.b{e:3;}\n",
		},
		{
			name: "self is not extended",
			src:  ".a:extend(.a) {\n  c: 1;\n}\n",
			want: ".a{c:1;}\n",
		},
		{
			name: "nested selectors",
			src:  ".p {\n  .a {\n    c: 1;\n  }\n}\n.q {\n  &:extend(.p .a);\n  d: 2;\n}\n",
			want: ".p .a,.q{c:1;}\n.q{d:2;}\n",
		},
		{
			name: "inside media",
			src:  "@media print {\n  .a {\n    c: 1;\n  }\n}\n.b:extend(.a) {\n  d: 2;\n}\n",
			want: "@media print{\n.a,.b{c:1;}\n}\n.b{d:2;}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compile(t, newEvaluator(t, Options{}, nil), tt.src)
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestExtends_Resolve(t *testing.T) {
	target := group(t, ".a")
	owner := group(t, ".b")
	other := group(t, ".c")

	rs := &model.Ruleset{Selectors: target, Block: &model.Block{}}
	extending := &model.Ruleset{Selectors: owner, Block: &model.Block{}}
	unrelated := &model.Ruleset{Selectors: other, Block: &model.Block{}}

	var x Extends
	x.Collect(extending, owner, []*model.ExtendList{{Extends: []*model.Extend{{Selector: group(t, ".a")[0]}}}})
	if x.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", x.Len())
	}
	x.Resolve([]model.Node{rs, extending, unrelated})
	if got := texts(rs.Selectors); len(got) != 2 || got[1] != ".b" {
		t.Errorf("target selectors = %q", got)
	}
	if len(unrelated.Selectors) != 1 || len(extending.Selectors) != 1 {
		t.Error("non matching rulesets changed")
	}
}

func TestExtends_AllKeepsOwner(t *testing.T) {
	rs := &model.Ruleset{Selectors: group(t, ".a.x"), Block: &model.Block{}}
	owner := &model.Ruleset{Selectors: group(t, ".b"), Block: &model.Block{}}

	var x Extends
	x.Collect(owner, owner.Selectors, []*model.ExtendList{{Extends: []*model.Extend{{Selector: group(t, ".a")[0], All: true}}}})
	x.Resolve([]model.Node{rs, owner})
	x.Resolve([]model.Node{rs, owner})

	got := texts(rs.Selectors)
	if len(got) != 2 || got[1] != ".b" || rs.Selectors[1] != owner.Selectors[0] {
		t.Errorf("target selectors = %q, want owner selector appended once", got)
	}

	ev := newEvaluator(t, Options{Strict: true}, nil)
	ev.ctx.extends = &x
	ev.resolveExtends([]model.Node{rs, owner})
	if w := ev.Diagnostics().Warnings(); len(w) != 0 {
		t.Errorf("Warnings() = %v", w)
	}
}
