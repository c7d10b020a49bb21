package functions

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"lessc/model"
	"lessc/render"
)

func num(v float64, unit string) *model.Dimension {
	return &model.Dimension{Value: v, Unit: unit}
}

func hex(t *testing.T, s string) *model.Color {
	t.Helper()
	c, ok := model.ParseHexColor(s)
	if !ok {
		t.Fatalf("bad color %q", s)
	}
	return c
}

func str(s string) *model.Quoted {
	return &model.Quoted{Delim: '"', Parts: []model.Node{&model.Anonymous{Value: s}}}
}

func kw(s string) *model.Keyword {
	return &model.Keyword{Value: s}
}

func call(t *testing.T, name string, args ...model.Node) (model.Node, error) {
	t.Helper()
	f, err := Builtins().Lookup(name, len(args))
	if err != nil {
		return nil, err
	}
	if f == nil {
		t.Fatalf("function %s is not registered", name)
	}
	return f.Call(args)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args func(t *testing.T) []model.Node
		want string
	}{
		{name: "rgb", fn: "rgb", args: func(*testing.T) []model.Node { return []model.Node{num(255, ""), num(0, ""), num(0, "")} }, want: "#ff0000"},
		{name: "rgb percentages", fn: "rgb", args: func(*testing.T) []model.Node { return []model.Node{num(100, "%"), num(0, ""), num(0, "")} }, want: "#ff0000"},
		{name: "rgba", fn: "rgba", args: func(*testing.T) []model.Node { return []model.Node{num(0, ""), num(0, ""), num(0, ""), num(0.5, "")} }, want: "rgba(0, 0, 0, 0.5)"},
		{name: "hsl", fn: "hsl", args: func(*testing.T) []model.Node { return []model.Node{num(0, ""), num(100, "%"), num(50, "%")} }, want: "#ff0000"},
		{name: "lighten", fn: "lighten", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#000"), num(50, "%")} }, want: "#808080"},
		{name: "darken", fn: "darken", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#fff"), num(100, "%")} }, want: "#000000"},
		{name: "greyscale", fn: "greyscale", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#f00")} }, want: "#808080"},
		{name: "spin", fn: "spin", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#f00"), num(120, "")} }, want: "#00ff00"},
		{name: "fade", fn: "fade", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#000"), num(50, "%")} }, want: "rgba(0, 0, 0, 0.5)"},
		{name: "mix", fn: "mix", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#f00"), hex(t, "#00f")} }, want: "#800080"},
		{name: "color keyword", fn: "mix", args: func(t *testing.T) []model.Node { return []model.Node{kw("red"), hex(t, "#f00")} }, want: "#ff0000"},
		{name: "red", fn: "red", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#123456")} }, want: "18"},
		{name: "lightness", fn: "lightness", args: func(t *testing.T) []model.Node { return []model.Node{hex(t, "#fff")} }, want: "100%"},
		{name: "alpha", fn: "alpha", args: func(*testing.T) []model.Node { return []model.Node{model.NewColor(0, 0, 0, 0.25)} }, want: "0.25"},
		{name: "percentage", fn: "percentage", args: func(*testing.T) []model.Node { return []model.Node{num(0.25, "")} }, want: "25%"},
		{name: "round", fn: "round", args: func(*testing.T) []model.Node { return []model.Node{num(1.2345, "px"), num(2, "")} }, want: "1.23px"},
		{name: "ceil", fn: "ceil", args: func(*testing.T) []model.Node { return []model.Node{num(1.2, "px")} }, want: "2px"},
		{name: "floor", fn: "floor", args: func(*testing.T) []model.Node { return []model.Node{num(1.8, "")} }, want: "1"},
		{name: "abs", fn: "abs", args: func(*testing.T) []model.Node { return []model.Node{num(-3, "em")} }, want: "3em"},
		{name: "sqrt", fn: "sqrt", args: func(*testing.T) []model.Node { return []model.Node{num(16, "")} }, want: "4"},
		{name: "min", fn: "min", args: func(*testing.T) []model.Node { return []model.Node{num(3, "px"), num(1, "px"), num(2, "")} }, want: "1px"},
		{name: "max", fn: "max", args: func(*testing.T) []model.Node { return []model.Node{num(3, ""), num(5, "")} }, want: "5"},
		{name: "mod", fn: "mod", args: func(*testing.T) []model.Node { return []model.Node{num(7, "px"), num(3, "")} }, want: "1px"},
		{name: "pow", fn: "pow", args: func(*testing.T) []model.Node { return []model.Node{num(2, "px"), num(3, "")} }, want: "8px"},
		{name: "pi", fn: "pi", args: func(*testing.T) []model.Node { return nil }, want: "3.14159265"},
		{name: "unit removed", fn: "unit", args: func(*testing.T) []model.Node { return []model.Node{num(5, "px")} }, want: "5"},
		{name: "unit set", fn: "unit", args: func(*testing.T) []model.Node { return []model.Node{num(5, ""), str("em")} }, want: "5em"},
		{name: "e", fn: "e", args: func(*testing.T) []model.Node { return []model.Node{str("a b")} }, want: "a b"},
		{name: "escape", fn: "escape", args: func(*testing.T) []model.Node { return []model.Node{str("a=1;b")} }, want: "a%3D1%3Bb"},
		{name: "format", fn: "%", args: func(*testing.T) []model.Node { return []model.Node{str("%d/%s"), num(10, "px"), str("a b")} }, want: "\"10px/a b\""},
		{name: "format encoded", fn: "%", args: func(*testing.T) []model.Node { return []model.Node{str("%S 100%%"), str("a b")} }, want: "\"a%20b 100%\""},
		{name: "iscolor", fn: "iscolor", args: func(*testing.T) []model.Node { return []model.Node{kw("red")} }, want: "true"},
		{name: "iscolor keyword", fn: "iscolor", args: func(*testing.T) []model.Node { return []model.Node{kw("block")} }, want: "false"},
		{name: "isnumber", fn: "isnumber", args: func(*testing.T) []model.Node { return []model.Node{num(1, "")} }, want: "true"},
		{name: "isstring", fn: "isstring", args: func(*testing.T) []model.Node { return []model.Node{str("x")} }, want: "true"},
		{name: "iskeyword", fn: "iskeyword", args: func(*testing.T) []model.Node { return []model.Node{num(1, "")} }, want: "false"},
		{name: "isurl", fn: "isurl", args: func(*testing.T) []model.Node { return []model.Node{&model.URL{Value: &model.Anonymous{Value: "a.png"}}} }, want: "true"},
		{name: "ispixel", fn: "ispixel", args: func(*testing.T) []model.Node { return []model.Node{num(1, "px")} }, want: "true"},
		{name: "isem", fn: "isem", args: func(*testing.T) []model.Node { return []model.Node{num(1, "px")} }, want: "false"},
		{name: "ispercentage", fn: "ispercentage", args: func(*testing.T) []model.Node { return []model.Node{num(1, "%")} }, want: "true"},
		{name: "isunit", fn: "isunit", args: func(*testing.T) []model.Node { return []model.Node{num(1, "rem"), kw("rem")} }, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := call(t, tt.fn, tt.args(t)...)
			if err != nil {
				t.Fatalf("%s() error = %v", tt.fn, err)
			}
			if s := render.ValueString(got); s != tt.want {
				t.Errorf("%s() = %q, want %q", tt.fn, s, tt.want)
			}
		})
	}
}

func TestBuiltins_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []model.Node
	}{
		{name: "not a number", fn: "percentage", args: []model.Node{kw("red")}},
		{name: "not a color", fn: "lighten", args: []model.Node{num(1, ""), num(10, "%")}},
		{name: "incompatible units", fn: "max", args: []model.Node{num(1, "px"), num(2, "em")}},
		{name: "mod by zero", fn: "mod", args: []model.Node{num(1, ""), num(0, "")}},
		{name: "format arguments", fn: "%", args: []model.Node{str("%s %s"), num(1, "")}},
		{name: "format string", fn: "%", args: []model.Node{num(1, "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, err := call(t, tt.fn, tt.args...); err == nil {
				t.Errorf("%s() = %v, want error", tt.fn, got)
			}
		})
	}
}

func TestAlpha_PassThrough(t *testing.T) {
	got, err := call(t, "alpha", &model.Anonymous{Value: "opacity=50"})
	if err != nil || got != nil {
		t.Errorf("alpha() = %v, %v, want pass through", got, err)
	}
}

func TestTable_Lookup(t *testing.T) {
	tests := []struct {
		name  string
		fn    string
		arity int
		msg   string
	}{
		{name: "exact", fn: "percentage", arity: 2, msg: "percentage() takes 1 arguments, 2 given"},
		{name: "range", fn: "round", arity: 3, msg: "round() takes 1 to 2 arguments, 3 given"},
		{name: "variadic", fn: "%", arity: 0, msg: "%() takes at least 1 arguments, 0 given"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Builtins().Lookup(tt.fn, tt.arity)
			if f != nil || !errors.Is(err, model.ErrFunction) {
				t.Fatalf("Lookup() = %v, %v", f, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q, want %q", err, tt.msg)
			}
		})
	}

	if f, err := Builtins().Lookup("translate", 2); f != nil || err != nil {
		t.Errorf("unknown function Lookup() = %v, %v, want nil nil", f, err)
	}
	if f, err := Builtins().Lookup("RGB", 3); f == nil || err != nil {
		t.Errorf("Lookup() must ignore case, got %v, %v", f, err)
	}
}

func TestTable_With(t *testing.T) {
	double := New("double", 1, 1, func(args []model.Node) (model.Node, error) {
		d, err := dimension(args[0])
		if err != nil {
			return nil, err
		}
		return num(d.Value*2, d.Unit), nil
	})

	ext, err := Builtins().With(double)
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if f, _ := ext.Lookup("double", 1); f == nil {
		t.Fatal("added function not found")
	}
	if f, _ := Builtins().Lookup("double", 1); f != nil {
		t.Error("shared table modified")
	}
	if !slices.Contains(ext.Names(), "rgb") || !slices.IsSorted(ext.Names()) {
		t.Error("Names() must list all functions sorted")
	}

	if _, err := ext.With(New("Double", 1, 1, nil)); err == nil {
		t.Error("duplicate registration must fail")
	}
}
