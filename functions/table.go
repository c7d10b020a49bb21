// Package functions implements registry of built-in functions available to
// stylesheets.
package functions

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"lessc/model"
)

// Impl computes function result from evaluated arguments. Nil result with
// nil error means arguments are not applicable and the call is passed to
// the output as plain CSS.
type Impl func(args []model.Node) (model.Node, error)

// Function is a registered built-in.
type Function struct {
	Name    string
	MinArgs int
	// MaxArgs is -1 for functions accepting any number of arguments.
	MaxArgs int
	impl    Impl
}

// New creates function definition.
func New(name string, min, max int, impl Impl) *Function {
	return &Function{Name: name, MinArgs: min, MaxArgs: max, impl: impl}
}

// Accepts reports whether function may be called with n arguments.
func (f *Function) Accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

// Call invokes function.
func (f *Function) Call(args []model.Node) (model.Node, error) {
	return f.impl(args)
}

// Table is immutable registry of functions. It is safe for concurrent use.
type Table struct {
	funcs map[string]*Function
}

// NewTable builds registry, names are case insensitive.
func NewTable(funcs ...*Function) (*Table, error) {
	t := &Table{funcs: make(map[string]*Function, len(funcs))}
	for _, f := range funcs {
		name := strings.ToLower(f.Name)
		if _, ok := t.funcs[name]; ok {
			return nil, fmt.Errorf("function %q registered twice", f.Name)
		}
		t.funcs[name] = f
	}
	return t, nil
}

// With returns new table extended by funcs, the receiver is not changed.
func (t *Table) With(funcs ...*Function) (*Table, error) {
	all := slices.Collect(maps.Values(t.funcs))
	return NewTable(append(all, funcs...)...)
}

// Lookup finds function by name. Unknown names return nil function and nil
// error, those calls are plain CSS. Known function called with wrong number
// of arguments is an error.
func (t *Table) Lookup(name string, arity int) (*Function, error) {
	f, ok := t.funcs[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	if !f.Accepts(arity) {
		want := fmt.Sprintf("%d", f.MinArgs)
		switch {
		case f.MaxArgs < 0:
			want = fmt.Sprintf("at least %d", f.MinArgs)
		case f.MaxArgs != f.MinArgs:
			want = fmt.Sprintf("%d to %d", f.MinArgs, f.MaxArgs)
		}
		return nil, model.Errorf(model.FunctionEvaluationError, model.Pos{}, "%s() takes %s arguments, %d given", f.Name, want, arity)
	}
	return f, nil
}

// Names returns sorted names of registered functions.
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.funcs))
}

var builtins = sync.OnceValue(func() *Table {
	var all []*Function
	all = append(all, colorFunctions()...)
	all = append(all, mathFunctions()...)
	all = append(all, stringFunctions()...)
	all = append(all, typeFunctions()...)
	t, err := NewTable(all...)
	if err != nil {
		panic(err)
	}
	return t
})

// Builtins returns shared table with all built-in functions.
func Builtins() *Table {
	return builtins()
}

func boolean(v bool) model.Node {
	if v {
		return &model.Keyword{Value: "true"}
	}
	return &model.Keyword{Value: "false"}
}

func dimension(n model.Node) (*model.Dimension, error) {
	d, ok := n.(*model.Dimension)
	if !ok {
		return nil, fmt.Errorf("number expected, got %s", describe(n))
	}
	return d, nil
}

func color(n model.Node) (*model.Color, error) {
	switch v := n.(type) {
	case *model.Color:
		return v, nil
	case *model.Keyword:
		if c, ok := model.ColorFromKeyword(v.Value); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("color expected, got %s", describe(n))
}

// text returns content of strings and keywords.
func text(n model.Node) (string, error) {
	switch v := n.(type) {
	case *model.Quoted:
		var sb strings.Builder
		for _, p := range v.Parts {
			sb.WriteString(model.Repr(p))
		}
		return sb.String(), nil
	case *model.Keyword:
		return v.Value, nil
	case *model.Anonymous:
		return v.Value, nil
	}
	return "", fmt.Errorf("string expected, got %s", describe(n))
}

func describe(n model.Node) string {
	if n == nil {
		return "nothing"
	}
	return fmt.Sprintf("%s %q", strings.ToLower(strings.TrimPrefix(fmt.Sprintf("%T", n), "*model.")), model.Repr(n))
}
