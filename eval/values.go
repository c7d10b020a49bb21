package eval

import (
	"errors"
	"math"
	"strings"

	"lessc/model"
	"lessc/render"
)

// interpolated returns value text as it is substituted into strings and
// selectors, strings lose their quotes.
func interpolated(n model.Node) string {
	if q, ok := n.(*model.Quoted); ok {
		var sb strings.Builder
		for _, p := range q.Parts {
			render.Value(&sb, p, false)
		}
		return sb.String()
	}
	return render.ValueString(n)
}

func (e *Evaluator) variable(v *model.Variable, env *Env) (model.Node, error) {
	name := v.Name
	if v.Indirect {
		inner, err := e.variable(&model.Variable{Base: v.Base, Name: v.Name}, env)
		if err != nil {
			return nil, err
		}
		name = "@" + interpolated(inner)
	}
	b := env.lookup(name)
	if b == nil {
		return nil, e.fail(model.UndefinedReference, v, "variable %s is undefined", name)
	}
	return e.resolve(b, name, v)
}

// resolve returns binding value evaluating definition on first use.
func (e *Evaluator) resolve(b *binding, name string, at model.Node) (model.Node, error) {
	if b.value != nil {
		return b.value, nil
	}
	if b.busy {
		err := e.fail(model.UndefinedReference, at, "variable %s is defined in terms of itself", name)
		err.Err = ErrVariableCycle
		return nil, err
	}
	b.busy = true
	defer func() { b.busy = false }()

	v, err := e.Eval(b.def.Value, b.env)
	if err != nil {
		return nil, err
	}
	b.value = v
	return v, nil
}

func (e *Evaluator) negative(n *model.Negative, env *Env) (model.Node, error) {
	v, err := e.Eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if d, ok := v.(*model.Dimension); ok {
		return &model.Dimension{Base: n.Base, Value: -d.Value, Unit: d.Unit}, nil
	}
	return &model.Negative{Base: n.Base, Value: v}, nil
}

// paren drops parentheses around single computed value.
func (e *Evaluator) paren(p *model.Paren, env *Env) (model.Node, error) {
	v, err := e.Eval(p.Value, env)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case *model.Expression, *model.ExpressionList:
		return &model.Paren{Base: p.Base, Value: v}, nil
	}
	return v, nil
}

// quoted substitutes @{name} references, result has single text part.
func (e *Evaluator) quoted(q *model.Quoted, env *Env) (model.Node, error) {
	var sb strings.Builder
	for _, part := range q.Parts {
		v, err := e.Eval(part, env)
		if err != nil {
			return nil, err
		}
		sb.WriteString(interpolated(v))
	}
	return &model.Quoted{Base: q.Base, Delim: q.Delim, Escaped: q.Escaped, Parts: []model.Node{&model.Anonymous{Base: q.Base, Value: sb.String()}}}, nil
}

func (e *Evaluator) functionCall(f *model.FunctionCall, env *Env) (model.Node, error) {
	args, err := e.evalList(f.Args, env)
	if err != nil {
		return nil, err
	}
	fn, err := e.funcs.Lookup(f.Name, len(args))
	if err != nil {
		return nil, e.wrap(model.FunctionEvaluationError, f, err, "%s()", f.Name)
	}
	if fn == nil {
		return &model.FunctionCall{Base: f.Base, Name: f.Name, Args: args}, nil
	}
	res, err := fn.Call(args)
	if err != nil {
		call := &model.FunctionCall{Name: f.Name, Args: args}
		return nil, e.wrap(model.FunctionEvaluationError, f, err, "%s", model.Repr(call))
	}
	if res == nil {
		return &model.FunctionCall{Base: f.Base, Name: f.Name, Args: args}, nil
	}
	return res, nil
}

// asColor converts color keywords.
func asColor(n model.Node) (*model.Color, bool) {
	switch v := n.(type) {
	case *model.Color:
		return v, true
	case *model.Keyword:
		return model.ColorFromKeyword(v.Value)
	}
	return nil, false
}

var errDivisionByZero = errors.New("division by zero")

func arithmetic(op byte, a, b float64) (float64, error) {
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	case '/':
		if b == 0 {
			return 0, errDivisionByZero
		}
		return a / b, nil
	}
	return 0, errors.New("unknown operator " + string(op))
}

func (e *Evaluator) operation(o *model.Operation, env *Env) (model.Node, error) {
	l, err := e.Eval(o.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := e.Eval(o.Right, env)
	if err != nil {
		return nil, err
	}
	return e.operate(o, l, r)
}

// operate applies arithmetic. Unit of the left operand wins, unitless
// operands take the unit of the other one. Numbers may be added to and
// multiplied with colors channel by channel.
func (e *Evaluator) operate(o *model.Operation, l, r model.Node) (model.Node, error) {
	if a, ok := l.(*model.Dimension); ok {
		if b, ok := r.(*model.Dimension); ok {
			v, err := arithmetic(o.Op, a.Value, b.Value)
			if err != nil {
				return nil, e.wrap(model.InvalidOperation, o, err, "%s", model.Repr(o))
			}
			unit := a.Unit
			if unit == "" {
				unit = b.Unit
			}
			return &model.Dimension{Base: o.Base, Value: v, Unit: unit}, nil
		}
		if c, ok := asColor(r); ok {
			if o.Op != '+' && o.Op != '*' {
				return nil, e.fail(model.InvalidOperation, o, "can not subtract or divide color from number: %s", model.Repr(o))
			}
			return e.colorOperation(o, c, grey(a.Value))
		}
	}
	if a, ok := asColor(l); ok {
		switch b := r.(type) {
		case *model.Dimension:
			return e.colorOperation(o, a, grey(b.Value))
		default:
			if c, ok := asColor(r); ok {
				return e.colorOperation(o, a, c)
			}
		}
	}
	return nil, e.fail(model.InvalidOperation, o, "operands of %s are not numbers or colors", model.Repr(&model.Operation{Op: o.Op, Left: l, Right: r}))
}

func grey(v float64) *model.Color {
	return &model.Color{R: clampInt(v), G: clampInt(v), B: clampInt(v), A: 1}
}

func clampInt(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}

func (e *Evaluator) colorOperation(o *model.Operation, a, b *model.Color) (model.Node, error) {
	var ch [3]float64
	for i, pair := range [3][2]int{{a.R, b.R}, {a.G, b.G}, {a.B, b.B}} {
		v, err := arithmetic(o.Op, float64(pair[0]), float64(pair[1]))
		if err != nil {
			return nil, e.wrap(model.InvalidOperation, o, err, "%s", model.Repr(o))
		}
		ch[i] = v
	}
	c := model.NewColor(ch[0], ch[1], ch[2], a.A)
	c.Pos = o.Pos
	return c, nil
}

// truth converts guard result to keyword.
func truth(at model.Node, v bool) model.Node {
	k := &model.Keyword{Value: "false"}
	if v {
		k.Value = "true"
	}
	k.Pos = at.Position()
	return k
}
