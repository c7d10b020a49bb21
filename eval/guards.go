package eval

import "lessc/model"

// evalGuard is satisfied when any of its conditions holds. Failure to
// evaluate a condition is an error, never false.
func (e *Evaluator) evalGuard(g *model.Guard, env *Env) (bool, error) {
	for _, c := range g.Conditions {
		ok, err := e.condition(c, env)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (e *Evaluator) condition(c *model.Condition, env *Env) (bool, error) {
	var res bool
	switch c.Op {
	case "and", "or":
		l, err := e.subCondition(c.Left, env)
		if err != nil {
			return false, err
		}
		r, err := e.subCondition(c.Right, env)
		if err != nil {
			return false, err
		}
		if c.Op == "and" {
			res = l && r
		} else {
			res = l || r
		}
	case "":
		v, err := e.Eval(c.Left, env)
		if err != nil {
			return false, err
		}
		k, ok := v.(*model.Keyword)
		res = ok && k.Value == "true"
	default:
		l, err := e.Eval(c.Left, env)
		if err != nil {
			return false, err
		}
		r, err := e.Eval(c.Right, env)
		if err != nil {
			return false, err
		}
		res = compare(c.Op, l, r)
	}
	if c.Negate {
		res = !res
	}
	return res, nil
}

func (e *Evaluator) subCondition(n model.Node, env *Env) (bool, error) {
	if c, ok := n.(*model.Condition); ok {
		return e.condition(c, env)
	}
	v, err := e.Eval(n, env)
	if err != nil {
		return false, err
	}
	k, ok := v.(*model.Keyword)
	return ok && k.Value == "true", nil
}

// compare implements guard comparison operators. Ordering is defined for
// numbers only, any other operands are not ordered.
func compare(op string, l, r model.Node) bool {
	if op == "=" {
		return equalValues(l, r)
	}
	a, ok := l.(*model.Dimension)
	if !ok {
		return false
	}
	b, ok := r.(*model.Dimension)
	if !ok {
		return false
	}
	switch op {
	case ">":
		return a.Value > b.Value
	case ">=":
		return a.Value >= b.Value
	case "<":
		return a.Value < b.Value
	case "=<":
		return a.Value <= b.Value
	}
	return false
}

func equalValues(l, r model.Node) bool {
	switch a := l.(type) {
	case *model.Dimension:
		b, ok := r.(*model.Dimension)
		return ok && a.Value == b.Value && (a.Unit == b.Unit || a.Unit == "" || b.Unit == "")
	case *model.Color:
		b, ok := asColor(r)
		return ok && a.R == b.R && a.G == b.G && a.B == b.B && a.A == b.A
	}
	return interpolated(l) == interpolated(r)
}
