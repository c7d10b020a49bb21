package eval

import (
	"strings"

	"go.uber.org/zap"

	"lessc/model"
	"lessc/render"
)

// candidate is a mixin or a ruleset matching call path together with the
// environment its body is evaluated in.
type candidate struct {
	mixin   *model.Mixin
	ruleset *model.Ruleset
	closure *Env
}

// argument is an evaluated call argument, name is empty for positional ones.
type argument struct {
	name  string
	value model.Node
}

// segments splits call path into simple selectors: "#ns > .m" and "#ns.m"
// both give [#ns .m].
func segments(sel *model.Selector) []string {
	var segs []string
	for _, part := range sel.Parts() {
		if t, ok := part.(*model.TextElement); ok {
			segs = append(segs, t.Name)
		}
	}
	return segs
}

// signature renders call for messages and call chains.
func signature(call *model.MixinCall, args []argument) string {
	var sb strings.Builder
	render.Selector(&sb, call.Selector, false)
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a.name != "" {
			sb.WriteString(a.name)
			sb.WriteString(": ")
		}
		render.Value(&sb, a.value, false)
	}
	sb.WriteByte(')')
	return sb.String()
}

// callMixin expands every candidate matching the call. It returns produced
// nodes and bindings exported to the caller.
func (e *Evaluator) callMixin(call *model.MixinCall, env *Env) ([]model.Node, *exports, error) {
	args, err := e.evalArgs(call.Args, env)
	if err != nil {
		return nil, nil, err
	}
	sig := signature(call, args)
	segs := segments(call.Selector)

	cands := e.resolveMixin(segs, env)
	if len(cands) == 0 {
		return nil, nil, e.fail(model.UndefinedReference, call, "mixin %s is undefined", render.SelectorString(call.Selector))
	}

	var (
		out     []model.Node
		ex      = &exports{}
		matched bool
	)
	for _, c := range cands {
		var (
			res *blockResult
			ok  bool
		)
		if c.mixin != nil {
			res, ok, err = e.expandMixin(c, call, args, env, sig)
		} else {
			res, ok, err = e.expandRuleset(c, call, args, env, sig)
		}
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		matched = true
		out = append(out, res.nodes...)
		ex.merge(frameExports(res))
	}
	if !matched {
		return nil, nil, e.fail(model.UnmatchedGuard, call, "no matching definition for %s", sig)
	}
	if call.Important {
		out = important(out)
	}
	return out, ex, nil
}

func (e *Evaluator) evalArgs(args *model.MixinCallArgs, env *Env) ([]argument, error) {
	if args == nil {
		return nil, nil
	}
	res := make([]argument, 0, len(args.Args))
	for _, a := range args.Args {
		v, err := e.Eval(a.Value, env)
		if err != nil {
			return nil, err
		}
		res = append(res, argument{name: a.Name, value: v})
	}
	return res, nil
}

// resolveMixin finds candidates in the nearest frame having any, lexical
// chain first then call sites.
func (e *Evaluator) resolveMixin(segs []string, env *Env) []candidate {
	if len(segs) == 0 {
		return nil
	}
	for f := env; f != nil; f = f.fallback {
		for s := f.scope; s != nil; s = s.parent {
			frame := &Env{scope: s, fallback: f.fallback}
			if found := e.match(s.rules, segs, frame); len(found) > 0 {
				return found
			}
		}
	}
	return nil
}

// match looks for path among rules of a single frame. Rulesets are callable
// by their selector and act as namespaces for the rest of the path.
func (e *Evaluator) match(rules []model.Node, segs []string, frame *Env) []candidate {
	path := strings.Join(segs, "")
	var found []candidate
	for _, r := range rules {
		switch n := r.(type) {
		case *model.Mixin:
			if len(segs) == 1 && n.Name == segs[0] {
				closure, _ := n.Closure().(*Env)
				if closure == nil {
					closure = frame
				}
				found = append(found, candidate{mixin: n, closure: closure})
			}
		case *model.Ruleset:
			found = append(found, e.matchRuleset(n, segs, path, frame)...)
		}
	}
	return found
}

func (e *Evaluator) matchRuleset(r *model.Ruleset, segs []string, path string, frame *Env) []candidate {
	for _, sel := range r.Selectors {
		p, ok := sel.MixinPath()
		if !ok || !strings.HasPrefix(path, p) {
			continue
		}
		if p == path {
			return []candidate{{ruleset: r, closure: frame}}
		}
		for k := 1; k < len(segs); k++ {
			if strings.Join(segs[:k], "") == p {
				ns := e.namespace(r, frame)
				return e.match(ns.scope.rules, segs[k:], ns)
			}
		}
	}
	return nil
}

// namespace returns frame of ruleset body searched for nested mixins. The
// frame is built once per defining frame so nested mixins keep their entry
// counts across calls.
func (e *Evaluator) namespace(r *model.Ruleset, frame *Env) *Env {
	key := nsKey{ruleset: r, scope: frame.scope}
	if env, ok := e.ctx.namespaces[key]; ok {
		return env
	}
	env := e.prepare(r.Block.Rules, &Env{scope: frame.scope, fallback: frame.fallback})
	e.ctx.namespaces[key] = env
	return env
}

// bind matches arguments with parameters. It returns false when mixin does
// not accept the arguments.
func (e *Evaluator) bind(m *model.Mixin, args []argument, closure, caller *Env) (map[string]model.Node, bool, error) {
	var (
		params   []*model.Parameter
		variadic bool
	)
	if required, max := m.Params.Arity(); len(args) < required || (max >= 0 && len(args) > max) {
		return nil, false, nil
	}
	if m.Params != nil {
		params, variadic = m.Params.Params, m.Params.Variadic
	}

	var positional []model.Node
	named := make(map[string]model.Node)
	for _, a := range args {
		if a.name == "" {
			positional = append(positional, a.value)
		} else {
			named[a.name] = a.value
		}
	}

	vars := make(map[string]model.Node, len(params)+1)
	var all []model.Node
	next := 0
	for _, p := range params {
		switch {
		case p.Variadic:
			var rest []model.Node
			if next < len(positional) {
				rest = positional[next:]
			}
			vars[p.Name] = &model.Expression{Base: p.Base, Values: rest}
			all = append(all, rest...)
			next = len(positional)
		case p.Name == "":
			if next >= len(positional) {
				return nil, false, nil
			}
			pattern, err := e.Eval(p.Value, closure)
			if err != nil {
				return nil, false, err
			}
			if interpolated(pattern) != interpolated(positional[next]) {
				return nil, false, nil
			}
			all = append(all, positional[next])
			next++
		default:
			var v model.Node
			if nv, ok := named[p.Name]; ok {
				v = nv
				delete(named, p.Name)
			} else if next < len(positional) {
				v = positional[next]
				next++
			} else if p.Value != nil {
				// defaults see parameters bound so far
				denv := &Env{scope: closure.scope.Bind(vars), fallback: caller}
				dv, err := e.Eval(p.Value, denv)
				if err != nil {
					return nil, false, err
				}
				v = dv
			} else {
				return nil, false, nil
			}
			vars[p.Name] = v
			all = append(all, v)
		}
	}
	if len(named) > 0 {
		return nil, false, nil
	}
	if next < len(positional) {
		if !variadic {
			return nil, false, nil
		}
		all = append(all, positional[next:]...)
	}
	vars["@arguments"] = &model.Expression{Base: m.Base, Values: all}
	return vars, true, nil
}

// enter pushes call on the chain and fails when the limit of active
// invocations is reached. Returned function must be called when expansion
// is done, on failures too.
func (e *Evaluator) enter(sig string, call *model.MixinCall, active int) (func(), error) {
	e.ctx.chain = append(e.ctx.chain, sig)
	leave := func() { e.ctx.chain = e.ctx.chain[:len(e.ctx.chain)-1] }
	if limit := e.ctx.opts.RecursionLimit; active >= limit {
		err := e.fail(model.RecursionLimitExceeded, call, "%s nested deeper than %d levels", sig, limit)
		leave()
		return nil, err
	}
	return leave, nil
}

func (e *Evaluator) expandMixin(c candidate, call *model.MixinCall, args []argument, caller *Env, sig string) (*blockResult, bool, error) {
	m := c.mixin
	vars, ok, err := e.bind(m, args, c.closure, caller)
	if err != nil || !ok {
		return nil, false, err
	}
	params := &Env{scope: c.closure.scope.Bind(vars), fallback: caller, selectors: caller.selectors}
	if m.Guard != nil {
		ok, err := e.evalGuard(m.Guard, params)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}

	leave, err := e.enter(sig, call, m.Entries())
	if err != nil {
		return nil, false, err
	}
	defer leave()
	depth := m.Enter()
	defer m.Exit()

	e.log.Debug("Expanding mixin", zap.String("call", sig), zap.Int("depth", depth))
	res, err := e.evalBlock(model.CopyBlock(m.Block), params)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// expandRuleset evaluates ruleset body as a mixin without parameters.
func (e *Evaluator) expandRuleset(c candidate, call *model.MixinCall, args []argument, caller *Env, sig string) (*blockResult, bool, error) {
	r := c.ruleset
	if len(args) > 0 {
		return nil, false, nil
	}
	body := &Env{scope: c.closure.scope, fallback: caller, selectors: caller.selectors}
	if r.Guard != nil {
		ok, err := e.evalGuard(r.Guard, body)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}

	leave, err := e.enter(sig, call, e.ctx.entries[r])
	if err != nil {
		return nil, false, err
	}
	defer leave()
	e.ctx.entries[r]++
	defer func() { e.ctx.entries[r]-- }()

	res, err := e.evalBlock(r.Block, body)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// frameExports lists variables and mixins declared in expanded body,
// followed by those the body got from its own mixin calls.
func frameExports(res *blockResult) *exports {
	ex := &exports{vars: make(map[string]*binding)}
	scope := res.env.scope
	for _, r := range scope.rules {
		switch n := r.(type) {
		case *model.Definition:
			if _, ok := ex.vars[n.Name]; !ok {
				ex.vars[n.Name] = scope.find(n.Name, res.env)
			}
		case *model.Mixin:
			ex.mixins = append(ex.mixins, n)
		}
	}
	ex.merge(&res.exports)
	return ex
}
