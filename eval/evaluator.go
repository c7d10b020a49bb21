// Package eval reduces parsed stylesheets into plain CSS trees: variables
// are substituted, mixins expanded, nested selectors combined and extends
// materialized.
package eval

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"lessc/functions"
	"lessc/model"
)

// Evaluator evaluates a single compilation. It is not safe for concurrent
// use and must not be reused.
type Evaluator struct {
	log   *zap.Logger
	funcs *functions.Table
	ctx   *Context
}

// New creates evaluator. Nil funcs selects built-in functions, nil importer
// makes every LESS import fail.
func New(opts Options, funcs *functions.Table, importer Importer, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	if funcs == nil {
		funcs = functions.Builtins()
	}
	log = log.Named("evaluator")
	return &Evaluator{log: log, funcs: funcs, ctx: newContext(opts, importer, log)}
}

// Diagnostics returns warnings collected so far.
func (e *Evaluator) Diagnostics() *Diagnostics {
	return e.ctx.diag
}

// Expand evaluates stylesheet. Source tree is not modified.
func (e *Evaluator) Expand(sheet *model.Stylesheet) (*model.Stylesheet, error) {
	e.ctx.path = sheet.Path
	e.log.Debug("Expanding stylesheet", zap.String("path", sheet.Path), zap.Int("rules", len(sheet.Block.Rules)))

	res, err := e.evalBlock(sheet.Block, NewEnv())
	if err != nil {
		return nil, err
	}
	e.resolveExtends(res.nodes)
	return &model.Stylesheet{
		Base:  sheet.Base,
		Path:  sheet.Path,
		Block: &model.Block{Base: sheet.Block.Base, Rules: res.nodes},
	}, nil
}

// Eval evaluates single node. Nodes which need no evaluation are returned
// unchanged. Nil node is returned for rules producing no output.
func (e *Evaluator) Eval(n model.Node, env *Env) (model.Node, error) {
	if !model.NeedsEval(n) {
		return n, nil
	}
	switch v := n.(type) {
	case *model.Variable:
		return e.variable(v, env)
	case *model.Operation:
		return e.operation(v, env)
	case *model.Negative:
		return e.negative(v, env)
	case *model.Paren:
		return e.paren(v, env)
	case *model.Quoted:
		return e.quoted(v, env)
	case *model.URL:
		val, err := e.Eval(v.Value, env)
		if err != nil {
			return nil, err
		}
		return &model.URL{Base: v.Base, Value: val}, nil
	case *model.Expression:
		vals, err := e.evalList(v.Values, env)
		if err != nil {
			return nil, err
		}
		return &model.Expression{Base: v.Base, Values: vals}, nil
	case *model.ExpressionList:
		vals, err := e.evalList(v.Values, env)
		if err != nil {
			return nil, err
		}
		return &model.ExpressionList{Base: v.Base, Values: vals}, nil
	case *model.FunctionCall:
		return e.functionCall(v, env)
	case *model.Condition:
		ok, err := e.condition(v, env)
		if err != nil {
			return nil, err
		}
		return truth(v, ok), nil
	case *model.Guard:
		ok, err := e.evalGuard(v, env)
		if err != nil {
			return nil, err
		}
		return truth(v, ok), nil
	case *model.Rule:
		val, err := e.Eval(v.Value, env)
		if err != nil {
			return nil, err
		}
		return &model.Rule{Base: v.Base, Property: v.Property, Value: val, Important: v.Important}, nil
	case *model.Ruleset:
		return e.evalRuleset(v, env)
	case *model.Media:
		return e.evalMedia(v, env)
	case *model.Directive:
		return e.evalDirective(v, env)
	case *model.Import:
		return e.cssImport(v, env)
	case *model.Block:
		res, err := e.evalBlock(v, env)
		if err != nil {
			return nil, err
		}
		return &model.Block{Base: v.Base, Rules: res.nodes}, nil
	case *model.Definition, *model.Mixin:
		return nil, nil
	}
	return nil, e.fail(model.InvalidOperation, n, "unable to evaluate %s here", strings.TrimPrefix(fmt.Sprintf("%T", n), "*model."))
}

func (e *Evaluator) evalList(nodes []model.Node, env *Env) ([]model.Node, error) {
	res := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		v, err := e.Eval(n, env)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// blockResult is output of block evaluation.
type blockResult struct {
	nodes []model.Node
	// block level &:extend(...)
	extends []*model.ExtendList
	// bindings exported by mixin calls made in the block
	exports exports
	// frame after all mixin exports were layered in
	env *Env
}

// prepare creates frame for rules on top of outer. Every mixin gets private
// copy with closure captured as the new frame.
func (e *Evaluator) prepare(rules []model.Node, outer *Env) *Env {
	prepared := make([]model.Node, len(rules))
	for i, r := range rules {
		if m, ok := r.(*model.Mixin); ok {
			r = m.Copy()
		}
		prepared[i] = r
	}
	env := outer.Child(prepared, outer.selectors)
	for _, r := range prepared {
		if m, ok := r.(*model.Mixin); ok {
			m.Capture(env)
		}
	}
	return env
}

// evalBlock evaluates rules of the block in a new frame. Definitions and
// mixins produce no output, mixin calls splice theirs.
func (e *Evaluator) evalBlock(b *model.Block, outer *Env) (*blockResult, error) {
	rules, err := e.expandImports(b.Rules, outer)
	if err != nil {
		return nil, err
	}
	env := e.prepare(rules, outer)

	res := &blockResult{}
	for _, r := range env.scope.rules {
		switch n := r.(type) {
		case *model.Definition, *model.Mixin:
		case *model.Comment:
			if n.Block {
				res.nodes = append(res.nodes, n)
			}
		case *model.MixinCall:
			out, ex, err := e.callMixin(n, env)
			if err != nil {
				return nil, err
			}
			res.nodes = append(res.nodes, out...)
			if !ex.empty() {
				env = env.withExports(ex)
				res.exports.merge(ex)
			}
		case *model.ExtendList:
			list, err := e.evalExtendList(n, env)
			if err != nil {
				return nil, err
			}
			res.extends = append(res.extends, list)
		default:
			v, err := e.Eval(n, env)
			if err != nil {
				return nil, err
			}
			if v != nil {
				res.nodes = append(res.nodes, v)
			}
		}
	}
	res.env = env
	return res, nil
}

func (e *Evaluator) evalRuleset(r *model.Ruleset, env *Env) (model.Node, error) {
	if r.Guard != nil {
		ok, err := e.evalGuard(r.Guard, env)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	sels := make(model.Selectors, 0, len(r.Selectors))
	for _, s := range r.Selectors {
		es, err := e.evalSelector(s, env)
		if err != nil {
			return nil, err
		}
		sels = append(sels, es)
	}
	combined := Combine(env.selectors, sels)

	res, err := e.evalBlock(r.Block, &Env{scope: env.scope, fallback: env.fallback, selectors: combined})
	if err != nil {
		return nil, err
	}
	out := &model.Ruleset{Base: r.Base, Selectors: combined, Block: &model.Block{Base: r.Block.Base, Rules: res.nodes}}
	e.ctx.extends.Collect(out, combined, res.extends)
	return out, nil
}

// evalMedia keeps enclosing selectors for declarations nested directly in
// the media block.
func (e *Evaluator) evalMedia(m *model.Media, env *Env) (model.Node, error) {
	features, err := e.Eval(m.Features, env)
	if err != nil {
		return nil, err
	}
	res, err := e.evalBlock(m.Block, env)
	if err != nil {
		return nil, err
	}
	nodes := res.nodes
	if len(env.selectors) > 0 {
		var decls, rest []model.Node
		for _, n := range nodes {
			switch n.(type) {
			case *model.Rule, *model.Comment:
				decls = append(decls, n)
			default:
				rest = append(rest, n)
			}
		}
		if len(decls) > 0 {
			wrapper := &model.Ruleset{Base: m.Base, Selectors: env.selectors, Block: &model.Block{Base: m.Block.Base, Rules: decls}}
			e.ctx.extends.Collect(wrapper, env.selectors, res.extends)
			nodes = append([]model.Node{wrapper}, rest...)
		}
	}
	return &model.Media{Base: m.Base, Features: features, Block: &model.Block{Base: m.Block.Base, Rules: nodes}}, nil
}

// evalDirective evaluates at-rules, their bodies do not inherit selectors.
func (e *Evaluator) evalDirective(d *model.Directive, env *Env) (model.Node, error) {
	val, err := e.Eval(d.Value, env)
	if err != nil {
		return nil, err
	}
	out := &model.Directive{Base: d.Base, Name: d.Name, Value: val}
	if d.Block != nil {
		res, err := e.evalBlock(d.Block, &Env{scope: env.scope, fallback: env.fallback})
		if err != nil {
			return nil, err
		}
		out.Block = &model.Block{Base: d.Block.Base, Rules: res.nodes}
	}
	return out, nil
}

// important marks every declaration important, nested rulesets included.
// Declarations may be shared with the source tree and are copied, rulesets
// and media blocks are always produced by evaluation and are updated in
// place.
func important(nodes []model.Node) []model.Node {
	res := slices.Clone(nodes)
	for i, n := range res {
		switch v := n.(type) {
		case *model.Rule:
			c := *v
			c.Important = true
			res[i] = &c
		case *model.Ruleset:
			v.Block.Rules = important(v.Block.Rules)
		case *model.Media:
			v.Block.Rules = important(v.Block.Rules)
		}
	}
	return res
}
