package eval

import (
	"lessc/model"
	"lessc/parse"
	"lessc/render"
)

// evalSelector substitutes interpolated values, renders result and parses
// it again so that selectors equal in text are equal in structure. When the
// text can not be parsed the evaluated parts are used as is.
func (e *Evaluator) evalSelector(sel *model.Selector, env *Env) (*model.Selector, error) {
	if !sel.NeedsEval() {
		return sel, nil
	}

	parts := make([]model.SelectorPart, 0, sel.Len())
	for _, part := range sel.Parts() {
		if ve, ok := part.(*model.ValueElement); ok {
			v, err := e.Eval(ve.Value, env)
			if err != nil {
				return nil, err
			}
			if q, ok := v.(*model.Quoted); ok {
				v = &model.Anonymous{Base: q.Base, Value: interpolated(q)}
			}
			part = &model.ValueElement{Base: ve.Base, Value: v}
		}
		parts = append(parts, part)
	}
	evaluated := model.NewSelector(parts...)

	buf := e.ctx.scratch.acquire()
	defer e.ctx.scratch.release(buf)
	render.Selector(buf, evaluated, false)

	canonical, err := parse.ParseSelector(buf.String())
	if err != nil {
		werr := e.fail(model.SelectorReparseFailure, sel, "selector %q can not be parsed", buf.String())
		werr.Err = err
		if e.ctx.opts.Strict {
			return nil, werr
		}
		e.ctx.diag.Warn(werr)
		canonical = evaluated
		canonical.PresetMixinPath(CompositeMixinPath(canonical))
	}
	canonical.Pos = sel.Pos
	canonical.SetGuard(sel.Guard())

	if list := sel.ExtendList(); list != nil {
		ev, err := e.evalExtendList(list, env)
		if err != nil {
			return nil, err
		}
		canonical.SetExtendList(ev)
	}
	return canonical, nil
}

func (e *Evaluator) evalExtendList(list *model.ExtendList, env *Env) (*model.ExtendList, error) {
	if !model.NeedsEval(list) {
		return list, nil
	}
	res := &model.ExtendList{Base: list.Base, Extends: make([]*model.Extend, 0, len(list.Extends))}
	for _, ext := range list.Extends {
		s, err := e.evalSelector(ext.Selector, env)
		if err != nil {
			return nil, err
		}
		res.Extends = append(res.Extends, &model.Extend{Base: ext.Base, Selector: s, All: ext.All})
	}
	return res, nil
}
