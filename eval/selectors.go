package eval

import (
	"strings"

	"lessc/model"
	"lessc/render"
)

// Combine merges ancestor selector group with nested one. Selectors without
// & are appended to every ancestor, otherwise every & is replaced with the
// whole ancestor group producing cartesian product of all substitutions.
func Combine(ancestors, current model.Selectors) model.Selectors {
	if len(ancestors) == 0 {
		return Filter(current)
	}
	if len(current) == 0 {
		return Filter(ancestors)
	}

	var result model.Selectors
	for _, sel := range current {
		ext := sel.ExtendList()

		if !sel.HasWildcard() {
			child := model.NewSelector(&model.Combinator{Base: sel.Base, Kind: model.Descendant})
			for _, part := range sel.Parts() {
				child.Add(part)
			}
			result = flatten(result, [][]*model.Selector{ancestors, {child}}, ext)
			continue
		}

		var inputs [][]*model.Selector
		temp := model.NewSelector()
		for _, part := range sel.Parts() {
			if _, ok := part.(*model.WildcardElement); ok {
				inputs = append(inputs, []*model.Selector{temp}, ancestors)
				temp = model.NewSelector()
				continue
			}
			temp.Add(part)
		}
		if !temp.IsEmpty() {
			inputs = append(inputs, []*model.Selector{temp})
		}
		result = flatten(result, inputs, ext)
	}
	return result
}

func flatten(result model.Selectors, inputs [][]*model.Selector, ext *model.ExtendList) model.Selectors {
	cp := NewCartesianProduct(inputs)
	for cp.HasNext() {
		combination, err := cp.Next()
		if err != nil {
			break
		}
		flat := model.NewSelector()
		for i, tmp := range combination {
			if i == 0 {
				flat.Pos = tmp.Pos
			}
			for _, part := range tmp.Parts() {
				flat.Add(part)
			}
		}
		flat.SetExtendList(ext)
		result = append(result, FilterSelector(flat))
	}
	return result
}

// Filter removes redundant parts from every selector of the group.
func Filter(sels model.Selectors) model.Selectors {
	if sels == nil {
		return nil
	}
	result := make(model.Selectors, 0, len(sels))
	for _, s := range sels {
		result = append(result, FilterSelector(s))
	}
	return result
}

// FilterSelector strips wildcards together with combinators in front of
// them and drops combinators not followed by an element.
func FilterSelector(sel *model.Selector) *model.Selector {
	result := model.NewSelector()
	result.Pos = sel.Pos
	var pending *model.Combinator
	for _, part := range sel.Parts() {
		switch p := part.(type) {
		case *model.Combinator:
			pending = p
		case *model.WildcardElement:
			pending = nil
		default:
			if pending != nil {
				result.Add(pending)
				pending = nil
			}
			result.Add(part)
		}
	}
	result.SetExtendList(sel.ExtendList())
	result.SetGuard(sel.Guard())
	return result
}

// CompositeMixinPath is like Selector.MixinPath but also accepts evaluated value
// elements, so selectors built from variables can be matched after
// evaluation.
func CompositeMixinPath(sel *model.Selector) (string, bool) {
	if sel == nil || sel.IsEmpty() {
		return "", false
	}
	var sb strings.Builder
	for i, part := range sel.Parts() {
		switch p := part.(type) {
		case *model.WildcardElement:
			if i != 0 {
				return "", false
			}
		case *model.TextElement:
			sb.WriteString(p.Name)
		case *model.ValueElement:
			if model.NeedsEval(p.Value) {
				return "", false
			}
			render.Value(&sb, p.Value, false)
		default:
			return "", false
		}
	}
	return sb.String(), sb.Len() > 0
}
