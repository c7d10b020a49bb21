package eval

import (
	"strings"

	"go.uber.org/zap"

	"lessc/model"
	"lessc/render"
)

// extension records that owner selector extends target.
type extension struct {
	ruleset  *model.Ruleset
	selector *model.Selector
	target   *model.Extend
}

// Extends collects extend declarations during evaluation and applies them to
// the evaluated tree.
type Extends struct {
	list []extension
}

// Collect registers extends of evaluated ruleset: extend lists attached to
// its selectors and block level lists which apply to all of them.
func (x *Extends) Collect(owner *model.Ruleset, sels model.Selectors, block []*model.ExtendList) {
	for _, s := range sels {
		if list := s.ExtendList(); list != nil {
			for _, ext := range list.Extends {
				x.list = append(x.list, extension{ruleset: owner, selector: s, target: ext})
			}
		}
		for _, list := range block {
			for _, ext := range list.Extends {
				x.list = append(x.list, extension{ruleset: owner, selector: s, target: ext})
			}
		}
	}
}

// Len returns number of collected extends.
func (x *Extends) Len() int {
	return len(x.list)
}

// Resolve appends extending selectors to every other ruleset with matching
// selector. Exact extends compare rendered text, "all" extends match any
// selector containing the target text.
func (x *Extends) Resolve(nodes []model.Node) {
	if len(x.list) == 0 {
		return
	}
	rulesets := collectRulesets(nil, nodes)

	for _, ext := range x.list {
		target := render.SelectorString(ext.target.Selector)
		for _, r := range rulesets {
			if r == ext.ruleset || !matches(r.Selectors, target, ext.target.All) {
				continue
			}
			r.Selectors = appendUnique(r.Selectors, ext.selector)
		}
	}
}

func matches(sels model.Selectors, target string, all bool) bool {
	for _, s := range sels {
		text := render.SelectorString(s)
		if text == target || (all && strings.Contains(text, target)) {
			return true
		}
	}
	return false
}

func appendUnique(sels model.Selectors, s *model.Selector) model.Selectors {
	for _, existing := range sels {
		if existing.Equal(s) {
			return sels
		}
	}
	// selector groups may share backing arrays
	return append(sels[:len(sels):len(sels)], s)
}

// collectRulesets lists rulesets in document order.
func collectRulesets(acc []*model.Ruleset, nodes []model.Node) []*model.Ruleset {
	for _, n := range nodes {
		switch v := n.(type) {
		case *model.Ruleset:
			acc = append(acc, v)
			acc = collectRulesets(acc, v.Block.Rules)
		case *model.Media:
			acc = collectRulesets(acc, v.Block.Rules)
		case *model.Directive:
			if v.Block != nil {
				acc = collectRulesets(acc, v.Block.Rules)
			}
		}
	}
	return acc
}

// resolveExtends applies collected extends to evaluated nodes.
func (e *Evaluator) resolveExtends(nodes []model.Node) {
	if e.ctx.extends.Len() == 0 {
		return
	}
	e.log.Debug("Resolving extends", zap.Int("count", e.ctx.extends.Len()))
	e.ctx.extends.Resolve(nodes)
}
