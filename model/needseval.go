package model

// NeedsEval reports whether node contains unresolved variables, operations
// or function calls. Structural nodes always need evaluation.
func NeedsEval(n Node) bool {
	switch v := n.(type) {
	case nil:
		return false
	case *Anonymous, *Keyword, *Dimension, *Color, *Comment,
		*TextElement, *Combinator, *WildcardElement:
		return false
	case *Variable, *Operation, *Paren, *FunctionCall, *Condition, *Guard:
		return true
	case *Negative:
		return NeedsEval(v.Value)
	case *Quoted:
		return anyNeedsEval(v.Parts)
	case *URL:
		return NeedsEval(v.Value)
	case *Expression:
		return anyNeedsEval(v.Values)
	case *ExpressionList:
		return anyNeedsEval(v.Values)
	case *ValueElement:
		return NeedsEval(v.Value)
	case *Selector:
		return v.NeedsEval()
	case *ExtendList:
		for _, e := range v.Extends {
			if e.Selector.NeedsEval() {
				return true
			}
		}
		return false
	case *Extend:
		return v.Selector.NeedsEval()
	case *Rule:
		return NeedsEval(v.Value)
	case *Definition:
		return NeedsEval(v.Value)
	case *Stylesheet, *Block, *Ruleset, *Mixin, *MixinCall, *Import, *Media, *Directive,
		*Parameter, *MixinParams, *Argument, *MixinCallArgs:
		return true
	}
	return true
}

func anyNeedsEval(nodes []Node) bool {
	for _, n := range nodes {
		if NeedsEval(n) {
			return true
		}
	}
	return false
}
