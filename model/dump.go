package model

import (
	"lessc/utils/debug"
)

// Dump returns indented parse tree of the node, one node per line with its
// type and position.
func Dump(n Node, indent int) string {
	tw := debug.NewTreeWriter(indent)
	dump(tw, 0, n)
	return tw.String()
}

func dumpNodes(tw *debug.TreeWriter, depth int, nodes []Node) {
	for _, n := range nodes {
		dump(tw, depth, n)
	}
}

func dump(tw *debug.TreeWriter, depth int, n Node) {
	if n == nil {
		return
	}
	pos := n.Position()
	switch v := n.(type) {
	case *Anonymous:
		tw.Line(depth, "ANONYMOUS %s %q", pos, v.Value)
	case *Keyword:
		tw.Line(depth, "KEYWORD %s %s", pos, v.Value)
	case *Dimension:
		tw.Line(depth, "DIMENSION %s %s%s", pos, FormatNumber(v.Value), v.Unit)
	case *Color:
		tw.Line(depth, "COLOR %s %s", pos, Repr(v))
	case *Quoted:
		tw.Line(depth, "QUOTED %s delim=%c escaped=%t", pos, v.Delim, v.Escaped)
		dumpNodes(tw, depth+1, v.Parts)
	case *URL:
		tw.Line(depth, "URL %s", pos)
		dump(tw, depth+1, v.Value)
	case *Variable:
		tw.Line(depth, "VARIABLE %s %s", pos, Repr(v))
	case *Operation:
		tw.Line(depth, "OPERATION %s %c", pos, v.Op)
		dump(tw, depth+1, v.Left)
		dump(tw, depth+1, v.Right)
	case *Negative:
		tw.Line(depth, "NEGATIVE %s", pos)
		dump(tw, depth+1, v.Value)
	case *Paren:
		tw.Line(depth, "PAREN %s", pos)
		dump(tw, depth+1, v.Value)
	case *Expression:
		tw.Line(depth, "EXPRESSION %s", pos)
		dumpNodes(tw, depth+1, v.Values)
	case *ExpressionList:
		tw.Line(depth, "EXPRESSION_LIST %s", pos)
		dumpNodes(tw, depth+1, v.Values)
	case *FunctionCall:
		tw.Line(depth, "FUNCTION_CALL %s %s", pos, v.Name)
		dumpNodes(tw, depth+1, v.Args)
	case *Condition:
		tw.Line(depth, "CONDITION %s op=%q negate=%t", pos, v.Op, v.Negate)
		dump(tw, depth+1, v.Left)
		dump(tw, depth+1, v.Right)
	case *Guard:
		tw.Line(depth, "GUARD %s", pos)
		for _, c := range v.Conditions {
			dump(tw, depth+1, c)
		}

	case *TextElement:
		tw.Field(depth, "TEXT_ELEMENT", v.Name)
	case *Combinator:
		tw.Line(depth, "COMBINATOR %q", string(rune(v.Kind)))
	case *WildcardElement:
		tw.Line(depth, "WILDCARD")
	case *ValueElement:
		tw.Line(depth, "VALUE_ELEMENT")
		dump(tw, depth+1, v.Value)
	case *Selector:
		tw.Line(depth, "SELECTOR %s", pos)
		for _, p := range v.Parts() {
			dump(tw, depth+1, p)
		}
		if v.ExtendList() != nil {
			dump(tw, depth+1, v.ExtendList())
		}
	case *Extend:
		tw.Line(depth, "EXTEND all=%t", v.All)
		dump(tw, depth+1, v.Selector)
	case *ExtendList:
		tw.Line(depth, "EXTEND_LIST %s", pos)
		for _, e := range v.Extends {
			dump(tw, depth+1, e)
		}

	case *Stylesheet:
		tw.Line(depth, "STYLESHEET")
		dump(tw, depth+1, v.Block)
	case *Block:
		tw.Line(depth, "BLOCK")
		dumpNodes(tw, depth+1, v.Rules)
	case *Ruleset:
		tw.Line(depth, "RULESET %s", pos)
		for _, s := range v.Selectors {
			dump(tw, depth+1, s)
		}
		if v.Guard != nil {
			dump(tw, depth+1, v.Guard)
		}
		dump(tw, depth+1, v.Block)
	case *Rule:
		tw.Line(depth, "RULE %s %s important=%t", pos, v.Property, v.Important)
		dump(tw, depth+1, v.Value)
	case *Definition:
		tw.Line(depth, "DEFINITION %s %s", pos, v.Name)
		dump(tw, depth+1, v.Value)
	case *Mixin:
		tw.Line(depth, "MIXIN %s %s", pos, v.Name)
		if v.Params != nil {
			dump(tw, depth+1, v.Params)
		}
		if v.Guard != nil {
			dump(tw, depth+1, v.Guard)
		}
		dump(tw, depth+1, v.Block)
	case *MixinParams:
		tw.Line(depth, "MIXIN_PARAMS variadic=%t", v.Variadic)
		for _, p := range v.Params {
			dump(tw, depth+1, p)
		}
	case *Parameter:
		tw.Line(depth, "PARAMETER %q variadic=%t", v.Name, v.Variadic)
		dump(tw, depth+1, v.Value)
	case *MixinCall:
		tw.Line(depth, "MIXIN_CALL %s important=%t", pos, v.Important)
		dump(tw, depth+1, v.Selector)
		if v.Args != nil {
			dump(tw, depth+1, v.Args)
		}
	case *MixinCallArgs:
		tw.Line(depth, "MIXIN_ARGS delim=%q", string(v.Delim))
		for _, a := range v.Args {
			dump(tw, depth+1, a)
		}
	case *Argument:
		tw.Line(depth, "ARGUMENT %q", v.Name)
		dump(tw, depth+1, v.Value)
	case *Import:
		tw.Line(depth, "IMPORT %s once=%t", pos, v.Once)
		dump(tw, depth+1, v.Path)
		dump(tw, depth+1, v.Features)
	case *Media:
		tw.Line(depth, "MEDIA %s", pos)
		dump(tw, depth+1, v.Features)
		dump(tw, depth+1, v.Block)
	case *Directive:
		tw.Line(depth, "DIRECTIVE %s %s", pos, v.Name)
		dump(tw, depth+1, v.Value)
		if v.Block != nil {
			dump(tw, depth+1, v.Block)
		}
	case *Comment:
		tw.Field(depth, "COMMENT", v.Body)
	}
}
