package model

import (
	"strings"
)

// Repr returns canonical LESS source for the node. Parsing the result
// produces an equivalent tree.
func Repr(n Node) string {
	w := &reprWriter{}
	w.node(n)
	return w.sb.String()
}

// Equal reports structural equality of two nodes, positions and cached state
// are ignored.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Repr(a) == Repr(b)
}

type reprWriter struct {
	sb    strings.Builder
	depth int
}

func (w *reprWriter) indent() {
	for range w.depth {
		w.sb.WriteString("  ")
	}
}

func (w *reprWriter) list(nodes []Node, sep string) {
	for i, n := range nodes {
		if i > 0 {
			w.sb.WriteString(sep)
		}
		w.node(n)
	}
}

func (w *reprWriter) block(b *Block) {
	w.sb.WriteString(" {\n")
	w.depth++
	if b != nil {
		w.rules(b.Rules)
	}
	w.depth--
	w.indent()
	w.sb.WriteString("}\n")
}

func (w *reprWriter) rules(rules []Node) {
	for _, r := range rules {
		w.indent()
		w.node(r)
	}
}

func (w *reprWriter) node(n Node) {
	switch v := n.(type) {
	case nil:
	case *Anonymous:
		w.sb.WriteString(v.Value)
	case *Keyword:
		w.sb.WriteString(v.Value)
	case *Dimension:
		w.sb.WriteString(FormatNumber(v.Value))
		w.sb.WriteString(v.Unit)
	case *Color:
		if v.Raw != "" {
			w.sb.WriteString(v.Raw)
		} else {
			w.sb.WriteString(v.Hex(false))
		}
	case *Quoted:
		if v.Delim == 0 {
			w.list(v.Parts, "")
			break
		}
		if v.Escaped {
			w.sb.WriteByte('~')
		}
		w.sb.WriteByte(v.Delim)
		w.list(v.Parts, "")
		w.sb.WriteByte(v.Delim)
	case *URL:
		w.sb.WriteString("url(")
		w.node(v.Value)
		w.sb.WriteByte(')')
	case *Variable:
		switch {
		case v.Curly:
			w.sb.WriteString("@{")
			w.sb.WriteString(strings.TrimPrefix(v.Name, "@"))
			w.sb.WriteByte('}')
		case v.Indirect:
			w.sb.WriteByte('@')
			w.sb.WriteString(v.Name)
		default:
			w.sb.WriteString(v.Name)
		}
	case *Operation:
		w.node(v.Left)
		w.sb.WriteByte(' ')
		w.sb.WriteByte(v.Op)
		w.sb.WriteByte(' ')
		w.node(v.Right)
	case *Negative:
		w.sb.WriteByte('-')
		w.node(v.Value)
	case *Paren:
		w.sb.WriteByte('(')
		w.node(v.Value)
		w.sb.WriteByte(')')
	case *Expression:
		w.list(v.Values, " ")
	case *ExpressionList:
		w.list(v.Values, ", ")
	case *FunctionCall:
		w.sb.WriteString(v.Name)
		w.sb.WriteByte('(')
		w.list(v.Args, ", ")
		w.sb.WriteByte(')')
	case *Condition:
		w.condition(v)
	case *Guard:
		for i, c := range v.Conditions {
			if i > 0 {
				w.sb.WriteString(", ")
			}
			w.condition(c)
		}

	case *TextElement:
		w.sb.WriteString(v.Name)
	case *Combinator:
		if v.Kind == Descendant {
			w.sb.WriteByte(' ')
		} else {
			w.sb.WriteByte(' ')
			w.sb.WriteByte(byte(v.Kind))
			w.sb.WriteByte(' ')
		}
	case *WildcardElement:
		w.sb.WriteByte('&')
	case *ValueElement:
		w.node(v.Value)
	case *Selector:
		w.selector(v)
	case *Extend:
		w.selector(v.Selector)
		if v.All {
			w.sb.WriteString(" all")
		}
	case *ExtendList:
		w.sb.WriteString("&")
		w.extendList(v)
		w.sb.WriteString(";\n")

	case *Stylesheet:
		if v.Block != nil {
			w.rules(v.Block.Rules)
		}
	case *Block:
		w.rules(v.Rules)
	case *Ruleset:
		w.selectors(v.Selectors)
		if v.Guard != nil {
			w.sb.WriteString(" when ")
			w.node(v.Guard)
		}
		w.block(v.Block)
	case *Rule:
		w.sb.WriteString(v.Property)
		w.sb.WriteString(": ")
		w.node(v.Value)
		if v.Important {
			w.sb.WriteString(" !important")
		}
		w.sb.WriteString(";\n")
	case *Definition:
		w.sb.WriteString(v.Name)
		w.sb.WriteString(": ")
		w.node(v.Value)
		w.sb.WriteString(";\n")
	case *Mixin:
		w.sb.WriteString(v.Name)
		w.sb.WriteByte('(')
		w.node(v.Params)
		w.sb.WriteByte(')')
		if v.Guard != nil {
			w.sb.WriteString(" when ")
			w.node(v.Guard)
		}
		w.block(v.Block)
	case *MixinParams:
		if v == nil {
			return
		}
		for i, p := range v.Params {
			if i > 0 {
				w.sb.WriteString("; ")
			}
			w.node(p)
		}
		if v.Variadic && (len(v.Params) == 0 || !v.Params[len(v.Params)-1].Variadic) {
			if len(v.Params) > 0 {
				w.sb.WriteString("; ")
			}
			w.sb.WriteString("...")
		}
	case *Parameter:
		switch {
		case v.Name == "":
			w.node(v.Value)
		case v.Variadic:
			w.sb.WriteString(v.Name)
			w.sb.WriteString("...")
		default:
			w.sb.WriteString(v.Name)
			if v.Value != nil {
				w.sb.WriteString(": ")
				w.node(v.Value)
			}
		}
	case *MixinCall:
		w.selector(v.Selector)
		w.node(v.Args)
		if v.Important {
			w.sb.WriteString(" !important")
		}
		w.sb.WriteString(";\n")
	case *MixinCallArgs:
		if v == nil {
			return
		}
		w.sb.WriteByte('(')
		for i, a := range v.Args {
			if i > 0 {
				w.sb.WriteByte(v.Delim)
				w.sb.WriteByte(' ')
			}
			w.node(a)
		}
		w.sb.WriteByte(')')
	case *Argument:
		if v.Name != "" {
			w.sb.WriteString(v.Name)
			w.sb.WriteString(": ")
		}
		w.node(v.Value)
	case *Import:
		w.sb.WriteString("@import")
		if v.Once {
			w.sb.WriteString("-once")
		}
		w.sb.WriteByte(' ')
		w.node(v.Path)
		if v.Features != nil {
			w.sb.WriteByte(' ')
			w.node(v.Features)
		}
		w.sb.WriteString(";\n")
	case *Media:
		w.sb.WriteString("@media ")
		w.node(v.Features)
		w.block(v.Block)
	case *Directive:
		w.sb.WriteString(v.Name)
		if v.Value != nil {
			w.sb.WriteByte(' ')
			w.node(v.Value)
		}
		if v.Block != nil {
			w.block(v.Block)
		} else {
			w.sb.WriteString(";\n")
		}
	case *Comment:
		if v.Block {
			w.sb.WriteString("/*")
			w.sb.WriteString(v.Body)
			w.sb.WriteString("*/\n")
		} else {
			w.sb.WriteString("//")
			w.sb.WriteString(v.Body)
			w.sb.WriteByte('\n')
		}
	}
}

func (w *reprWriter) condition(c *Condition) {
	if c.Negate {
		w.sb.WriteString("not ")
	}
	switch c.Op {
	case "and", "or":
		w.node(c.Left)
		w.sb.WriteByte(' ')
		w.sb.WriteString(c.Op)
		w.sb.WriteByte(' ')
		w.node(c.Right)
	case "":
		w.sb.WriteByte('(')
		w.node(c.Left)
		w.sb.WriteByte(')')
	default:
		w.sb.WriteByte('(')
		w.node(c.Left)
		w.sb.WriteByte(' ')
		w.sb.WriteString(c.Op)
		w.sb.WriteByte(' ')
		w.node(c.Right)
		w.sb.WriteByte(')')
	}
}

func (w *reprWriter) selectors(sels Selectors) {
	for i, s := range sels {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		w.selector(s)
	}
}

func (w *reprWriter) selector(s *Selector) {
	if s == nil {
		return
	}
	for i, p := range s.parts {
		if c, ok := p.(*Combinator); ok && i == 0 {
			if c.Kind != Descendant {
				w.sb.WriteByte(byte(c.Kind))
				w.sb.WriteByte(' ')
			}
			continue
		}
		w.node(p)
	}
	if s.extend != nil {
		w.extendList(s.extend)
	}
}

func (w *reprWriter) extendList(l *ExtendList) {
	w.sb.WriteString(":extend(")
	for i, e := range l.Extends {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		w.node(e)
	}
	w.sb.WriteByte(')')
}
