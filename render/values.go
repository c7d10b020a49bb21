// Package render serializes evaluated trees to CSS text.
package render

import (
	"strings"

	"lessc/model"
)

// Writer is satisfied by strings.Builder and zap buffers.
type Writer interface {
	WriteString(s string) (int, error)
	WriteByte(c byte) error
}

// Value writes evaluated value. Compress selects compact separators and
// short color notation.
func Value(w Writer, n model.Node, compress bool) {
	switch v := n.(type) {
	case nil:
	case *model.Anonymous:
		w.WriteString(v.Value)
	case *model.Keyword:
		w.WriteString(v.Value)
	case *model.Dimension:
		w.WriteString(model.FormatNumber(v.Value))
		w.WriteString(v.Unit)
	case *model.Color:
		color(w, v, compress)
	case *model.Quoted:
		if v.Escaped || v.Delim == 0 {
			values(w, v.Parts, "", compress)
			return
		}
		w.WriteByte(v.Delim)
		values(w, v.Parts, "", compress)
		w.WriteByte(v.Delim)
	case *model.URL:
		w.WriteString("url(")
		Value(w, v.Value, compress)
		w.WriteByte(')')
	case *model.Negative:
		w.WriteByte('-')
		Value(w, v.Value, compress)
	case *model.Paren:
		w.WriteByte('(')
		Value(w, v.Value, compress)
		w.WriteByte(')')
	case *model.Expression:
		expression(w, v, compress)
	case *model.ExpressionList:
		values(w, v.Values, listSep(compress), compress)
	case *model.FunctionCall:
		w.WriteString(v.Name)
		w.WriteByte('(')
		values(w, v.Args, listSep(compress), compress)
		w.WriteByte(')')
	default:
		// unevaluated nodes are written in source form
		w.WriteString(model.Repr(n))
	}
}

// ValueString returns pretty form of the value.
func ValueString(n model.Node) string {
	var sb strings.Builder
	Value(&sb, n, false)
	return sb.String()
}

func listSep(compress bool) string {
	if compress {
		return ","
	}
	return ", "
}

func values(w Writer, nodes []model.Node, sep string, compress bool) {
	for i, n := range nodes {
		if i > 0 {
			w.WriteString(sep)
		}
		Value(w, n, compress)
	}
}

// expression separates values by space, literal slash is written without
// surrounding spaces (font: 12px/1.5).
func expression(w Writer, e *model.Expression, compress bool) {
	for i, n := range e.Values {
		if i > 0 && !isSlash(n) && !isSlash(e.Values[i-1]) {
			w.WriteByte(' ')
		}
		Value(w, n, compress)
	}
}

func isSlash(n model.Node) bool {
	a, ok := n.(*model.Anonymous)
	return ok && a.Value == "/"
}

func color(w Writer, c *model.Color, compress bool) {
	switch {
	case c.Raw != "":
		w.WriteString(c.Raw)
	case c.A < 1:
		sep := listSep(compress)
		w.WriteString("rgba(")
		w.WriteString(model.FormatNumber(float64(c.R)))
		w.WriteString(sep)
		w.WriteString(model.FormatNumber(float64(c.G)))
		w.WriteString(sep)
		w.WriteString(model.FormatNumber(float64(c.B)))
		w.WriteString(sep)
		w.WriteString(model.FormatNumber(c.A))
		w.WriteByte(')')
	default:
		w.WriteString(c.Hex(compress))
	}
}

// Selector writes selector parts. Leading descendant combinator is omitted.
func Selector(w Writer, s *model.Selector, compress bool) {
	for i, part := range s.Parts() {
		switch p := part.(type) {
		case *model.TextElement:
			w.WriteString(p.Name)
		case *model.WildcardElement:
			w.WriteByte('&')
		case *model.ValueElement:
			Value(w, p.Value, compress)
		case *model.Combinator:
			combinator(w, p.Kind, i == 0, compress)
		}
	}
}

func combinator(w Writer, kind model.CombinatorKind, first, compress bool) {
	switch {
	case kind == model.Descendant:
		if !first {
			w.WriteByte(' ')
		}
	case compress:
		w.WriteByte(byte(kind))
	case first:
		w.WriteByte(byte(kind))
		w.WriteByte(' ')
	default:
		w.WriteByte(' ')
		w.WriteByte(byte(kind))
		w.WriteByte(' ')
	}
}

// SelectorString returns pretty form of the selector.
func SelectorString(s *model.Selector) string {
	var sb strings.Builder
	Selector(&sb, s, false)
	return sb.String()
}
