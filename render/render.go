package render

import (
	"strings"

	"lessc/model"
)

// DefaultIndent is used for pretty output when Options.Indent is not set.
const DefaultIndent = 2

// Options controls output format.
type Options struct {
	Compress bool
	Indent   int
}

// Render serializes evaluated stylesheet. Nested rulesets are written after
// the ruleset containing them.
func Render(sheet *model.Stylesheet, opts Options) string {
	if opts.Indent <= 0 {
		opts.Indent = DefaultIndent
	}
	r := &renderer{opts: opts}
	if sheet != nil && sheet.Block != nil {
		r.rules(sheet.Block.Rules, 0)
	}
	return r.sb.String()
}

type renderer struct {
	opts Options
	sb   strings.Builder
}

func (r *renderer) indent(depth int) {
	if r.opts.Compress {
		return
	}
	r.sb.WriteString(strings.Repeat(" ", depth*r.opts.Indent))
}

func (r *renderer) rules(nodes []model.Node, depth int) {
	for _, n := range nodes {
		switch v := n.(type) {
		case *model.Ruleset:
			r.ruleset(v, depth)
		case *model.Media:
			r.block("@media", v.Features, v.Block, depth)
		case *model.Directive:
			r.directive(v, depth)
		case *model.Import:
			r.indent(depth)
			r.sb.WriteString("@import ")
			Value(&r.sb, v.Path, r.opts.Compress)
			if v.Features != nil {
				r.sb.WriteByte(' ')
				Value(&r.sb, v.Features, r.opts.Compress)
			}
			r.sb.WriteString(";\n")
		case *model.Rule:
			r.declaration(v, depth)
			if r.opts.Compress {
				r.sb.WriteByte('\n')
			}
		case *model.Comment:
			r.comment(v, depth)
		}
	}
}

// split separates declarations from nested blocks.
func split(nodes []model.Node) (decls, nested []model.Node) {
	for _, n := range nodes {
		switch n.(type) {
		case *model.Rule, *model.Comment:
			decls = append(decls, n)
		default:
			nested = append(nested, n)
		}
	}
	return decls, nested
}

func hasDeclarations(nodes []model.Node) bool {
	for _, n := range nodes {
		if _, ok := n.(*model.Rule); ok {
			return true
		}
	}
	return false
}

func (r *renderer) ruleset(rs *model.Ruleset, depth int) {
	decls, nested := split(rs.Block.Rules)
	if len(rs.Selectors) > 0 && hasDeclarations(decls) {
		r.indent(depth)
		for i, s := range rs.Selectors {
			if i > 0 {
				if r.opts.Compress {
					r.sb.WriteByte(',')
				} else {
					r.sb.WriteString(",\n")
					r.indent(depth)
				}
			}
			Selector(&r.sb, s, r.opts.Compress)
		}
		r.open()
		r.body(decls, depth+1)
		r.close(depth)
	}
	r.rules(nested, depth)
}

func (r *renderer) open() {
	if r.opts.Compress {
		r.sb.WriteByte('{')
		return
	}
	r.sb.WriteString(" {\n")
}

func (r *renderer) close(depth int) {
	r.indent(depth)
	r.sb.WriteString("}\n")
}

func (r *renderer) body(decls []model.Node, depth int) {
	for _, n := range decls {
		switch v := n.(type) {
		case *model.Rule:
			r.declaration(v, depth)
		case *model.Comment:
			r.comment(v, depth)
		}
	}
}

func (r *renderer) declaration(d *model.Rule, depth int) {
	r.indent(depth)
	r.sb.WriteString(d.Property)
	if r.opts.Compress {
		r.sb.WriteByte(':')
	} else {
		r.sb.WriteString(": ")
	}
	Value(&r.sb, d.Value, r.opts.Compress)
	if d.Important {
		if !r.opts.Compress {
			r.sb.WriteByte(' ')
		}
		r.sb.WriteString("!important")
	}
	r.sb.WriteByte(';')
	if !r.opts.Compress {
		r.sb.WriteByte('\n')
	}
}

func (r *renderer) comment(c *model.Comment, depth int) {
	if r.opts.Compress || !c.Block {
		return
	}
	r.indent(depth)
	r.sb.WriteString("/*")
	r.sb.WriteString(c.Body)
	r.sb.WriteString("*/\n")
}

// block writes at-rule with nested rulesets.
func (r *renderer) block(name string, prelude model.Node, b *model.Block, depth int) {
	r.indent(depth)
	r.sb.WriteString(name)
	if prelude != nil {
		r.sb.WriteByte(' ')
		Value(&r.sb, prelude, r.opts.Compress)
	}
	r.open()
	if r.opts.Compress {
		r.sb.WriteByte('\n')
	}
	r.rules(b.Rules, depth+1)
	r.close(depth)
}

func (r *renderer) directive(d *model.Directive, depth int) {
	if d.Block == nil {
		r.indent(depth)
		r.sb.WriteString(d.Name)
		if d.Value != nil {
			r.sb.WriteByte(' ')
			Value(&r.sb, d.Value, r.opts.Compress)
		}
		r.sb.WriteString(";\n")
		return
	}
	decls, nested := split(d.Block.Rules)
	if len(nested) > 0 {
		r.block(d.Name, d.Value, d.Block, depth)
		return
	}
	r.indent(depth)
	r.sb.WriteString(d.Name)
	if d.Value != nil {
		r.sb.WriteByte(' ')
		Value(&r.sb, d.Value, r.opts.Compress)
	}
	r.open()
	r.body(decls, depth+1)
	r.close(depth)
}
