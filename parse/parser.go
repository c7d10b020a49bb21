// Package parse turns LESS source into model trees.
package parse

import (
	"errors"
	"strings"

	"github.com/tdewolff/parse/v2/css"

	"lessc/model"
)

// Parse parses complete stylesheet. Returned errors are *model.Error of
// SyntaxError kind carrying path and position.
func Parse(source, path string) (*model.Stylesheet, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, withPath(err, path)
	}
	p := &parser{toks: toks, path: path}
	rules, err := p.rules(true)
	if err != nil {
		return nil, withPath(err, path)
	}
	start := model.Pos{Line: 1, Col: 1}
	return &model.Stylesheet{
		Base:  model.Base{Pos: start},
		Path:  path,
		Block: &model.Block{Base: model.Base{Pos: start}, Rules: rules},
	}, nil
}

// ParseSelector parses a single selector, the whole fragment must be
// consumed.
func ParseSelector(fragment string) (*model.Selector, error) {
	toks, err := tokenize(fragment)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	p.ws()
	sel, err := p.selector(false)
	if err != nil {
		return nil, err
	}
	p.ws()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after selector", p.peek().text)
	}
	if sel.IsEmpty() {
		return nil, p.errorf("empty selector")
	}
	return sel, nil
}

func withPath(err error, path string) error {
	var lerr *model.Error
	if errors.As(err, &lerr) && lerr.Path == "" {
		lerr.Path = path
	}
	return err
}

type parser struct {
	toks []token
	i    int
	path string
}

func (p *parser) eof() bool {
	return p.i >= len(p.toks)
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

// peekAt looks k raw tokens ahead, whitespace included.
func (p *parser) peekAt(k int) token {
	if p.i+k < len(p.toks) {
		return p.toks[p.i+k]
	}
	var pos model.Pos
	if n := len(p.toks); n > 0 {
		pos = p.toks[n-1].pos
	} else {
		pos = model.Pos{Line: 1, Col: 1}
	}
	return token{tt: css.ErrorToken, pos: pos}
}

func (p *parser) next() token {
	t := p.peek()
	if !p.eof() {
		p.i++
	}
	return t
}

func (p *parser) mark() int {
	return p.i
}

func (p *parser) reset(m int) {
	p.i = m
}

// ws skips whitespace and comments and reports whether anything was skipped.
func (p *parser) ws() bool {
	skipped := false
	for !p.eof() && p.peek().isSpace() {
		p.i++
		skipped = true
	}
	return skipped
}

// peekNonSpace returns first token which is not whitespace without moving.
func (p *parser) peekNonSpace() token {
	for k := 0; ; k++ {
		t := p.peekAt(k)
		if !t.isSpace() {
			return t
		}
	}
}

func (p *parser) errorf(format string, args ...any) *model.Error {
	err := model.Errorf(model.SyntaxError, p.peek().pos, format, args...)
	err.Path = p.path
	return err
}

func (p *parser) expect(tt css.TokenType, what string) (token, error) {
	p.ws()
	t := p.peek()
	if !t.is(tt) {
		return t, p.errorf("expected %s, found %s", what, describe(t))
	}
	return p.next(), nil
}

func describe(t token) string {
	if t.tt == css.ErrorToken {
		return "end of input"
	}
	return "'" + t.text + "'"
}

func base(t token) model.Base {
	return model.Base{Pos: t.pos}
}

// rules parses statements until closing brace (not consumed) or end of input.
func (p *parser) rules(top bool) ([]model.Node, error) {
	var rules []model.Node
	for {
		for !p.eof() {
			t := p.peek()
			if t.is(css.WhitespaceToken) || t.is(css.SemicolonToken) || t.is(css.CDOToken) || t.is(css.CDCToken) {
				p.i++
				continue
			}
			break
		}

		t := p.peek()
		switch {
		case p.eof():
			if !top {
				return nil, p.errorf("unexpected end of input, missing '}'")
			}
			return rules, nil
		case t.is(css.RightBraceToken):
			if top {
				return nil, p.errorf("unexpected '}'")
			}
			return rules, nil
		case t.is(css.CommentToken):
			p.next()
			body := strings.TrimSuffix(strings.TrimPrefix(t.text, "/*"), "*/")
			rules = append(rules, &model.Comment{Base: base(t), Body: body, Block: true})
		case t.is(lineCommentToken):
			p.next()
			rules = append(rules, &model.Comment{Base: base(t), Body: t.text})
		default:
			n, err := p.statement()
			if err != nil {
				return nil, err
			}
			rules = append(rules, n)
		}
	}
}

// block parses "{ rules }".
func (p *parser) block() (*model.Block, error) {
	open, err := p.expect(css.LeftBraceToken, "'{'")
	if err != nil {
		return nil, err
	}
	rules, err := p.rules(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(css.RightBraceToken, "'}'"); err != nil {
		return nil, err
	}
	return &model.Block{Base: base(open), Rules: rules}, nil
}

func (p *parser) statement() (model.Node, error) {
	if p.peek().is(css.AtKeywordToken) {
		return p.atRule()
	}
	if n, err := p.mixinDefinition(); n != nil || err != nil {
		return n, err
	}
	if n, err := p.extendStatement(); n != nil || err != nil {
		return n, err
	}
	if n, err := p.mixinCall(); n != nil || err != nil {
		return n, err
	}
	if n := p.declaration(); n != nil {
		return n, nil
	}
	return p.ruleset()
}

// terminated consumes statement terminator, closing brace and end of input
// also terminate but are left in place.
func (p *parser) terminated() bool {
	p.ws()
	t := p.peek()
	switch {
	case t.is(css.SemicolonToken):
		p.next()
		return true
	case t.is(css.RightBraceToken), p.eof():
		return true
	}
	return false
}

// important consumes "!important".
func (p *parser) important() bool {
	m := p.mark()
	p.ws()
	if p.peek().isDelim('!') {
		p.next()
		p.ws()
		if p.peek().isIdent("important") {
			p.next()
			return true
		}
	}
	p.reset(m)
	return false
}

// cssAtRules may be followed by colon without being variable definitions.
var cssAtRules = map[string]bool{
	"@page":      true,
	"@media":     true,
	"@supports":  true,
	"@document":  true,
	"@font-face": true,
}

func (p *parser) atRule() (model.Node, error) {
	t := p.next()
	name := strings.ToLower(t.text)

	if p.peekNonSpace().is(css.ColonToken) && !cssAtRules[name] {
		p.ws()
		p.next()
		return p.definition(t)
	}

	switch name {
	case "@import", "@import-once", "@import-multiple":
		return p.importRule(t, name == "@import-once")
	case "@media":
		features, err := p.prelude()
		if err != nil {
			return nil, err
		}
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &model.Media{Base: base(t), Features: features, Block: body}, nil
	}

	prelude, err := p.prelude()
	if err != nil {
		return nil, err
	}
	d := &model.Directive{Base: base(t), Name: t.text}
	if prelude != nil {
		d.Value = prelude
	}
	p.ws()
	if p.peek().is(css.LeftBraceToken) {
		if d.Block, err = p.block(); err != nil {
			return nil, err
		}
		return d, nil
	}
	if !p.terminated() {
		return nil, p.errorf("expected ';' after %s", t.text)
	}
	return d, nil
}

func (p *parser) definition(name token) (model.Node, error) {
	m := p.mark()
	value, err := p.expressionList(false)
	if err == nil && p.terminated() {
		return &model.Definition{Base: base(name), Name: name.text, Value: value}, nil
	}
	p.reset(m)
	raw, ok := p.rawValue()
	if !ok || !p.terminated() {
		if err != nil {
			return nil, err
		}
		return nil, p.errorf("expected ';' after definition of %s", name.text)
	}
	return &model.Definition{Base: base(name), Name: name.text, Value: raw}, nil
}

func (p *parser) importRule(t token, once bool) (model.Node, error) {
	p.ws()
	pt := p.peek()
	var path model.Node
	switch {
	case pt.is(css.StringToken):
		p.next()
		q, err := p.quoted(pt, false)
		if err != nil {
			return nil, err
		}
		path = q
	case pt.is(css.URLToken):
		p.next()
		path = p.url(pt)
	default:
		return nil, p.errorf("expected import path, found %s", describe(pt))
	}
	features, err := p.prelude()
	if err != nil {
		return nil, err
	}
	imp := &model.Import{Base: base(t), Path: path, Once: once}
	if features != nil {
		imp.Features = features
	}
	if !p.terminated() {
		return nil, p.errorf("expected ';' after import")
	}
	return imp, nil
}

func (p *parser) mixinDefinition() (model.Node, error) {
	start := p.mark()
	t := p.next()
	var name string
	switch {
	case t.isDelim('.'):
		n := p.next()
		if !n.is(css.FunctionToken) {
			p.reset(start)
			return nil, nil
		}
		name = "." + strings.TrimSuffix(n.text, "(")
	case t.is(css.HashToken):
		if !p.next().is(css.LeftParenthesisToken) {
			p.reset(start)
			return nil, nil
		}
		name = t.text
	default:
		p.reset(start)
		return nil, nil
	}

	params, err := p.mixinParams()
	if err != nil {
		p.reset(start)
		return nil, nil
	}
	p.ws()
	var guard *model.Guard
	if p.peek().isIdent("when") {
		p.next()
		if guard, err = p.guard(); err != nil {
			return nil, err
		}
		p.ws()
	}
	if !p.peek().is(css.LeftBraceToken) {
		p.reset(start)
		return nil, nil
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &model.Mixin{Base: base(t), Name: name, Params: params, Guard: guard, Block: body}, nil
}

// extendStatement parses "&:extend(...);".
func (p *parser) extendStatement() (model.Node, error) {
	start := p.mark()
	t := p.peek()
	if !t.isDelim('&') || !p.peekAt(1).is(css.ColonToken) || !strings.EqualFold(p.peekAt(2).text, "extend(") {
		return nil, nil
	}
	p.i += 3
	list, err := p.extendList(t)
	if err != nil {
		return nil, err
	}
	if !p.terminated() {
		p.reset(start)
		return nil, nil
	}
	return list, nil
}

func (p *parser) mixinCall() (model.Node, error) {
	start := p.mark()
	first := p.peek()
	if !first.isDelim('.') && !first.is(css.HashToken) {
		return nil, nil
	}

	sel := model.NewSelector()
	sel.Pos = first.pos
	var args *model.MixinCallArgs
loop:
	for {
		t := p.peek()
		switch {
		case t.isDelim('.') && p.peekAt(1).is(css.IdentToken):
			p.next()
			sel.Add(&model.TextElement{Base: base(t), Name: "." + p.next().text})
		case t.isDelim('.') && p.peekAt(1).is(css.FunctionToken):
			p.next()
			fn := p.next()
			sel.Add(&model.TextElement{Base: base(t), Name: "." + strings.TrimSuffix(fn.text, "(")})
			var err error
			if args, err = p.mixinArgs(fn); err != nil {
				p.reset(start)
				return nil, nil
			}
			break loop
		case t.is(css.HashToken):
			p.next()
			sel.Add(&model.TextElement{Base: base(t), Name: t.text})
			if p.peek().is(css.LeftParenthesisToken) {
				open := p.next()
				var err error
				if args, err = p.mixinArgs(open); err != nil {
					p.reset(start)
					return nil, nil
				}
				break loop
			}
		case t.isDelim('>'):
			p.next()
			sel.Add(&model.Combinator{Base: base(t), Kind: model.Child})
		case t.is(css.WhitespaceToken):
			next := p.peekNonSpace()
			if !next.isDelim('.') && !next.is(css.HashToken) && !next.isDelim('>') {
				break loop
			}
			p.ws()
			sel.Add(&model.Combinator{Base: base(t), Kind: model.Descendant})
		default:
			break loop
		}
	}
	if sel.IsEmpty() {
		p.reset(start)
		return nil, nil
	}
	important := p.important()
	if !p.terminated() {
		p.reset(start)
		return nil, nil
	}
	return &model.MixinCall{Base: base(first), Selector: sel, Args: args, Important: important}, nil
}

func (p *parser) declaration() model.Node {
	start := p.mark()
	t := p.next()
	var prop string
	switch {
	case t.is(css.IdentToken), t.is(css.CustomPropertyNameToken):
		prop = t.text
	case t.isDelim('*') && p.peek().is(css.IdentToken):
		prop = "*" + p.next().text
	default:
		p.reset(start)
		return nil
	}
	p.ws()
	if !p.peek().is(css.ColonToken) {
		p.reset(start)
		return nil
	}
	p.next()

	m := p.mark()
	value, err := p.expressionList(strings.EqualFold(prop, "font"))
	if err == nil {
		important := p.important()
		if p.terminated() {
			return &model.Rule{Base: base(t), Property: prop, Value: value, Important: important}
		}
	}
	p.reset(m)
	raw, ok := p.rawValue()
	if !ok {
		p.reset(start)
		return nil
	}
	important := false
	if text := strings.TrimSpace(raw.Value); strings.HasSuffix(text, "!important") {
		raw.Value = strings.TrimSpace(strings.TrimSuffix(text, "!important"))
		important = true
	}
	if !p.terminated() {
		p.reset(start)
		return nil
	}
	return &model.Rule{Base: base(t), Property: prop, Value: raw, Important: important}
}

func (p *parser) ruleset() (model.Node, error) {
	p.ws()
	t := p.peek()
	sels, guard, err := p.selectorGroup()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	// memoized here, parsed trees are shared read only by compilations
	for _, s := range sels {
		s.MixinPath()
	}
	return &model.Ruleset{Base: base(t), Selectors: sels, Guard: guard, Block: body}, nil
}

// rawValue collects declaration value verbatim up to ';' or '}' at nesting
// level zero. It fails when a block opens first.
func (p *parser) rawValue() (*model.Anonymous, bool) {
	p.ws()
	t := p.peek()
	var sb strings.Builder
	depth := 0
	for !p.eof() {
		c := p.peek()
		switch {
		case c.is(css.LeftBraceToken) && depth == 0:
			return nil, false
		case (c.is(css.SemicolonToken) || c.is(css.RightBraceToken)) && depth == 0:
			text := strings.TrimSpace(sb.String())
			if text == "" {
				return nil, false
			}
			return &model.Anonymous{Base: base(t), Value: text}, true
		case c.is(css.LeftParenthesisToken), c.is(css.FunctionToken), c.is(css.LeftBracketToken):
			depth++
		case c.is(css.RightParenthesisToken), c.is(css.RightBracketToken):
			depth--
		}
		p.next()
		switch {
		case c.is(css.WhitespaceToken):
			sb.WriteByte(' ')
		case c.is(css.CommentToken), c.is(lineCommentToken):
		default:
			sb.WriteString(c.text)
		}
	}
	return nil, false
}

// prelude collects at-rule prelude up to '{' or ';' keeping variable
// references, nil is returned for empty prelude.
func (p *parser) prelude() (model.Node, error) {
	p.ws()
	start := p.peek()
	var (
		parts []model.Node
		sb    strings.Builder
		depth int
	)
	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, &model.Anonymous{Base: base(start), Value: sb.String()})
			sb.Reset()
		}
	}
	for {
		t := p.peek()
		if p.eof() {
			if depth > 0 {
				return nil, p.errorf("unbalanced parenthesis")
			}
			break
		}
		if depth == 0 && (t.is(css.LeftBraceToken) || t.is(css.SemicolonToken) || t.is(css.RightBraceToken)) {
			break
		}
		switch {
		case t.is(css.LeftParenthesisToken), t.is(css.FunctionToken):
			depth++
		case t.is(css.RightParenthesisToken):
			depth--
		}
		switch {
		case t.is(css.AtKeywordToken):
			p.next()
			flush()
			parts = append(parts, &model.Variable{Base: base(t), Name: t.text})
		case t.isDelim('@') && p.peekAt(1).is(css.LeftBraceToken):
			v, err := p.curlyVariable()
			if err != nil {
				return nil, err
			}
			flush()
			parts = append(parts, v)
		case t.is(css.WhitespaceToken):
			p.next()
			sb.WriteByte(' ')
		case t.is(css.CommentToken), t.is(lineCommentToken):
			p.next()
		default:
			p.next()
			sb.WriteString(t.text)
		}
	}
	flush()
	parts = trimParts(parts)
	if len(parts) == 0 {
		return nil, nil
	}
	return &model.Quoted{Base: base(start), Parts: parts}, nil
}

// trimParts removes surrounding whitespace of the raw text sequence, empty
// text parts are dropped.
func trimParts(parts []model.Node) []model.Node {
	if len(parts) == 0 {
		return parts
	}
	if a, ok := parts[0].(*model.Anonymous); ok {
		a.Value = strings.TrimLeft(a.Value, " ")
	}
	if a, ok := parts[len(parts)-1].(*model.Anonymous); ok {
		a.Value = strings.TrimRight(a.Value, " ")
	}
	out := parts[:0]
	for _, n := range parts {
		if a, ok := n.(*model.Anonymous); ok && a.Value == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// curlyVariable parses "@{name}".
func (p *parser) curlyVariable() (*model.Variable, error) {
	at := p.next()
	p.next()
	name := p.next()
	if !name.is(css.IdentToken) {
		return nil, p.errorf("expected variable name in interpolation, found %s", describe(name))
	}
	if !p.next().is(css.RightBraceToken) {
		return nil, p.errorf("expected '}' closing interpolation")
	}
	return &model.Variable{Base: base(at), Name: "@" + name.text, Curly: true}, nil
}
