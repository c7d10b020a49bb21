package parse

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"

	"lessc/model"
)

// selectorGroup parses comma separated selectors with optional guard, stops
// in front of '{'.
func (p *parser) selectorGroup() (model.Selectors, *model.Guard, error) {
	var (
		sels  model.Selectors
		guard *model.Guard
	)
	for {
		p.ws()
		sel, err := p.selector(false)
		if err != nil {
			return nil, nil, err
		}
		if sel.IsEmpty() {
			return nil, nil, p.errorf("expected selector, found %s", describe(p.peek()))
		}
		sels = append(sels, sel)
		p.ws()
		t := p.peek()
		switch {
		case t.is(css.CommaToken):
			p.next()
			continue
		case t.isIdent("when"):
			p.next()
			if guard, err = p.guard(); err != nil {
				return nil, nil, err
			}
			sel.SetGuard(guard)
		}
		return sels, guard, nil
	}
}

// selector parses a single selector. Inside :extend() the "all" keyword
// terminates it.
func (p *parser) selector(inExtend bool) (*model.Selector, error) {
	sel := model.NewSelector()
	sel.Pos = p.peek().pos
	pendingSpace := false
	for !p.eof() {
		t := p.peek()
		if t.isSpace() {
			p.next()
			pendingSpace = true
			continue
		}
		if t.is(css.CommaToken) || t.is(css.LeftBraceToken) || t.is(css.RightParenthesisToken) || t.is(css.SemicolonToken) || t.is(css.RightBraceToken) {
			break
		}
		if pendingSpace && (t.isIdent("when") || inExtend && t.isIdent("all")) {
			break
		}
		if t.isDelim('>') || t.isDelim('+') || t.isDelim('~') {
			p.next()
			sel.Add(&model.Combinator{Base: base(t), Kind: model.CombinatorKind(t.text[0])})
			pendingSpace = false
			continue
		}
		if pendingSpace && !sel.IsEmpty() {
			sel.Add(&model.Combinator{Base: base(t), Kind: model.Descendant})
		}
		pendingSpace = false
		if err := p.element(sel); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

func (p *parser) element(sel *model.Selector) error {
	t := p.peek()
	switch {
	case t.isDelim('.'):
		p.next()
		n := p.peek()
		switch {
		case n.is(css.IdentToken):
			p.next()
			sel.Add(&model.TextElement{Base: base(t), Name: "." + n.text})
		case n.isDelim('@') && p.peekAt(1).is(css.LeftBraceToken):
			v, err := p.curlyVariable()
			if err != nil {
				return err
			}
			sel.Add(&model.TextElement{Base: base(t), Name: "."})
			sel.Add(&model.ValueElement{Base: base(t), Value: v})
		default:
			return p.errorf("unexpected %s after '.' in selector", describe(n))
		}
	case t.is(css.HashToken), t.is(css.IdentToken), t.is(css.PercentageToken), t.is(css.NumberToken):
		p.next()
		sel.Add(&model.TextElement{Base: base(t), Name: t.text})
	case t.isDelim('*'):
		p.next()
		sel.Add(&model.TextElement{Base: base(t), Name: "*"})
	case t.isDelim('&'):
		p.next()
		sel.Add(&model.WildcardElement{Base: base(t)})
	case t.isDelim('@') && p.peekAt(1).is(css.LeftBraceToken):
		v, err := p.curlyVariable()
		if err != nil {
			return err
		}
		sel.Add(&model.ValueElement{Base: base(t), Value: v})
	case t.is(css.ColonToken):
		return p.pseudo(sel)
	case t.is(css.LeftBracketToken):
		text, err := p.balanced(css.LeftBracketToken, css.RightBracketToken)
		if err != nil {
			return err
		}
		sel.Add(&model.TextElement{Base: base(t), Name: text})
	default:
		return p.errorf("unexpected %s in selector", describe(t))
	}
	return nil
}

// pseudo parses pseudo class or element, :extend(...) is attached to the
// selector as its extend list.
func (p *parser) pseudo(sel *model.Selector) error {
	t := p.next()
	prefix := ":"
	if p.peek().is(css.ColonToken) {
		p.next()
		prefix = "::"
	}
	n := p.peek()
	switch {
	case n.is(css.IdentToken):
		p.next()
		sel.Add(&model.TextElement{Base: base(t), Name: prefix + n.text})
	case n.is(css.FunctionToken) && prefix == ":" && strings.EqualFold(n.text, "extend("):
		p.next()
		list, err := p.extendList(t)
		if err != nil {
			return err
		}
		sel.SetExtendList(list)
	case n.is(css.FunctionToken):
		text, err := p.balanced(css.FunctionToken, css.RightParenthesisToken)
		if err != nil {
			return err
		}
		sel.Add(&model.TextElement{Base: base(t), Name: prefix + text})
	default:
		return p.errorf("unexpected %s after ':' in selector", describe(n))
	}
	return nil
}

// balanced returns verbatim text from opening token up to matching closing
// token, runs of whitespace become single space.
func (p *parser) balanced(open, closing css.TokenType) (string, error) {
	var sb strings.Builder
	depth := 0
	for !p.eof() {
		t := p.next()
		switch {
		case t.is(open), t.is(css.FunctionToken), t.is(css.LeftParenthesisToken) && open != css.LeftParenthesisToken:
			depth++
		case t.is(closing), t.is(css.RightParenthesisToken) && closing != css.RightParenthesisToken:
			depth--
		}
		switch {
		case t.is(css.WhitespaceToken):
			sb.WriteByte(' ')
		case t.is(css.CommentToken), t.is(lineCommentToken):
		default:
			sb.WriteString(t.text)
		}
		if depth == 0 {
			return sb.String(), nil
		}
	}
	return "", p.errorf("unbalanced brackets in selector")
}

// extendList parses targets of :extend( up to and including ')'.
func (p *parser) extendList(t token) (*model.ExtendList, error) {
	list := &model.ExtendList{Base: base(t)}
	for {
		p.ws()
		start := p.peek()
		sel, err := p.selector(true)
		if err != nil {
			return nil, err
		}
		if sel.IsEmpty() {
			return nil, p.errorf("expected selector in extend, found %s", describe(p.peek()))
		}
		ext := &model.Extend{Base: base(start), Selector: sel}
		p.ws()
		if p.peek().isIdent("all") {
			p.next()
			ext.All = true
			p.ws()
		}
		list.Extends = append(list.Extends, ext)
		n := p.next()
		switch {
		case n.is(css.CommaToken):
		case n.is(css.RightParenthesisToken):
			return list, nil
		default:
			return nil, p.errorf("expected ',' or ')' in extend, found %s", describe(n))
		}
	}
}
