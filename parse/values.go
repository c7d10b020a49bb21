package parse

import (
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2/css"

	"lessc/model"
)

// expressionList parses comma separated expressions. Slash is kept literal
// in font shorthand.
func (p *parser) expressionList(font bool) (model.Node, error) {
	p.ws()
	t := p.peek()
	first, err := p.expression(font)
	if err != nil {
		return nil, err
	}
	values := []model.Node{first}
	for {
		m := p.mark()
		p.ws()
		if !p.peek().is(css.CommaToken) {
			p.reset(m)
			break
		}
		p.next()
		v, err := p.expression(font)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 1 {
		return first, nil
	}
	return &model.ExpressionList{Base: base(t), Values: values}, nil
}

// expression parses space separated values.
func (p *parser) expression(font bool) (model.Node, error) {
	p.ws()
	t := p.peek()
	var values []model.Node
	for {
		m := p.mark()
		p.ws()
		if font && p.peek().isDelim('/') {
			s := p.next()
			values = append(values, &model.Anonymous{Base: base(s), Value: "/"})
			continue
		}
		v, err := p.addition(font)
		if err != nil {
			return nil, err
		}
		if v == nil {
			p.reset(m)
			break
		}
		values = append(values, v)
	}
	switch len(values) {
	case 0:
		return nil, p.errorf("expected value, found %s", describe(p.peekNonSpace()))
	case 1:
		return values[0], nil
	}
	return &model.Expression{Base: base(t), Values: values}, nil
}

func (p *parser) addition(font bool) (model.Node, error) {
	left, err := p.multiplication(font)
	if left == nil || err != nil {
		return left, err
	}
	for {
		m := p.mark()
		spaceBefore := p.ws()
		t := p.peek()
		if !t.isDelim('+') && !t.isDelim('-') {
			p.reset(m)
			return left, nil
		}
		// "@a -@b" is two values
		if spaceBefore && !p.peekAt(1).isSpace() {
			p.reset(m)
			return left, nil
		}
		p.next()
		p.ws()
		right, err := p.multiplication(font)
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.errorf("expected operand after '%s'", t.text)
		}
		left = &model.Operation{Base: base(t), Op: t.text[0], Left: left, Right: right}
	}
}

func (p *parser) multiplication(font bool) (model.Node, error) {
	left, err := p.operand()
	if left == nil || err != nil {
		return left, err
	}
	for {
		m := p.mark()
		p.ws()
		t := p.peek()
		if !t.isDelim('*') && (font || !t.isDelim('/')) {
			p.reset(m)
			return left, nil
		}
		p.next()
		p.ws()
		right, err := p.operand()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.errorf("expected operand after '%s'", t.text)
		}
		left = &model.Operation{Base: base(t), Op: t.text[0], Left: left, Right: right}
	}
}

// operand parses a single value, nil is returned when current token cannot
// start one.
func (p *parser) operand() (model.Node, error) {
	t := p.peek()
	switch {
	case t.is(css.NumberToken), t.is(css.PercentageToken), t.is(css.DimensionToken):
		p.next()
		return dimension(t)
	case t.is(css.HashToken):
		p.next()
		if c, ok := model.ParseHexColor(t.text); ok {
			c.Pos = t.pos
			return c, nil
		}
		return &model.Keyword{Base: base(t), Value: t.text}, nil
	case t.is(css.StringToken):
		p.next()
		return p.quoted(t, false)
	case t.isDelim('~') && p.peekAt(1).is(css.StringToken):
		p.next()
		return p.quoted(p.next(), true)
	case t.is(css.AtKeywordToken):
		p.next()
		return &model.Variable{Base: base(t), Name: t.text}, nil
	case t.isDelim('@') && p.peekAt(1).is(css.AtKeywordToken):
		p.next()
		return &model.Variable{Base: base(t), Name: p.next().text, Indirect: true}, nil
	case t.isDelim('@') && p.peekAt(1).is(css.LeftBraceToken):
		return p.curlyVariable()
	case t.is(css.URLToken):
		p.next()
		return p.url(t), nil
	case t.is(css.FunctionToken):
		p.next()
		return p.functionCall(t, strings.TrimSuffix(t.text, "("))
	case t.isDelim('%') && p.peekAt(1).is(css.LeftParenthesisToken):
		p.next()
		p.next()
		return p.functionCall(t, "%")
	case t.is(css.IdentToken):
		p.next()
		return &model.Keyword{Base: base(t), Value: t.text}, nil
	case t.is(css.UnicodeRangeToken):
		p.next()
		return &model.Anonymous{Base: base(t), Value: t.text}, nil
	case t.is(css.LeftParenthesisToken):
		p.next()
		v, err := p.addition(false)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, p.errorf("expected value after '('")
		}
		if _, err := p.expect(css.RightParenthesisToken, "')'"); err != nil {
			return nil, err
		}
		return &model.Paren{Base: base(t), Value: v}, nil
	case t.isDelim('-') && !p.peekAt(1).isSpace():
		m := p.mark()
		p.next()
		v, err := p.operand()
		if err != nil {
			return nil, err
		}
		if v == nil {
			p.reset(m)
			return nil, nil
		}
		return &model.Negative{Base: base(t), Value: v}, nil
	}
	return nil, nil
}

func (p *parser) functionCall(t token, name string) (model.Node, error) {
	call := &model.FunctionCall{Base: base(t), Name: name}
	p.ws()
	if p.peek().is(css.RightParenthesisToken) {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.functionArg()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		p.ws()
		switch n := p.next(); {
		case n.is(css.CommaToken):
			continue
		case n.is(css.RightParenthesisToken):
			return call, nil
		default:
			return nil, p.errorf("expected ',' or ')' in arguments of %s, found %s", name, describe(n))
		}
	}
}

// functionArg parses expression, arguments which are not expressions
// (alpha(opacity=50)) are kept as raw text.
func (p *parser) functionArg() (model.Node, error) {
	m := p.mark()
	v, err := p.expression(false)
	if err == nil {
		if n := p.peekNonSpace(); n.is(css.CommaToken) || n.is(css.RightParenthesisToken) {
			return v, nil
		}
	}
	p.reset(m)
	p.ws()
	t := p.peek()
	var sb strings.Builder
	depth := 0
	for !p.eof() {
		c := p.peek()
		if depth == 0 && (c.is(css.CommaToken) || c.is(css.RightParenthesisToken)) {
			break
		}
		switch {
		case c.is(css.LeftParenthesisToken), c.is(css.FunctionToken):
			depth++
		case c.is(css.RightParenthesisToken):
			depth--
		case c.is(css.SemicolonToken), c.is(css.LeftBraceToken), c.is(css.RightBraceToken):
			return nil, p.errorf("unexpected %s in function arguments", describe(c))
		}
		p.next()
		if c.is(css.WhitespaceToken) {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(c.text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, p.errorf("expected function argument, found %s", describe(p.peek()))
	}
	return &model.Anonymous{Base: base(t), Value: text}, nil
}

// dimension converts numeric token into value and unit.
func dimension(t token) (model.Node, error) {
	num, unit := splitNumber(t.text)
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil, model.Errorf(model.SyntaxError, t.pos, "bad number %q", t.text)
	}
	return &model.Dimension{Base: base(t), Value: v, Unit: unit}, nil
}

func splitNumber(s string) (num, unit string) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i+1 < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c) || c == '_' || c == '-' || c >= 0x80
}

// quoted builds string node from token. Content is kept verbatim, escapes
// included, and @{name} references become curly variables.
func (p *parser) quoted(t token, escaped bool) (*model.Quoted, error) {
	text := t.text
	if len(text) < 2 || text[len(text)-1] != text[0] {
		return nil, model.Errorf(model.SyntaxError, t.pos, "unterminated string")
	}
	q := &model.Quoted{Base: base(t), Delim: text[0], Escaped: escaped}
	q.Parts = interpolate(text[1:len(text)-1], t.pos)
	return q, nil
}

func interpolate(body string, pos model.Pos) []model.Node {
	var (
		parts []model.Node
		sb    strings.Builder
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			sb.WriteByte(c)
			sb.WriteByte(body[i+1])
			i++
			continue
		}
		if c == '@' && i+1 < len(body) && body[i+1] == '{' {
			end := strings.IndexByte(body[i+2:], '}')
			if end > 0 && validName(body[i+2:i+2+end]) {
				if sb.Len() > 0 {
					parts = append(parts, &model.Anonymous{Base: model.Base{Pos: pos}, Value: sb.String()})
					sb.Reset()
				}
				parts = append(parts, &model.Variable{Base: model.Base{Pos: pos}, Name: "@" + body[i+2:i+2+end], Curly: true})
				i += 2 + end
				continue
			}
		}
		sb.WriteByte(c)
	}
	if sb.Len() > 0 {
		parts = append(parts, &model.Anonymous{Base: model.Base{Pos: pos}, Value: sb.String()})
	}
	return parts
}

func validName(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return s != ""
}

func (p *parser) url(t token) *model.URL {
	inner := t.text[4:]
	inner = strings.TrimSuffix(inner, ")")
	inner = strings.TrimSpace(inner)
	u := &model.URL{Base: base(t)}
	switch {
	case len(inner) >= 2 && (inner[0] == '"' || inner[0] == '\'') && inner[len(inner)-1] == inner[0]:
		u.Value = &model.Quoted{Base: base(t), Delim: inner[0], Parts: interpolate(inner[1:len(inner)-1], t.pos)}
	case len(inner) > 1 && inner[0] == '@' && validName(inner[1:]):
		u.Value = &model.Variable{Base: base(t), Name: inner}
	default:
		u.Value = &model.Anonymous{Base: base(t), Value: inner}
	}
	return u
}

// argumentsDelim reports ';' when it appears at nesting level zero before
// the closing parenthesis, ',' otherwise.
func (p *parser) argumentsDelim() byte {
	depth := 0
	for k := 0; ; k++ {
		t := p.peekAt(k)
		switch {
		case t.tt == css.ErrorToken:
			return ','
		case t.is(css.LeftParenthesisToken), t.is(css.FunctionToken), t.is(css.LeftBracketToken):
			depth++
		case t.is(css.RightParenthesisToken), t.is(css.RightBracketToken):
			if depth == 0 {
				return ','
			}
			depth--
		case t.is(css.SemicolonToken) && depth == 0:
			return ';'
		case t.is(css.LeftBraceToken), t.is(css.RightBraceToken):
			return ','
		}
	}
}

// argumentValue parses single argument: list of expressions for ';'
// separated arguments, single expression otherwise.
func (p *parser) argumentValue(delim byte) (model.Node, error) {
	if delim == ';' {
		return p.expressionList(false)
	}
	return p.expression(false)
}

func (p *parser) ellipsis() bool {
	if p.peek().isDelim('.') && p.peekAt(1).isDelim('.') && p.peekAt(2).isDelim('.') {
		p.i += 3
		return true
	}
	return false
}

// mixinParams parses parameter list, opening parenthesis is already
// consumed.
func (p *parser) mixinParams() (*model.MixinParams, error) {
	params := &model.MixinParams{Base: base(p.peek())}
	delim := p.argumentsDelim()
	for {
		p.ws()
		t := p.peek()
		if t.is(css.RightParenthesisToken) {
			p.next()
			return params, nil
		}
		switch {
		case t.is(css.AtKeywordToken):
			p.next()
			param := &model.Parameter{Base: base(t), Name: t.text}
			p.ws()
			switch {
			case p.peek().is(css.ColonToken):
				p.next()
				v, err := p.argumentValue(delim)
				if err != nil {
					return nil, err
				}
				param.Value = v
			case p.ellipsis():
				param.Variadic = true
				params.Variadic = true
			}
			params.Params = append(params.Params, param)
		case p.ellipsis():
			params.Variadic = true
		default:
			v, err := p.argumentValue(delim)
			if err != nil {
				return nil, err
			}
			params.Params = append(params.Params, &model.Parameter{Base: base(t), Value: v})
		}
		p.ws()
		n := p.next()
		switch {
		case n.is(css.RightParenthesisToken):
			return params, nil
		case n.is(css.SemicolonToken), n.is(css.CommaToken) && delim == ',':
		default:
			return nil, p.errorf("expected '%c' or ')' in mixin parameters, found %s", delim, describe(n))
		}
	}
}

// mixinArgs parses call arguments, opening parenthesis is already consumed.
func (p *parser) mixinArgs(open token) (*model.MixinCallArgs, error) {
	args := &model.MixinCallArgs{Base: base(open), Delim: p.argumentsDelim()}
	for {
		p.ws()
		t := p.peek()
		if t.is(css.RightParenthesisToken) {
			p.next()
			return args, nil
		}
		arg := &model.Argument{Base: base(t)}
		if t.is(css.AtKeywordToken) && p.peekAtNonSpace(1).is(css.ColonToken) {
			p.next()
			p.ws()
			p.next()
			arg.Name = t.text
		}
		v, err := p.argumentValue(args.Delim)
		if err != nil {
			return nil, err
		}
		arg.Value = v
		args.Args = append(args.Args, arg)

		p.ws()
		n := p.next()
		switch {
		case n.is(css.RightParenthesisToken):
			return args, nil
		case n.is(css.SemicolonToken), n.is(css.CommaToken) && args.Delim == ',':
		default:
			return nil, p.errorf("expected '%c' or ')' in mixin arguments, found %s", args.Delim, describe(n))
		}
	}
}

// peekAtNonSpace returns first non space token starting k tokens ahead.
func (p *parser) peekAtNonSpace(k int) token {
	for ; ; k++ {
		t := p.peekAt(k)
		if !t.isSpace() {
			return t
		}
	}
}

// guard parses conditions following "when".
func (p *parser) guard() (*model.Guard, error) {
	p.ws()
	g := &model.Guard{Base: base(p.peek())}
	for {
		c, err := p.condition()
		if err != nil {
			return nil, err
		}
		g.Conditions = append(g.Conditions, c)
		m := p.mark()
		p.ws()
		if !p.peek().is(css.CommaToken) {
			p.reset(m)
			return g, nil
		}
		p.next()
	}
}

func (p *parser) condition() (*model.Condition, error) {
	p.ws()
	t := p.peek()
	negate := false
	if t.isIdent("not") {
		p.next()
		p.ws()
		negate = true
	}
	if _, err := p.expect(css.LeftParenthesisToken, "'(' in guard"); err != nil {
		return nil, err
	}
	p.ws()
	left, err := p.addition(false)
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, p.errorf("expected value in guard, found %s", describe(p.peek()))
	}
	c := &model.Condition{Base: base(t), Left: left, Negate: negate}
	p.ws()
	if op := p.comparison(); op != "" {
		p.ws()
		right, err := p.addition(false)
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.errorf("expected value after '%s' in guard", op)
		}
		c.Op, c.Right = op, right
	}
	if _, err := p.expect(css.RightParenthesisToken, "')' in guard"); err != nil {
		return nil, err
	}

	m := p.mark()
	p.ws()
	if p.peek().isIdent("and") {
		p.next()
		rest, err := p.condition()
		if err != nil {
			return nil, err
		}
		return &model.Condition{Base: base(t), Op: "and", Left: c, Right: rest}, nil
	}
	p.reset(m)
	return c, nil
}

// comparison consumes guard operator, "<=" and "=>" are normalized.
func (p *parser) comparison() string {
	t := p.peek()
	var op string
	switch {
	case t.isDelim('>'), t.isDelim('<'), t.isDelim('='):
		op = t.text
	default:
		return ""
	}
	p.next()
	if n := p.peek(); n.isDelim('=') || n.isDelim('<') || n.isDelim('>') {
		p.next()
		op += n.text
	}
	switch op {
	case "<=":
		op = "=<"
	case "=>":
		op = ">="
	}
	return op
}
