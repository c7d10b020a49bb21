package functions

import (
	"fmt"
	"strings"

	"lessc/model"
)

const upperHex = "0123456789ABCDEF"

// escape percent encodes everything except characters kept by JavaScript
// encodeURI, and additionally encodes = : # ; ( ).
func escape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || strings.IndexByte("-_.!~*',/?@&+$", c) >= 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&15])
	}
	return sb.String()
}

// escapeComponent mimics encodeURIComponent.
func escapeComponent(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || strings.IndexByte("-_.!~*'()", c) >= 0 {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&15])
	}
	return sb.String()
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// format replaces %s %d %a placeholders with arguments in order, upper case
// placeholders url encode the value, %% is literal percent.
func format(args []model.Node) (model.Node, error) {
	q, ok := args[0].(*model.Quoted)
	if !ok {
		return nil, fmt.Errorf("format string expected, got %s", describe(args[0]))
	}
	tmpl, _ := text(q)
	rest := args[1:]

	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' || i+1 >= len(tmpl) {
			sb.WriteByte(c)
			continue
		}
		verb := tmpl[i+1]
		switch verb {
		case '%':
			sb.WriteByte('%')
			i++
			continue
		case 's', 'S', 'd', 'D', 'a', 'A':
		default:
			sb.WriteByte(c)
			continue
		}
		i++
		if len(rest) == 0 {
			return nil, fmt.Errorf("not enough arguments for %q", tmpl)
		}
		arg := rest[0]
		rest = rest[1:]

		var v string
		if verb == 's' || verb == 'S' {
			if s, err := text(arg); err == nil {
				v = s
			} else {
				v = model.Repr(arg)
			}
		} else {
			v = model.Repr(arg)
		}
		if verb >= 'A' && verb <= 'Z' {
			v = escapeComponent(v)
		}
		sb.WriteString(v)
	}
	return &model.Quoted{Base: q.Base, Delim: q.Delim, Escaped: q.Escaped, Parts: []model.Node{&model.Anonymous{Value: sb.String()}}}, nil
}

func stringFunctions() []*Function {
	return []*Function{
		New("e", 1, 1, func(args []model.Node) (model.Node, error) {
			s, err := text(args[0])
			if err != nil {
				return nil, err
			}
			return &model.Anonymous{Value: s}, nil
		}),
		New("escape", 1, 1, func(args []model.Node) (model.Node, error) {
			s, err := text(args[0])
			if err != nil {
				return nil, err
			}
			return &model.Anonymous{Value: escape(s)}, nil
		}),
		New("%", 1, -1, format),
	}
}
