package parse

import (
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"lessc/model"
)

// lineCommentToken marks "//" comments which css lexer does not know about.
const lineCommentToken css.TokenType = 1000

type token struct {
	tt   css.TokenType
	text string
	pos  model.Pos
}

func (t token) is(tt css.TokenType) bool {
	return t.tt == tt
}

func (t token) isDelim(c byte) bool {
	return t.tt == css.DelimToken && len(t.text) == 1 && t.text[0] == c
}

func (t token) isIdent(name string) bool {
	return t.tt == css.IdentToken && strings.EqualFold(t.text, name)
}

func (t token) isSpace() bool {
	return t.tt == css.WhitespaceToken || t.tt == css.CommentToken || t.tt == lineCommentToken
}

// lines maps byte offsets to positions.
type lines []int

func newLines(src string) lines {
	ls := lines{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			ls = append(ls, i+1)
		}
	}
	return ls
}

func (ls lines) pos(off int) model.Pos {
	i := sort.Search(len(ls), func(i int) bool { return ls[i] > off }) - 1
	return model.Pos{Line: i + 1, Col: off - ls[i] + 1}
}

// tokenize splits LESS source into css tokens. Lexer is restarted after every
// line comment since css has no notion of those.
func tokenize(src string) ([]token, error) {
	var (
		ls   = newLines(src)
		toks = make([]token, 0, len(src)/3)
		base = 0
	)

	for base < len(src) {
		lx := css.NewLexer(parse.NewInputString(src[base:]))
		off := base
		restarted := false
		for !restarted {
			tt, data := lx.Next()
			if tt == css.ErrorToken {
				if err := lx.Err(); err != nil && !errors.Is(err, io.EOF) {
					return nil, &model.Error{Kind: model.SyntaxError, Pos: ls.pos(off), Msg: err.Error()}
				}
				return toks, nil
			}
			text := string(data)
			if tt == css.BadStringToken {
				return nil, model.Errorf(model.SyntaxError, ls.pos(off), "bare line feed in quoted string")
			}
			if tt == css.BadURLToken {
				return nil, model.Errorf(model.SyntaxError, ls.pos(off), "malformed url")
			}
			if tt == css.DelimToken && text == "/" && off+1 < len(src) && src[off+1] == '/' {
				end := strings.IndexByte(src[off:], '\n')
				if end < 0 {
					end = len(src) - off
				}
				toks = append(toks, token{tt: lineCommentToken, text: src[off+2 : off+end], pos: ls.pos(off)})
				base = off + end
				restarted = true
				continue
			}
			toks = append(toks, token{tt: tt, text: text, pos: ls.pos(off)})
			off += len(data)
		}
	}
	return toks, nil
}
