package sql

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokNumber
	TokString
	TokSymbol
)

// Token is one lexical unit of a statement. Pos and End are byte offsets
// into the source text.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
	End  int
}

// Is reports whether the token is the given keyword or symbol,
// ignoring case.
func (t Token) Is(text string) bool {
	return (t.Kind == TokIdent || t.Kind == TokSymbol) && strings.EqualFold(t.Text, text)
}

func (t Token) quoted() string {
	if t.Kind == TokEOF {
		return "<EOF>"
	}
	return "'" + t.Text + "'"
}

var twoCharSymbols = []string{"<>", "!=", "<=", ">="}

// Lex splits a statement into tokens. String literals may be quoted with
// single or double quotes; a doubled quote or a backslash escapes the next
// character. Comments starting with "--" run to the end of the line.
func Lex(src string) ([]Token, error) {
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '-' && i+1 < len(src) && src[i+1] == '-':
			for i < len(src) && src[i] != '\n' {
				i++
			}

		case c == '\'' || c == '"':
			text, end, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: TokString, Text: text, Pos: i, End: end})
			i = end

		case isDigit(c) || c == '.' && i+1 < len(src) && isDigit(src[i+1]):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			// Type suffixes such as 10L, 3Y, 1S and 2.5BD.
			for i < len(src) && isLetter(src[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokNumber, Text: src[start:i], Pos: start, End: i})

		case isLetter(c) || c == '_':
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i]) || src[i] == '_') {
				i++
			}
			toks = append(toks, Token{Kind: TokIdent, Text: src[start:i], Pos: start, End: i})

		case c == '`':
			end := strings.IndexByte(src[i+1:], '`')
			if end < 0 {
				return nil, errors.Mark(errors.Newf("unterminated quoted identifier at position %d", i), ErrSyntax)
			}
			toks = append(toks, Token{Kind: TokIdent, Text: src[i+1 : i+1+end], Pos: i, End: i + end + 2})
			i += end + 2

		default:
			sym := ""
			for _, s := range twoCharSymbols {
				if strings.HasPrefix(src[i:], s) {
					sym = s
					break
				}
			}
			if sym == "" {
				if !strings.ContainsRune("(),;*=<>.?-+", rune(c)) {
					return nil, errors.Mark(errors.Newf("unexpected character %q at position %d", c, i), ErrSyntax)
				}
				sym = string(c)
			}
			toks = append(toks, Token{Kind: TokSymbol, Text: sym, Pos: i, End: i + len(sym)})
			i += len(sym)
		}
	}
	toks = append(toks, Token{Kind: TokEOF, Pos: len(src), End: len(src)})
	return toks, nil
}

func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			b.WriteByte(unescape(src[i+1]))
			i += 2
		case c == quote && i+1 < len(src) && src[i+1] == quote:
			b.WriteByte(quote)
			i += 2
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, errors.Mark(errors.Newf("unterminated string literal at position %d", start), ErrSyntax)
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return c
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
