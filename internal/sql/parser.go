package sql

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Parse parses a single SQL statement string into an AST Statement.
//
// Supported: CREATE [EXTERNAL] TABLE, CREATE VIEW, DROP TABLE|VIEW, INSERT,
// SELECT, UPDATE, DELETE, SHOW TABLES, DESCRIBE and EXPLAIN.
func Parse(query string) (Statement, error) {
	toks, err := Lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{src: query, toks: toks}

	if p.peek().Kind == TokEOF {
		return nil, p.errorf("empty query")
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	// Optional trailing semicolon, then nothing else.
	p.accept(";")
	if p.peek().Kind != TokEOF {
		return nil, p.unexpected()
	}
	return stmt, nil
}

type parser struct {
	src  string
	toks []Token
	pos  int
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.peek()
	switch {
	case t.Is("CREATE"):
		return p.parseCreate()
	case t.Is("DROP"):
		return p.parseDrop()
	case t.Is("INSERT"):
		return p.parseInsert()
	case t.Is("SELECT"):
		return p.parseSelect()
	case t.Is("UPDATE"):
		return p.parseUpdate()
	case t.Is("DELETE"):
		return p.parseDelete()
	case t.Is("SHOW"):
		return p.parseShow()
	case t.Is("DESCRIBE") || t.Is("DESC"):
		return p.parseDescribe()
	case t.Is("EXPLAIN"):
		p.next()
		target, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &ExplainStmt{Target: target}, nil
	}
	return nil, p.unexpected()
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Kind != TokEOF {
		p.pos++
	}
	return t
}

// accept consumes the next token if it matches text.
func (p *parser) accept(text string) bool {
	if p.peek().Is(text) {
		p.next()
		return true
	}
	return false
}

// expect consumes a keyword or symbol sequence or fails.
func (p *parser) expect(words ...string) error {
	for _, w := range words {
		if !p.accept(w) {
			return p.unexpected()
		}
	}
	return nil
}

func (p *parser) ident() (string, error) {
	t := p.peek()
	if t.Kind != TokIdent || isReserved(t.Text) {
		return "", p.unexpected()
	}
	p.next()
	return t.Text, nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrSyntax)
}

// unexpected reports the input near the current position.
func (p *parser) unexpected() error {
	near := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		t := p.peekAt(i)
		near = append(near, t.quoted())
		if t.Kind == TokEOF {
			break
		}
	}
	return p.errorf("line 1:%d cannot recognize input near %s", p.peek().Pos, strings.Join(near, " "))
}

var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "ORDER": true,
	"BY": true, "LIMIT": true, "AS": true, "VALUES": true, "SET": true,
	"INTO": true, "TABLE": true, "VIEW": true, "CREATE": true, "DROP": true,
	"INSERT": true, "UPDATE": true, "DELETE": true, "NULL": true,
	"TRUE": true, "FALSE": true, "NOT": true, "EXISTS": true, "IF": true,
}

func isReserved(word string) bool {
	return reserved[strings.ToUpper(word)]
}
