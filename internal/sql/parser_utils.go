package sql

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// parseLiteral parses a single literal into a Value.
// Supports:
//   - integers:  1, 42, -7 (int unless out of range, then bigint)
//   - suffixed:  1Y tinyint, 1S smallint, 1L bigint, 1.5BD decimal
//   - floats:    3.14, 1e3 (double)
//   - strings:   'Alice' or "Alice"
//   - booleans:  true / false (case-insensitive)
//   - NULL
func (p *parser) parseLiteral() (Value, error) {
	t := p.peek()
	switch {
	case t.Kind == TokString:
		p.next()
		return Value{Type: TypeString, S: t.Text}, nil
	case t.Is("TRUE"):
		p.next()
		return Value{Type: TypeBool, B: true}, nil
	case t.Is("FALSE"):
		p.next()
		return Value{Type: TypeBool, B: false}, nil
	case t.Is("NULL"):
		p.next()
		return Null, nil
	case t.Is("-") && p.peekAt(1).Kind == TokNumber:
		p.next()
		num := p.next()
		return p.numberLiteral("-" + num.Text)
	case t.Kind == TokNumber:
		p.next()
		return p.numberLiteral(t.Text)
	}
	return Value{}, p.unexpected()
}

func (p *parser) isLiteralStart() bool {
	t := p.peek()
	return t.Kind == TokString || t.Kind == TokNumber || t.Is("TRUE") || t.Is("FALSE") ||
		t.Is("NULL") || t.Is("-") && p.peekAt(1).Kind == TokNumber
}

func (p *parser) numberLiteral(text string) (Value, error) {
	upper := strings.ToUpper(text)

	suffixed := func(suffix string, typ DataType) (Value, bool, error) {
		if !strings.HasSuffix(upper, suffix) {
			return Value{}, false, nil
		}
		i, err := strconv.ParseInt(upper[:len(upper)-len(suffix)], 10, 64)
		if err != nil {
			return Value{}, true, p.errorf("invalid numeric literal %q", text)
		}
		v, err := Coerce(Value{Type: TypeBigInt, I64: i}, typ)
		if err != nil {
			return Value{}, true, errors.Mark(err, ErrSyntax)
		}
		return v, true, nil
	}

	if strings.HasSuffix(upper, "BD") {
		d, _, err := apd.NewFromString(upper[:len(upper)-2])
		if err != nil {
			return Value{}, p.errorf("invalid decimal literal %q", text)
		}
		return Value{Type: TypeDecimal, D: d}, nil
	}
	for _, s := range []struct {
		suffix string
		typ    DataType
	}{{"Y", TypeTinyInt}, {"S", TypeSmallInt}, {"L", TypeBigInt}} {
		if v, ok, err := suffixed(s.suffix, s.typ); ok {
			return v, err
		}
	}

	if i, err := strconv.ParseInt(upper, 10, 64); err == nil {
		if v, err := Coerce(Value{Type: TypeBigInt, I64: i}, TypeInt); err == nil {
			return v, nil
		}
		return Value{Type: TypeBigInt, I64: i}, nil
	}
	if f, err := strconv.ParseFloat(upper, 64); err == nil {
		return Value{Type: TypeDouble, F64: f}, nil
	}
	return Value{}, p.errorf("cannot parse literal %q", text)
}

// parseOperand reads a column reference or a literal.
func (p *parser) parseOperand() (Operand, error) {
	if p.isLiteralStart() {
		v, err := p.parseLiteral()
		if err != nil {
			return Operand{}, err
		}
		return Operand{Literal: v}, nil
	}
	name, err := p.ident()
	if err != nil {
		return Operand{}, err
	}
	return Operand{Column: name}, nil
}

var comparisonOps = map[string]string{
	"=": "=", "<>": "<>", "!=": "<>", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
}

// parseWhereClause parses: operand op operand [AND operand op operand ...]
func (p *parser) parseWhereClause() (*WhereExpr, error) {
	where := &WhereExpr{}
	for {
		left, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		opTok := p.peek()
		op, ok := comparisonOps[opTok.Text]
		if opTok.Kind != TokSymbol || !ok {
			return nil, p.unexpected()
		}
		p.next()
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		where.Terms = append(where.Terms, Comparison{Left: left, Op: op, Right: right})

		if !p.accept("AND") {
			return where, nil
		}
	}
}

// parseNameList parses "(a, b, c)".
func (p *parser) parseNameList() ([]string, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.accept(")") {
			return names, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// parseComment parses an optional COMMENT 'text'.
func (p *parser) parseComment() (string, error) {
	if !p.accept("COMMENT") {
		return "", nil
	}
	t := p.peek()
	if t.Kind != TokString {
		return "", p.unexpected()
	}
	p.next()
	return t.Text, nil
}
