package engine

import (
	"strings"

	"goDBDriver/internal/sql"

	"github.com/cockroachdb/errors"
)

// operand is a resolved comparison side: a column index or a constant.
type operand struct {
	idx   int // -1 for constants
	value sql.Value
	typ   sql.DataType
}

func (o operand) eval(row sql.Row) sql.Value {
	if o.idx < 0 {
		return o.value
	}
	return row[o.idx]
}

type predicate struct {
	left, right operand
	op          string
	text        string
}

// filter is a conjunction of predicates. A nil filter matches every row.
type filter []predicate

func resolveOperand(cols []sql.Column, o sql.Operand) (operand, error) {
	if !o.IsColumn() {
		return operand{idx: -1, value: o.Literal, typ: o.Literal.Type}, nil
	}
	idx, err := columnIndex(cols, o.Column)
	if err != nil {
		return operand{}, err
	}
	return operand{idx: idx, typ: cols[idx].Type}, nil
}

// compileWhere resolves column references of a WHERE clause against cols and
// type-checks each comparison.
func compileWhere(cols []sql.Column, where *sql.WhereExpr) (filter, error) {
	if where == nil {
		return nil, nil
	}
	out := make(filter, 0, len(where.Terms))
	for _, term := range where.Terms {
		l, err := resolveOperand(cols, term.Left)
		if err != nil {
			return nil, err
		}
		r, err := resolveOperand(cols, term.Right)
		if err != nil {
			return nil, err
		}
		if !sql.Comparable(l.typ, r.typ) {
			return nil, errors.Mark(
				errors.Newf("Argument type mismatch '%s': %s and %s cannot be compared", term, l.typ, r.typ),
				sql.ErrSyntax)
		}
		out = append(out, predicate{left: l, right: r, op: term.Op, text: term.String()})
	}
	return out, nil
}

// matches evaluates the filter. Comparisons involving NULL are never true.
func (f filter) matches(row sql.Row) bool {
	for _, p := range f {
		l, r := p.left.eval(row), p.right.eval(row)
		if l.IsNull() || r.IsNull() {
			return false
		}
		c, err := sql.Compare(l, r)
		if err != nil {
			return false
		}
		var ok bool
		switch p.op {
		case "=":
			ok = c == 0
		case "<>":
			ok = c != 0
		case "<":
			ok = c < 0
		case "<=":
			ok = c <= 0
		case ">":
			ok = c > 0
		case ">=":
			ok = c >= 0
		}
		if !ok {
			return false
		}
	}
	return true
}

func (f filter) String() string {
	parts := make([]string, len(f))
	for i, p := range f {
		parts[i] = p.text
	}
	return strings.Join(parts, " AND ")
}

// filterRows returns the rows matching f.
func filterRows(rows []sql.Row, f filter) []sql.Row {
	if len(f) == 0 {
		return rows
	}
	var out []sql.Row
	for _, r := range rows {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// projection produces one output column from a source row.
type projection struct {
	idx   int // -1 for constants
	value sql.Value
}

// projectRows applies the select list to every row.
func projectRows(rows []sql.Row, proj []projection) []sql.Row {
	out := make([]sql.Row, 0, len(rows))
	for _, r := range rows {
		p := make(sql.Row, len(proj))
		for i, pr := range proj {
			if pr.idx < 0 {
				p[i] = pr.value
			} else {
				p[i] = r[pr.idx]
			}
		}
		out = append(out, p)
	}
	return out
}
