package driver

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	sqlparse "goDBDriver/internal/sql"

	"github.com/cockroachdb/apd/v3"
)

// slotKind is the value class a placeholder expects, inferred from the
// literal it is compared with.
type slotKind int

const (
	slotAny slotKind = iota
	slotNumeric
	slotString
	slotBool
)

func (k slotKind) String() string {
	switch k {
	case slotNumeric:
		return "numeric"
	case slotString:
		return "string"
	case slotBool:
		return "boolean"
	}
	return "any"
}

type placeholder struct {
	pos, end int
	slot     slotKind
}

type bindKind int

const (
	bindNull bindKind = iota
	bindNumeric
	bindString
	bindBool
	bindTime
)

func (k bindKind) String() string {
	switch k {
	case bindNumeric:
		return "numeric"
	case bindString:
		return "string"
	case bindBool:
		return "boolean"
	case bindTime:
		return "timestamp"
	}
	return "null"
}

type binding struct {
	kind    bindKind
	literal string
}

func (b binding) fits(slot slotKind) bool {
	if b.kind == bindNull || slot == slotAny {
		return true
	}
	switch slot {
	case slotNumeric:
		return b.kind == bindNumeric
	case slotString:
		return b.kind == bindString || b.kind == bindTime
	case slotBool:
		return b.kind == bindBool
	}
	return false
}

var comparisonSymbols = []string{"=", "<>", "!=", "<", "<=", ">", ">="}

func isComparison(t sqlparse.Token) bool {
	if t.Kind != sqlparse.TokSymbol {
		return false
	}
	for _, op := range comparisonSymbols {
		if t.Text == op {
			return true
		}
	}
	return false
}

func literalSlot(t sqlparse.Token) slotKind {
	switch {
	case t.Kind == sqlparse.TokNumber:
		return slotNumeric
	case t.Kind == sqlparse.TokString:
		return slotString
	case t.Is("TRUE"), t.Is("FALSE"):
		return slotBool
	}
	return slotAny
}

// findPlaceholders returns the '?' markers of a template, ignoring those
// inside string literals and comments.
func findPlaceholders(query string) ([]placeholder, error) {
	toks, err := sqlparse.Lex(query)
	if err != nil {
		return nil, wrapError(SyntaxError, err, "%v", err)
	}

	var out []placeholder
	for i, t := range toks {
		if !t.Is("?") {
			continue
		}
		p := placeholder{pos: t.Pos, end: t.End}
		if i >= 2 && isComparison(toks[i-1]) {
			p.slot = literalSlot(toks[i-2])
		}
		if p.slot == slotAny && i+2 < len(toks) && isComparison(toks[i+1]) {
			p.slot = literalSlot(toks[i+2])
		}
		out = append(out, p)
	}
	return out, nil
}

// PreparedStatement is a statement with '?' placeholders numbered from 1.
type PreparedStatement struct {
	*Statement
	template string
	params   []placeholder

	bmu   sync.Mutex
	bound map[int]binding
}

// ParameterCount returns the number of placeholders.
func (p *PreparedStatement) ParameterCount() int {
	return len(p.params)
}

func (p *PreparedStatement) bind(i int, b binding) error {
	if p.IsClosed() {
		return errStatementClosed()
	}
	if i < 1 || i > len(p.params) {
		return newError(InvalidArgument, "Parameter index out of range: %d", i)
	}
	p.bmu.Lock()
	defer p.bmu.Unlock()
	p.bound[i] = b
	return nil
}

func quoteString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func (p *PreparedStatement) SetNull(i int) error {
	return p.bind(i, binding{kind: bindNull, literal: "NULL"})
}

func (p *PreparedStatement) SetBool(i int, v bool) error {
	return p.bind(i, binding{kind: bindBool, literal: strings.ToUpper(strconv.FormatBool(v))})
}

func (p *PreparedStatement) SetInt64(i int, v int64) error {
	return p.bind(i, binding{kind: bindNumeric, literal: strconv.FormatInt(v, 10)})
}

func (p *PreparedStatement) SetInt(i int, v int) error     { return p.SetInt64(i, int64(v)) }
func (p *PreparedStatement) SetInt8(i int, v int8) error   { return p.SetInt64(i, int64(v)) }
func (p *PreparedStatement) SetInt16(i int, v int16) error { return p.SetInt64(i, int64(v)) }
func (p *PreparedStatement) SetInt32(i int, v int32) error { return p.SetInt64(i, int64(v)) }

func (p *PreparedStatement) SetFloat64(i int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return newError(InvalidArgument, "Cannot bind non-finite value %v", v)
	}
	lit := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(lit, ".eE") {
		lit += ".0"
	}
	return p.bind(i, binding{kind: bindNumeric, literal: lit})
}

func (p *PreparedStatement) SetFloat32(i int, v float32) error {
	return p.SetFloat64(i, float64(v))
}

func (p *PreparedStatement) SetString(i int, v string) error {
	return p.bind(i, binding{kind: bindString, literal: quoteString(v)})
}

func (p *PreparedStatement) SetTime(i int, v time.Time) error {
	return p.bind(i, binding{kind: bindTime, literal: quoteString(v.Format(TimestampFormat))})
}

func (p *PreparedStatement) SetDecimal(i int, v *apd.Decimal) error {
	if v == nil {
		return p.SetNull(i)
	}
	return p.bind(i, binding{kind: bindNumeric, literal: v.Text('f') + "BD"})
}

// SetObject binds a Go value of any supported type.
func (p *PreparedStatement) SetObject(i int, v any) error {
	switch x := v.(type) {
	case nil:
		return p.SetNull(i)
	case bool:
		return p.SetBool(i, x)
	case int:
		return p.SetInt64(i, int64(x))
	case int8:
		return p.SetInt64(i, int64(x))
	case int16:
		return p.SetInt64(i, int64(x))
	case int32:
		return p.SetInt64(i, int64(x))
	case int64:
		return p.SetInt64(i, x)
	case uint8:
		return p.SetInt64(i, int64(x))
	case uint16:
		return p.SetInt64(i, int64(x))
	case uint32:
		return p.SetInt64(i, int64(x))
	case float32:
		return p.SetFloat32(i, x)
	case float64:
		return p.SetFloat64(i, x)
	case string:
		return p.SetString(i, x)
	case []byte:
		return p.SetString(i, string(x))
	case time.Time:
		return p.SetTime(i, x)
	case *apd.Decimal:
		return p.SetDecimal(i, x)
	}
	return newError(InvalidArgument, "Unsupported parameter type %T", v)
}

// ClearParameters drops every binding.
func (p *PreparedStatement) ClearParameters() {
	p.bmu.Lock()
	defer p.bmu.Unlock()
	p.bound = map[int]binding{}
}

// render substitutes the bound literals into the template.
func (p *PreparedStatement) render() (string, error) {
	p.bmu.Lock()
	defer p.bmu.Unlock()

	var b strings.Builder
	last := 0
	for i, ph := range p.params {
		bv, ok := p.bound[i+1]
		if !ok {
			return "", newError(ParametersNotBound, "Parameter #%d is unset", i+1)
		}
		if !bv.fits(ph.slot) {
			return "", newError(ParametersNotBound, "Parameter #%d expects a %s value, got %s", i+1, ph.slot, bv.kind)
		}
		b.WriteString(p.template[last:ph.pos])
		b.WriteString(bv.literal)
		last = ph.end
	}
	b.WriteString(p.template[last:])
	return b.String(), nil
}

// Execute runs the template with the current bindings.
func (p *PreparedStatement) Execute(ctx context.Context) (bool, error) {
	if p.IsClosed() {
		return false, errStatementClosed()
	}
	query, err := p.render()
	if err != nil {
		return false, err
	}
	return p.Statement.Execute(ctx, query)
}

// ExecuteQuery runs the template and returns its cursor.
func (p *PreparedStatement) ExecuteQuery(ctx context.Context) (*ResultSet, error) {
	if p.IsClosed() {
		return nil, errStatementClosed()
	}
	query, err := p.render()
	if err != nil {
		return nil, err
	}
	return p.Statement.ExecuteQuery(ctx, query)
}

// ExecuteUpdate runs the template and returns the affected-row count.
func (p *PreparedStatement) ExecuteUpdate(ctx context.Context) (int64, error) {
	if p.IsClosed() {
		return 0, errStatementClosed()
	}
	query, err := p.render()
	if err != nil {
		return 0, err
	}
	return p.Statement.ExecuteUpdate(ctx, query)
}
