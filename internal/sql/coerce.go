package sql

import (
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// ErrSyntax marks errors caused by malformed or unresolvable statements.
var ErrSyntax = errors.New("syntax error")

// ErrTypeMismatch marks values that cannot be converted to a column type.
var ErrTypeMismatch = errors.New("type mismatch")

var intRanges = map[DataType][2]int64{
	TypeTinyInt:  {math.MinInt8, math.MaxInt8},
	TypeSmallInt: {math.MinInt16, math.MaxInt16},
	TypeInt:      {math.MinInt32, math.MaxInt32},
	TypeBigInt:   {math.MinInt64, math.MaxInt64},
}

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseTimestamp accepts the textual timestamp forms used in literals.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Mark(errors.Newf("invalid timestamp %q", s), ErrTypeMismatch)
}

// Coerce converts v into a value of type to, as needed when storing a literal
// into a column.
func Coerce(v Value, to DataType) (Value, error) {
	if v.IsNull() || v.Type == to && to != TypeFloat {
		return v, nil
	}

	mismatch := func() (Value, error) {
		return Null, errors.Mark(errors.Newf("cannot convert %s value %s to %s", v.Type, v, to), ErrTypeMismatch)
	}

	switch {
	case to.IsInteger():
		if !v.Type.IsInteger() {
			return mismatch()
		}
		r := intRanges[to]
		if v.I64 < r[0] || v.I64 > r[1] {
			return Null, errors.Mark(errors.Newf("value %d out of range for %s", v.I64, to), ErrTypeMismatch)
		}
		return Value{Type: to, I64: v.I64}, nil

	case to == TypeFloat || to == TypeDouble:
		var f float64
		switch {
		case v.Type.IsInteger():
			f = float64(v.I64)
		case v.Type == TypeFloat || v.Type == TypeDouble:
			f = v.F64
		case v.Type == TypeDecimal:
			var err error
			if f, err = v.D.Float64(); err != nil {
				return mismatch()
			}
		default:
			return mismatch()
		}
		if to == TypeFloat {
			f = float64(float32(f))
		}
		return Value{Type: to, F64: f}, nil

	case to == TypeDecimal:
		d := new(apd.Decimal)
		switch {
		case v.Type.IsInteger():
			d.SetInt64(v.I64)
		case v.Type == TypeFloat || v.Type == TypeDouble:
			if _, err := d.SetFloat64(v.F64); err != nil {
				return mismatch()
			}
		case v.Type == TypeString:
			if _, _, err := d.SetString(strings.TrimSpace(v.S)); err != nil {
				return mismatch()
			}
		default:
			return mismatch()
		}
		return Value{Type: TypeDecimal, D: d}, nil

	case to == TypeString:
		return Value{Type: TypeString, S: v.String()}, nil

	case to == TypeTimestamp:
		if v.Type != TypeString {
			return mismatch()
		}
		t, err := ParseTimestamp(v.S)
		if err != nil {
			return Null, err
		}
		return Value{Type: TypeTimestamp, T: t}, nil
	}

	return mismatch()
}

func typeClass(t DataType) int {
	switch {
	case t.IsNumeric():
		return 1
	case t == TypeString, t == TypeTimestamp:
		return 2
	case t == TypeBool:
		return 3
	}
	return 0
}

// Comparable reports whether values of the two types can be compared.
// NULL compares with everything (and never matches).
func Comparable(a, b DataType) bool {
	if a == TypeNull || b == TypeNull {
		return true
	}
	return typeClass(a) == typeClass(b)
}

// Compare orders two non-NULL values. It returns -1, 0 or 1.
func Compare(a, b Value) (int, error) {
	if a.IsNull() || b.IsNull() {
		return 0, errors.AssertionFailedf("compare with NULL")
	}
	if !Comparable(a.Type, b.Type) {
		return 0, errors.Mark(errors.Newf("cannot compare %s with %s", a.Type, b.Type), ErrTypeMismatch)
	}

	switch {
	case a.Type.IsNumeric():
		return compareNumeric(a, b)
	case a.Type == TypeBool:
		switch {
		case a.B == b.B:
			return 0, nil
		case !a.B:
			return -1, nil
		}
		return 1, nil
	case a.Type == TypeTimestamp || b.Type == TypeTimestamp:
		ta, err := asTime(a)
		if err != nil {
			return 0, err
		}
		tb, err := asTime(b)
		if err != nil {
			return 0, err
		}
		return ta.Compare(tb), nil
	}
	return strings.Compare(a.S, b.S), nil
}

func asTime(v Value) (time.Time, error) {
	if v.Type == TypeTimestamp {
		return v.T, nil
	}
	return ParseTimestamp(v.S)
}

func compareNumeric(a, b Value) (int, error) {
	if a.Type == TypeDecimal || b.Type == TypeDecimal {
		da, err := Coerce(a, TypeDecimal)
		if err != nil {
			return 0, err
		}
		db, err := Coerce(b, TypeDecimal)
		if err != nil {
			return 0, err
		}
		return da.D.Cmp(db.D), nil
	}
	if a.Type.IsInteger() && b.Type.IsInteger() {
		switch {
		case a.I64 < b.I64:
			return -1, nil
		case a.I64 > b.I64:
			return 1, nil
		}
		return 0, nil
	}
	fa, fb := a.F64, b.F64
	if a.Type.IsInteger() {
		fa = float64(a.I64)
	}
	if b.Type.IsInteger() {
		fb = float64(b.I64)
	}
	switch {
	case fa < fb:
		return -1, nil
	case fa > fb:
		return 1, nil
	}
	return 0, nil
}
