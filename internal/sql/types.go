package sql

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// DataType represents the logical type of a value in a column.
type DataType int

const (
	TypeNull DataType = iota
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDouble
	TypeString
	TypeBool
	TypeTimestamp
	TypeDecimal
)

// TimestampLayout is the textual form of timestamp values.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

var typeNames = map[DataType]string{
	TypeNull:      "void",
	TypeTinyInt:   "tinyint",
	TypeSmallInt:  "smallint",
	TypeInt:       "int",
	TypeBigInt:    "bigint",
	TypeFloat:     "float",
	TypeDouble:    "double",
	TypeString:    "string",
	TypeBool:      "boolean",
	TypeTimestamp: "timestamp",
	TypeDecimal:   "decimal",
}

// String returns the lowercase type name used in DDL and schemas.
func (t DataType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// IsInteger reports whether t is one of the integral types.
func (t DataType) IsInteger() bool {
	return t >= TypeTinyInt && t <= TypeBigInt
}

// IsNumeric reports whether t holds numbers.
func (t DataType) IsNumeric() bool {
	return t.IsInteger() || t == TypeFloat || t == TypeDouble || t == TypeDecimal
}

// ParseDataType maps a type name from DDL to a DataType.
func ParseDataType(name string) (DataType, error) {
	switch strings.ToUpper(name) {
	case "TINYINT":
		return TypeTinyInt, nil
	case "SMALLINT":
		return TypeSmallInt, nil
	case "INT", "INTEGER":
		return TypeInt, nil
	case "BIGINT":
		return TypeBigInt, nil
	case "FLOAT":
		return TypeFloat, nil
	case "DOUBLE":
		return TypeDouble, nil
	case "STRING", "VARCHAR", "TEXT":
		return TypeString, nil
	case "BOOL", "BOOLEAN":
		return TypeBool, nil
	case "TIMESTAMP":
		return TypeTimestamp, nil
	case "DECIMAL":
		return TypeDecimal, nil
	}
	return TypeNull, errors.Mark(errors.Newf("unknown column type %q", name), ErrSyntax)
}

// Value represents a single cell in a table (one column in one row).
// Only the field matching Type should be read; other fields remain at their
// zero values.
type Value struct {
	Type DataType

	I64 int64        // for the integer types
	F64 float64      // for TypeFloat and TypeDouble
	S   string       // for TypeString
	B   bool         // for TypeBool
	T   time.Time    // for TypeTimestamp
	D   *apd.Decimal // for TypeDecimal
}

// Null is the NULL value.
var Null = Value{Type: TypeNull}

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.Type == TypeNull }

// Native returns the Go representation of v: nil, int64, float64, string,
// bool, time.Time or *apd.Decimal.
func (v Value) Native() any {
	switch v.Type {
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		return v.I64
	case TypeFloat, TypeDouble:
		return v.F64
	case TypeString:
		return v.S
	case TypeBool:
		return v.B
	case TypeTimestamp:
		return v.T
	case TypeDecimal:
		return v.D
	}
	return nil
}

// String renders v the way query results print it.
func (v Value) String() string {
	switch v.Type {
	case TypeNull:
		return "NULL"
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		return strconv.FormatInt(v.I64, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 32)
	case TypeDouble:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case TypeString:
		return v.S
	case TypeBool:
		return strconv.FormatBool(v.B)
	case TypeTimestamp:
		return v.T.Format(TimestampLayout)
	case TypeDecimal:
		return v.D.Text('f')
	}
	return "?"
}

// Row represents one record in a table: a slice of Values, one per column.
type Row []Value

// Column describes metadata for a single column in a table.
type Column struct {
	Name    string
	Type    DataType
	Comment string
}
