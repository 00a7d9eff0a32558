package api

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// EncodeCell renders a cell for JSON transport. Non-finite floats travel as
// strings since JSON numbers cannot hold them.
func EncodeCell(v any) any {
	switch c := v.(type) {
	case float64:
		switch {
		case math.IsNaN(c):
			return "NaN"
		case math.IsInf(c, 1):
			return "Infinity"
		case math.IsInf(c, -1):
			return "-Infinity"
		}
	case time.Time:
		return c.Format(time.RFC3339Nano)
	case *apd.Decimal:
		return c.Text('f')
	}
	return v
}

// EncodeRow applies EncodeCell to every cell of a row.
func EncodeRow(r Row) Row {
	out := make(Row, len(r))
	for i, v := range r {
		out[i] = EncodeCell(v)
	}
	return out
}

// DecodeCell parses a JSON cell of the given column type.
func DecodeCell(typ string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	switch typ {
	case TypeTinyInt, TypeSmallInt, TypeInt, TypeBigInt:
		return strconv.ParseInt(string(raw), 10, 64)

	case TypeFloat, TypeDouble:
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return strconv.ParseFloat(s, 64)
		}
		return strconv.ParseFloat(string(raw), 64)

	case TypeBoolean:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err

	case TypeTimestamp:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return time.Parse(time.RFC3339Nano, s)

	case TypeDecimal:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		d, _, err := apd.NewFromString(s)
		return d, err

	case TypeString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	return nil, errors.Newf("cannot decode cell of type %q", typ)
}

// DecodeRow decodes a JSON row against its schema.
func DecodeRow(schema []Column, raw []json.RawMessage) (Row, error) {
	if len(raw) != len(schema) {
		return nil, errors.Newf("row has %d cells, schema has %d columns", len(raw), len(schema))
	}
	out := make(Row, len(raw))
	for i, cell := range raw {
		v, err := DecodeCell(schema[i].Type, cell)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s", schema[i].Name)
		}
		out[i] = v
	}
	return out, nil
}
