package driver

import (
	"math"
	"strconv"
	"strings"
	"time"

	"goDBDriver/api"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// TimestampFormat is the textual form of timestamp cells.
const TimestampFormat = "2006-01-02 15:04:05.999999999"

var timestampLayouts = []string{
	TimestampFormat,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// errNotConvertible is wrapped into InvalidConversion by the getters.
var errNotConvertible = errors.New("not convertible")

func conversionError(v any, target string) error {
	return errors.Wrapf(errNotConvertible, "cannot convert %T value %v to %s", v, v, target)
}

func toString(v any, col ColumnDescriptor) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		if col.TypeName == api.TypeFloat {
			return strconv.FormatFloat(x, 'g', -1, 32), nil
		}
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case time.Time:
		return x.Format(TimestampFormat), nil
	case *apd.Decimal:
		return x.Text('f'), nil
	}
	return "", conversionError(v, "string")
}

// toBool treats every non-null value other than a numeric zero or the
// string "0" as true.
func toBool(v any, _ ColumnDescriptor) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case *apd.Decimal:
		return !x.IsZero(), nil
	case string:
		return x != "0", nil
	}
	return true, nil
}

func truncDecimal(d *apd.Decimal) (int64, error) {
	ctx := apd.BaseContext.WithPrecision(1000)
	ctx.Rounding = apd.RoundDown
	var i apd.Decimal
	if _, err := ctx.RoundToIntegralValue(&i, d); err != nil {
		return 0, err
	}
	return i.Int64()
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		t := math.Trunc(x)
		if math.IsNaN(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return 0, conversionError(v, "bigint")
		}
		return int64(t), nil
	case *apd.Decimal:
		i, err := truncDecimal(x)
		if err != nil {
			return 0, conversionError(v, "bigint")
		}
		return i, nil
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, conversionError(v, "bigint")
		}
		return toInt64(f)
	}
	return 0, conversionError(v, "bigint")
}

func toIntRange(v any, lo, hi int64, target string) (int64, error) {
	i, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if i < lo || i > hi {
		return 0, conversionError(v, target)
	}
	return i, nil
}

func toInt8(v any, _ ColumnDescriptor) (int8, error) {
	i, err := toIntRange(v, math.MinInt8, math.MaxInt8, "tinyint")
	return int8(i), err
}

func toInt16(v any, _ ColumnDescriptor) (int16, error) {
	i, err := toIntRange(v, math.MinInt16, math.MaxInt16, "smallint")
	return int16(i), err
}

func toInt32(v any, _ ColumnDescriptor) (int32, error) {
	i, err := toIntRange(v, math.MinInt32, math.MaxInt32, "int")
	return int32(i), err
}

func toInt64Col(v any, _ ColumnDescriptor) (int64, error) {
	return toInt64(v)
}

func toFloat64(v any, _ ColumnDescriptor) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case *apd.Decimal:
		f, err := x.Float64()
		if err != nil {
			return 0, conversionError(v, "double")
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, conversionError(v, "double")
		}
		return f, nil
	}
	return 0, conversionError(v, "double")
}

func toFloat32(v any, col ColumnDescriptor) (float32, error) {
	f, err := toFloat64(v, col)
	if err != nil {
		return 0, err
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, conversionError(v, "float")
	}
	return float32(f), nil
}

func toTime(v any, _ ColumnDescriptor) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, conversionError(v, "timestamp")
}

func toDecimal(v any, _ ColumnDescriptor) (*apd.Decimal, error) {
	switch x := v.(type) {
	case *apd.Decimal:
		out := new(apd.Decimal)
		out.Set(x)
		return out, nil
	case int64:
		return apd.New(x, 0), nil
	case float64:
		out := new(apd.Decimal)
		if _, err := out.SetFloat64(x); err != nil {
			return nil, conversionError(v, "decimal")
		}
		return out, nil
	case string:
		out, _, err := apd.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, conversionError(v, "decimal")
		}
		return out, nil
	}
	return nil, conversionError(v, "decimal")
}

func toObject(v any, _ ColumnDescriptor) (any, error) {
	return v, nil
}
