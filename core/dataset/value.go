package dataset

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"datadiff/core/utils"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
)

// String returns the lowercase kind name used in logs and reports.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// TimestampLayout is the layout used to render timestamps.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// NullText is the rendered form of a null value.
const NullText = "NULL"

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Integer wraps an int64.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Float wraps a float64.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Boolean wraps a bool.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Timestamp wraps a time.Time.
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int returns the integer payload and whether v is an integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInteger }

// Float returns the float payload and whether v is a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Bool returns the boolean payload and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBoolean }

// Time returns the timestamp payload and whether v is a timestamp.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindTimestamp }

// Numeric returns v as float64 for integer and float values.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Render returns the string form used for keys and reports.
func (v Value) Render() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return renderFloat(v.f)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindTimestamp:
		return v.t.UTC().Format(TimestampLayout)
	default:
		return NullText
	}
}

// Equal reports direct equality between two values.
// Integers and floats compare numerically; other mixed kinds compare rendered text.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return v.kind == o.kind
	}
	if v.kind == o.kind {
		switch v.kind {
		case KindString:
			return v.s == o.s
		case KindInteger:
			return v.i == o.i
		case KindFloat:
			return v.f == o.f
		case KindBoolean:
			return v.b == o.b
		case KindTimestamp:
			return v.t.Equal(o.t)
		}
	}
	if a, ok := v.Numeric(); ok {
		if b, ok := o.Numeric(); ok {
			return a == b
		}
	}
	return v.Render() == o.Render()
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	if v.kind == KindNull {
		return "dataset.Null()"
	}
	return fmt.Sprintf("dataset.%s(%q)", v.kind, v.Render())
}

func renderFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// FromAny converts a loader-provided Go value into a Value.
// Unsupported types fail with a TypeCoercionError.
func FromAny(val any) (Value, error) {
	switch v := val.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case string:
		return String(v), nil
	case []byte:
		return String(utils.ToString(v)), nil
	case bool:
		return Boolean(v), nil
	case time.Time:
		return Timestamp(v), nil
	case *time.Time:
		if v == nil {
			return Null(), nil
		}
		return Timestamp(*v), nil
	case *string:
		if v == nil {
			return Null(), nil
		}
		return String(*v), nil
	case driver.Valuer:
		inner, err := v.Value()
		if err != nil {
			return Value{}, &TypeCoercionError{GoType: fmt.Sprintf("%T", val), Err: err}
		}
		if _, again := inner.(driver.Valuer); again {
			return Value{}, &TypeCoercionError{GoType: fmt.Sprintf("%T", val)}
		}
		return FromAny(inner)
	}

	if i, ok := utils.ToInt64(val); ok {
		return Integer(i), nil
	}
	if f, ok := utils.ToFloat64(val); ok {
		return Float(f), nil
	}
	return Value{}, &TypeCoercionError{GoType: fmt.Sprintf("%T", val)}
}
