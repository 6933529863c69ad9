package gonest

import (
	"context"
	"time"

	"github.com/spf13/cast"
)

// String returns the scalar string attribute type.
func String() Type { return stringType{} }

// Int returns the scalar integer attribute type. Values are held as int64.
func Int() Type { return intType{} }

// Float returns the scalar float attribute type. Values are held as float64.
func Float() Type { return floatType{} }

// Bool returns the scalar boolean attribute type.
func Bool() Type { return boolType{} }

// Time returns the timestamp attribute type. The wire form is an RFC3339
// string; values are held as time.Time.
func Time() Type { return timeType{} }

type stringType struct{}

func (stringType) Cast(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, typeMismatch("/", "expected string-coercible value")
	}
	return s, nil
}

func (stringType) Dump(ctx context.Context, v any) (any, error) { return v, nil }

type intType struct{}

func (intType) Cast(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil, typeMismatch("/", "expected integer-coercible value")
	}
	return n, nil
}

func (intType) Dump(ctx context.Context, v any) (any, error) { return v, nil }

type floatType struct{}

func (floatType) Cast(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, typeMismatch("/", "expected float-coercible value")
	}
	return f, nil
}

func (floatType) Dump(ctx context.Context, v any) (any, error) { return v, nil }

type boolType struct{}

func (boolType) Cast(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, typeMismatch("/", "expected bool-coercible value")
	}
	return b, nil
}

func (boolType) Dump(ctx context.Context, v any) (any, error) { return v, nil }

type timeType struct{}

func (timeType) Cast(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t, nil
	case string:
		return parseRFC3339(t)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, typeMismatch("/", "expected RFC3339 string or time.Time")
		}
		return parseRFC3339(s)
	}
}

func (timeType) Dump(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := v.(time.Time)
	if !ok {
		return nil, typeMismatch("/", "expected time.Time")
	}
	return formatRFC3339Canonical(t), nil
}

func parseRFC3339(s string) (any, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return nil, typeMismatch("/", "invalid RFC3339 time")
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
