package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// normalize reduces a field or filter value to one of
// nil, string, float64, decimal.Decimal, time.Time, bool or []any.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		return *t
	case decimal.Decimal:
		return t
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		return *t
	case uuid.UUID:
		if t == uuid.Nil {
			return nil
		}
		return t.String()
	case *uuid.UUID:
		if t == nil || *t == uuid.Nil {
			return nil
		}
		return t.String()
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return fmt.Sprint(v)
}

// asList reports whether v is a list value and returns its normalized items
func asList(v any) ([]any, bool) {
	if _, ok := v.(string); ok {
		return nil, false
	}
	if _, ok := v.(uuid.UUID); ok {
		return nil, false
	}
	list, ok := normalize(v).([]any)
	return list, ok
}

// isEmpty reports filter values that impose no constraint
func isEmpty(v any) bool {
	switch n := normalize(v).(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(n) == ""
	}
	return false
}

func toString(v any) string {
	switch n := normalize(v).(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case decimal.Decimal:
		return n.String()
	case time.Time:
		return n.Format(time.RFC3339)
	default:
		return fmt.Sprint(n)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := normalize(v).(type) {
	case float64:
		return n, true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch n := normalize(v).(type) {
	case time.Time:
		return n, true
	case string:
		return parseTime(n)
	}
	return time.Time{}, false
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isDateOnly reports whether a filter bound names a whole day
func isDateOnly(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

// equalValues compares a record value with a filter value. Numbers,
// dates and booleans are compared by value; strings case-insensitively.
func equalValues(record, filter any) bool {
	r := normalize(record)
	if r == nil {
		return false
	}
	switch rv := r.(type) {
	case float64, decimal.Decimal:
		rf, _ := toFloat(rv)
		ff, ok := toFloat(filter)
		return ok && rf == ff
	case time.Time:
		ft, ok := toTime(filter)
		return ok && rv.Equal(ft)
	case bool:
		switch fv := normalize(filter).(type) {
		case bool:
			return rv == fv
		case string:
			b, err := strconv.ParseBool(fv)
			return err == nil && b == rv
		}
		return false
	}
	return strings.EqualFold(toString(r), toString(filter))
}

// compareValues orders two non-nil normalized values. Strings are
// expected to be case-folded by the caller.
func compareValues(a, b any) int {
	if af, ok := numeric(a); ok {
		if bf, ok := numeric(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(toString(a), toString(b))
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}
	return 0, false
}
