package query

import (
	"strings"
	"time"
)

// Op is the comparison a Criterion performs
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGTE
	OpLTE
	// OpNever marks a filter that cannot match, such as an unknown field
	// or an unparsable range bound
	OpNever
)

// Criterion is one decoded filter condition. Range bounds are resolved to
// time.Time (date ranges, date-only upper bounds moved to the end of the
// day) or float64 (numeric ranges).
type Criterion struct {
	Field  string
	Op     Op
	Value  any
	Values []any
}

// Criteria decodes the filters of q with the same rules Filter applies
// in memory, so stores that evaluate queries natively (SQL) agree with it.
// known reports whether a field exists on the entity.
func (q Query) Criteria(known func(field string) bool) []Criterion {
	var out []Criterion
	for key, want := range q.Filters {
		if key == SearchKey || isEmpty(want) {
			continue
		}
		out = append(out, decode(key, want, known))
	}
	return out
}

func decode(key string, want any, known func(string) bool) Criterion {
	if known(key) {
		if list, ok := asList(want); ok {
			if len(list) == 0 {
				return Criterion{Field: key, Op: OpIn}
			}
			values := make([]any, len(list))
			for i, v := range list {
				values[i] = plain(v)
			}
			return Criterion{Field: key, Op: OpIn, Values: values}
		}
		return Criterion{Field: key, Op: OpEq, Value: plain(want)}
	}

	if field, ok := strings.CutSuffix(key, "From"); ok && field != "" && known(field) {
		if t, ok := toTime(want); ok {
			return Criterion{Field: field, Op: OpGTE, Value: t}
		}
		return Criterion{Field: field, Op: OpNever}
	}
	if field, ok := strings.CutSuffix(key, "To"); ok && field != "" && known(field) {
		if t, ok := toTime(want); ok {
			if isDateOnly(want) {
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			return Criterion{Field: field, Op: OpLTE, Value: t}
		}
		return Criterion{Field: field, Op: OpNever}
	}
	for prefix, op := range map[string]Op{"min": OpGTE, "max": OpLTE} {
		if field, ok := rangeField(key, prefix); ok && known(field) {
			if f, ok := toFloat(want); ok {
				return Criterion{Field: field, Op: op, Value: f}
			}
			return Criterion{Field: field, Op: OpNever}
		}
	}
	return Criterion{Field: key, Op: OpNever}
}

// plain converts a filter value into a driver-friendly scalar
func plain(v any) any {
	switch n := normalize(v).(type) {
	case nil, string, float64, bool, time.Time:
		return n
	default:
		return toString(n)
	}
}
