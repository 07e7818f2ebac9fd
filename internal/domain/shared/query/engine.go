package query

import (
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Apply filters, sorts and paginates records. searchFields lists the
// fields the free-text term is matched against; without any the term is
// ignored.
func Apply[T Record](records []T, q Query, searchFields ...string) Page[T] {
	q = q.Normalized()
	matched := Filter(records, q, searchFields...)
	Sort(matched, q.SortBy, q.SortOrder)
	return Paginate(matched, q)
}

// Filter returns the records matching every condition of q, in input order
func Filter[T Record](records []T, q Query, searchFields ...string) []T {
	fold := cases.Fold()
	term := fold.String(q.SearchTerm())

	out := make([]T, 0, len(records))
	for _, r := range records {
		if term != "" && len(searchFields) > 0 && !matchesSearch(r, term, searchFields, fold) {
			continue
		}
		if !matchesFilters(r, q.Filters) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(r Record, term string, fields []string, fold cases.Caser) bool {
	for _, name := range fields {
		v, ok := r.Field(name)
		if !ok {
			continue
		}
		if list, ok := asList(v); ok {
			for _, item := range list {
				if strings.Contains(fold.String(toString(item)), term) {
					return true
				}
			}
			continue
		}
		if strings.Contains(fold.String(toString(v)), term) {
			return true
		}
	}
	return false
}

func matchesFilters(r Record, filters map[string]any) bool {
	for key, want := range filters {
		if key == SearchKey || isEmpty(want) {
			continue
		}
		if !matchesFilter(r, key, want) {
			return false
		}
	}
	return true
}

func matchesFilter(r Record, key string, want any) bool {
	if got, ok := r.Field(key); ok {
		return matchesValue(got, want)
	}

	if field, ok := strings.CutSuffix(key, "From"); ok && field != "" {
		if got, ok := r.Field(field); ok {
			return inDateRange(got, want, true)
		}
	}
	if field, ok := strings.CutSuffix(key, "To"); ok && field != "" {
		if got, ok := r.Field(field); ok {
			return inDateRange(got, want, false)
		}
	}
	if field, ok := rangeField(key, "min"); ok {
		if got, ok := r.Field(field); ok {
			return inNumericRange(got, want, true)
		}
	}
	if field, ok := rangeField(key, "max"); ok {
		if got, ok := r.Field(field); ok {
			return inNumericRange(got, want, false)
		}
	}

	// unknown field: an exact match against a missing value never holds
	return false
}

// matchesValue handles exact and membership matching. A list filter matches
// when the record value is one of its items, or, for list fields, when the
// two lists intersect. An empty list filter matches everything.
func matchesValue(got, want any) bool {
	gotList, gotIsList := asList(got)
	wantList, wantIsList := asList(want)

	switch {
	case wantIsList && len(wantList) == 0:
		return true
	case gotIsList && wantIsList:
		for _, g := range gotList {
			for _, w := range wantList {
				if equalValues(g, w) {
					return true
				}
			}
		}
		return false
	case gotIsList:
		for _, g := range gotList {
			if equalValues(g, want) {
				return true
			}
		}
		return false
	case wantIsList:
		for _, w := range wantList {
			if equalValues(got, w) {
				return true
			}
		}
		return false
	}
	return equalValues(got, want)
}

// inDateRange checks an inclusive lower (from) or upper bound. A date-only
// upper bound covers that whole day.
func inDateRange(got, bound any, lower bool) bool {
	t, ok := toTime(got)
	if !ok {
		return false
	}
	b, ok := toTime(bound)
	if !ok {
		return false
	}
	if lower {
		return !t.Before(b)
	}
	if isDateOnly(bound) {
		b = b.Add(24*time.Hour - time.Nanosecond)
	}
	return !t.After(b)
}

func inNumericRange(got, bound any, lower bool) bool {
	v, ok := toFloat(got)
	if !ok {
		return false
	}
	b, ok := toFloat(bound)
	if !ok {
		return false
	}
	if lower {
		return v >= b
	}
	return v <= b
}

// rangeField maps minValue -> value, maxScore -> score
func rangeField(key, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || rest == "" {
		return "", false
	}
	first, size := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(first) {
		return "", false
	}
	return string(unicode.ToLower(first)) + rest[size:], true
}

// Sort orders records in place by field. Missing and null values go last
// in both directions; ties keep their input order.
func Sort[T Record](records []T, field string, order SortOrder) {
	if field == "" || len(records) < 2 {
		return
	}
	fold := cases.Fold()

	type keyed struct {
		key  any
		item T
	}
	items := make([]keyed, len(records))
	for i, r := range records {
		var key any
		if v, ok := r.Field(field); ok {
			key = normalize(v)
			if s, ok := key.(string); ok {
				key = fold.String(s)
			}
		}
		items[i] = keyed{key: key, item: r}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.key == nil && b.key == nil:
			return 0
		case a.key == nil:
			return 1
		case b.key == nil:
			return -1
		}
		c := compareValues(a.key, b.key)
		if order == Desc {
			return -c
		}
		return c
	})

	for i := range items {
		records[i] = items[i].item
	}
}
