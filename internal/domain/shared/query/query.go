// Package query implements the list semantics shared by every console
// entity: free-text search, field filters, typed sorting and offset
// pagination over an in-memory slice of records.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SortOrder is the direction of a sort
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// SearchKey may be used as a filter key instead of Query.Search
	SearchKey = "search"
)

// Query describes a list request
type Query struct {
	Filters   map[string]any `json:"filters,omitempty"`
	Search    string         `json:"search,omitempty"`
	SortBy    string         `json:"sortBy,omitempty"`
	SortOrder SortOrder      `json:"sortOrder,omitempty"`
	Page      int            `json:"page,omitempty"`
	Limit     int            `json:"limit,omitempty"`
}

// New returns an empty query on the first page
func New() Query {
	return Query{Filters: map[string]any{}, Page: DefaultPage, Limit: DefaultLimit}
}

// Where returns a copy of q with an additional filter
func (q Query) Where(key string, value any) Query {
	filters := make(map[string]any, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[key] = value
	q.Filters = filters
	return q
}

// WithoutSearch returns a copy of q with the free-text term removed, for
// repositories that match it themselves
func (q Query) WithoutSearch() Query {
	q.Search = ""
	if _, ok := q.Filters[SearchKey]; ok {
		filters := make(map[string]any, len(q.Filters))
		for k, v := range q.Filters {
			if k != SearchKey {
				filters[k] = v
			}
		}
		q.Filters = filters
	}
	return q
}

// OrderBy returns a copy of q sorted by field
func (q Query) OrderBy(field string, order SortOrder) Query {
	q.SortBy = field
	q.SortOrder = order
	return q
}

// WithDefaultSort sets the sort only when the caller did not choose one
func (q Query) WithDefaultSort(field string, order SortOrder) Query {
	if q.SortBy == "" {
		return q.OrderBy(field, order)
	}
	return q
}

// Normalized clamps page and limit into their valid ranges
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// keeps (Page-1)*Limit within int
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	if q.SortOrder != Desc {
		q.SortOrder = Asc
	}
	return q
}

// Offset returns the index of the first item of the page
func (q Query) Offset() int {
	n := q.Normalized()
	return (n.Page - 1) * n.Limit
}

// SearchTerm returns the free-text term from Search or the search filter
func (q Query) SearchTerm() string {
	if s := strings.TrimSpace(q.Search); s != "" {
		return s
	}
	if v, ok := q.Filters[SearchKey].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

var reservedParams = map[string]bool{
	"page": true, "limit": true, "sortBy": true, "sortOrder": true, SearchKey: true,
}

// FromValues builds a query from URL parameters. Repeated keys and
// comma-separated values become string slices (membership filters).
func FromValues(values url.Values) Query {
	q := New()
	q.Page, _ = strconv.Atoi(values.Get("page"))
	q.Limit, _ = strconv.Atoi(values.Get("limit"))
	q.SortBy = values.Get("sortBy")
	q.SortOrder = SortOrder(strings.ToLower(values.Get("sortOrder")))
	q.Search = values.Get(SearchKey)

	for key, vals := range values {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		var parts []string
		for _, v := range vals {
			for _, p := range strings.Split(v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
		}
		switch {
		case len(parts) == 0:
		case len(parts) == 1 && len(vals) == 1 && !strings.Contains(vals[0], ","):
			q.Filters[key] = parts[0]
		default:
			q.Filters[key] = parts
		}
	}
	return q.Normalized()
}

// Values is the inverse of FromValues
func (q Query) Values() url.Values {
	values := url.Values{}
	n := q.Normalized()
	values.Set("page", strconv.Itoa(n.Page))
	values.Set("limit", strconv.Itoa(n.Limit))
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
		values.Set("sortOrder", string(n.SortOrder))
	}
	if s := q.SearchTerm(); s != "" {
		values.Set(SearchKey, s)
	}
	for key, v := range q.Filters {
		if reservedParams[key] || isEmpty(v) {
			continue
		}
		if list, ok := asList(v); ok {
			for _, item := range list {
				values.Add(key, toString(item))
			}
			continue
		}
		values.Set(key, toString(v))
	}
	return values
}

// Page is one page of a list result
type Page[T any] struct {
	Items      []T  `json:"items"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPage assembles a page for items starting at q's offset out of total
func NewPage[T any](items []T, total int, q Query) Page[T] {
	n := q.Normalized()
	if items == nil {
		items = []T{}
	}
	totalPages := total / n.Limit
	if total%n.Limit > 0 {
		totalPages++
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       n.Page,
		Limit:      n.Limit,
		TotalPages: totalPages,
		HasNext:    n.Offset()+len(items) < total,
		HasPrev:    n.Page > 1,
	}
}

// Map converts the items of a page keeping its pagination metadata
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return Page[U]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// Paginate slices records into the page requested by q
func Paginate[T any](records []T, q Query) Page[T] {
	n := q.Normalized()
	total := len(records)
	start := n.Offset()
	if start > total {
		start = total
	}
	end := start + n.Limit
	if end > total {
		end = total
	}
	items := make([]T, end-start)
	copy(items, records[start:end])
	return NewPage(items, total, n)
}
