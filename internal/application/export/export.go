// Package export writes filtered entity lists as CSV objects.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
	"github.com/bizconsole/backend/internal/domain/shared/query"
	"github.com/bizconsole/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxRows bounds one export
const MaxRows = 10000

// Result points at a written export
type Result struct {
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Rows int    `json:"rows"`
}

// ListFunc returns one page of a filtered list
type ListFunc[T any] func(ctx context.Context, q query.Query) (query.Page[T], error)

// Exporter uploads CSV files to object storage
type Exporter struct {
	store storage.ObjectStorage
	now   func() time.Time
}

// NewExporter creates an exporter writing to store
func NewExporter(store storage.ObjectStorage) *Exporter {
	return &Exporter{store: store, now: time.Now}
}

// Collect walks every page of list matching q, up to MaxRows records
func Collect[T any](ctx context.Context, list ListFunc[T], q query.Query) ([]T, error) {
	q.Limit = query.MaxLimit
	var all []T
	for page := 1; ; page++ {
		q.Page = page
		p, err := list(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if len(all) > MaxRows {
			return nil, shared.InvalidInput(fmt.Sprintf("Export exceeds %d rows; narrow the filters", MaxRows))
		}
		if !p.HasNext {
			return all, nil
		}
	}
}

// Write encodes items as CSV with one column per json field and uploads it
// under area/entity/.
func Write[T any](ctx context.Context, e *Exporter, area, entity string, items []T) (*Result, error) {
	var zero T
	columns := query.FieldNames(zero)
	if len(columns) == 0 {
		return nil, fmt.Errorf("export: %T has no exportable fields", zero)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	row := make([]string, len(columns))
	for _, item := range items {
		for i, col := range columns {
			v, _ := query.StructField(item, col)
			row[i] = cell(v)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%s-%s.csv", area, entity, e.now().UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	if err := e.store.Put(ctx, key, &buf, "text/csv"); err != nil {
		return nil, fmt.Errorf("export %s: %w", entity, err)
	}
	url, err := e.store.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", entity, err)
	}
	return &Result{Key: key, URL: url, Rows: len(items)}, nil
}

// Run collects and writes in one step
func Run[T any](ctx context.Context, e *Exporter, area, entity string, list ListFunc[T], q query.Query) (*Result, error) {
	items, err := Collect(ctx, list, q)
	if err != nil {
		return nil, err
	}
	return Write(ctx, e, area, entity, items)
}

func cell(v any) string {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return ""
	}
	if rv.Kind() == reflect.Pointer {
		v = rv.Elem().Interface()
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case decimal.Decimal:
		return x.String()
	case uuid.UUID:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, ";")
	case fmt.Stringer:
		return x.String()
	}
	if s, ok := named(v); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// named handles string- and int-based enum types
func named(v any) (string, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	var s string
	if json.Unmarshal(data, &s) == nil {
		return s, true
	}
	var n json.Number
	if json.Unmarshal(data, &n) == nil {
		return n.String(), true
	}
	return "", false
}
