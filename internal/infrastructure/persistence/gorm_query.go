package persistence

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/bizconsole/backend/internal/domain/shared/query"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// column is a filterable and sortable column, keyed by the JSON name the
// API exposes
type column struct {
	name string
	text bool
}

var columnCache sync.Map // reflect.Type -> map[string]column

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// columnsOf maps the JSON field names of model to its columns. Only
// persisted fields qualify, which makes the map the whitelist for
// user-supplied filter and sort keys.
func columnsOf(db *gorm.DB, model any) (map[string]column, error) {
	t := reflect.TypeOf(model)
	if cols, ok := columnCache.Load(t); ok {
		return cols.(map[string]column), nil
	}

	s, err := schema.Parse(model, &sync.Map{}, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema of %T: %w", model, err)
	}
	cols := make(map[string]column, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		name, _, _ := strings.Cut(f.StructField.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		ft := f.FieldType
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		cols[name] = column{name: f.DBName, text: ft.Kind() == reflect.String}
	}
	columnCache.Store(t, cols)
	return cols, nil
}

// applyFilters translates the search term and filters of q into WHERE
// clauses with the same meaning the in-memory engine gives them.
func applyFilters(tx *gorm.DB, cols map[string]column, q query.Query, searchFields []string) *gorm.DB {
	quote := tx.Statement.Quote

	if term := strings.ToLower(q.SearchTerm()); term != "" && len(searchFields) > 0 {
		var parts []string
		var args []any
		for _, f := range searchFields {
			if c, ok := cols[f]; ok {
				parts = append(parts, "LOWER("+quote(c.name)+`) LIKE ? ESCAPE '\'`)
				args = append(args, "%"+likeEscaper.Replace(term)+"%")
			}
		}
		if len(parts) == 0 {
			return tx.Where("1 = 0")
		}
		tx = tx.Where("("+strings.Join(parts, " OR ")+")", args...)
	}

	known := func(f string) bool { _, ok := cols[f]; return ok }
	for _, c := range q.Criteria(known) {
		col, ok := cols[c.Field]
		if c.Op == query.OpNever || !ok {
			tx = tx.Where("1 = 0")
			continue
		}
		expr := quote(col.name)
		switch c.Op {
		case query.OpEq:
			if s, isText := c.Value.(string); isText && col.text {
				tx = tx.Where("LOWER("+expr+") = ?", strings.ToLower(s))
			} else {
				tx = tx.Where(expr+" = ?", c.Value)
			}
		case query.OpIn:
			if len(c.Values) == 0 {
				continue
			}
			if col.text {
				lowered := make([]any, len(c.Values))
				for i, v := range c.Values {
					lowered[i] = strings.ToLower(fmt.Sprint(v))
				}
				tx = tx.Where("LOWER("+expr+") IN ?", lowered)
			} else {
				tx = tx.Where(expr+" IN ?", c.Values)
			}
		case query.OpGTE:
			tx = tx.Where(expr+" >= ?", c.Value)
		case query.OpLTE:
			tx = tx.Where(expr+" <= ?", c.Value)
		}
	}
	return tx
}

// applySort orders by the requested field with nulls last in both
// directions, then by id so pages are stable. Unknown fields fall back to
// the default.
func applySort(tx *gorm.DB, cols map[string]column, q query.Query, defaultField string, defaultOrder query.SortOrder) *gorm.DB {
	field, order := q.SortBy, q.SortOrder
	col, ok := cols[field]
	if !ok {
		col, order = cols[defaultField], defaultOrder
	}
	if col.name == "" {
		return tx
	}
	dir := "ASC"
	if order == query.Desc {
		dir = "DESC"
	}
	expr := tx.Statement.Quote(col.name)
	if col.text {
		expr = "LOWER(" + expr + ")"
	}
	return tx.Order("CASE WHEN " + tx.Statement.Quote(col.name) + " IS NULL THEN 1 ELSE 0 END").
		Order(expr + " " + dir).
		Order(tx.Statement.Quote("id"))
}
