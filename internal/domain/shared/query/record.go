package query

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Record exposes the fields of a list item by their wire (json) name.
// Missing fields report ok == false; present but null fields return nil.
type Record interface {
	Field(name string) (any, bool)
}

var (
	fieldIndexCache sync.Map // reflect.Type -> map[string][]int
	fieldNameCache  sync.Map // reflect.Type -> []string
)

// FieldNames lists the json names of a struct type's fields in declaration
// order, flattening embedded structs.
func FieldNames(v any) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := fieldNameCache.Load(t); ok {
		return cached.([]string)
	}
	index := fieldIndex(t)
	names := make([]string, 0, len(index))
	for _, f := range reflect.VisibleFields(t) {
		name := jsonName(f)
		if i, ok := index[name]; ok && slices.Equal(i, f.Index) {
			names = append(names, name)
		}
	}
	fieldNameCache.Store(t, names)
	return names
}

// StructField reads the field of a struct (or pointer to struct) whose json
// tag matches name. Embedded structs are flattened the same way
// encoding/json flattens them.
func StructField(v any, name string) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	index, ok := fieldIndex(rv.Type())[name]
	if !ok {
		return nil, false
	}
	f, err := rv.FieldByIndexErr(index)
	if err != nil {
		return nil, true
	}
	return f.Interface(), true
}

func fieldIndex(t reflect.Type) map[string][]int {
	if cached, ok := fieldIndexCache.Load(t); ok {
		return cached.(map[string][]int)
	}
	index := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || (f.Anonymous && f.Type.Kind() == reflect.Struct) {
			continue
		}
		name := jsonName(f)
		if name == "-" {
			continue
		}
		// first declaration of a tag wins
		if _, exists := index[name]; !exists {
			index[name] = f.Index
		}
	}
	fieldIndexCache.Store(t, index)
	return index
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" {
		return f.Name
	}
	return name
}
