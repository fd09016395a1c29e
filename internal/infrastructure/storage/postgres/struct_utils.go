package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns extracts column names from struct "db" tags, walking
// embedded structs recursively. Called once at repository construction, so
// reflection cost is paid a single time per type.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsFromType(reflect.TypeOf(zero))
}

func columnsFromType(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var cols []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			cols = append(cols, columnsFromType(field.Type)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

var fieldIndexCache sync.Map // reflect.Type -> map[string][]int

// StructToMap converts a struct to a column->value map using "db" tags.
// Embedded structs are flattened the same way ExtractDBColumns sees them.
func StructToMap(entity any) map[string]any {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	indexes := fieldIndexes(v.Type())
	data := make(map[string]any, len(indexes))
	for col, index := range indexes {
		data[col] = v.FieldByIndex(index).Interface()
	}
	return data
}

func fieldIndexes(t reflect.Type) map[string][]int {
	if cached, ok := fieldIndexCache.Load(t); ok {
		return cached.(map[string][]int)
	}

	indexes := make(map[string][]int)
	collectFieldIndexes(t, nil, indexes)
	fieldIndexCache.Store(t, indexes)
	return indexes
}

func collectFieldIndexes(t reflect.Type, prefix []int, out map[string][]int) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)
		if field.Anonymous {
			collectFieldIndexes(field.Type, index, out)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out[tag] = index
	}
}
