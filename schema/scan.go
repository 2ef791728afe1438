package schema

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/songww/xiayu/ast"
)

// RowScanner is the part of a result set Scan needs. *sql.Rows and the
// database package rows satisfy it.
type RowScanner interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
}

type Rows interface {
	RowScanner
	Next() bool
	Err() error
}

// Scan reads the current row into dest, a pointer to the entity's struct.
// Unknown columns are discarded.
func (e *Entity) Scan(rows RowScanner, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != e.Type {
		return fmt.Errorf("scan destination must be a non-nil *%s, got %T", e.Type, dest)
	}
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	targets := make([]any, len(cols))
	elem := rv.Elem()
	for i, name := range cols {
		f, ok := e.byColumn[name]
		if !ok {
			targets[i] = new(any)
			continue
		}
		target := elem.FieldByIndex(f.Index).Addr()
		if f.decodesJSON() {
			targets[i] = jsonField{target}
			continue
		}
		targets[i] = target.Interface()
	}
	return rows.Scan(targets...)
}

// ScanAll reads every remaining row into values of T, a struct type. The
// caller closes rows.
func ScanAll[T any](rows Rows) ([]T, error) {
	var zero T
	e, err := Describe(reflect.TypeOf(zero))
	if err != nil {
		return nil, err
	}
	var out []T
	for rows.Next() {
		var item T
		if err := e.Scan(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// decodesJSON reports whether the field holds a decoded JSON document rather
// than its raw text.
func (f *Field) decodesJSON() bool {
	if f.Family == nil || f.Family.Kind != ast.FamilyJSON {
		return false
	}
	switch valueType(f.Type) {
	case rawJSONType, bytesType:
		return false
	}
	return valueType(f.Type).Kind() != reflect.String
}

type jsonField struct {
	ptr reflect.Value
}

func (j jsonField) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		j.ptr.Elem().Set(reflect.Zero(j.ptr.Elem().Type()))
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot decode %T as json", src)
	}
	return json.Unmarshal(raw, j.ptr.Interface())
}
