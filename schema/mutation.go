package schema

import (
	"fmt"
	"reflect"

	"github.com/songww/xiayu/ast"
)

// Select selects every mapped column from the entity's table.
func (e *Entity) Select() *ast.Select {
	s := ast.SelectFrom(e.table)
	for _, f := range e.fields {
		s.Column(f.column)
	}
	return s
}

// Update sets the non-key columns of record, or only the named columns, on
// the row matched by its primary key.
func (e *Entity) Update(record any, columns ...string) (*ast.Update, error) {
	rv, err := e.value(record)
	if err != nil {
		return nil, err
	}
	where, err := e.keyCondition(rv)
	if err != nil {
		return nil, err
	}

	fields := make([]*Field, 0, len(e.fields))
	if len(columns) == 0 {
		for _, f := range e.fields {
			if !f.Options.PrimaryKey {
				fields = append(fields, f)
			}
		}
	} else {
		for _, name := range columns {
			f, ok := e.byColumn[name]
			if !ok {
				return nil, fmt.Errorf("%s has no column %q", e.Type, name)
			}
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: nothing to update", e.Type)
	}

	upd := ast.UpdateTable(e.table)
	for _, f := range fields {
		v, err := f.value(rv.FieldByIndex(f.Index))
		if err != nil {
			return nil, err
		}
		upd.Set(f.column, v)
	}
	upd.Where(where)
	if err := upd.Err(); err != nil {
		return nil, err
	}
	return upd, nil
}

// Delete removes the row matched by record's primary key.
func (e *Entity) Delete(record any) (*ast.Delete, error) {
	rv, err := e.value(record)
	if err != nil {
		return nil, err
	}
	where, err := e.keyCondition(rv)
	if err != nil {
		return nil, err
	}
	del := ast.DeleteFrom(e.table).Where(where)
	if err := del.Err(); err != nil {
		return nil, err
	}
	return del, nil
}

func (e *Entity) keyCondition(rv reflect.Value) (ast.ConditionTree, error) {
	var conds []ast.Conditional
	for _, f := range e.fields {
		if !f.Options.PrimaryKey {
			continue
		}
		fv := rv.FieldByIndex(f.Index)
		if fv.IsZero() {
			return ast.ConditionTree{}, fmt.Errorf("%s: primary key %s is not set", e.Type, f.Name)
		}
		v, err := f.value(fv)
		if err != nil {
			return ast.ConditionTree{}, err
		}
		conds = append(conds, f.column.Equals(v))
	}
	if len(conds) == 0 {
		return ast.ConditionTree{}, fmt.Errorf("%s has no primary key", e.Type)
	}
	if len(conds) == 1 {
		return conds[0].Tree(), nil
	}
	return ast.And(conds...), nil
}
