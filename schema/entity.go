package schema

import (
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/sqlerr"
)

// TableNamer overrides the derived table name. It is called on the zero
// value of the struct.
type TableNamer interface {
	TableName() string
}

// Field is one mapped struct field.
type Field struct {
	Name        string
	Index       []int
	Type        reflect.Type
	Options     ColumnOptions
	Family      *ast.TypeFamily
	UniqueGroup string
	Generator   IDGenerator

	column ast.Column
}

// Column returns the qualified column with its family and default.
func (f *Field) Column() ast.Column { return f.column }

// Entity describes how a struct maps to a table. It is immutable and safe
// for concurrent use.
type Entity struct {
	Type reflect.Type

	name     string
	fields   []*Field
	byColumn map[string]*Field
	table    ast.Table
	primary  []ast.Column
}

func (e *Entity) TableName() string { return e.name }

// Table returns the table with unique indexes declared for the primary key,
// every unique column and every unique group, in that order.
func (e *Entity) Table() ast.Table { return e.table }

// Column looks up a mapped column by database name.
func (e *Entity) Column(name string) (ast.Column, bool) {
	f, ok := e.byColumn[name]
	if !ok {
		return ast.Column{}, false
	}
	return f.column, true
}

func (e *Entity) Columns() []ast.Column {
	cols := make([]ast.Column, len(e.fields))
	for i, f := range e.fields {
		cols[i] = f.column
	}
	return cols
}

func (e *Entity) Fields() []*Field {
	return append([]*Field(nil), e.fields...)
}

func (e *Entity) PrimaryKey() []ast.Column {
	return append([]ast.Column(nil), e.primary...)
}

// Field looks up a mapped field by database column name.
func (e *Entity) Field(column string) (*Field, bool) {
	f, ok := e.byColumn[column]
	return f, ok
}

func (s *Schema) build(t reflect.Type) (*Entity, error) {
	e := &Entity{
		Type:     t,
		byColumn: make(map[string]*Field),
	}
	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		e.name = tn.TableName()
	} else {
		e.name = s.naming.TableName(t.Name())
	}
	if e.name == "" {
		return nil, fmt.Errorf("%s: empty table name", t)
	}

	if err := s.collect(e, t, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	if len(e.fields) == 0 {
		return nil, fmt.Errorf("%s: no mapped fields", t)
	}

	table := ast.NewTable(e.name)
	for _, f := range e.fields {
		col, err := f.build(table)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, f.Name, err)
		}
		f.column = col
		if f.Options.PrimaryKey {
			e.primary = append(e.primary, col)
		}
	}
	e.table = e.indexes(table)
	return e, nil
}

// collect walks exported fields, flattening untagged embedded structs.
func (s *Schema) collect(e *Entity, t reflect.Type, prefix []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get(s.parser.key) == "" && isPlainStruct(sf.Type) {
			if err := s.collect(e, sf.Type, index); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}

		tag, err := s.parser.ParseTag(sf.Name, sf.Tag)
		if err != nil {
			return err
		}
		if tag.Skip {
			continue
		}
		if _, dup := e.byColumn[tag.ColumnName]; dup {
			return fmt.Errorf("duplicate column %q", tag.ColumnName)
		}

		f := &Field{
			Name:  sf.Name,
			Index: index,
			Type:  sf.Type,
			Options: ColumnOptions{
				Name:          tag.ColumnName,
				TableName:     e.name,
				PrimaryKey:    tag.PrimaryKey,
				AutoIncrement: tag.AutoIncrement,
				ForeignKey:    tag.ForeignKey,
				Comment:       tag.Comment,
				Unique:        tag.Unique,
				Length:        tag.Length,
				Quote:         tag.Quote,
				Default:       tag.Default,
			},
			UniqueGroup: tag.UniqueGroup,
		}
		if tag.Type != "" {
			family, err := parseTypeName(tag.Type)
			if err != nil {
				return fmt.Errorf("field %s: %w", sf.Name, err)
			}
			f.Family = &family
		} else if family, ok := familyOf(sf.Type); ok {
			f.Family = &family
		}
		if f.Family != nil && tag.Length > 0 && f.Family.Length == 0 {
			f.Family.Length = tag.Length
		}
		if tag.Generator != "" {
			f.Generator, _ = defaultRegistry.Get(tag.Generator)
		}

		e.fields = append(e.fields, f)
		e.byColumn[tag.ColumnName] = f
	}
	return nil
}

// isPlainStruct reports whether t is a struct without a column mapping of
// its own, such as a shared timestamps block.
func isPlainStruct(t reflect.Type) bool {
	switch t {
	case timeType, uuidType, decimalType, prefixType, intervalType:
		return false
	}
	_, nullable := nullTypes[t]
	return !nullable
}

func (f *Field) build(table ast.Table) (ast.Column, error) {
	col := table.Col(f.Options.Name)
	if f.Family != nil {
		col = col.WithFamily(*f.Family)
	}
	switch {
	case f.Options.AutoIncrement:
		if f.Family == nil || f.Family.Kind != ast.FamilyInt {
			return col, fmt.Errorf("autoincrement requires an integer column")
		}
		col = col.WithGeneratedDefault()
	case f.Options.Default != nil:
		v, err := parseDefault(*f.Options.Default, f.Family)
		if err != nil {
			return col, err
		}
		col = col.WithDefault(v)
	}
	return col, nil
}

func (e *Entity) indexes(table ast.Table) ast.Table {
	if len(e.primary) > 0 {
		table = table.AddUniqueIndex(columnsAny(e.primary)...)
	}
	var groups []string
	members := make(map[string][]any)
	for _, f := range e.fields {
		if f.Options.Unique && !(f.Options.PrimaryKey && len(e.primary) == 1) {
			table = table.AddUniqueIndex(f.column)
		}
		if f.UniqueGroup != "" {
			if _, seen := members[f.UniqueGroup]; !seen {
				groups = append(groups, f.UniqueGroup)
			}
			members[f.UniqueGroup] = append(members[f.UniqueGroup], f.column)
		}
	}
	for _, g := range groups {
		table = table.AddUniqueIndex(members[g]...)
	}
	return table
}

func columnsAny(cols []ast.Column) []any {
	xs := make([]any, len(cols))
	for i, c := range cols {
		xs[i] = c
	}
	return xs
}

// Insert builds a single-row insert from record, a struct or a pointer to
// one. Zero autoincrement fields and zero fields with a declared default are
// left to the database. Zero fields with a generator are filled, and written
// back when record is a pointer.
func (e *Entity) Insert(record any) (*ast.Insert, error) {
	rv, err := e.value(record)
	if err != nil {
		return nil, err
	}

	ins := ast.SingleInsert(e.table)
	for _, f := range e.fields {
		fv := rv.FieldByIndex(f.Index)
		if fv.IsZero() {
			switch {
			case f.Options.AutoIncrement, f.Generator == nil && f.Options.Default != nil:
				continue
			case f.Generator != nil:
				v, err := f.generate(fv)
				if err != nil {
					return nil, err
				}
				ins.Value(f.column, v)
				continue
			}
		}
		v, err := f.value(fv)
		if err != nil {
			return nil, err
		}
		ins.Value(f.column, v)
	}
	if err := ins.Err(); err != nil {
		return nil, err
	}
	return ins, nil
}

func (e *Entity) value(record any) (reflect.Value, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s record", e.Type)
		}
		rv = rv.Elem()
	}
	if rv.Type() != e.Type {
		return reflect.Value{}, fmt.Errorf("record is %s, want %s", rv.Type(), e.Type)
	}
	return rv, nil
}

func (f *Field) generate(fv reflect.Value) (ast.Value, error) {
	id, err := f.Generator.Generate()
	if err != nil {
		return ast.Value{}, fmt.Errorf("field %s: %w", f.Name, err)
	}
	if fv.CanSet() {
		if err := assign(fv, id); err != nil {
			return ast.Value{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		return f.value(fv)
	}
	v, ok := ast.ValueOf(id)
	if !ok {
		return ast.Value{}, sqlerr.Conversion("field %s: generated %T values are not supported", f.Name, id)
	}
	return v, nil
}

// assign stores a generated id into a field, converting numbers and
// rendering ids into string fields.
func assign(fv reflect.Value, id any) error {
	target := fv
	if fv.Kind() == reflect.Pointer {
		target = reflect.New(fv.Type().Elem()).Elem()
	}
	iv := reflect.ValueOf(id)
	switch {
	case iv.Type().AssignableTo(target.Type()):
		target.Set(iv)
	case target.Kind() == reflect.String:
		s, ok := id.(fmt.Stringer)
		if !ok {
			return fmt.Errorf("cannot store %T in %s", id, target.Type())
		}
		target.SetString(s.String())
	case iv.CanInt() && (target.CanInt() || target.CanUint()):
		target.Set(iv.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot store %T in %s", id, target.Type())
	}
	if fv.Kind() == reflect.Pointer {
		fv.Set(target.Addr())
	}
	return nil
}

func (f *Field) value(fv reflect.Value) (ast.Value, error) {
	if fv.Kind() == reflect.Pointer && fv.IsNil() {
		return ast.Null(nullKind(f.Family)), nil
	}
	x := fv.Interface()
	if v, ok := ast.ValueOf(x); ok {
		if f.Family != nil && f.Family.Kind == ast.FamilyJSON && v.Kind() == ast.KindText && !v.IsNull() {
			s, _ := v.AsText()
			return ast.JSON([]byte(s)), nil
		}
		return v, nil
	}
	if valuer, ok := x.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return ast.Value{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		if dv == nil {
			return ast.Null(nullKind(f.Family)), nil
		}
		if v, ok := ast.ValueOf(dv); ok {
			return v, nil
		}
	}
	if f.Family != nil && f.Family.Kind == ast.FamilyJSON {
		v, err := ast.JSONOf(x)
		if err != nil {
			return ast.Value{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		return v, nil
	}
	return ast.Value{}, sqlerr.Conversion("field %s: %s values are not supported", f.Name, fv.Type())
}
