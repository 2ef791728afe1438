package schema

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/netip"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/songww/xiayu/ast"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	decimalType  = reflect.TypeOf(decimal.Decimal{})
	rawJSONType  = reflect.TypeOf(json.RawMessage{})
	prefixType   = reflect.TypeOf(netip.Prefix{})
	intervalType = reflect.TypeOf(ast.Interval{})
	bytesType    = reflect.TypeOf([]byte{})
)

// nullTypes unwrap to the type they carry.
var nullTypes = map[reflect.Type]reflect.Type{
	reflect.TypeOf(sql.NullString{}):      reflect.TypeOf(""),
	reflect.TypeOf(sql.NullInt64{}):       reflect.TypeOf(int64(0)),
	reflect.TypeOf(sql.NullInt32{}):       reflect.TypeOf(int32(0)),
	reflect.TypeOf(sql.NullInt16{}):       reflect.TypeOf(int16(0)),
	reflect.TypeOf(sql.NullByte{}):        reflect.TypeOf(uint8(0)),
	reflect.TypeOf(sql.NullFloat64{}):     reflect.TypeOf(float64(0)),
	reflect.TypeOf(sql.NullBool{}):        reflect.TypeOf(false),
	reflect.TypeOf(sql.NullTime{}):        timeType,
	reflect.TypeOf(uuid.NullUUID{}):       uuidType,
	reflect.TypeOf(decimal.NullDecimal{}): decimalType,
}

// valueType strips pointers and nullable wrappers.
func valueType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if inner, ok := nullTypes[t]; ok {
		return inner
	}
	return t
}

// familyOf maps a Go field type to a column type family. Types with no
// sensible family, such as intervals, report false.
func familyOf(t reflect.Type) (ast.TypeFamily, bool) {
	t = valueType(t)
	switch t {
	case timeType:
		return ast.TypeFamily{Kind: ast.FamilyDateTime}, true
	case uuidType:
		return ast.TypeFamily{Kind: ast.FamilyUUID}, true
	case decimalType:
		return ast.TypeFamily{Kind: ast.FamilyDecimal}, true
	case rawJSONType:
		return ast.TypeFamily{Kind: ast.FamilyJSON}, true
	case bytesType:
		return ast.TypeFamily{Kind: ast.FamilyBytes}, true
	case prefixType:
		return ast.TypeFamily{Kind: ast.FamilyText}, true
	case intervalType:
		return ast.TypeFamily{}, false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ast.TypeFamily{Kind: ast.FamilyInt}, true
	case reflect.Float32:
		return ast.TypeFamily{Kind: ast.FamilyFloat}, true
	case reflect.Float64:
		return ast.TypeFamily{Kind: ast.FamilyDouble}, true
	case reflect.String:
		return ast.TypeFamily{Kind: ast.FamilyText}, true
	case reflect.Bool:
		return ast.TypeFamily{Kind: ast.FamilyBoolean}, true
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return ast.TypeFamily{Kind: ast.FamilyJSON}, true
	}
	return ast.TypeFamily{}, false
}

var typeNames = map[string]ast.FamilyKind{
	"char":             ast.FamilyText,
	"varchar":          ast.FamilyText,
	"nvarchar":         ast.FamilyText,
	"text":             ast.FamilyText,
	"int":              ast.FamilyInt,
	"integer":          ast.FamilyInt,
	"smallint":         ast.FamilyInt,
	"bigint":           ast.FamilyInt,
	"real":             ast.FamilyFloat,
	"float":            ast.FamilyFloat,
	"double":           ast.FamilyDouble,
	"double precision": ast.FamilyDouble,
	"decimal":          ast.FamilyDecimal,
	"numeric":          ast.FamilyDecimal,
	"bool":             ast.FamilyBoolean,
	"boolean":          ast.FamilyBoolean,
	"uuid":             ast.FamilyUUID,
	"timestamp":        ast.FamilyDateTime,
	"timestamptz":      ast.FamilyDateTime,
	"datetime":         ast.FamilyDateTime,
	"bytea":            ast.FamilyBytes,
	"blob":             ast.FamilyBytes,
	"varbinary":        ast.FamilyBytes,
	"json":             ast.FamilyJSON,
	"jsonb":            ast.FamilyJSON,
	"xml":              ast.FamilyXML,
}

// parseTypeName reads a tag type override such as varchar(255), varchar(max)
// or decimal(10,2).
func parseTypeName(s string) (ast.TypeFamily, error) {
	name, args := s, ""
	if i := strings.IndexByte(s, '('); i != -1 {
		if !strings.HasSuffix(s, ")") {
			return ast.TypeFamily{}, fmt.Errorf("invalid type %q", s)
		}
		name, args = strings.TrimSpace(s[:i]), s[i+1:len(s)-1]
	}
	kind, ok := typeNames[name]
	if !ok {
		return ast.TypeFamily{}, fmt.Errorf("unknown type %q", s)
	}
	f := ast.TypeFamily{Kind: kind}
	if args == "" {
		return f, nil
	}

	parts := strings.Split(args, ",")
	if kind == ast.FamilyDecimal {
		p, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return f, fmt.Errorf("invalid precision in %q", s)
		}
		f.Precision = p
		if len(parts) > 1 {
			if f.Scale, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
				return f, fmt.Errorf("invalid scale in %q", s)
			}
		}
		return f, nil
	}
	if strings.EqualFold(strings.TrimSpace(args), "max") {
		f.Max = true
		return f, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return f, fmt.Errorf("invalid length in %q", s)
	}
	f.Length = n
	return f, nil
}

// parseDefault converts a tag default into a value of the column's family.
func parseDefault(s string, family *ast.TypeFamily) (ast.Value, error) {
	if strings.EqualFold(s, "null") {
		return ast.Null(nullKind(family)), nil
	}
	if family == nil {
		return ast.Text(s), nil
	}
	switch family.Kind {
	case ast.FamilyInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid integer default %q", s)
		}
		return ast.Int64(n), nil
	case ast.FamilyFloat, ast.FamilyDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid float default %q", s)
		}
		return ast.Double(f), nil
	case ast.FamilyDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid decimal default %q", s)
		}
		return ast.Decimal(d), nil
	case ast.FamilyBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid boolean default %q", s)
		}
		return ast.Boolean(b), nil
	case ast.FamilyUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid uuid default %q", s)
		}
		return ast.UUID(u), nil
	case ast.FamilyDateTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return ast.Value{}, fmt.Errorf("invalid datetime default %q", s)
		}
		return ast.DateTime(t), nil
	case ast.FamilyJSON:
		if !json.Valid([]byte(s)) {
			return ast.Value{}, fmt.Errorf("invalid json default %q", s)
		}
		return ast.JSON(json.RawMessage(s)), nil
	case ast.FamilyBytes:
		return ast.Bytes([]byte(s)), nil
	case ast.FamilyXML:
		return ast.XML(s), nil
	}
	return ast.Text(s), nil
}

func nullKind(family *ast.TypeFamily) ast.Kind {
	if family == nil {
		return ast.KindText
	}
	switch family.Kind {
	case ast.FamilyInt:
		return ast.KindInt64
	case ast.FamilyFloat:
		return ast.KindFloat
	case ast.FamilyDouble:
		return ast.KindDouble
	case ast.FamilyDecimal:
		return ast.KindDecimal
	case ast.FamilyBoolean:
		return ast.KindBoolean
	case ast.FamilyUUID:
		return ast.KindUUID
	case ast.FamilyDateTime:
		return ast.KindDateTime
	case ast.FamilyBytes:
		return ast.KindBytes
	case ast.FamilyJSON:
		return ast.KindJSON
	case ast.FamilyXML:
		return ast.KindXML
	}
	return ast.KindText
}
