package database

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/dialect"
	"github.com/songww/xiayu/sqlerr"
)

const (
	timeLayout   = "15:04:05.999999"
	timeTzLayout = "15:04:05.999999-07:00"
	dateLayout   = "2006-01-02"
)

var allTimeKinds = []ast.Kind{ast.KindDateTime, ast.KindDate, ast.KindTime}

// rejected lists the value kinds each driver family cannot bind.
var rejected = map[string]map[ast.Kind]bool{
	dialect.NamePostgres: kinds(ast.KindUint8, ast.KindUint16, ast.KindUint64),
	dialect.NameMySQL:    kinds(ast.KindInterval, ast.KindMoney, ast.KindTimeTz, ast.KindInet),
	dialect.NameSQLite: kinds(ast.KindUint64, ast.KindDecimal, ast.KindInterval, ast.KindMoney,
		ast.KindTimeTz, ast.KindInet),
	dialect.NameMSSQL: kinds(append([]ast.Kind{
		ast.KindUint8, ast.KindUint16, ast.KindUint32, ast.KindUint64,
		ast.KindBytes, ast.KindJSON, ast.KindUUID, ast.KindDecimal,
		ast.KindInterval, ast.KindMoney, ast.KindTimeTz, ast.KindInet,
	}, allTimeKinds...)...),
}

func kinds(ks ...ast.Kind) map[ast.Kind]bool {
	m := make(map[ast.Kind]bool, len(ks))
	for _, k := range ks {
		m[k] = true
	}
	return m
}

func family(d dialect.Dialect) string {
	if d.Name() == dialect.NameTiDB {
		return dialect.NameMySQL
	}
	return d.Name()
}

// Bind converts v into the parameter type the dialect's driver accepts.
// Kinds the driver cannot represent fail with a conversion error, NULL
// or not.
func Bind(d dialect.Dialect, v ast.Value) (any, error) {
	fam := family(d)
	if rejected[fam][v.Kind()] {
		return nil, sqlerr.Conversion("%s values are not supported by %s", v.Kind(), d.Name()).
			WithDialect(d.Name())
	}
	if v.IsNull() {
		return nil, nil
	}

	switch k := v.Kind(); {
	case k.IsSigned():
		i, _ := v.AsInt64()
		return i, nil
	case k == ast.KindUint64:
		u, _ := v.AsUint64()
		return u, nil
	case k.IsUnsigned():
		i, _ := v.AsInt64()
		return i, nil
	}

	switch v.Kind() {
	case ast.KindFloat, ast.KindDouble:
		f, _ := v.AsFloat64()
		return f, nil
	case ast.KindText, ast.KindXML:
		s, _ := v.AsText()
		return s, nil
	case ast.KindBytes:
		b, _ := v.AsBytes()
		return b, nil
	case ast.KindBoolean:
		b, _ := v.AsBool()
		return b, nil
	case ast.KindJSON:
		raw, _ := v.AsJSON()
		return string(raw), nil
	case ast.KindUUID:
		u, _ := v.AsUUID()
		if fam == dialect.NamePostgres {
			return u, nil
		}
		return u.String(), nil
	case ast.KindDecimal:
		dec, _ := v.AsDecimal()
		return dec.String(), nil
	case ast.KindDateTime:
		t, _ := v.AsTime()
		return t, nil
	case ast.KindDate:
		t, _ := v.AsTime()
		if fam == dialect.NameSQLite {
			return t.Format(dateLayout), nil
		}
		return t, nil
	case ast.KindTime:
		t, _ := v.AsTime()
		return t.Format(timeLayout), nil
	case ast.KindTimeTz:
		t, _ := v.AsTime()
		return t.Format(timeTzLayout), nil
	case ast.KindInterval:
		i, _ := v.AsInterval()
		return pgtype.Interval{Months: i.Months, Days: i.Days, Microseconds: i.Microseconds, Valid: true}, nil
	case ast.KindMoney:
		c, _ := v.AsMoney()
		return dialect.FormatMoney(c), nil
	case ast.KindInet:
		p, _ := v.AsInet()
		return p.String(), nil
	}
	return nil, sqlerr.Conversion("cannot bind %s", v).WithDialect(d.Name())
}

// BindAll binds values in order.
func BindAll(d dialect.Dialect, values []ast.Value) ([]any, error) {
	args := make([]any, len(values))
	for i, v := range values {
		arg, err := Bind(d, v)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}
