package dialect

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/songww/xiayu/ast"
	"github.com/songww/xiayu/sqlerr"
)

// literalStyle holds the parts of inline literal syntax that differ between
// dialects.
type literalStyle struct {
	name          string
	bytes         func(b []byte) string
	trueLit       string
	falseLit      string
	backslashes   bool
	unsigned      bool
	postgresKinds bool
	typedLiteral  func(sqlType, text string) string
}

func (s literalStyle) render(v ast.Value) (string, error) {
	if v.IsNull() {
		return "null", nil
	}
	switch k := v.Kind(); {
	case k.IsSigned():
		i, _ := v.AsInt64()
		return strconv.FormatInt(i, 10), nil
	case k.IsUnsigned():
		if !s.unsigned {
			return "", s.unsupported(v)
		}
		u, _ := v.AsUint64()
		return strconv.FormatUint(u, 10), nil
	}

	switch v.Kind() {
	case ast.KindFloat, ast.KindDouble:
		f, _ := v.AsFloat64()
		bits := 64
		if v.Kind() == ast.KindFloat {
			bits = 32
		}
		return formatFloat(f, bits), nil
	case ast.KindText, ast.KindXML:
		t, _ := v.AsText()
		return s.text(t), nil
	case ast.KindBytes:
		b, _ := v.AsBytes()
		return s.bytes(b), nil
	case ast.KindBoolean:
		if b, _ := v.AsBool(); b {
			return s.trueLit, nil
		}
		return s.falseLit, nil
	case ast.KindJSON:
		raw, _ := v.AsJSON()
		return s.text(string(raw)), nil
	case ast.KindUUID:
		u, _ := v.AsUUID()
		return s.typed("uniqueidentifier", u.String()), nil
	case ast.KindDecimal:
		d, _ := v.AsDecimal()
		return d.String(), nil
	case ast.KindDateTime:
		t, _ := v.AsTime()
		return s.typed("datetimeoffset", t.Format(time.RFC3339Nano)), nil
	case ast.KindDate:
		t, _ := v.AsTime()
		return s.typed("date", t.Format(time.DateOnly)), nil
	case ast.KindTime:
		t, _ := v.AsTime()
		return s.typed("time", t.Format("15:04:05.999999")), nil
	}

	if !s.postgresKinds {
		return "", s.unsupported(v)
	}
	switch v.Kind() {
	case ast.KindTimeTz:
		t, _ := v.AsTime()
		return s.text(t.Format("15:04:05.999999Z07:00")), nil
	case ast.KindInterval:
		i, _ := v.AsInterval()
		return s.text(FormatInterval(i)), nil
	case ast.KindMoney:
		c, _ := v.AsMoney()
		return s.text(FormatMoney(c)), nil
	case ast.KindInet:
		p, _ := v.AsInet()
		return s.text(p.String()), nil
	}
	return "", s.unsupported(v)
}

func (s literalStyle) unsupported(v ast.Value) error {
	return sqlerr.Conversion("%s values cannot be rendered as a literal", v.Kind()).WithDialect(s.name)
}

func (s literalStyle) text(t string) string {
	t = strings.ReplaceAll(t, "'", "''")
	if s.backslashes {
		t = strings.ReplaceAll(t, `\`, `\\`)
	}
	return "'" + t + "'"
}

func (s literalStyle) typed(sqlType, text string) string {
	if s.typedLiteral != nil {
		return s.typedLiteral(sqlType, text)
	}
	return s.text(text)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "'NaN'"
	case math.IsInf(f, 1):
		return "'Infinity'"
	case math.IsInf(f, -1):
		return "'-Infinity'"
	}
	out := strconv.FormatFloat(f, 'f', -1, bits)
	if !strings.ContainsRune(out, '.') {
		out += ".0"
	}
	return out
}

func hexBytes(prefix, suffix string) func([]byte) string {
	return func(b []byte) string {
		return prefix + hex.EncodeToString(b) + suffix
	}
}

// FormatInterval writes i in the Postgres input syntax.
func FormatInterval(i ast.Interval) string {
	return strconv.FormatInt(int64(i.Months), 10) + " mons " +
		strconv.FormatInt(int64(i.Days), 10) + " days " +
		strconv.FormatInt(i.Microseconds, 10) + " microseconds"
}

// FormatMoney writes an amount in cents with two decimals.
func FormatMoney(cents int64) string {
	sign := ""
	u := uint64(cents)
	if cents < 0 {
		sign = "-"
		u = uint64(-(cents + 1)) + 1
	}
	frac := strconv.FormatUint(u%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatUint(u/100, 10) + "." + frac
}
