package ast

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindInt8 Kind = iota + 1
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat
	KindDouble
	KindText
	KindBytes
	KindBoolean
	KindJSON
	KindXML
	KindUUID
	KindDecimal
	KindDateTime
	KindDate
	KindTime
	KindTimeTz
	KindInterval
	KindMoney
	KindInet
)

var kindNames = map[Kind]string{
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindFloat:    "float",
	KindDouble:   "double",
	KindText:     "text",
	KindBytes:    "bytes",
	KindBoolean:  "boolean",
	KindJSON:     "json",
	KindXML:      "xml",
	KindUUID:     "uuid",
	KindDecimal:  "decimal",
	KindDateTime: "datetime",
	KindDate:     "date",
	KindTime:     "time",
	KindTimeTz:   "timetz",
	KindInterval: "interval",
	KindMoney:    "money",
	KindInet:     "inet",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) IsSigned() bool   { return k >= KindInt8 && k <= KindInt64 }
func (k Kind) IsUnsigned() bool { return k >= KindUint8 && k <= KindUint64 }

// Interval is a Postgres interval split the way the server stores it.
type Interval struct {
	Months       int32
	Days         int32
	Microseconds int64
}

// Value is an immutable, nullable SQL scalar. NULL is the nil payload of the
// value's declared kind.
type Value struct {
	kind Kind
	v    any
}

func Int8(i int8) Value       { return Value{KindInt8, i} }
func Int16(i int16) Value     { return Value{KindInt16, i} }
func Int32(i int32) Value     { return Value{KindInt32, i} }
func Int64(i int64) Value     { return Value{KindInt64, i} }
func Uint8(i uint8) Value     { return Value{KindUint8, i} }
func Uint16(i uint16) Value   { return Value{KindUint16, i} }
func Uint32(i uint32) Value   { return Value{KindUint32, i} }
func Uint64(i uint64) Value   { return Value{KindUint64, i} }
func Float(f float32) Value   { return Value{KindFloat, f} }
func Double(f float64) Value  { return Value{KindDouble, f} }
func Text(s string) Value     { return Value{KindText, s} }
func Boolean(b bool) Value    { return Value{KindBoolean, b} }
func XML(s string) Value      { return Value{KindXML, s} }
func UUID(u uuid.UUID) Value  { return Value{KindUUID, u} }
func Money(cents int64) Value { return Value{KindMoney, cents} }

func Bytes(b []byte) Value {
	if b == nil {
		return Null(KindBytes)
	}
	return Value{KindBytes, b}
}

// JSON wraps already encoded JSON.
func JSON(raw json.RawMessage) Value {
	if raw == nil {
		return Null(KindJSON)
	}
	return Value{KindJSON, raw}
}

// JSONOf encodes x as a JSON value.
func JSONOf(x any) (Value, error) {
	raw, err := json.Marshal(x)
	if err != nil {
		return Value{}, fmt.Errorf("encoding json value: %w", err)
	}
	return Value{KindJSON, json.RawMessage(raw)}, nil
}

func Decimal(d decimal.Decimal) Value { return Value{KindDecimal, d} }
func DateTime(t time.Time) Value      { return Value{KindDateTime, t} }
func Date(t time.Time) Value          { return Value{KindDate, t} }
func Time(t time.Time) Value          { return Value{KindTime, t} }
func TimeTz(t time.Time) Value        { return Value{KindTimeTz, t} }
func IntervalValue(i Interval) Value  { return Value{KindInterval, i} }
func Inet(p netip.Prefix) Value       { return Value{KindInet, p} }

// Null is the NULL of the given kind.
func Null(kind Kind) Value { return Value{kind: kind} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.v == nil }
func (v Value) Interface() any { return v.v }
func (v Value) IsJSON() bool   { return v.kind == KindJSON }
func (v Value) IsXML() bool    { return v.kind == KindXML }
func (v Value) Raw() Raw       { return Raw{Value: v} }

func (v Value) As(alias string) Expression { return Expression{Node: v, Alias: alias} }

func (v Value) Type() NodeType           { return NodeValue }
func (v Value) Accept(vis Visitor) error { return vis.VisitValue(v) }

func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindFloat, KindDouble, KindDecimal:
		return true
	}
	return v.kind.IsSigned() || v.kind.IsUnsigned()
}

// AsInt64 returns integer payloads widened to int64. Uint64 values above
// math.MaxInt64 are reported as not representable.
func (v Value) AsInt64() (int64, bool) {
	switch x := v.v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > 1<<63-1 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func (v Value) AsUint64() (uint64, bool) {
	switch x := v.v.(type) {
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	}
	if i, ok := v.AsInt64(); ok && i >= 0 {
		return uint64(i), true
	}
	return 0, false
}

func (v Value) AsFloat64() (float64, bool) {
	switch x := v.v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func (v Value) AsText() (string, bool) {
	s, ok := v.v.(string)
	return s, ok
}

func (v Value) AsBytes() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok
}

func (v Value) AsBool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok
}

func (v Value) AsJSON() (json.RawMessage, bool) {
	raw, ok := v.v.(json.RawMessage)
	return raw, ok
}

func (v Value) AsUUID() (uuid.UUID, bool) {
	u, ok := v.v.(uuid.UUID)
	return u, ok
}

func (v Value) AsDecimal() (decimal.Decimal, bool) {
	d, ok := v.v.(decimal.Decimal)
	return d, ok
}

func (v Value) AsTime() (time.Time, bool) {
	t, ok := v.v.(time.Time)
	return t, ok
}

func (v Value) AsInterval() (Interval, bool) {
	i, ok := v.v.(Interval)
	return i, ok
}

func (v Value) AsMoney() (int64, bool) {
	if v.kind != KindMoney {
		return 0, false
	}
	c, ok := v.v.(int64)
	return c, ok
}

func (v Value) AsInet() (netip.Prefix, bool) {
	p, ok := v.v.(netip.Prefix)
	return p, ok
}

func (v Value) String() string {
	if v.v == nil {
		return v.kind.String() + "(null)"
	}
	switch x := v.v.(type) {
	case json.RawMessage:
		return v.kind.String() + "(" + string(x) + ")"
	case []byte:
		return fmt.Sprintf("%s(%x)", v.kind, x)
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.v)
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	decimalType  = reflect.TypeOf(decimal.Decimal{})
	rawJSONType  = reflect.TypeOf(json.RawMessage{})
	prefixType   = reflect.TypeOf(netip.Prefix{})
	intervalType = reflect.TypeOf(Interval{})
	bytesType    = reflect.TypeOf([]byte{})
)

// ValueOf converts a Go scalar into a Value. Nil pointers become NULL of the
// pointed-to kind. The second result is false for unsupported types.
func ValueOf(x any) (Value, bool) {
	switch t := x.(type) {
	case Value:
		return t, true
	case int8:
		return Int8(t), true
	case int16:
		return Int16(t), true
	case int32:
		return Int32(t), true
	case int64:
		return Int64(t), true
	case int:
		return Int64(int64(t)), true
	case uint8:
		return Uint8(t), true
	case uint16:
		return Uint16(t), true
	case uint32:
		return Uint32(t), true
	case uint64:
		return Uint64(t), true
	case uint:
		return Uint64(uint64(t)), true
	case float32:
		return Float(t), true
	case float64:
		return Double(t), true
	case string:
		return Text(t), true
	case []byte:
		return Bytes(t), true
	case bool:
		return Boolean(t), true
	case json.RawMessage:
		return JSON(t), true
	case uuid.UUID:
		return UUID(t), true
	case decimal.Decimal:
		return Decimal(t), true
	case time.Time:
		return DateTime(t), true
	case Interval:
		return IntervalValue(t), true
	case netip.Prefix:
		return Inet(t), true
	case nil:
		return Null(KindText), true
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Pointer {
		return Value{}, false
	}
	if !rv.IsNil() {
		return ValueOf(rv.Elem().Interface())
	}
	kind, ok := kindOfType(rv.Type().Elem())
	if !ok {
		return Value{}, false
	}
	return Null(kind), true
}

func kindOfType(t reflect.Type) (Kind, bool) {
	switch t {
	case timeType:
		return KindDateTime, true
	case uuidType:
		return KindUUID, true
	case decimalType:
		return KindDecimal, true
	case rawJSONType:
		return KindJSON, true
	case prefixType:
		return KindInet, true
	case intervalType:
		return KindInterval, true
	case bytesType:
		return KindBytes, true
	}
	switch t.Kind() {
	case reflect.Int8:
		return KindInt8, true
	case reflect.Int16:
		return KindInt16, true
	case reflect.Int32:
		return KindInt32, true
	case reflect.Int64, reflect.Int:
		return KindInt64, true
	case reflect.Uint8:
		return KindUint8, true
	case reflect.Uint16:
		return KindUint16, true
	case reflect.Uint32:
		return KindUint32, true
	case reflect.Uint64, reflect.Uint:
		return KindUint64, true
	case reflect.Float32:
		return KindFloat, true
	case reflect.Float64:
		return KindDouble, true
	case reflect.String:
		return KindText, true
	case reflect.Bool:
		return KindBoolean, true
	}
	return 0, false
}

// Raw renders its value inline as a literal instead of binding it. The caller
// is responsible for the value being safe to inline.
type Raw struct {
	Value Value
}

func (r Raw) Type() NodeType         { return NodeRaw }
func (r Raw) Accept(v Visitor) error { return v.VisitRaw(r) }
