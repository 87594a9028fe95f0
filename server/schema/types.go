package schema

import (
	"fmt"

	"github.com/parquetlake/tablelog/pkg/errors"
)

// Kind identifies which variant of the data type tree a value belongs to.
type Kind string

const (
	KindBoolean   Kind = "boolean"
	KindByte      Kind = "byte"
	KindShort     Kind = "short"
	KindInteger   Kind = "integer"
	KindLong      Kind = "long"
	KindFloat     Kind = "float"
	KindDouble    Kind = "double"
	KindString    Kind = "string"
	KindBinary    Kind = "binary"
	KindDate      Kind = "date"
	KindTimestamp Kind = "timestamp"
	KindDecimal   Kind = "decimal"
	KindArray     Kind = "array"
	KindMap       Kind = "map"
	KindStruct    Kind = "struct"
)

// DataType is the common interface implemented by every variant of the
// schema tree: primitives, decimal, array, map, and struct.
type DataType interface {
	Kind() Kind
	String() string
	Equals(other DataType) bool
}

// Primitive is a fixed, parameterless scalar type.
type Primitive struct {
	kind Kind
}

func (p Primitive) Kind() Kind   { return p.kind }
func (p Primitive) String() string { return string(p.kind) }
func (p Primitive) Equals(other DataType) bool {
	o, ok := other.(Primitive)
	return ok && o.kind == p.kind
}

// The full set of primitive type singletons.
var (
	Boolean   = Primitive{KindBoolean}
	Byte      = Primitive{KindByte}
	Short     = Primitive{KindShort}
	Integer   = Primitive{KindInteger}
	Long      = Primitive{KindLong}
	Float     = Primitive{KindFloat}
	Double    = Primitive{KindDouble}
	String    = Primitive{KindString}
	Binary    = Primitive{KindBinary}
	Date      = Primitive{KindDate}
	Timestamp = Primitive{KindTimestamp}
)

var primitivesByKind = map[Kind]Primitive{
	KindBoolean:   Boolean,
	KindByte:      Byte,
	KindShort:     Short,
	KindInteger:   Integer,
	KindLong:      Long,
	KindFloat:     Float,
	KindDouble:    Double,
	KindString:    String,
	KindBinary:    Binary,
	KindDate:      Date,
	KindTimestamp: Timestamp,
}

// MinDecimalPrecision and MaxDecimalPrecision bound Decimal.Precision.
const (
	MinDecimalPrecision = 1
	MaxDecimalPrecision = 38
)

// Decimal is a fixed-point numeric type with precision and scale.
type Decimal struct {
	Precision int
	Scale     int
}

// NewDecimal validates precision/scale before constructing a Decimal.
func NewDecimal(precision, scale int) (Decimal, error) {
	if precision < MinDecimalPrecision || precision > MaxDecimalPrecision {
		return Decimal{}, errors.Newf(ErrDecimalOutOfRange,
			"decimal precision %d out of range [%d,%d]", precision, MinDecimalPrecision, MaxDecimalPrecision)
	}
	if scale < 0 || scale > precision {
		return Decimal{}, errors.Newf(ErrDecimalOutOfRange,
			"decimal scale %d out of range [0,%d]", scale, precision)
	}
	return Decimal{Precision: precision, Scale: scale}, nil
}

func (d Decimal) Kind() Kind   { return KindDecimal }
func (d Decimal) String() string { return fmt.Sprintf("decimal(%d,%d)", d.Precision, d.Scale) }
func (d Decimal) Equals(other DataType) bool {
	o, ok := other.(Decimal)
	return ok && o.Precision == d.Precision && o.Scale == d.Scale
}

// Array is a homogeneous ordered collection.
type Array struct {
	Element      DataType
	ContainsNull bool
}

func (a Array) Kind() Kind   { return KindArray }
func (a Array) String() string { return fmt.Sprintf("array<%s>", a.Element.String()) }
func (a Array) Equals(other DataType) bool {
	o, ok := other.(Array)
	return ok && o.ContainsNull == a.ContainsNull && typesEqual(o.Element, a.Element)
}

// Map is a homogeneous key/value collection.
type Map struct {
	Key              DataType
	Value            DataType
	ValueContainsNull bool
}

func (m Map) Kind() Kind   { return KindMap }
func (m Map) String() string {
	return fmt.Sprintf("map<%s,%s>", m.Key.String(), m.Value.String())
}
func (m Map) Equals(other DataType) bool {
	o, ok := other.(Map)
	return ok && o.ValueContainsNull == m.ValueContainsNull &&
		typesEqual(o.Key, m.Key) && typesEqual(o.Value, m.Value)
}

// Field is a named, typed member of a Struct, with opaque metadata
// preserved verbatim across a parse/emit round trip.
type Field struct {
	Name     string
	Type     DataType
	Nullable bool
	Metadata []byte // raw JSON object, e.g. []byte(`{}`)
}

// Struct is an ordered set of uniquely-named fields.
type Struct struct {
	Fields []Field
}

// NewStruct validates field-name uniqueness before constructing a Struct.
func NewStruct(fields []Field) (Struct, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return Struct{}, errors.Newf(ErrDuplicateFieldName, "duplicate struct field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return Struct{Fields: fields}, nil
}

func (s Struct) Kind() Kind { return KindStruct }
func (s Struct) String() string {
	out := "struct<"
	for i, f := range s.Fields {
		if i > 0 {
			out += ","
		}
		out += f.Name + ":" + f.Type.String()
	}
	return out + ">"
}
func (s Struct) Equals(other DataType) bool {
	o, ok := other.(Struct)
	if !ok || len(o.Fields) != len(s.Fields) {
		return false
	}
	for i, f := range s.Fields {
		g := o.Fields[i]
		if f.Name != g.Name || f.Nullable != g.Nullable || !typesEqual(f.Type, g.Type) {
			return false
		}
	}
	return true
}

// FieldByName looks up a field by name, mirroring the lookup a struct
// accessor performs when resolving a column name to a type.
func (s Struct) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func typesEqual(a, b DataType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equals(b)
}
