package schema

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/parquetlake/tablelog/pkg/errors"
)

var decimalPattern = regexp.MustCompile(`^decimal\((\d+),(\d+)\)$`)

// emptyMetadata is written whenever a field carries no metadata object,
// so that a struct's JSON form always has a "metadata" key to round-trip.
var emptyMetadata = []byte(`{}`)

// Parse decodes the JSON wire form of a data type (a tagged primitive
// string, a "decimal(p,s)" string, or an array/map/struct object) into
// a DataType tree.
func Parse(data []byte) (DataType, error) {
	return parseValue(bytes.TrimSpace(data))
}

// ParseString is a convenience wrapper for parsing a schema string as
// stored verbatim in a metadata action's schemaString field.
func ParseString(s string) (DataType, error) {
	return Parse([]byte(s))
}

func parseValue(raw []byte) (DataType, error) {
	if len(raw) == 0 {
		return nil, errors.New(ErrInvalidSchema, "empty schema fragment", nil)
	}
	if raw[0] == '"' {
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, errors.Wrap(ErrInvalidSchema, err, "malformed type tag")
		}
		return parseTag(tag)
	}

	var head struct {
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errors.Wrap(ErrInvalidSchema, err, "malformed type object")
	}
	if len(head.Type) == 0 {
		return nil, errors.New(ErrInvalidSchema, "type object missing \"type\" field", nil)
	}

	var tag string
	if err := json.Unmarshal(head.Type, &tag); err != nil {
		return nil, errors.Wrap(ErrInvalidSchema, err, "malformed \"type\" field")
	}

	switch tag {
	case "array":
		return parseArray(raw)
	case "map":
		return parseMap(raw)
	case "struct":
		return parseStruct(raw)
	default:
		return parseTag(tag)
	}
}

func parseTag(tag string) (DataType, error) {
	if p, ok := primitivesByKind[Kind(tag)]; ok {
		return p, nil
	}
	if tag == "decimal" {
		return NewDecimal(10, 0)
	}
	if m := decimalPattern.FindStringSubmatch(tag); m != nil {
		p, _ := strconv.Atoi(m[1])
		s, _ := strconv.Atoi(m[2])
		return NewDecimal(p, s)
	}
	return nil, errors.Newf(ErrUnknownPrimitiveType, "unrecognized type tag %q", tag)
}

type arrayJSON struct {
	Type         string          `json:"type"`
	ElementType  json.RawMessage `json:"elementType"`
	ContainsNull bool            `json:"containsNull"`
}

func parseArray(raw []byte) (DataType, error) {
	var a arrayJSON
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, errors.Wrap(ErrInvalidSchema, err, "malformed array type")
	}
	elem, err := parseValue(bytes.TrimSpace(a.ElementType))
	if err != nil {
		return nil, err
	}
	return Array{Element: elem, ContainsNull: a.ContainsNull}, nil
}

type mapJSON struct {
	Type              string          `json:"type"`
	KeyType           json.RawMessage `json:"keyType"`
	ValueType         json.RawMessage `json:"valueType"`
	ValueContainsNull bool            `json:"valueContainsNull"`
}

func parseMap(raw []byte) (DataType, error) {
	var m mapJSON
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrap(ErrInvalidSchema, err, "malformed map type")
	}
	key, err := parseValue(bytes.TrimSpace(m.KeyType))
	if err != nil {
		return nil, err
	}
	val, err := parseValue(bytes.TrimSpace(m.ValueType))
	if err != nil {
		return nil, err
	}
	return Map{Key: key, Value: val, ValueContainsNull: m.ValueContainsNull}, nil
}

type fieldJSON struct {
	Name     string          `json:"name"`
	Type     json.RawMessage `json:"type"`
	Nullable bool            `json:"nullable"`
	Metadata json.RawMessage `json:"metadata"`
}

type structJSON struct {
	Type   string      `json:"type"`
	Fields []fieldJSON `json:"fields"`
}

func parseStruct(raw []byte) (DataType, error) {
	var s structJSON
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(ErrInvalidSchema, err, "malformed struct type")
	}
	fields := make([]Field, 0, len(s.Fields))
	for _, fj := range s.Fields {
		ft, err := parseValue(bytes.TrimSpace(fj.Type))
		if err != nil {
			return nil, err
		}
		meta := emptyMetadata
		if len(fj.Metadata) > 0 {
			meta = append([]byte(nil), fj.Metadata...)
		}
		fields = append(fields, Field{
			Name:     fj.Name,
			Type:     ft,
			Nullable: fj.Nullable,
			Metadata: meta,
		})
	}
	return NewStruct(fields)
}

// Emit encodes a DataType tree back to its JSON wire form.
func Emit(t DataType) ([]byte, error) {
	v, err := emitValue(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func emitValue(t DataType) (interface{}, error) {
	switch v := t.(type) {
	case Primitive:
		return string(v.kind), nil
	case Decimal:
		return v.String(), nil
	case Array:
		elem, err := emitValue(v.Element)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"type":         "array",
			"elementType":  elem,
			"containsNull": v.ContainsNull,
		}, nil
	case Map:
		key, err := emitValue(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := emitValue(v.Value)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"type":              "map",
			"keyType":           key,
			"valueType":         val,
			"valueContainsNull": v.ValueContainsNull,
		}, nil
	case Struct:
		fields := make([]map[string]interface{}, 0, len(v.Fields))
		for _, f := range v.Fields {
			ft, err := emitValue(f.Type)
			if err != nil {
				return nil, err
			}
			meta := f.Metadata
			if len(meta) == 0 {
				meta = emptyMetadata
			}
			fields = append(fields, map[string]interface{}{
				"name":     f.Name,
				"type":     ft,
				"nullable": f.Nullable,
				"metadata": json.RawMessage(meta),
			})
		}
		return map[string]interface{}{
			"type":   "struct",
			"fields": fields,
		}, nil
	default:
		return nil, errors.Newf(ErrInvalidSchema, "unemittable data type %T", t)
	}
}
