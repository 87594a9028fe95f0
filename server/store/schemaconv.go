package store

import (
	"net/url"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquetlake/tablelog/pkg/errors"
	"github.com/parquetlake/tablelog/server/schema"
)

// arrowSchemaFor converts a struct schema to the Arrow schema a
// columnar reader must produce, in field order, so that rowio can
// resolve columns by position.
func arrowSchemaFor(st schema.Struct) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(st.Fields))
	for i, f := range st.Fields {
		at, err := arrowTypeFor(f.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{Name: f.Name, Type: at, Nullable: f.Nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}

func arrowTypeFor(dt schema.DataType) (arrow.DataType, error) {
	switch t := dt.(type) {
	case schema.Primitive:
		switch t.Kind() {
		case schema.KindBoolean:
			return arrow.FixedWidthTypes.Boolean, nil
		case schema.KindByte:
			return arrow.PrimitiveTypes.Int8, nil
		case schema.KindShort:
			return arrow.PrimitiveTypes.Int16, nil
		case schema.KindInteger:
			return arrow.PrimitiveTypes.Int32, nil
		case schema.KindLong:
			return arrow.PrimitiveTypes.Int64, nil
		case schema.KindFloat:
			return arrow.PrimitiveTypes.Float32, nil
		case schema.KindDouble:
			return arrow.PrimitiveTypes.Float64, nil
		case schema.KindString:
			return arrow.BinaryTypes.String, nil
		case schema.KindBinary:
			return arrow.BinaryTypes.Binary, nil
		case schema.KindDate:
			return arrow.FixedWidthTypes.Date32, nil
		case schema.KindTimestamp:
			return &arrow.TimestampType{Unit: arrow.Millisecond}, nil
		}
		return nil, errors.Newf(ErrUnsupportedType, "unsupported primitive kind %q", t.Kind())
	case schema.Decimal:
		return &arrow.Decimal128Type{Precision: int32(t.Precision), Scale: int32(t.Scale)}, nil
	case schema.Array:
		elem, err := arrowTypeFor(t.Element)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	case schema.Map:
		key, err := arrowTypeFor(t.Key)
		if err != nil {
			return nil, err
		}
		val, err := arrowTypeFor(t.Value)
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(key, val), nil
	case schema.Struct:
		fields := make([]arrow.Field, len(t.Fields))
		for i, f := range t.Fields {
			at, err := arrowTypeFor(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = arrow.Field{Name: f.Name, Type: at, Nullable: f.Nullable}
		}
		return arrow.StructOf(fields...), nil
	default:
		return nil, errors.Newf(ErrUnsupportedType, "unsupported schema type %T", dt)
	}
}

// localPathFromURI converts a file:// URI produced by Qualify back
// into a filesystem path a columnar reader can os.Open.
func localPathFromURI(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.New(ErrQualifyFailed, "failed to parse artifact URI", err).AddContext("uri", raw)
	}
	if u.Scheme != "file" {
		return "", errors.Newf(ErrUnsupportedType, "columnar reader only supports file:// URIs, got scheme %q", u.Scheme)
	}
	return u.Path, nil
}
