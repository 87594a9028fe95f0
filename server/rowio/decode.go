package rowio

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/parquetlake/tablelog/pkg/errors"
	"github.com/parquetlake/tablelog/server/schema"
	"github.com/shopspring/decimal"
)

// decodeElement converts the value at arr[idx] into a native Go value
// according to dt, recursing into nested arrays, maps, and structs.
// The concrete arrow.Array must match dt's kind; a mismatch (a
// ColumnReader producing the wrong Arrow type for a declared schema
// field) is a defect in the injected reader, surfaced the same way a
// caller type mismatch would be.
func decodeElement(arr arrow.Array, idx int, dt schema.DataType, tz *time.Location) (interface{}, error) {
	switch dt.Kind() {
	case schema.KindBoolean:
		a, ok := arr.(*array.Boolean)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindByte:
		a, ok := arr.(*array.Int8)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindShort:
		a, ok := arr.(*array.Int16)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindInteger:
		a, ok := arr.(*array.Int32)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindLong:
		a, ok := arr.(*array.Int64)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindFloat:
		a, ok := arr.(*array.Float32)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindDouble:
		a, ok := arr.(*array.Float64)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindString:
		a, ok := arr.(*array.String)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx), nil
	case schema.KindBinary:
		a, ok := arr.(*array.Binary)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		v := a.Value(idx)
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	case schema.KindDate:
		a, ok := arr.(*array.Date32)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return a.Value(idx).ToTime(), nil
	case schema.KindTimestamp:
		a, ok := arr.(*array.Timestamp)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return timestampToTime(a, idx, tz), nil
	case schema.KindDecimal:
		a, ok := arr.(*array.Decimal128)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return decimal128ToDecimal(a, idx), nil
	case schema.KindArray:
		at, ok := dt.(schema.Array)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		lst, ok := arr.(*array.List)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return decodeList(lst, idx, at.Element, tz)
	case schema.KindMap:
		mt, ok := dt.(schema.Map)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		m, ok := arr.(*array.Map)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return decodeMap(m, idx, mt.Key, mt.Value, tz)
	case schema.KindStruct:
		st, ok := dt.(schema.Struct)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		s, ok := arr.(*array.Struct)
		if !ok {
			return nil, wrongArrowType(dt, arr)
		}
		return newNestedRecord(s, idx, st, tz), nil
	default:
		return nil, errors.Newf(ErrUnsupportedKind, "unsupported schema kind %q", dt.Kind())
	}
}

func decodeList(lst *array.List, idx int, elemType schema.DataType, tz *time.Location) ([]interface{}, error) {
	start, end := lst.ValueOffsets(idx)
	values := lst.ListValues()
	out := make([]interface{}, 0, end-start)
	for i := start; i < end; i++ {
		if values.IsNull(int(i)) {
			out = append(out, nil)
			continue
		}
		v, err := decodeElement(values, int(i), elemType, tz)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeMap(m *array.Map, idx int, keyType, valType schema.DataType, tz *time.Location) (map[interface{}]interface{}, error) {
	start, end := m.ValueOffsets(idx)
	keys := m.Keys()
	items := m.Items()
	out := make(map[interface{}]interface{}, end-start)
	for i := start; i < end; i++ {
		k, err := decodeElement(keys, int(i), keyType, tz)
		if err != nil {
			return nil, err
		}
		if items.IsNull(int(i)) {
			out[k] = nil
			continue
		}
		v, err := decodeElement(items, int(i), valType, tz)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func newNestedRecord(s *array.Struct, idx int, st schema.Struct, tz *time.Location) *Record {
	cols := make([]arrow.Array, len(st.Fields))
	for i := range st.Fields {
		cols[i] = s.Field(i)
	}
	return &Record{columns: cols, row: idx, fields: st, tz: tz}
}

// timestampToTime reinterprets a naive timestamp value in tz, per the
// configured parquet time zone: the wall-clock components are kept and
// only the zone attached to them changes.
func timestampToTime(a *array.Timestamp, idx int, tz *time.Location) time.Time {
	unit := arrow.Nanosecond
	if tt, ok := a.DataType().(*arrow.TimestampType); ok {
		unit = tt.Unit
	}
	t := a.Value(idx).ToTime(unit)
	if tz == nil {
		tz = time.UTC
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), tz)
}

func decimal128ToDecimal(a *array.Decimal128, idx int) decimal.Decimal {
	scale := int32(0)
	if dt, ok := a.DataType().(*arrow.Decimal128Type); ok {
		scale = dt.Scale
	}
	return decimal.NewFromBigInt(a.Value(idx).BigInt(), -scale)
}

func wrongArrowType(dt schema.DataType, arr arrow.Array) error {
	return errors.Newf(ErrTypeMismatch, "schema declares %s but column data is %T", dt.String(), arr)
}
