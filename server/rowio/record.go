package rowio

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquetlake/tablelog/server/schema"
	"github.com/shopspring/decimal"
)

// Record is one logical row of a data file, backed by a slice of Arrow
// column arrays sharing a single row index. It is only valid for the
// lifetime of the batch it was produced from; callers must not retain
// a Record past the next call to Iterator.Next.
type Record struct {
	columns []arrow.Array
	row     int
	fields  schema.Struct
	tz      *time.Location
}

func newRowRecord(batch arrow.Record, row int, fields schema.Struct, tz *time.Location) *Record {
	return &Record{columns: batch.Columns(), row: row, fields: fields, tz: tz}
}

// GetLength returns the number of top-level columns in the record.
func (r *Record) GetLength() int { return len(r.fields.Fields) }

// GetSchema returns the record's struct schema.
func (r *Record) GetSchema() schema.DataType { return r.fields }

func (r *Record) resolve(name string) (arrow.Array, schema.Field, error) {
	for i, f := range r.fields.Fields {
		if f.Name != name {
			continue
		}
		if i >= len(r.columns) {
			return nil, schema.Field{}, ColumnNotFound(name)
		}
		return r.columns[i], f, nil
	}
	return nil, schema.Field{}, ColumnNotFound(name)
}

func (r *Record) resolveKind(name string, want schema.Kind) (arrow.Array, schema.Field, error) {
	col, field, err := r.resolve(name)
	if err != nil {
		return nil, schema.Field{}, err
	}
	if field.Type.Kind() != want {
		return nil, schema.Field{}, TypeMismatch(name, field.Type.String(), string(want))
	}
	return col, field, nil
}

// IsNull reports whether the named column is null in this row.
func (r *Record) IsNull(name string) (bool, error) {
	col, _, err := r.resolve(name)
	if err != nil {
		return false, err
	}
	return col.IsNull(r.row), nil
}

func (r *Record) GetBoolean(name string) (bool, error) {
	col, field, err := r.resolveKind(name, schema.KindBoolean)
	if err != nil {
		return false, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (r *Record) GetByte(name string) (int8, error) {
	col, field, err := r.resolveKind(name, schema.KindByte)
	if err != nil {
		return 0, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return 0, err
	}
	return v.(int8), nil
}

func (r *Record) GetShort(name string) (int16, error) {
	col, field, err := r.resolveKind(name, schema.KindShort)
	if err != nil {
		return 0, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return 0, err
	}
	return v.(int16), nil
}

func (r *Record) GetInteger(name string) (int32, error) {
	col, field, err := r.resolveKind(name, schema.KindInteger)
	if err != nil {
		return 0, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return 0, err
	}
	return v.(int32), nil
}

func (r *Record) GetLong(name string) (int64, error) {
	col, field, err := r.resolveKind(name, schema.KindLong)
	if err != nil {
		return 0, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (r *Record) GetFloat(name string) (float32, error) {
	col, field, err := r.resolveKind(name, schema.KindFloat)
	if err != nil {
		return 0, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return 0, err
	}
	return v.(float32), nil
}

func (r *Record) GetDouble(name string) (float64, error) {
	col, field, err := r.resolveKind(name, schema.KindDouble)
	if err != nil {
		return 0, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (r *Record) GetString(name string) (string, error) {
	col, field, err := r.resolveKind(name, schema.KindString)
	if err != nil {
		return "", err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Record) GetBinary(name string) ([]byte, error) {
	col, field, err := r.resolveKind(name, schema.KindBinary)
	if err != nil {
		return nil, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetDate returns the encoded calendar day as midnight UTC; dates
// carry no time-zone component.
func (r *Record) GetDate(name string) (time.Time, error) {
	col, field, err := r.resolveKind(name, schema.KindDate)
	if err != nil {
		return time.Time{}, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

// GetTimestamp returns the column's value reinterpreted in the
// iterator's configured parquet time zone.
func (r *Record) GetTimestamp(name string) (time.Time, error) {
	col, field, err := r.resolveKind(name, schema.KindTimestamp)
	if err != nil {
		return time.Time{}, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

func (r *Record) GetDecimal(name string) (decimal.Decimal, error) {
	col, field, err := r.resolveKind(name, schema.KindDecimal)
	if err != nil {
		return decimal.Decimal{}, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return v.(decimal.Decimal), nil
}

// GetList returns a list column's elements, decoded per the schema's
// element type. A nil entry marks a null element.
func (r *Record) GetList(name string) ([]interface{}, error) {
	col, field, err := r.resolveKind(name, schema.KindArray)
	if err != nil {
		return nil, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return nil, err
	}
	out, ok := v.([]interface{})
	if !ok {
		return nil, TypeMismatch(name, field.Type.String(), "array")
	}
	return out, nil
}

// GetMap returns a map column's entries, decoded per the schema's key
// and value types. A nil value marks a null map value.
func (r *Record) GetMap(name string) (map[interface{}]interface{}, error) {
	col, field, err := r.resolveKind(name, schema.KindMap)
	if err != nil {
		return nil, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return nil, err
	}
	out, ok := v.(map[interface{}]interface{})
	if !ok {
		return nil, TypeMismatch(name, field.Type.String(), "map")
	}
	return out, nil
}

// GetRecord returns a nested struct column as its own Record.
func (r *Record) GetRecord(name string) (*Record, error) {
	col, field, err := r.resolveKind(name, schema.KindStruct)
	if err != nil {
		return nil, err
	}
	v, err := decodeElement(col, r.row, field.Type, r.tz)
	if err != nil {
		return nil, err
	}
	out, ok := v.(*Record)
	if !ok {
		return nil, TypeMismatch(name, field.Type.String(), "struct")
	}
	return out, nil
}
