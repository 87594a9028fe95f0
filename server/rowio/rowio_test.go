package rowio

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquetlake/tablelog/server/actions"
	"github.com/parquetlake/tablelog/server/schema"
	"github.com/parquetlake/tablelog/server/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() schema.Struct {
	dec, _ := schema.NewDecimal(10, 2)
	st, _ := schema.NewStruct([]schema.Field{
		{Name: "id", Type: schema.Long, Nullable: false},
		{Name: "name", Type: schema.String, Nullable: true},
		{Name: "amount", Type: dec, Nullable: false},
		{Name: "created", Type: schema.Timestamp, Nullable: false},
		{Name: "tags", Type: schema.Array{Element: schema.String, ContainsNull: false}, Nullable: false},
	})
	return st
}

func buildTestRecord(t *testing.T) arrow.Record {
	mem := memory.NewGoAllocator()

	idB := array.NewInt64Builder(mem)
	defer idB.Release()
	idB.AppendValues([]int64{1, 2}, nil)

	nameB := array.NewStringBuilder(mem)
	defer nameB.Release()
	nameB.Append("alice")
	nameB.AppendNull()

	amtB := array.NewDecimal128Builder(mem, &arrow.Decimal128Type{Precision: 10, Scale: 2})
	defer amtB.Release()
	amtB.Append(decimal128.FromI64(12345))
	amtB.Append(decimal128.FromI64(-500))

	tsType := &arrow.TimestampType{Unit: arrow.Millisecond}
	tsB := array.NewTimestampBuilder(mem, tsType)
	defer tsB.Release()
	// naive 2024-01-01T09:00:00.000 (as if authored in JST)
	naive := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tsB.Append(arrow.Timestamp(naive.UnixMilli()))
	tsB.Append(arrow.Timestamp(naive.UnixMilli()))

	tagsB := array.NewListBuilder(mem, arrow.BinaryTypes.String)
	defer tagsB.Release()
	tagsVB := tagsB.ValueBuilder().(*array.StringBuilder)
	tagsB.Append(true)
	tagsVB.Append("x")
	tagsVB.Append("y")
	tagsB.Append(true)
	tagsVB.Append("z")

	id := idB.NewInt64Array()
	name := nameB.NewStringArray()
	amt := amtB.NewDecimal128Array()
	ts := tsB.NewTimestampArray()
	tags := tagsB.NewListArray()

	arrowSchema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "amount", Type: amt.DataType()},
		{Name: "created", Type: tsType},
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String)},
	}, nil)

	return array.NewRecord(arrowSchema, []arrow.Array{id, name, amt, ts, tags}, 2)
}

type oneShotReader struct {
	rec  arrow.Record
	done bool
}

func (r *oneShotReader) Next() (arrow.Record, error) {
	if r.done {
		return nil, io.EOF
	}
	r.done = true
	r.rec.Retain()
	return r.rec, nil
}

func (r *oneShotReader) Close() error { return nil }

type fakeColumnReader struct {
	rec     arrow.Record
	opened  int
	tzsSeen []*time.Location
}

func (f *fakeColumnReader) OpenColumnar(ctx context.Context, path string, projected schema.DataType, tz *time.Location) (store.RecordBatchReader, error) {
	f.opened++
	f.tzsSeen = append(f.tzsSeen, tz)
	return &oneShotReader{rec: f.rec}, nil
}

func TestIteratorDrainsRowsThenEOF(t *testing.T) {
	rec := buildTestRecord(t)
	defer rec.Release()

	jst, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	cr := &fakeColumnReader{rec: rec}
	files := []actions.AddFile{{Path: "f1.parquet"}}
	it := NewIterator(context.Background(), files, testSchema(), cr, jst)
	defer it.Close()

	row1, err := it.Next()
	require.NoError(t, err)

	id, err := row1.GetLong("id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	name, err := row1.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	amt, err := row1.GetDecimal("amount")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(123.45).Equal(amt))

	ts, err := row1.GetTimestamp("created")
	require.NoError(t, err)
	assert.Equal(t, jst, ts.Location())
	assert.Equal(t, 9, ts.Hour())

	tags, err := row1.GetList("tags")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x", "y"}, tags)

	row2, err := it.Next()
	require.NoError(t, err)
	isNull, err := row2.IsNull("name")
	require.NoError(t, err)
	assert.True(t, isNull)

	_, err = it.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 1, cr.opened)
}

func TestGetWrongAccessorIsTypeMismatch(t *testing.T) {
	rec := buildTestRecord(t)
	defer rec.Release()

	cr := &fakeColumnReader{rec: rec}
	files := []actions.AddFile{{Path: "f1.parquet"}}
	it := NewIterator(context.Background(), files, testSchema(), cr, time.UTC)
	defer it.Close()

	row, err := it.Next()
	require.NoError(t, err)

	_, err = row.GetString("id")
	assert.Error(t, err)
}

func TestGetMissingColumnIsColumnNotFound(t *testing.T) {
	rec := buildTestRecord(t)
	defer rec.Release()

	cr := &fakeColumnReader{rec: rec}
	files := []actions.AddFile{{Path: "f1.parquet"}}
	it := NewIterator(context.Background(), files, testSchema(), cr, time.UTC)
	defer it.Close()

	row, err := it.Next()
	require.NoError(t, err)

	_, err = row.GetString("nope")
	assert.Error(t, err)
}

func TestIteratorMultipleFilesInOrder(t *testing.T) {
	rec := buildTestRecord(t)
	defer rec.Release()

	cr := &fakeColumnReader{rec: rec}
	files := []actions.AddFile{{Path: "a.parquet"}, {Path: "b.parquet"}}
	it := NewIterator(context.Background(), files, testSchema(), cr, time.UTC)
	defer it.Close()

	count := 0
	for {
		_, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 4, count)
	assert.Equal(t, 2, cr.opened)
}
