package rowio

import (
	"context"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquetlake/tablelog/server/actions"
	"github.com/parquetlake/tablelog/server/schema"
	"github.com/parquetlake/tablelog/server/store"
)

// Iterator lazily walks the live files of a snapshot, one data file at
// a time in the order they were given, presenting each row through a
// typed Record. It never opens more than one file's column reader at
// once, and releases both the current Arrow batch and the current
// reader deterministically on Close.
type Iterator struct {
	ctx          context.Context
	files        []actions.AddFile
	fields       schema.Struct
	columnReader store.ColumnReader
	tz           *time.Location

	fileIdx int
	reader  store.RecordBatchReader
	batch   arrow.Record
	rowIdx  int64
	closed  bool
}

// NewIterator constructs an Iterator over files, using columnReader to
// materialize each file's rows under the projected schema sch and time
// zone tz. Non-struct schemas fall back to an empty field set: every
// column access then reports ColumnNotFound, since a table's top-level
// schema is always a struct in practice.
func NewIterator(ctx context.Context, files []actions.AddFile, sch schema.DataType, columnReader store.ColumnReader, tz *time.Location) *Iterator {
	fields, _ := sch.(schema.Struct)
	return &Iterator{
		ctx:          ctx,
		files:        files,
		fields:       fields,
		columnReader: columnReader,
		tz:           tz,
	}
}

// Next returns the next row across all files, in file order and then
// batch/row order within each file. It returns io.EOF once every file
// has been drained.
func (it *Iterator) Next() (*Record, error) {
	if it.closed {
		return nil, io.EOF
	}
	for {
		if it.batch != nil && it.rowIdx < it.batch.NumRows() {
			rec := newRowRecord(it.batch, int(it.rowIdx), it.fields, it.tz)
			it.rowIdx++
			return rec, nil
		}

		if it.batch != nil {
			it.batch.Release()
			it.batch = nil
		}

		if it.reader != nil {
			next, err := it.reader.Next()
			if err == io.EOF {
				it.reader.Close()
				it.reader = nil
				continue
			}
			if err != nil {
				return nil, err
			}
			it.batch = next
			it.rowIdx = 0
			continue
		}

		if it.fileIdx >= len(it.files) {
			return nil, io.EOF
		}
		f := it.files[it.fileIdx]
		it.fileIdx++
		reader, err := it.columnReader.OpenColumnar(it.ctx, f.Path, it.fields, it.tz)
		if err != nil {
			return nil, err
		}
		it.reader = reader
	}
}

// Close releases the current batch and underlying reader, if any. It
// is safe to call multiple times.
func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.batch != nil {
		it.batch.Release()
		it.batch = nil
	}
	if it.reader != nil {
		err := it.reader.Close()
		it.reader = nil
		return err
	}
	return nil
}
