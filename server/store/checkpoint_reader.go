package store

import (
	"context"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/google/uuid"
	"github.com/parquetlake/tablelog/pkg/errors"
	"github.com/parquetlake/tablelog/server/actions"
)

// LocalParquetCheckpointReader decodes a table's checkpoint artifacts.
// A checkpoint is a Parquet file whose rows mirror the action log's own
// record shape: one nullable struct column per action variant
// (metaData, protocol, add, remove, commitInfo), exactly one of which
// is populated per row, using the same field names as the JSON commit
// codec. It uses the same Parquet/Arrow bridge as
// LocalParquetColumnReader, scoped separately per store.CheckpointReader's
// doc comment because the checkpoint's own schema is fixed, not the
// table's projected data schema.
type LocalParquetCheckpointReader struct {
	allocator memory.Allocator
}

// NewLocalParquetCheckpointReader creates a reader using the default Go
// memory allocator.
func NewLocalParquetCheckpointReader() *LocalParquetCheckpointReader {
	return &LocalParquetCheckpointReader{allocator: memory.NewGoAllocator()}
}

// ReadCheckpoint decodes every row of the checkpoint at path into an
// Action, in file order. A row with no populated variant column
// decodes to a KindUnknown Action, matching the wire codec's handling
// of a JSON line with no recognized top-level key.
func (r *LocalParquetCheckpointReader) ReadCheckpoint(ctx context.Context, path string) ([]actions.Action, error) {
	localPath, err := localPathFromURI(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, errors.New(ErrLogOpenFailed, "failed to open checkpoint file", err).AddContext("path", localPath)
	}
	defer f.Close()

	pr, err := file.NewParquetReader(f)
	if err != nil {
		return nil, errors.New(ErrCheckpointCorrupt, "failed to open checkpoint parquet reader", err).AddContext("path", localPath)
	}
	defer pr.Close()

	arrowReader, err := pqarrow.NewFileReader(pr, pqarrow.ArrowReadProperties{}, r.allocator)
	if err != nil {
		return nil, errors.New(ErrCheckpointCorrupt, "failed to build checkpoint arrow reader", err).AddContext("path", localPath)
	}

	recordReader, err := arrowReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, errors.New(ErrCheckpointCorrupt, "failed to open checkpoint record reader", err).AddContext("path", localPath)
	}
	defer recordReader.Release()

	var out []actions.Action
	for {
		rec, err := recordReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(ErrCheckpointCorrupt, "failed to read checkpoint batch", err).AddContext("path", localPath)
		}
		rows, err := decodeCheckpointBatch(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// decodeCheckpointBatch decodes every row of one Arrow record batch
// into an Action, dispatching on whichever of the five variant struct
// columns is non-null for that row.
func decodeCheckpointBatch(rec arrow.Record) ([]actions.Action, error) {
	metaCol, _ := recordStructColumn(rec, "metaData")
	protoCol, _ := recordStructColumn(rec, "protocol")
	addCol, _ := recordStructColumn(rec, "add")
	removeCol, _ := recordStructColumn(rec, "remove")
	commitCol, _ := recordStructColumn(rec, "commitInfo")

	rows := int(rec.NumRows())
	out := make([]actions.Action, 0, rows)
	for row := 0; row < rows; row++ {
		switch {
		case metaCol != nil && !metaCol.IsNull(row):
			m, err := decodeMetadataRow(metaCol, row)
			if err != nil {
				return nil, err
			}
			out = append(out, actions.Action{Kind: actions.KindMetadata, Metadata: m})
		case protoCol != nil && !protoCol.IsNull(row):
			out = append(out, actions.Action{Kind: actions.KindProtocol, Protocol: decodeProtocolRow(protoCol, row)})
		case addCol != nil && !addCol.IsNull(row):
			out = append(out, actions.Action{Kind: actions.KindAdd, Add: decodeAddRow(addCol, row)})
		case removeCol != nil && !removeCol.IsNull(row):
			out = append(out, actions.Action{Kind: actions.KindRemove, Remove: decodeRemoveRow(removeCol, row)})
		case commitCol != nil && !commitCol.IsNull(row):
			out = append(out, actions.Action{Kind: actions.KindCommitInfo, CommitInfo: decodeCommitInfoRow(commitCol, row)})
		default:
			out = append(out, actions.Action{Kind: actions.KindUnknown})
		}
	}
	return out, nil
}

func recordStructColumn(rec arrow.Record, name string) (*array.Struct, bool) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, false
	}
	col, ok := rec.Column(indices[0]).(*array.Struct)
	return col, ok
}

func structField(col *array.Struct, name string) (arrow.Array, bool) {
	st, ok := col.DataType().(*arrow.StructType)
	if !ok {
		return nil, false
	}
	idx, ok := st.FieldIdx(name)
	if !ok {
		return nil, false
	}
	return col.Field(idx), true
}

func stringField(col *array.Struct, name string, row int) string {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return ""
	}
	return arr.(*array.String).Value(row)
}

func optionalStringField(col *array.Struct, name string, row int) *string {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return nil
	}
	v := arr.(*array.String).Value(row)
	return &v
}

func int64Field(col *array.Struct, name string, row int) int64 {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return 0
	}
	return arr.(*array.Int64).Value(row)
}

func optionalInt64Field(col *array.Struct, name string, row int) *int64 {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return nil
	}
	v := arr.(*array.Int64).Value(row)
	return &v
}

func int32Field(col *array.Struct, name string, row int) int {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return 0
	}
	return int(arr.(*array.Int32).Value(row))
}

func boolField(col *array.Struct, name string, row int) bool {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return false
	}
	return arr.(*array.Boolean).Value(row)
}

func optionalBoolField(col *array.Struct, name string, row int) *bool {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return nil
	}
	v := arr.(*array.Boolean).Value(row)
	return &v
}

func stringMapField(col *array.Struct, name string, row int) map[string]string {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return nil
	}
	m, ok := arr.(*array.Map)
	if !ok {
		return nil
	}
	start, end := m.ValueOffsets(row)
	keys := m.Keys().(*array.String)
	items := m.Items().(*array.String)
	out := make(map[string]string, end-start)
	for i := start; i < end; i++ {
		if items.IsNull(int(i)) {
			continue
		}
		out[keys.Value(int(i))] = items.Value(int(i))
	}
	return out
}

func stringListField(col *array.Struct, name string, row int) []string {
	arr, ok := structField(col, name)
	if !ok || arr.IsNull(row) {
		return nil
	}
	lst, ok := arr.(*array.List)
	if !ok {
		return nil
	}
	start, end := lst.ValueOffsets(row)
	values := lst.ListValues().(*array.String)
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, values.Value(int(i)))
	}
	return out
}

func decodeMetadataRow(col *array.Struct, row int) (*actions.Metadata, error) {
	idStr := stringField(col, "id", row)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, errors.Wrapf(ErrCheckpointCorrupt, err, "malformed metaData.id %q in checkpoint row", idStr)
	}

	m := &actions.Metadata{
		ID:               id,
		Name:             stringField(col, "name", row),
		Description:      stringField(col, "description", row),
		SchemaString:     stringField(col, "schemaString", row),
		PartitionColumns: stringListField(col, "partitionColumns", row),
		Configuration:    stringMapField(col, "configuration", row),
		CreatedTime:      optionalInt64Field(col, "createdTime", row),
	}

	if formatArr, ok := structField(col, "format"); ok && !formatArr.IsNull(row) {
		if formatStruct, ok := formatArr.(*array.Struct); ok {
			m.Format = actions.Format{
				Provider: stringField(formatStruct, "provider", row),
				Options:  stringMapField(formatStruct, "options", row),
			}
		}
	}
	return m, nil
}

func decodeProtocolRow(col *array.Struct, row int) *actions.Protocol {
	return &actions.Protocol{
		MinReaderVersion: int32Field(col, "minReaderVersion", row),
		MinWriterVersion: int32Field(col, "minWriterVersion", row),
	}
}

func decodeAddRow(col *array.Struct, row int) *actions.AddFile {
	return &actions.AddFile{
		Path:             stringField(col, "path", row),
		PartitionValues:  stringMapField(col, "partitionValues", row),
		Size:             int64Field(col, "size", row),
		ModificationTime: int64Field(col, "modificationTime", row),
		DataChange:       boolField(col, "dataChange", row),
		Stats:            optionalStringField(col, "stats", row),
		Tags:             stringMapField(col, "tags", row),
	}
}

func decodeRemoveRow(col *array.Struct, row int) *actions.RemoveFile {
	return &actions.RemoveFile{
		Path:              stringField(col, "path", row),
		DeletionTimestamp: optionalInt64Field(col, "deletionTimestamp", row),
		DataChange:        boolField(col, "dataChange", row),
	}
}

func decodeCommitInfoRow(col *array.Struct, row int) *actions.CommitInfo {
	return &actions.CommitInfo{
		Version:             optionalInt64Field(col, "version", row),
		Timestamp:           int64Field(col, "timestamp", row),
		UserID:              stringField(col, "userId", row),
		UserName:            stringField(col, "userName", row),
		Operation:           stringField(col, "operation", row),
		OperationParameters: stringMapField(col, "operationParameters", row),
		Job:                 stringField(col, "job", row),
		Notebook:            stringField(col, "notebook", row),
		ReadVersion:         optionalInt64Field(col, "readVersion", row),
		IsolationLevel:      stringField(col, "isolationLevel", row),
		IsBlindAppend:       optionalBoolField(col, "isBlindAppend", row),
		OperationMetrics:    stringMapField(col, "operationMetrics", row),
		UserMetadata:        stringField(col, "userMetadata", row),
	}
}
