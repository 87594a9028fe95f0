package store

import (
	"context"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/parquetlake/tablelog/server/actions"
	"github.com/parquetlake/tablelog/server/schema"
)

// LogFile describes one artifact discovered under a table's log
// directory: a numbered commit (`<version>.json`) or checkpoint
// (`<version>.checkpoint.parquet`).
type LogFile struct {
	Path         string
	Size         int64
	Version      int64
	IsCheckpoint bool
}

// LastCheckpoint is the tiny JSON pointer record stored at
// `_last_checkpoint`, naming the newest checkpoint without requiring a
// directory listing to find it.
type LastCheckpoint struct {
	Version int64 `json:"version"`
	Size    int64 `json:"size"`
	Parts   *int  `json:"parts,omitempty"`
}

// FileStore is the injected filesystem/object-store capability. The
// core never performs I/O directly; every byte comes through here.
// Implementations must preserve URI-escaping in Qualify.
type FileStore interface {
	// ListLog returns every commit and checkpoint artifact under the
	// table's log directory, in no particular order.
	ListLog(ctx context.Context, tableRoot string) ([]LogFile, error)
	// ReadLastCheckpoint returns the `_last_checkpoint` pointer, or nil
	// if the table has never been checkpointed.
	ReadLastCheckpoint(ctx context.Context, tableRoot string) (*LastCheckpoint, error)
	// OpenRead streams the bytes of a single log artifact.
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)
	// Qualify resolves a path to its canonical URI form.
	Qualify(path string) (string, error)
}

// RecordBatchReader streams Arrow record batches for a single data
// file. Next returns io.EOF once exhausted.
type RecordBatchReader interface {
	Next() (arrow.Record, error)
	Close() error
}

// ColumnReader is the injected columnar file reader. It must honor the
// configured time zone when materializing naive temporal columns.
type ColumnReader interface {
	OpenColumnar(ctx context.Context, path string, projected schema.DataType, tz *time.Location) (RecordBatchReader, error)
}

// CheckpointReader decodes the action rows stored in a checkpoint
// artifact. Checkpoints are Parquet-family files; decoding them is the
// same external columnar-reader concern §6 delegates for data files,
// scoped separately here because a checkpoint's schema is the action
// log's own schema, not a table's.
type CheckpointReader interface {
	ReadCheckpoint(ctx context.Context, path string) ([]actions.Action, error)
}

// Clock is the injected millisecond wall clock, used only for
// tombstone default timestamps on synthetic conversions.
type Clock interface {
	NowMillis() int64
}

// SystemClock is the trivial Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }
