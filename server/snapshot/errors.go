package snapshot

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for snapshot construction
var (
	ErrTableNotFound   = errors.SnapshotCode("table_not_found")
	ErrVersionNotFound = errors.SnapshotCode("version_not_found")
)
