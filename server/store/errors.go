package store

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for injected collaborators
var (
	ErrLogListFailed     = errors.StoreCode("log_list_failed")
	ErrLogOpenFailed     = errors.StoreCode("log_open_failed")
	ErrQualifyFailed     = errors.StoreCode("qualify_failed")
	ErrUnsupportedType   = errors.StoreCode("unsupported_type")
	ErrCheckpointCorrupt = errors.StoreCode("checkpoint_corrupt")
)
