package schema

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for the schema model
var (
	ErrInvalidSchema        = errors.SchemaCode("invalid_schema")
	ErrDuplicateFieldName   = errors.SchemaCode("duplicate_field_name")
	ErrDecimalOutOfRange    = errors.SchemaCode("decimal_out_of_range")
	ErrUnknownPrimitiveType = errors.SchemaCode("unknown_primitive_type")
)
