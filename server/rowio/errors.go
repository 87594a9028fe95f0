package rowio

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for the row-over-column adapter.
var (
	ErrColumnNotFound  = errors.RowioCode("column_not_found")
	ErrTypeMismatch    = errors.RowioCode("type_mismatch")
	ErrUnsupportedKind = errors.RowioCode("unsupported_kind")
)

// ColumnNotFound reports an accessor call against a name absent from
// the record's schema.
func ColumnNotFound(name string) error {
	return errors.Newf(ErrColumnNotFound, "column %q not found in record schema", name).
		AddContext("column", name)
}

// TypeMismatch reports an accessor call using the wrong typed getter.
func TypeMismatch(name, expected, actual string) error {
	return errors.Newf(ErrTypeMismatch, "column %q: expected %s, accessor requested %s", name, expected, actual).
		AddContext("column", name).
		AddContext("expected", expected).
		AddContext("actual", actual)
}
