package actions

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for the action wire codec
var (
	ErrCodecMalformedJSON   = errors.ActionsCode("malformed_json")
	ErrCodecMultipleVariant = errors.ActionsCode("multiple_variants_set")
	ErrCodecMissingField    = errors.ActionsCode("missing_required_field")
)
