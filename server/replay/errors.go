package replay

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for the log replay engine
var (
	ErrInvariantViolation = errors.ReplayCode("invariant_violation")
	ErrMalformedURI       = errors.ReplayCode("malformed_uri")
)
