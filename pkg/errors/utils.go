package errors

import (
	"fmt"
	"strings"
)

// IsTableError reports whether err carries the Code/Context/Cause
// structure of this package's Error, as opposed to a bare error
// surfaced by the standard library or a third-party dependency.
func IsTableError(err error) bool {
	_, ok := err.(*Error)
	return ok
}

// Helper to extract context from our errors
func GetContext(err error) map[string]string {
	if logErr, ok := err.(*Error); ok {
		return logErr.Context
	}
	return nil
}

// Helper to get error code
func GetCode(err error) string {
	if logErr, ok := err.(*Error); ok {
		return logErr.Code.String()
	}
	return ""
}

// Helper to format error for logging
func FormatError(err error) string {
	if logErr, ok := err.(*Error); ok {
		var parts []string
		parts = append(parts, fmt.Sprintf("Code: %s", logErr.Code))
		parts = append(parts, fmt.Sprintf("Message: %s", logErr.Message))

		if len(logErr.Context) > 0 {
			parts = append(parts, "Context:")
			for k, v := range logErr.Context {
				parts = append(parts, fmt.Sprintf("  %s: %v", k, v))
			}
		}

		if logErr.Cause != nil {
			parts = append(parts, fmt.Sprintf("Cause: %v", logErr.Cause))
		}

		return strings.Join(parts, "\n")
	}
	return err.Error()
}

// AsError normalizes any error into *Error: an existing *Error is
// returned unchanged, anything else (an os.PathError from the local
// file store, a yaml.TypeError from config parsing, an io error from
// the Parquet reader) is wrapped as CommonInternal with the original
// preserved as Cause. The CLI entry points use this to render a
// consistent Code/Context/Cause shape regardless of which layer an
// error originated in.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if tableErr, ok := err.(*Error); ok {
		return tableErr
	}
	return Wrap(CommonInternal, err, err.Error())
}
