package errors

import (
	"fmt"
	"regexp"
	"strings"
)

// Code represents a validated error code with package prefix
type Code struct {
	value string
}

// Common error codes shared across packages that have no more specific
// taxonomy of their own (e.g. WithAdditional's fallback path).
var (
	CommonInternal      = MustNewCode("common.internal")
	CommonNotFound      = MustNewCode("common.not_found")
	CommonValidation    = MustNewCode("common.validation")
	CommonTimeout       = MustNewCode("common.timeout")
	CommonUnauthorized  = MustNewCode("common.unauthorized")
	CommonForbidden     = MustNewCode("common.forbidden")
	CommonConflict      = MustNewCode("common.conflict")
	CommonUnsupported   = MustNewCode("common.unsupported")
	CommonInvalidInput  = MustNewCode("common.invalid_input")
	CommonAlreadyExists = MustNewCode("common.already_exists")
)

// Validation regex: package.name format
var codeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// NewCode creates a new validated Code
func NewCode(s string) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code{}, fmt.Errorf("invalid code format '%s': must be 'package.name' (lowercase, underscores, dots only)", s)
	}

	// "error"/"err" in a code is almost always a copy-paste of the
	// message itself; the package.name pair should stand on its own.
	if strings.Contains(s, "error") || strings.Contains(s, "err") {
		return Code{}, fmt.Errorf("invalid code '%s': should not contain 'error' or 'err'", s)
	}

	return Code{value: s}, nil
}

// MustNewCode creates a new Code or panics if invalid. Every
// package-specific errors.go in this module calls this (or one of the
// PackageCode-style helpers below) at init time, so an invalid code
// fails fast at process startup rather than at first use.
func MustNewCode(s string) Code {
	code, err := NewCode(s)
	if err != nil {
		panic(err)
	}
	return code
}

// PackageCode builds a Code for an arbitrary package prefix. It exists
// for the handful of one-off codes that don't belong to one of the
// named module packages below (tests, CLI-only diagnostics).
func PackageCode(pkg, name string) Code {
	return MustNewCode(pkg + "." + name)
}

// The remaining constructors name every package in this module that
// carries its own error taxonomy. They're thin wrappers over
// MustNewCode, but pin the package prefix so a code can't drift out of
// sync with the package it's declared in (a copy-pasted
// "replay.foo" landing in server/schema would be caught at the call
// site by these instead of only at code-review time).

// SchemaCode builds a code in the schema.* namespace.
func SchemaCode(name string) Code { return MustNewCode("schema." + name) }

// ActionsCode builds a code in the actions.* namespace.
func ActionsCode(name string) Code { return MustNewCode("actions." + name) }

// ReplayCode builds a code in the replay.* namespace.
func ReplayCode(name string) Code { return MustNewCode("replay." + name) }

// SnapshotCode builds a code in the snapshot.* namespace.
func SnapshotCode(name string) Code { return MustNewCode("snapshot." + name) }

// RowioCode builds a code in the rowio.* namespace.
func RowioCode(name string) Code { return MustNewCode("rowio." + name) }

// StoreCode builds a code in the store.* namespace.
func StoreCode(name string) Code { return MustNewCode("store." + name) }

// ConfigCode builds a code in the config.* namespace.
func ConfigCode(name string) Code { return MustNewCode("config." + name) }

// String returns the string representation of the Code
func (c Code) String() string {
	return c.value
}

// Package returns the package prefix from the code
func (c Code) Package() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[:idx]
	}
	return ""
}

// Name returns the name part from the code
func (c Code) Name() string {
	if idx := strings.Index(c.value, "."); idx != -1 {
		return c.value[idx+1:]
	}
	return c.value
}

// IsValid returns true if the code is properly formatted
func (c Code) IsValid() bool {
	return codeRegex.MatchString(c.value)
}

// Equals checks if two codes are equal
func (c Code) Equals(other Code) bool {
	return c.value == other.value
}
