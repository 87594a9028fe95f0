package errors

import (
	"testing"
)

func TestNewCode(t *testing.T) {
	// Test valid codes
	validCodes := []string{
		"schema.invalid_schema",
		"replay.invariant_violation",
		"snapshot.table_not_found",
		"store.qualify_failed",
		"config.time_zone_invalid",
	}

	for _, codeStr := range validCodes {
		code, err := NewCode(codeStr)
		if err != nil {
			t.Errorf("Expected valid code '%s' to succeed, got error: %v", codeStr, err)
		}
		if code.String() != codeStr {
			t.Errorf("Expected code string '%s', got '%s'", codeStr, code.String())
		}
	}

	// Test invalid codes
	invalidCodes := []string{
		"invalid",                 // No dot
		"schema.",                 // Ends with dot
		".table_not_found",        // Starts with dot
		"Schema.invalid_schema",   // Uppercase
		"schema.invalid-schema",   // Hyphens not allowed
		"schema.invalid_schema.",  // Ends with dot
		"schema..invalid_schema",  // Double dot
		"error.table_not_found",   // Contains "error"
		"err.table_not_found",     // Contains "err"
	}

	for _, codeStr := range invalidCodes {
		_, err := NewCode(codeStr)
		if err == nil {
			t.Errorf("Expected invalid code '%s' to fail, but it succeeded", codeStr)
		}
	}
}

func TestMustNewCode(t *testing.T) {
	// Test valid code
	code := MustNewCode("schema.invalid_schema")
	if code.String() != "schema.invalid_schema" {
		t.Errorf("Expected code 'schema.invalid_schema', got '%s'", code.String())
	}

	// Test that it panics with invalid code
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected MustNewCode to panic with invalid code")
		}
	}()
	MustNewCode("invalid")
}

func TestCodePackageAndName(t *testing.T) {
	code := MustNewCode("schema.invalid_schema")

	if code.Package() != "schema" {
		t.Errorf("Expected package 'schema', got '%s'", code.Package())
	}

	if code.Name() != "invalid_schema" {
		t.Errorf("Expected name 'invalid_schema', got '%s'", code.Name())
	}
}

func TestCodeIsValid(t *testing.T) {
	validCode := MustNewCode("schema.invalid_schema")
	if !validCode.IsValid() {
		t.Error("Expected valid code to return true for IsValid()")
	}

	// Create an invalid code by directly setting the value
	invalidCode := Code{value: "invalid"}
	if invalidCode.IsValid() {
		t.Error("Expected invalid code to return false for IsValid()")
	}
}

func TestCodeEquals(t *testing.T) {
	code1 := MustNewCode("schema.invalid_schema")
	code2 := MustNewCode("schema.invalid_schema")
	code3 := MustNewCode("replay.invariant_violation")

	if !code1.Equals(code2) {
		t.Error("Expected identical codes to be equal")
	}

	if code1.Equals(code3) {
		t.Error("Expected different codes to not be equal")
	}
}

func TestPackageSpecificCodeConstructors(t *testing.T) {
	tests := []struct {
		name     string
		code     Code
		expected string
	}{
		{"SchemaCode", SchemaCode("invalid_schema"), "schema.invalid_schema"},
		{"ActionsCode", ActionsCode("malformed_json"), "actions.malformed_json"},
		{"ReplayCode", ReplayCode("invariant_violation"), "replay.invariant_violation"},
		{"SnapshotCode", SnapshotCode("table_not_found"), "snapshot.table_not_found"},
		{"RowioCode", RowioCode("column_not_found"), "rowio.column_not_found"},
		{"StoreCode", StoreCode("qualify_failed"), "store.qualify_failed"},
		{"ConfigCode", ConfigCode("time_zone_invalid"), "config.time_zone_invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code.String() != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tt.code.String())
			}
		})
	}
}

func TestPackageCode(t *testing.T) {
	// Test custom package code
	customCode := PackageCode("cmd", "flag_parse_failed")
	if customCode.String() != "cmd.flag_parse_failed" {
		t.Errorf("Expected 'cmd.flag_parse_failed', got '%s'", customCode.String())
	}

	// Test that it validates the format
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected PackageCode to panic with invalid format")
		}
	}()
	PackageCode("InvalidPackage", "problem")
}

func TestCommonCodes(t *testing.T) {
	// Test that common codes are properly formatted
	commonCodes := []Code{
		CommonInternal,
		CommonNotFound,
		CommonValidation,
		CommonTimeout,
		CommonUnauthorized,
		CommonForbidden,
		CommonConflict,
		CommonUnsupported,
		CommonInvalidInput,
		CommonAlreadyExists,
	}

	for _, code := range commonCodes {
		if !code.IsValid() {
			t.Errorf("Common code '%s' is not valid", code.String())
		}

		if code.Package() != "common" {
			t.Errorf("Expected package 'common' for '%s', got '%s'", code.String(), code.Package())
		}
	}
}
