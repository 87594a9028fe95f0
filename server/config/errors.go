package config

import "github.com/parquetlake/tablelog/pkg/errors"

// Package-specific error codes for configuration loading and logging setup.
var (
	ErrConfigFileReadFailed    = errors.ConfigCode("file_read_failed")
	ErrConfigFileParseFailed   = errors.ConfigCode("file_parse_failed")
	ErrConfigFileMarshalFailed = errors.ConfigCode("file_marshal_failed")
	ErrConfigFileWriteFailed   = errors.ConfigCode("file_write_failed")
	ErrConfigValidationFailed  = errors.ConfigCode("validation_failed")
	ErrTimeZoneInvalid         = errors.ConfigCode("time_zone_invalid")
	ErrCacheSizeNegative       = errors.ConfigCode("cache_size_negative")

	ErrLogDirectoryCreationFailed = errors.ConfigCode("log_directory_creation_failed")
	ErrLogFilePathRequired        = errors.ConfigCode("log_file_path_required")
	ErrLogFileOpenFailed          = errors.ConfigCode("log_file_open_failed")
	ErrLogFileStatFailed          = errors.ConfigCode("log_file_stat_failed")
	ErrLogRotationCheckFailed     = errors.ConfigCode("log_rotation_check_failed")
	ErrLogRotationFailed          = errors.ConfigCode("log_rotation_failed")
	ErrLogBackupReadFailed        = errors.ConfigCode("log_backup_read_failed")
	ErrLogBackupRemoveFailed      = errors.ConfigCode("log_backup_remove_failed")
	ErrLogCleanupFailed           = errors.ConfigCode("log_cleanup_failed")
	ErrLogFileWriterSetupFailed   = errors.ConfigCode("log_file_writer_setup_failed")
)
