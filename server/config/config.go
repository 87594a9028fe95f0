package config

import (
	"os"
	"time"

	"github.com/parquetlake/tablelog/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a tablelog-inspect
// invocation: how to log, and how to interpret the recognized table
// configuration keys from spec §6.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Table TableConfig `yaml:"table"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // "json" or "console"
	FilePath   string `yaml:"file_path"`
	Console    bool   `yaml:"console"`
	MaxSize    int    `yaml:"max_size"`    // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
	Cleanup    bool   `yaml:"cleanup"`
}

// TableConfig holds the recognized configuration keys of spec §6.
type TableConfig struct {
	// TimeZoneID names the zone used when decoding timestamps lacking
	// zone info, corresponding to the parquet.time.zone.id key.
	TimeZoneID string `yaml:"parquet.time.zone.id"`
	// CacheSize is the optional per-process LRU size on snapshots per
	// table, corresponding to the log.cacheSize key. Zero disables
	// caching.
	CacheSize int `yaml:"log.cacheSize"`
}

// LoadDefaultConfig returns the configuration used when no config file
// is given: console logging at info level, UTC timestamps, caching
// disabled.
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Console: true,
		},
		Table: TableConfig{
			TimeZoneID: "UTC",
			CacheSize:  0,
		},
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).
			AddContext("path", filename)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).
			AddContext("path", filename)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}

	return config, nil
}

// SaveConfig writes config as YAML to filename.
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err).
			AddContext("path", filename)
	}
	return nil
}

// Validate checks that the recognized table configuration keys hold
// sensible values.
func (c *Config) Validate() error {
	if c.Table.CacheSize < 0 {
		return errors.Newf(ErrCacheSizeNegative, "log.cacheSize must be >= 0, got %d", c.Table.CacheSize)
	}
	if _, err := c.Table.TimeZone(); err != nil {
		return err
	}
	return nil
}

// TimeZone resolves TimeZoneID to a *time.Location, defaulting to UTC
// when unset.
func (t TableConfig) TimeZone() (*time.Location, error) {
	id := t.TimeZoneID
	if id == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, errors.Newf(ErrTimeZoneInvalid, "invalid parquet.time.zone.id %q", id).WithCause(err)
	}
	return loc, nil
}
