package main

import (
	"context"
	"fmt"
	"os"

	"github.com/parquetlake/tablelog/pkg/errors"
	"github.com/parquetlake/tablelog/server/config"
	"github.com/parquetlake/tablelog/server/snapshot"
	"github.com/parquetlake/tablelog/server/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath  string
	flagTargetVersion int64
	flagTimeZone    string
	flagCacheSize   int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.FormatError(errors.AsError(err)))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "tablelog-inspect <table-root>",
		Short:   "Inspect a table's transaction log without a query engine",
		Version: "0.1.0",
		Long: `tablelog-inspect replays a table's commit log and reports the
resulting snapshot: its version, live file set, and schema. It performs
no query planning or execution; it exists to answer "what does this
table currently look like" from the log alone.`,
	}

	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a YAML config file (optional)")
	root.PersistentFlags().Int64Var(&flagTargetVersion, "version", snapshot.LatestVersion, "table version to load (default: latest)")
	root.PersistentFlags().StringVar(&flagTimeZone, "tz", "", "override parquet.time.zone.id")
	root.PersistentFlags().IntVar(&flagCacheSize, "cache-size", -1, "override log.cacheSize (-1: use config)")

	root.AddCommand(newSnapshotCmd(), newFilesCmd(), newSchemaCmd())
	return root
}

func loadRuntimeConfig() (*config.Config, zerolog.Logger, error) {
	var cfg *config.Config
	var err error
	if flagConfigPath != "" {
		cfg, err = config.LoadConfig(flagConfigPath)
	} else {
		cfg = config.LoadDefaultConfig()
	}
	if err != nil {
		return nil, zerolog.Logger{}, err
	}

	if flagTimeZone != "" {
		cfg.Table.TimeZoneID = flagTimeZone
	}
	if flagCacheSize >= 0 {
		cfg.Table.CacheSize = flagCacheSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Logger{}, err
	}

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	return cfg, logger, nil
}

func loadSnapshot(ctx context.Context, tableRoot string) (*snapshot.Snapshot, error) {
	cfg, logger, err := loadRuntimeConfig()
	if err != nil {
		return nil, err
	}
	tz, err := cfg.Table.TimeZone()
	if err != nil {
		return nil, err
	}

	loader := &snapshot.Loader{
		FileStore:        store.NewLocalFileStore(),
		CheckpointReader: store.NewLocalParquetCheckpointReader(),
		ColumnReader:     store.NewLocalParquetColumnReader(),
		TimeZone:         tz,
		Logger:           logger,
		Cache:            snapshotCache(cfg.Table.CacheSize),
	}
	return loader.Load(ctx, tableRoot, flagTargetVersion)
}

// snapshotCache builds the Loader's snapshot cache from log.cacheSize.
// loadSnapshot calls it on every load, so each Loader gets a fresh
// cache; a single CLI invocation only ever loads one snapshot, so
// within the CLI the cache never serves a hit. A size of zero disables
// it.
func snapshotCache(size int) *snapshot.Cache {
	return snapshot.NewCache(size)
}
