package snapshot

import (
	"context"
	"sort"
	"time"

	"github.com/parquetlake/tablelog/server/actions"
	"github.com/parquetlake/tablelog/server/replay"
	"github.com/parquetlake/tablelog/server/rowio"
	"github.com/parquetlake/tablelog/server/store"
	"github.com/parquetlake/tablelog/pkg/errors"
	"github.com/rs/zerolog"
)

// LatestVersion requests the newest available version when loading a
// snapshot, rather than an explicit one.
const LatestVersion int64 = -1

// Snapshot is an immutable view of a table's state at a specific
// version. It is safe to share across goroutines for read-only access
// once returned by Load.
type Snapshot struct {
	version     int64
	protocol    actions.Protocol
	metadata    *Metadata
	files       []actions.AddFile
	sizeInBytes int64

	columnReader store.ColumnReader
	timeZone     *time.Location
	logger       zerolog.Logger
}

// GetVersion returns the version this snapshot was frozen at.
func (s *Snapshot) GetVersion() int64 { return s.version }

// GetMetadata returns the latest metaData action seen during replay.
func (s *Snapshot) GetMetadata() *Metadata { return s.metadata }

// GetProtocol returns the latest protocol action seen during replay.
func (s *Snapshot) GetProtocol() actions.Protocol { return s.protocol }

// GetAllFiles returns the live file set in a stable (path-sorted) order.
// The order is not part of the table format's contract, only of this
// implementation's determinism.
func (s *Snapshot) GetAllFiles() []actions.AddFile { return s.files }

// GetNumOfFiles returns the number of live files.
func (s *Snapshot) GetNumOfFiles() int64 { return int64(len(s.files)) }

// GetSizeInBytes returns the sum of live file sizes.
func (s *Snapshot) GetSizeInBytes() int64 { return s.sizeInBytes }

// Open returns a lazy row iterator over every live file, in
// GetAllFiles order.
func (s *Snapshot) Open(ctx context.Context) (*rowio.Iterator, error) {
	sch, err := s.metadata.Schema()
	if err != nil {
		return nil, err
	}
	return rowio.NewIterator(ctx, s.files, sch, s.columnReader, s.timeZone), nil
}

// Loader builds Snapshots from a table root, delegating all I/O to the
// injected FileStore and, when a checkpoint is used, CheckpointReader.
// Cache is optional: a nil Cache (or one created with NewCache(0))
// disables caching and every Load replays from scratch.
type Loader struct {
	FileStore        store.FileStore
	CheckpointReader store.CheckpointReader
	ColumnReader     store.ColumnReader
	TimeZone         *time.Location
	Logger           zerolog.Logger
	Cache            *Cache
}

// Load discovers commit artifacts up to targetVersion (or the newest
// available, if targetVersion is LatestVersion), optionally seeds
// replay from the newest checkpoint at or before that version, folds
// the remaining commits, and freezes the result.
func (l *Loader) Load(ctx context.Context, tableRoot string, targetVersion int64) (*Snapshot, error) {
	logFiles, err := l.FileStore.ListLog(ctx, tableRoot)
	if err != nil {
		return nil, err
	}

	var commits []store.LogFile
	var checkpoints []store.LogFile
	for _, f := range logFiles {
		if f.IsCheckpoint {
			checkpoints = append(checkpoints, f)
		} else {
			commits = append(commits, f)
		}
	}
	sort.Slice(commits, func(i, j int) bool { return commits[i].Version < commits[j].Version })
	sort.Slice(checkpoints, func(i, j int) bool { return checkpoints[i].Version < checkpoints[j].Version })

	if targetVersion == LatestVersion {
		if len(commits) > 0 {
			targetVersion = commits[len(commits)-1].Version
		} else if len(checkpoints) > 0 {
			targetVersion = checkpoints[len(checkpoints)-1].Version
		} else {
			return nil, errors.New(ErrTableNotFound, "no commits or checkpoints found under table root", nil).
				AddContext("table_root", tableRoot)
		}
	}

	if l.Cache != nil {
		if cached, ok := l.Cache.Get(tableRoot, targetVersion); ok {
			return cached, nil
		}
	}

	canon, err := replay.NewCanonicalizer(mustQualifyRoot(l.FileStore, tableRoot))
	if err != nil {
		return nil, err
	}
	builder := replay.NewBuilder(canon, l.Logger)

	startVersion := int64(0)
	checkpoint, err := l.resolveCheckpoint(ctx, tableRoot, checkpoints, targetVersion)
	if err != nil {
		return nil, err
	}
	if checkpoint != nil {
		if l.CheckpointReader == nil {
			return nil, errors.Newf(ErrTableNotFound,
				"checkpoint at version %d requires a CheckpointReader but none was configured", checkpoint.Version)
		}
		batch, err := l.CheckpointReader.ReadCheckpoint(ctx, checkpoint.Path)
		if err != nil {
			return nil, err
		}
		if err := builder.ApplyCheckpoint(checkpoint.Version, batch); err != nil {
			return nil, err
		}
		startVersion = checkpoint.Version + 1
	}

	for _, c := range commits {
		if c.Version < startVersion || c.Version > targetVersion {
			continue
		}
		batch, err := l.readCommit(ctx, c.Path)
		if err != nil {
			return nil, err
		}
		if err := builder.Apply(c.Version, batch); err != nil {
			return nil, err
		}
	}

	state := builder.Freeze()
	if state.Version < 0 {
		return nil, errors.New(ErrTableNotFound, "table has no log yet", nil).AddContext("table_root", tableRoot)
	}

	snap := freeze(state, l.ColumnReader, l.TimeZone, l.Logger)
	if l.Cache != nil {
		l.Cache.Put(tableRoot, snap)
	}
	return snap, nil
}

// resolveCheckpoint picks the checkpoint to seed replay from. It
// prefers the `_last_checkpoint` pointer, the fast path a real table
// maintains precisely so readers don't have to rediscover the newest
// checkpoint by scanning the log directory; it falls back to scanning
// candidates (already gathered from ListLog) when the pointer is
// absent, stale, or names a version past targetVersion.
func (l *Loader) resolveCheckpoint(ctx context.Context, tableRoot string, candidates []store.LogFile, targetVersion int64) (*store.LogFile, error) {
	if ptr, err := l.FileStore.ReadLastCheckpoint(ctx, tableRoot); err != nil {
		return nil, err
	} else if ptr != nil && ptr.Version <= targetVersion {
		for i := range candidates {
			if candidates[i].Version == ptr.Version {
				return &candidates[i], nil
			}
		}
	}

	var newest *store.LogFile
	for i := range candidates {
		if candidates[i].Version <= targetVersion {
			newest = &candidates[i]
		}
	}
	return newest, nil
}

func (l *Loader) readCommit(ctx context.Context, path string) ([]actions.Action, error) {
	r, err := l.FileStore.OpenRead(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var batch []actions.Action
	err = actions.DecodeStream(r, func(a actions.Action) error {
		batch = append(batch, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func freeze(state *replay.State, columnReader store.ColumnReader, tz *time.Location, logger zerolog.Logger) *Snapshot {
	files := make([]actions.AddFile, 0, len(state.ActiveFiles))
	for _, f := range state.ActiveFiles {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if tz == nil {
		tz = time.UTC
	}

	return &Snapshot{
		version:      state.Version,
		protocol:     state.Protocol,
		metadata:     newMetadata(state.Metadata),
		files:        files,
		sizeInBytes:  state.SizeInBytes,
		columnReader: columnReader,
		timeZone:     tz,
		logger:       logger,
	}
}

func mustQualifyRoot(fs store.FileStore, tableRoot string) string {
	qualified, err := fs.Qualify(tableRoot)
	if err != nil {
		return tableRoot
	}
	return qualified
}
