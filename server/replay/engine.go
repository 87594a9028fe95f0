package replay

import (
	"github.com/parquetlake/tablelog/pkg/errors"
	"github.com/parquetlake/tablelog/server/actions"
	"github.com/rs/zerolog"
)

// State is the immutable, frozen view of a Builder's replayed actions.
// It is produced once, by Freeze, and never mutated afterward.
type State struct {
	Version      int64
	Protocol     actions.Protocol
	Metadata     actions.Metadata
	ActiveFiles  map[string]actions.AddFile
	Tombstones   map[string]actions.RemoveFile
	// SizeInBytes is the sum of the sizes of ActiveFiles. An add is
	// counted unconditionally and a remove subtracts only a file that was
	// active, so this holds as long as the log never adds the same
	// canonical URI twice without a remove in between.
	SizeInBytes  int64
	NumMetadata  int64
	NumProtocol  int64
}

// Builder owns the mutable replay state. It must not be observed by
// callers until Freeze produces a State; the zero value is not usable,
// construct one with NewBuilder.
type Builder struct {
	version     int64
	protocol    actions.Protocol
	metadata    actions.Metadata
	activeFiles map[string]actions.AddFile
	tombstones  map[string]actions.RemoveFile
	sizeInBytes int64
	numMetadata int64
	numProtocol int64

	canon  *Canonicalizer
	logger zerolog.Logger
}

// NewBuilder creates an empty replay builder rooted at the given
// canonicalizer. version starts at -1, meaning "no log applied yet".
func NewBuilder(canon *Canonicalizer, logger zerolog.Logger) *Builder {
	return &Builder{
		version:     -1,
		activeFiles: make(map[string]actions.AddFile),
		tombstones:  make(map[string]actions.RemoveFile),
		canon:       canon,
		logger:      logger,
	}
}

// ApplyCheckpoint feeds a checkpoint batch that replaces the initial
// state at the given version. It has no contiguity constraint against
// lower versions but may only be called against a builder that has not
// yet applied anything.
func (b *Builder) ApplyCheckpoint(version int64, batch []actions.Action) error {
	if b.version != -1 {
		return errors.Newf(ErrInvariantViolation,
			"checkpoint applied to a builder already at version %d", b.version)
	}
	return b.apply(version, batch)
}

// Apply feeds one version's worth of actions, in stream order. Versions
// must be applied in strictly increasing, contiguous order starting at
// the first available version (0, or the version right after a
// checkpoint). Violating that ordering is a programmer error.
func (b *Builder) Apply(version int64, batch []actions.Action) error {
	if !(b.version == -1 || version == b.version+1) {
		return errors.Newf(ErrInvariantViolation,
			"non-contiguous version applied: current=%d next=%d", b.version, version)
	}
	return b.apply(version, batch)
}

func (b *Builder) apply(version int64, batch []actions.Action) error {
	for _, a := range batch {
		switch a.Kind {
		case actions.KindMetadata:
			b.metadata = *a.Metadata
			b.numMetadata++
		case actions.KindProtocol:
			b.protocol = *a.Protocol
			b.numProtocol++
		case actions.KindAdd:
			if err := b.applyAdd(*a.Add); err != nil {
				return err
			}
		case actions.KindRemove:
			if err := b.applyRemove(*a.Remove); err != nil {
				return err
			}
		case actions.KindCommitInfo, actions.KindUnknown:
			// commitInfo never affects table state; unrecognized
			// variants are forward-compatibility no-ops.
		}
	}
	b.version = version
	return nil
}

// applyAdd normalizes and inserts an add action. dataChange is always
// forced to false on the retained copy: this system flips it
// unconditionally on replay so that a file reconstructed from the log
// is never mistaken downstream for a fresh write (see DESIGN.md).
func (b *Builder) applyAdd(a actions.AddFile) error {
	uri, err := b.canon.Canonicalize(a.Path)
	if err != nil {
		return err
	}
	normalized := a
	normalized.Path = uri
	normalized.DataChange = false

	b.activeFiles[uri] = normalized
	delete(b.tombstones, uri)
	b.sizeInBytes += normalized.Size
	return nil
}

// applyRemove normalizes and inserts a remove action, retiring any
// currently active file at the same canonical URI.
func (b *Builder) applyRemove(r actions.RemoveFile) error {
	uri, err := b.canon.Canonicalize(r.Path)
	if err != nil {
		return err
	}
	normalized := r
	normalized.Path = uri
	normalized.DataChange = false

	if prev, ok := b.activeFiles[uri]; ok {
		delete(b.activeFiles, uri)
		b.sizeInBytes -= prev.Size
	}
	b.tombstones[uri] = normalized
	return nil
}

// Freeze produces an immutable snapshot of the builder's state. The
// builder remains usable afterward, but callers of Freeze must treat
// the returned State as read-only; its maps are copies of the
// builder's internal ones.
func (b *Builder) Freeze() *State {
	activeFiles := make(map[string]actions.AddFile, len(b.activeFiles))
	for k, v := range b.activeFiles {
		activeFiles[k] = v
	}
	tombstones := make(map[string]actions.RemoveFile, len(b.tombstones))
	for k, v := range b.tombstones {
		tombstones[k] = v
	}

	b.logger.Debug().
		Int64("version", b.version).
		Int("active_files", len(activeFiles)).
		Int64("size_in_bytes", b.sizeInBytes).
		Msg("froze replay state")

	return &State{
		Version:     b.version,
		Protocol:    b.protocol,
		Metadata:    b.metadata,
		ActiveFiles: activeFiles,
		Tombstones:  tombstones,
		SizeInBytes: b.sizeInBytes,
		NumMetadata: b.numMetadata,
		NumProtocol: b.numProtocol,
	}
}
