package actions

import (
	"github.com/google/uuid"
)

// Kind identifies which of the five action variants a record carries.
type Kind string

const (
	KindMetadata   Kind = "metaData"
	KindProtocol   Kind = "protocol"
	KindAdd        Kind = "add"
	KindRemove     Kind = "remove"
	KindCommitInfo Kind = "commitInfo"
	// KindUnknown marks a decoded record whose sole top-level key was not
	// one of the five recognized variants. The replay engine ignores it.
	KindUnknown Kind = ""
)

// Format describes the storage format a table's data files are written in.
type Format struct {
	Provider string
	Options  map[string]string
}

// Metadata carries the table's schema, partitioning, and configuration.
type Metadata struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Format           Format
	SchemaString     string
	PartitionColumns []string
	Configuration    map[string]string
	CreatedTime      *int64
}

// Protocol declares the minimum reader/writer feature levels required to
// interact with the table correctly.
type Protocol struct {
	MinReaderVersion int
	MinWriterVersion int
}

// AddFile records a data file that becomes live as of this action.
type AddFile struct {
	Path             string
	PartitionValues  map[string]string
	Size             int64
	ModificationTime int64
	DataChange       bool
	Stats            *string
	Tags             map[string]string
}

// RemoveFile records a data file that stops being live as of this action.
type RemoveFile struct {
	Path              string
	DeletionTimestamp *int64
	DataChange        bool
}

// CommitInfo is an operational audit record; it never affects replayed
// table state (see the fold rules in the replay engine).
type CommitInfo struct {
	Version             *int64
	Timestamp           int64 // milliseconds since epoch
	UserID              string
	UserName            string
	Operation           string
	OperationParameters map[string]string
	Job                 string
	Notebook            string
	ReadVersion         *int64
	IsolationLevel      string
	IsBlindAppend       *bool
	OperationMetrics    map[string]string
	UserMetadata        string
}

// GetVersion returns the commit's version and whether it was present on
// the wire. The source this system is modeled on dereferences an absent
// version unconditionally; this reader tightens that into an (ok bool)
// contract instead (see DESIGN.md).
func (c CommitInfo) GetVersion() (int64, bool) {
	if c.Version == nil {
		return 0, false
	}
	return *c.Version, true
}

// Action is a discriminated union with exactly one populated variant,
// selected by Kind. Constructing or decoding an Action with more than
// one variant populated is a codec error, never silently resolved.
type Action struct {
	Kind       Kind
	Metadata   *Metadata
	Protocol   *Protocol
	Add        *AddFile
	Remove     *RemoveFile
	CommitInfo *CommitInfo
}
