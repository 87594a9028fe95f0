package snapshot

import (
	"sync"

	"github.com/google/uuid"
	"github.com/parquetlake/tablelog/server/actions"
	"github.com/parquetlake/tablelog/server/schema"
)

// Metadata wraps the latest metaData action seen during replay and
// lazily parses its schema string on first access. The parsed tree is
// memoized and immutable, so it is safe to share across goroutines once
// computed (the Snapshot that owns this Metadata is itself frozen).
type Metadata struct {
	raw actions.Metadata

	schemaOnce sync.Once
	schema     schema.DataType
	schemaErr  error
}

func newMetadata(raw actions.Metadata) *Metadata {
	return &Metadata{raw: raw}
}

func (m *Metadata) ID() uuid.UUID                    { return m.raw.ID }
func (m *Metadata) Name() string                     { return m.raw.Name }
func (m *Metadata) Description() string              { return m.raw.Description }
func (m *Metadata) Format() actions.Format           { return m.raw.Format }
func (m *Metadata) SchemaString() string             { return m.raw.SchemaString }
func (m *Metadata) PartitionColumns() []string        { return m.raw.PartitionColumns }
func (m *Metadata) Configuration() map[string]string { return m.raw.Configuration }
func (m *Metadata) CreatedTime() *int64               { return m.raw.CreatedTime }

// Schema parses SchemaString on first call and memoizes the result.
func (m *Metadata) Schema() (schema.DataType, error) {
	m.schemaOnce.Do(func() {
		m.schema, m.schemaErr = schema.ParseString(m.raw.SchemaString)
	})
	return m.schema, m.schemaErr
}
