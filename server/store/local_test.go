package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStoreListLog(t *testing.T) {
	tmp, err := os.MkdirTemp("", "tablelog_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmp)

	logDir := filepath.Join(tmp, DefaultLogDirName)
	require.NoError(t, os.MkdirAll(logDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, FormatCommitName(0)), []byte("{}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, FormatCommitName(1)), []byte("{}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "00000000000000000000.checkpoint.parquet"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "README.md"), []byte("ignored"), 0644))

	fs := NewLocalFileStore()
	files, err := fs.ListLog(context.Background(), tmp)
	require.NoError(t, err)

	var commits, checkpoints int
	for _, f := range files {
		if f.IsCheckpoint {
			checkpoints++
		} else {
			commits++
		}
	}
	assert.Equal(t, 2, commits)
	assert.Equal(t, 1, checkpoints)
}

func TestLocalFileStoreListLogMissingDirIsEmpty(t *testing.T) {
	tmp, err := os.MkdirTemp("", "tablelog_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmp)

	fs := NewLocalFileStore()
	files, err := fs.ListLog(context.Background(), tmp)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalFileStoreReadLastCheckpoint(t *testing.T) {
	tmp, err := os.MkdirTemp("", "tablelog_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmp)

	logDir := filepath.Join(tmp, DefaultLogDirName)
	require.NoError(t, os.MkdirAll(logDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "_last_checkpoint"), []byte(`{"version":10,"size":3}`), 0644))

	fs := NewLocalFileStore()
	ptr, err := fs.ReadLastCheckpoint(context.Background(), tmp)
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.Equal(t, int64(10), ptr.Version)
}

func TestLocalFileStoreReadLastCheckpointAbsent(t *testing.T) {
	tmp, err := os.MkdirTemp("", "tablelog_store_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmp)

	fs := NewLocalFileStore()
	ptr, err := fs.ReadLastCheckpoint(context.Background(), tmp)
	require.NoError(t, err)
	assert.Nil(t, ptr)
}

func TestLocalFileStoreQualifyPreservesEscaping(t *testing.T) {
	fs := NewLocalFileStore()
	qualified, err := fs.Qualify("/table/col=foo%20bar/part.parquet")
	require.NoError(t, err)
	assert.Contains(t, qualified, "file://")
}
