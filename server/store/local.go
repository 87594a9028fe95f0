package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/parquetlake/tablelog/pkg/errors"
)

// DefaultLogDirName is the subdirectory of a table root holding commit
// and checkpoint artifacts.
const DefaultLogDirName = "_log"

var (
	commitPattern     = regexp.MustCompile(`^(\d{20})\.json$`)
	checkpointPattern = regexp.MustCompile(`^(\d{20})\.checkpoint(?:\.\d+\.\d+)?\.parquet$`)
)

// LocalFileStore implements FileStore over the local filesystem,
// mirroring the plain os.* calls the teacher's filesystem storage
// engine uses for its own table directories.
type LocalFileStore struct {
	logDirName string
}

// NewLocalFileStore creates a filesystem-backed FileStore using the
// default log directory name.
func NewLocalFileStore() *LocalFileStore {
	return &LocalFileStore{logDirName: DefaultLogDirName}
}

func (fs *LocalFileStore) logDir(tableRoot string) string {
	return filepath.Join(tableRoot, fs.logDirName)
}

// ListLog scans the table's log directory for commit and checkpoint
// files, parsing the zero-padded version out of each filename.
func (fs *LocalFileStore) ListLog(ctx context.Context, tableRoot string) ([]LogFile, error) {
	dir := fs.logDir(tableRoot)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(ErrLogListFailed, err, "failed listing log directory").AddContext("path", dir)
	}

	files := make([]LogFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Wrap(ErrLogListFailed, err, "failed statting log entry").AddContext("name", name)
		}

		if m := commitPattern.FindStringSubmatch(name); m != nil {
			version, _ := strconv.ParseInt(m[1], 10, 64)
			files = append(files, LogFile{
				Path:    filepath.Join(dir, name),
				Size:    info.Size(),
				Version: version,
			})
			continue
		}
		if m := checkpointPattern.FindStringSubmatch(name); m != nil {
			version, _ := strconv.ParseInt(m[1], 10, 64)
			files = append(files, LogFile{
				Path:         filepath.Join(dir, name),
				Size:         info.Size(),
				Version:      version,
				IsCheckpoint: true,
			})
		}
	}
	return files, nil
}

// ReadLastCheckpoint reads the `_last_checkpoint` pointer file, if any.
func (fs *LocalFileStore) ReadLastCheckpoint(ctx context.Context, tableRoot string) (*LastCheckpoint, error) {
	path := filepath.Join(fs.logDir(tableRoot), "_last_checkpoint")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(ErrLogOpenFailed, err, "failed reading _last_checkpoint").AddContext("path", path)
	}
	var ptr LastCheckpoint
	if err := json.Unmarshal(data, &ptr); err != nil {
		return nil, errors.Wrap(ErrCheckpointCorrupt, err, "malformed _last_checkpoint").AddContext("path", path)
	}
	return &ptr, nil
}

// OpenRead opens a log artifact for streaming read.
func (fs *LocalFileStore) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrLogOpenFailed, err, "failed opening log artifact").AddContext("path", path)
	}
	return f, nil
}

// Qualify resolves a filesystem path to a file:// URI, preserving
// percent-escaping the way the injected file store contract requires.
func (fs *LocalFileStore) Qualify(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(ErrQualifyFailed, err, "failed resolving absolute path").AddContext("path", path)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := &url.URL{Scheme: "file", Path: slashed}
	return u.String(), nil
}

// FormatCommitName renders the zero-padded 20-digit commit filename for
// a version, e.g. FormatCommitName(12) == "00000000000000000012.json".
func FormatCommitName(version int64) string {
	return fmt.Sprintf("%020d.json", version)
}
