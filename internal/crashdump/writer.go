package crashdump

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/xdg"
)

// Report files are private to the user: they carry plugin paths and the
// loaded configuration.
const (
	FilePerm fs.FileMode = 0o600
	DirPerm  fs.FileMode = 0o700

	FileExtension = ".json"

	// TempSuffix marks a report that has not been renamed into place yet.
	TempSuffix = ".tmp"
)

var (
	// ErrWriteFailed marks every failure to persist a report.
	ErrWriteFailed = errors.New("failed to write crash dump")

	// ErrInvalidDumpDir marks an unusable dump directory.
	ErrInvalidDumpDir = errors.New("invalid dump directory")
)

// Writer persists crash reports into one directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for dumpDir, expanding a leading ~. The directory
// is created on first write.
func NewWriter(dumpDir string) (*Writer, error) {
	dir, err := expandDumpDir(dumpDir)
	if err != nil {
		return nil, err
	}

	return &Writer{dir: dir}, nil
}

// expandDumpDir rejects an empty directory and expands a leading ~.
func expandDumpDir(dumpDir string) (string, error) {
	if dumpDir == "" {
		return "", errors.Wrap(ErrInvalidDumpDir, "dump directory cannot be empty")
	}

	dir, err := xdg.ExpandPath(dumpDir)
	if err != nil {
		return "", errors.Mark(err, ErrInvalidDumpDir)
	}

	return dir, nil
}

// DumpDir returns the expanded dump directory.
func (w *Writer) DumpDir() string {
	return w.dir
}

// Write stores info as <id>.json and returns its path. Readers never observe a
// partially written report.
func (w *Writer) Write(info *CrashInfo) (string, error) {
	if info == nil {
		return "", errors.Wrap(ErrWriteFailed, "crash info is nil")
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "encoding %s", info.ID), ErrWriteFailed)
	}

	if err := os.MkdirAll(w.dir, DirPerm); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "creating %s", w.dir), ErrInvalidDumpDir)
	}

	path := filepath.Join(w.dir, info.ID+FileExtension)
	if err := replaceFile(path, data); err != nil {
		return "", errors.Mark(err, ErrWriteFailed)
	}

	return path, nil
}

// replaceFile writes data next to path and renames it over path.
func replaceFile(path string, data []byte) error {
	tmp := path + TempSuffix

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePerm)
	if err != nil {
		return errors.Wrapf(err, "opening %s", tmp)
	}

	_, err = f.Write(data)
	if syncErr := f.Sync(); err == nil {
		err = syncErr
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Rename(tmp, path)
	}

	if err != nil {
		_ = os.Remove(tmp)

		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}
