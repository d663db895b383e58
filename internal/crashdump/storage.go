package crashdump

import (
	"cmp"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrDumpNotFound is returned when no dump has the requested ID.
var ErrDumpNotFound = errors.New("crash dump not found")

const maxSummaryPanicLen = 80

// Store reads and removes crash dumps written by Writer.
type Store struct {
	dumpDir string
	now     func() time.Time
}

// NewStore opens the dump directory. The directory need not exist yet.
func NewStore(dumpDir string) (*Store, error) {
	dir, err := expandDumpDir(dumpDir)
	if err != nil {
		return nil, err
	}

	return &Store{dumpDir: dir, now: time.Now}, nil
}

// DumpDir returns the dump directory path.
func (s *Store) DumpDir() string {
	return s.dumpDir
}

// List returns summaries of every readable dump, newest first. Files that do
// not decode are skipped.
func (s *Store) List() ([]DumpSummary, error) {
	entries, err := os.ReadDir(s.dumpDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DumpSummary{}, nil
		}

		return nil, errors.Wrap(err, "reading dump directory")
	}

	summaries := make([]DumpSummary, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileExtension) {
			continue
		}

		summary, err := s.summarize(filepath.Join(s.dumpDir, entry.Name()))
		if err != nil {
			continue
		}

		summaries = append(summaries, summary)
	}

	slices.SortFunc(summaries, func(a, b DumpSummary) int {
		return cmp.Compare(b.Timestamp.UnixNano(), a.Timestamp.UnixNano())
	})

	return summaries, nil
}

func (*Store) summarize(path string) (DumpSummary, error) {
	info, err := readDump(path)
	if err != nil {
		return DumpSummary{}, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return DumpSummary{}, errors.Wrap(err, "stat dump file")
	}

	panicValue := info.PanicValue
	if len(panicValue) > maxSummaryPanicLen {
		panicValue = panicValue[:maxSummaryPanicLen] + "..."
	}

	return DumpSummary{
		ID:         info.ID,
		Timestamp:  info.Timestamp,
		PanicValue: panicValue,
		FilePath:   path,
		Size:       stat.Size(),
	}, nil
}

// Get loads the dump with the given ID.
func (s *Store) Get(id string) (*CrashInfo, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	return readDump(path)
}

// Delete removes the dump with the given ID.
func (s *Store) Delete(id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrDumpNotFound, "id %s", id)
		}

		return errors.Wrap(err, "deleting dump file")
	}

	return nil
}

// Stale returns the dumps Prune would remove: those older than maxAge, then
// the oldest beyond maxDumps. A zero maxAge disables the age limit and a
// negative maxDumps disables the count limit.
func (s *Store) Stale(maxDumps int, maxAge time.Duration) ([]DumpSummary, error) {
	summaries, err := s.List()
	if err != nil {
		return nil, err
	}

	now := s.now()

	var stale, kept []DumpSummary

	for _, summary := range summaries {
		if maxAge > 0 && now.Sub(summary.Timestamp) > maxAge {
			stale = append(stale, summary)

			continue
		}

		kept = append(kept, summary)
	}

	if maxDumps >= 0 && len(kept) > maxDumps {
		stale = append(stale, kept[maxDumps:]...)
	}

	return stale, nil
}

// Prune deletes stale dumps and returns how many were removed. Dumps that
// fail to delete are skipped.
func (s *Store) Prune(maxDumps int, maxAge time.Duration) (int, error) {
	stale, err := s.Stale(maxDumps, maxAge)
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, summary := range stale {
		if s.Delete(summary.ID) == nil {
			removed++
		}
	}

	return removed, nil
}

// pathFor rejects IDs that would escape the dump directory.
func (s *Store) pathFor(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", errors.Wrapf(ErrDumpNotFound, "id %q", id)
	}

	return filepath.Join(s.dumpDir, id+FileExtension), nil
}

func readDump(path string) (*CrashInfo, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built by pathFor or ReadDir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrDumpNotFound, "file %s", path)
		}

		return nil, errors.Wrap(err, "reading dump file")
	}

	var info CrashInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, errors.Wrap(err, "decoding dump file")
	}

	return &info, nil
}
