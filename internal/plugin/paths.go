package plugin

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/xdg"
)

// ErrPathNotAllowed is returned when a plugin file is outside the allowed directories.
var ErrPathNotAllowed = errors.New("plugin path not in allowed directory")

// ValidatePath checks that path lies inside one of allowedDirs after ~
// expansion and symlink resolution on both sides. An empty allow list accepts
// every path.
func ValidatePath(path string, allowedDirs []string) error {
	if path == "" {
		return errors.Wrap(ErrPathNotAllowed, "empty path")
	}

	if len(allowedDirs) == 0 {
		return nil
	}

	target, err := canonical(path)
	if err != nil {
		return err
	}

	for _, dir := range allowedDirs {
		root, err := canonical(dir)
		if err != nil {
			continue
		}

		if within(target, root) {
			return nil
		}
	}

	return errors.Wrapf(ErrPathNotAllowed, "%s is outside %s",
		path, strings.Join(allowedDirs, string(os.PathListSeparator)))
}

// canonical returns the absolute, symlink-free form of path. A missing file
// is resolved through its parent so that not-yet-created paths still compare.
func canonical(path string) (string, error) {
	expanded, err := xdg.ExpandPath(path)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve absolute path")
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}

	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs)), nil
	}

	return abs, nil
}

// within reports whether path is root or below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
