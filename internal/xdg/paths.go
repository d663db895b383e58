// Package xdg locates the per-user files plughost reads and writes, following
// the XDG base directory conventions. Project-local files (plughost.toml,
// .plughost/config.toml) are resolved by internal/config.
package xdg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	appName = "plughost"
	dirMode = 0o700
)

// LogFileEnv overrides the log file location.
const LogFileEnv = "PLUGHOST_LOG_FILE"

// Dirs resolves plughost's per-user locations. XDG_CONFIG_HOME and
// XDG_STATE_HOME win when set; otherwise paths are built under Home.
type Dirs struct {
	// Home is the home directory. Empty means the current user's.
	Home string
}

// For returns Dirs rooted at home.
func For(home string) Dirs {
	return Dirs{Home: home}
}

func (d Dirs) home() string {
	if d.Home != "" {
		return d.Home
	}

	if home, err := os.UserHomeDir(); err == nil {
		return home
	}

	return "~"
}

func (d Dirs) base(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}

	return filepath.Join(append([]string{d.home()}, fallback...)...)
}

// ConfigHome returns $XDG_CONFIG_HOME or <home>/.config.
func (d Dirs) ConfigHome() string { return d.base("XDG_CONFIG_HOME", ".config") }

// StateHome returns $XDG_STATE_HOME or <home>/.local/state.
func (d Dirs) StateHome() string { return d.base("XDG_STATE_HOME", ".local", "state") }

// ConfigDir returns the plughost directory under ConfigHome.
func (d Dirs) ConfigDir() string { return filepath.Join(d.ConfigHome(), appName) }

// StateDir returns the plughost directory under StateHome.
func (d Dirs) StateDir() string { return filepath.Join(d.StateHome(), appName) }

// GlobalConfigFile returns the user-wide config.toml.
func (d Dirs) GlobalConfigFile() string { return filepath.Join(d.ConfigDir(), "config.toml") }

// LogFile returns $PLUGHOST_LOG_FILE or plughost.log in the state directory.
func (d Dirs) LogFile() string {
	if v := os.Getenv(LogFileEnv); v != "" {
		return v
	}

	return filepath.Join(d.StateDir(), "plughost.log")
}

// CrashDumpDir returns the default crash dump directory.
func (d Dirs) CrashDumpDir() string { return filepath.Join(d.StateDir(), "crashes") }

// ConfigHome returns the current user's config home.
func ConfigHome() string { return Dirs{}.ConfigHome() }

// StateHome returns the current user's state home.
func StateHome() string { return Dirs{}.StateHome() }

// ConfigDir returns the current user's plughost config directory.
func ConfigDir() string { return Dirs{}.ConfigDir() }

// StateDir returns the current user's plughost state directory.
func StateDir() string { return Dirs{}.StateDir() }

// GlobalConfigFile returns the current user's global config file.
func GlobalConfigFile() string { return Dirs{}.GlobalConfigFile() }

// LogFile returns the current user's default log file.
func LogFile() string { return Dirs{}.LogFile() }

// CrashDumpDir returns the current user's default crash dump directory.
func CrashDumpDir() string { return Dirs{}.CrashDumpDir() }

// ExpandPath replaces a leading "~" or "~/" with the home directory. Other
// paths, including "~user", are returned unchanged.
func ExpandPath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	return filepath.Join(home, rest), nil
}

// EnsureDir creates path as a private directory, tightening the mode of an
// existing one.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, dirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat directory %s", path)
	}

	if info.Mode().Perm() == dirMode {
		return nil
	}

	return errors.Wrapf(os.Chmod(path, dirMode), "failed to set permissions on %s", path)
}
