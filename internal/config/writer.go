package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/smykla-skalski/plughost/internal/schema"
	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/config"
)

const (
	// ConfigFileMode is the mode of written config files.
	ConfigFileMode = 0o600

	// ConfigDirMode is the mode of directories created for config files.
	ConfigDirMode = 0o700
)

// ErrConfigExists is returned when a write would replace an existing file.
var ErrConfigExists = errors.New("configuration file already exists")

// Marshal renders cfg as TOML, starting with the schema directive so editors
// can validate the file.
func Marshal(cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "config is nil")
	}

	var buf bytes.Buffer

	buf.WriteString(schema.SchemaDirective())
	buf.WriteString("\n\n")

	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)

	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to encode config to TOML")
	}

	return buf.Bytes(), nil
}

// Writer stores configuration in the global or project location.
type Writer struct {
	dirs    xdg.Dirs
	workDir string
}

// NewWriter returns a Writer for the current user and working directory.
func NewWriter() (*Writer, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}

	return &Writer{workDir: workDir}, nil
}

// NewWriterWithDirs returns a Writer rooted at homeDir and workDir.
func NewWriterWithDirs(homeDir, workDir string) *Writer {
	return &Writer{dirs: xdg.For(homeDir), workDir: workDir}
}

// GlobalConfigPath returns the user-wide config file.
func (w *Writer) GlobalConfigPath() string {
	return w.dirs.GlobalConfigFile()
}

// ProjectConfigPath returns .plughost/config.toml in the working directory.
func (w *Writer) ProjectConfigPath() string {
	return filepath.Join(w.workDir, ProjectConfigDir, ProjectConfigFile)
}

// WriteGlobal writes cfg to GlobalConfigPath and returns the path.
func (w *Writer) WriteGlobal(cfg *config.Config, force bool) (string, error) {
	path := w.GlobalConfigPath()

	return path, w.create(path, cfg, force)
}

// WriteProject writes cfg to ProjectConfigPath and returns the path.
func (w *Writer) WriteProject(cfg *config.Config, force bool) (string, error) {
	path := w.ProjectConfigPath()

	return path, w.create(path, cfg, force)
}

func (w *Writer) create(path string, cfg *config.Config, force bool) error {
	if !force && fileExists(path) {
		return errors.Wrapf(ErrConfigExists, "%s (use --force to overwrite)", path)
	}

	return w.WriteFile(path, cfg)
}

// WriteFile validates cfg and writes it to path. The file is replaced
// atomically so a reader never sees half a config.
func (*Writer) WriteFile(path string, cfg *config.Config) error {
	if err := NewValidator().Validate(cfg); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, ConfigDirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Chmod(tmp.Name(), ConfigFileMode)
	}

	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}

	return errors.Wrapf(err, "failed to write config file %s", path)
}
