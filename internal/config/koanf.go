// Package config provides internal configuration loading and processing.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/maps"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/config"
)

var (
	// ErrInvalidPermissions is returned when config file has insecure permissions.
	ErrInvalidPermissions = errors.New("config file has insecure permissions")
)

const (
	// EnvPrefix prefixes every environment variable read by the loader.
	EnvPrefix = "PLUGHOST_"

	// ProjectConfigDir is the directory name for project configuration.
	ProjectConfigDir = ".plughost"

	// ProjectConfigFile is the primary project configuration file name.
	ProjectConfigFile = "config.toml"

	// ProjectConfigFileAlt is the alternative project configuration file name.
	ProjectConfigFileAlt = "plughost.toml"
)

// flagPaths maps CLI flag names to config keys.
var flagPaths = map[string]string{
	"sample-rate":    "audio.sample_rate",
	"channels":       "audio.channels",
	"block-size":     "audio.block_size",
	"tempo":          "audio.tempo",
	"time-signature": "audio.time_signature",
	"plugin-root":    "plugins.root",
	"plugin":         "plugins.chain",
	"realtime":       "processing.realtime",
	"duration":       "processing.input_duration",
	"log-level":      "logging.level",
	"log-file":       "logging.file",
}

// KoanfLoader merges configuration layers, later layers winning:
// defaults, global TOML ($XDG_CONFIG_HOME/plughost/config.toml), project TOML
// (.plughost/config.toml or plughost.toml), PLUGHOST_* variables, CLI flags.
type KoanfLoader struct {
	k         *koanf.Koanf
	dirs      xdg.Dirs
	workDir   string
	unmarshal koanf.UnmarshalConf
	files     []string
}

// NewKoanfLoader creates a loader for the current user and working directory.
func NewKoanfLoader() (*KoanfLoader, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get working directory")
	}

	return newKoanfLoader(xdg.Dirs{}, workDir), nil
}

// NewKoanfLoaderWithDirs creates a loader rooted at homeDir and workDir.
func NewKoanfLoaderWithDirs(homeDir, workDir string) *KoanfLoader {
	return newKoanfLoader(xdg.For(homeDir), workDir)
}

func newKoanfLoader(dirs xdg.Dirs, workDir string) *KoanfLoader {
	return &KoanfLoader{
		k:         koanf.New("."),
		dirs:      dirs,
		workDir:   workDir,
		unmarshal: koanf.UnmarshalConf{Tag: "koanf"},
	}
}

// Load merges every layer and validates the result.
func (l *KoanfLoader) Load(flags map[string]any) (*config.Config, error) {
	cfg, err := l.LoadWithoutValidation(flags)
	if err != nil {
		return nil, err
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// layer is one configuration source.
type layer struct {
	name string
	load func() error
}

// LoadWithoutValidation merges every layer without checking the values.
func (l *KoanfLoader) LoadWithoutValidation(flags map[string]any) (*config.Config, error) {
	l.k = koanf.New(".")
	l.files = nil

	layers := []layer{
		{"defaults", func() error {
			return l.k.Load(confmap.Provider(defaultsToMap(), "."), nil)
		}},
		{"global config", func() error {
			err := l.loadTOMLFile(l.GlobalConfigPath())
			if os.IsNotExist(err) {
				return nil
			}

			return err
		}},
		{"project config", func() error {
			if path := l.findProjectConfig(); path != "" {
				return l.loadTOMLFile(path)
			}

			return nil
		}},
		{"env vars", func() error {
			return l.k.Load(env.Provider(".", env.Opt{
				Prefix:        EnvPrefix,
				TransformFunc: l.envTransform,
			}), nil)
		}},
		{"flags", func() error {
			if len(flags) == 0 {
				return nil
			}

			return l.k.Load(confmap.Provider(l.flagsToConfig(flags), "."), nil)
		}},
	}

	for _, ly := range layers {
		if err := ly.load(); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", ly.name)
		}
	}

	return l.decode(l.k)
}

// Files returns the config files merged by the last load, lowest precedence
// first.
func (l *KoanfLoader) Files() []string {
	return append([]string(nil), l.files...)
}

func (l *KoanfLoader) decode(k *koanf.Koanf) (*config.Config, error) {
	var cfg config.Config

	conf := l.unmarshal
	conf.DecoderConfig = CustomDecoderConfig()
	conf.DecoderConfig.TagName = conf.Tag
	conf.DecoderConfig.Result = &cfg

	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return &cfg, nil
}

// loadTOMLFile loads a TOML configuration file with security checks.
func (l *KoanfLoader) loadTOMLFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.Mode().Perm()&0o002 != 0 {
		return errors.Wrapf(
			ErrInvalidPermissions,
			"%s is world-writable (mode: %s)",
			path,
			info.Mode().Perm(),
		)
	}

	if err := l.k.Load(file.Provider(path), tomlparser.Parser()); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	l.files = append(l.files, path)

	return nil
}

// sections are the top-level config tables, longest first where one prefixes
// another.
var sections = []string{"crash_dump", "audio", "plugins", "processing", "logging"}

// envTransform transforms environment variable names to config paths. The
// section prefix is split off, the rest is the key inside it. List values such
// as allowed_dirs are split by the decoder.
// PLUGHOST_AUDIO_SAMPLE_RATE → audio.sample_rate
// PLUGHOST_CRASH_DUMP_MAX_DUMPS → crash_dump.max_dumps
func (*KoanfLoader) envTransform(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest, value
		}
	}

	return key, value
}

// GlobalConfigPath returns the path to the global configuration file.
func (l *KoanfLoader) GlobalConfigPath() string {
	return l.dirs.GlobalConfigFile()
}

// ProjectConfigPaths returns the paths to check for project configuration.
func (l *KoanfLoader) ProjectConfigPaths() []string {
	return []string{
		filepath.Join(l.workDir, ProjectConfigDir, ProjectConfigFile),
		filepath.Join(l.workDir, ProjectConfigFileAlt),
	}
}

func (l *KoanfLoader) findProjectConfig() string {
	for _, path := range l.ProjectConfigPaths() {
		if fileExists(path) {
			return path
		}
	}

	return ""
}

// HasGlobalConfig checks if a global configuration file exists.
func (l *KoanfLoader) HasGlobalConfig() bool {
	return fileExists(l.GlobalConfigPath())
}

// FindProjectConfigPath returns the path to the project config file if one exists.
// Returns empty string if no project config file is found.
func (l *KoanfLoader) FindProjectConfigPath() string {
	return l.findProjectConfig()
}

// flagsToConfig converts CLI flags to a configuration map. Unknown flags are
// ignored.
func (*KoanfLoader) flagsToConfig(flags map[string]any) map[string]any {
	flat := make(map[string]any)

	for name, value := range flags {
		if name == "no-tail" {
			if off, ok := value.(bool); ok {
				flat["processing.tail"] = !off
			}

			continue
		}

		if path, ok := flagPaths[name]; ok {
			flat[path] = value
		}
	}

	return maps.Unflatten(flat, ".")
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
