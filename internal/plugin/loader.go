package plugin

//go:generate mockgen -source=loader.go -destination=loader_mock.go -package=plugin

import (
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

// Loader creates plugins of one interface variant.
type Loader interface {
	// Handles reports whether this loader is responsible for name.
	Handles(name string) bool

	// Load creates an unopened plugin for name.
	Load(name string) (Plugin, error)

	// Close releases any resources held by the loader.
	Close() error
}

// InternalLoader creates the built-in plugins.
type InternalLoader struct {
	settings audio.Settings
	logger   logger.Logger
}

// NewInternalLoader creates a loader for the built-in plugins.
func NewInternalLoader(settings audio.Settings, log logger.Logger) *InternalLoader {
	return &InternalLoader{settings: settings, logger: log}
}

// Handles implements Loader.
func (*InternalLoader) Handles(name string) bool {
	return IsInternal(name)
}

// Load implements Loader.
//
//nolint:ireturn // loaders return the variant behind the Plugin interface
func (l *InternalLoader) Load(name string) (Plugin, error) {
	return NewInternal(name, l.settings, l.logger)
}

// Close implements Loader.
func (*InternalLoader) Close() error {
	return nil
}
