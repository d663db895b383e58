package vst2

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

// ErrUnsupportedPlatform is returned when native plugins cannot be loaded on the
// running OS.
var ErrUnsupportedPlatform = errors.New("native plugin loading is not supported")

// Options configures a Loader.
type Options struct {
	// Root is searched before the default locations.
	Root string

	// AllowedDirs restricts which directories plugins may be loaded from. Empty
	// allows every directory.
	AllowedDirs []string

	// Platform loads libraries. Nil selects the native platform.
	Platform Platform

	// Realtime reports the realtime process level to plugins.
	Realtime bool
}

// Loader creates VST 2.x plugins. It handles every name not claimed by an earlier
// loader.
type Loader struct {
	settings    audio.Settings
	logger      logger.Logger
	locator     *Locator
	platform    Platform
	router      *router
	allowedDirs []string
	realtime    bool
	closed      bool
}

// NewLoader creates a VST 2.x loader.
func NewLoader(settings audio.Settings, log logger.Logger, opts Options) *Loader {
	platform := opts.Platform
	if platform == nil {
		platform = NewNativePlatform()
	}

	return &Loader{
		settings:    settings,
		logger:      log,
		locator:     NewLocator(opts.Root),
		platform:    platform,
		router:      defaultRouter,
		allowedDirs: opts.AllowedDirs,
		realtime:    opts.Realtime,
	}
}

// Locator returns the locator used to resolve plugin names.
func (l *Loader) Locator() *Locator {
	return l.locator
}

// Handles implements plugin.Loader.
func (*Loader) Handles(name string) bool {
	return strings.TrimSpace(name) != ""
}

// Load implements plugin.Loader.
//
//nolint:ireturn // loaders return the variant behind the Plugin interface
func (l *Loader) Load(name string) (plugin.Plugin, error) {
	return l.New(name)
}

// New resolves name and returns an unopened plugin. A name of the form
// "base:ABCD" selects sub-plugin ABCD of a shell plugin.
func (l *Loader) New(name string) (*Plugin, error) {
	if l.closed {
		return nil, plugin.ErrLoaderClosed
	}

	base, selector := SplitName(name)

	var sub pluginid.ID

	if selector != "" {
		id, err := pluginid.Parse(selector)
		if err != nil {
			return nil, errors.Wrapf(err, "sub-plugin selector of %s", name)
		}

		sub = id
	}

	path, location, err := l.locator.Locate(base)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("located plugin", "name", name, "path", path, "location", location)

	return &Plugin{
		name:        name,
		baseName:    base,
		subPlugin:   sub,
		path:        path,
		location:    location,
		settings:    l.settings,
		platform:    l.platform,
		router:      l.router,
		allowedDirs: l.allowedDirs,
		realtime:    l.realtime,
		logger:      l.logger.With("plugin", name),
	}, nil
}

// Close implements plugin.Loader.
func (l *Loader) Close() error {
	l.closed = true

	return nil
}
