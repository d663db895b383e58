package plugin

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/logger"
)

// Registry resolves plugin names through an ordered list of loaders. The first
// loader that handles a name creates the plugin.
type Registry struct {
	loaders []Loader
	logger  logger.Logger
	closed  bool
}

// NewRegistry creates a registry consulting loaders in order.
func NewRegistry(log logger.Logger, loaders ...Loader) *Registry {
	return &Registry{
		loaders: loaders,
		logger:  log,
	}
}

// Load creates an unopened plugin for name.
//
//nolint:ireturn // the registry hands out whichever variant resolved the name
func (r *Registry) Load(name string) (Plugin, error) {
	if r.closed {
		return nil, ErrLoaderClosed
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(ErrDiscovery, "empty plugin name")
	}

	for _, loader := range r.loaders {
		if !loader.Handles(name) {
			continue
		}

		p, err := loader.Load(name)
		if err != nil {
			r.logger.Error("failed to load plugin", "name", name, "error", err)

			return nil, errors.Wrapf(err, "failed to load plugin %s", name)
		}

		r.logger.Debug("resolved plugin", "name", name, "kind", p.Kind())

		return p, nil
	}

	return nil, errors.Wrapf(ErrDiscovery, "no loader handles %q", name)
}

// Close releases all loader resources.
func (r *Registry) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true

	var firstErr error

	for _, loader := range r.loaders {
		if err := loader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
