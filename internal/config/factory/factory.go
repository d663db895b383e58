// Package factory builds a ready-to-run plugin pipeline from configuration.
package factory

import (
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/vst2"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/config"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

// Pipeline groups everything a run needs: the shared audio settings, the loader
// registry that owns native libraries, and the populated chain.
type Pipeline struct {
	Settings audio.Settings
	Registry *plugin.Registry
	Native   *vst2.Loader
	Chain    *chain.Chain

	// ChainErr holds the per-token failures from building the chain. Tokens that
	// failed are not part of Chain.
	ChainErr error
}

// Close shuts the chain down and releases the loaders.
func (p *Pipeline) Close() error {
	err := p.Chain.Shutdown()

	return errors.CombineErrors(err, p.Registry.Close())
}

// Option configures a PipelineFactory.
type Option func(*PipelineFactory)

// WithPlatform replaces the native library platform.
func WithPlatform(platform vst2.Platform) Option {
	return func(f *PipelineFactory) {
		f.platform = platform
	}
}

// WithChainOptions passes extra options to chain.New.
func WithChainOptions(opts ...chain.Option) Option {
	return func(f *PipelineFactory) {
		f.chainOpts = append(f.chainOpts, opts...)
	}
}

// PipelineFactory creates pipelines from configuration.
type PipelineFactory struct {
	log       logger.Logger
	platform  vst2.Platform
	chainOpts []chain.Option
}

// NewPipelineFactory creates a new PipelineFactory.
func NewPipelineFactory(log logger.Logger, opts ...Option) *PipelineFactory {
	f := &PipelineFactory{log: log}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Loaders creates the loader registry for cfg. Internal plugin names are
// claimed before the native loader sees them.
func (f *PipelineFactory) Loaders(cfg *config.Config, settings audio.Settings) (*plugin.Registry, *vst2.Loader) {
	native := vst2.NewLoader(settings, f.log, vst2.Options{
		Root:        cfg.GetPlugins().Root,
		AllowedDirs: cfg.GetPlugins().AllowedDirs,
		Platform:    f.platform,
		Realtime:    cfg.GetProcessing().IsRealtimeEnabled(),
	})

	registry := plugin.NewRegistry(f.log,
		plugin.NewInternalLoader(settings, f.log),
		native,
	)

	return registry, native
}

// Build creates a pipeline and populates its chain from cfg.Plugins.Chain.
// Only invalid audio settings fail the build; chain token failures are kept
// in Pipeline.ChainErr.
func (f *PipelineFactory) Build(cfg *config.Config) (*Pipeline, error) {
	settings, err := cfg.GetAudio().Settings()
	if err != nil {
		return nil, errors.Wrap(err, "audio settings")
	}

	registry, native := f.Loaders(cfg, settings)

	opts := append([]chain.Option{
		chain.WithLogger(f.log),
		chain.WithLoader(registry),
	}, f.chainOpts...)

	c := chain.New(settings, opts...)

	if err := c.SetRealtime(cfg.GetProcessing().IsRealtimeEnabled()); err != nil {
		_ = registry.Close()

		return nil, err
	}

	pipeline := &Pipeline{
		Settings: settings,
		Registry: registry,
		Native:   native,
		Chain:    c,
	}

	if arg := cfg.GetPlugins().Chain; arg != "" {
		pipeline.ChainErr = c.AddFromArgument(arg)
	}

	f.log.Debug("pipeline built",
		"slots", c.Len(),
		"sample_rate", settings.SampleRate,
		"channels", settings.Channels,
		"block_size", settings.BlockSize,
		"realtime", c.Realtime(),
	)

	return pipeline, nil
}
