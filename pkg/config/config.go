// Package config provides configuration schema types for plughost.
package config

// CurrentConfigVersion is the latest config schema version.
const CurrentConfigVersion = 1

// Config represents the root configuration for plughost.
type Config struct {
	// Version is the config schema version. Defaults to 1 when omitted.
	Version int `json:"version,omitempty" koanf:"version" toml:"version,omitempty" yaml:"version,omitempty"`

	// Audio holds the process-wide audio settings shared by every plugin.
	Audio *AudioConfig `json:"audio,omitempty" koanf:"audio" toml:"audio,omitempty" yaml:"audio,omitempty"`

	// Plugins controls where plugins are searched for and which chain is built.
	Plugins *PluginsConfig `json:"plugins,omitempty" koanf:"plugins" toml:"plugins,omitempty" yaml:"plugins,omitempty"`

	// Processing controls how a chain is run.
	Processing *ProcessingConfig `json:"processing,omitempty" koanf:"processing" toml:"processing,omitempty" yaml:"processing,omitempty"`

	// Logging controls diagnostic output.
	Logging *LoggingConfig `json:"logging,omitempty" koanf:"logging" toml:"logging,omitempty" yaml:"logging,omitempty"`

	// CrashDump controls the reports written when plughost panics.
	CrashDump *CrashDumpConfig `json:"crash_dump,omitempty" koanf:"crash_dump" toml:"crash_dump,omitempty" yaml:"crash_dump,omitempty"`
}

// AudioConfig describes the sample format every plugin is prepared for.
type AudioConfig struct {
	// SampleRate in Hz.
	// Default: 44100
	SampleRate float64 `json:"sample_rate,omitempty" koanf:"sample_rate" toml:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`

	// Channels is the number of input and output channels (1-8).
	// Default: 2
	Channels int `json:"channels,omitempty" koanf:"channels" toml:"channels,omitempty" yaml:"channels,omitempty"`

	// BlockSize is the number of frames processed per call.
	// Default: 512
	BlockSize int `json:"block_size,omitempty" koanf:"block_size" toml:"block_size,omitempty" yaml:"block_size,omitempty"`

	// Tempo reported to plugins in beats per minute.
	// Default: 120
	Tempo float64 `json:"tempo,omitempty" koanf:"tempo" toml:"tempo,omitempty" yaml:"tempo,omitempty"`

	// TimeSignature reported to plugins, written as "N/D".
	// Default: "4/4"
	TimeSignature string `json:"time_signature,omitempty" koanf:"time_signature" toml:"time_signature,omitempty" yaml:"time_signature,omitempty"`
}

// PluginsConfig controls plugin discovery and chain construction.
type PluginsConfig struct {
	// Root is searched before any other location. Supports ~ expansion.
	Root string `json:"root,omitempty" koanf:"root" toml:"root,omitempty" yaml:"root,omitempty"`

	// Chain is the default chain argument, e.g. "mrs_gain;reverb,hall.fxp".
	Chain string `json:"chain,omitempty" koanf:"chain" toml:"chain,omitempty" yaml:"chain,omitempty"`

	// AllowedDirs restricts the directories native plugins may be loaded from.
	// Empty allows every directory.
	AllowedDirs []string `json:"allowed_dirs,omitempty" koanf:"allowed_dirs" toml:"allowed_dirs,omitempty" yaml:"allowed_dirs,omitempty"`
}

// ProcessingConfig controls how a chain is run.
type ProcessingConfig struct {
	// Realtime paces processing to the wall clock and reports the realtime
	// process level to plugins.
	// Default: false
	Realtime *bool `json:"realtime,omitempty" koanf:"realtime" toml:"realtime,omitempty" yaml:"realtime,omitempty"`

	// Tail keeps feeding silence after the input ends for the longest tail
	// time any plugin reports.
	// Default: true
	Tail *bool `json:"tail,omitempty" koanf:"tail" toml:"tail,omitempty" yaml:"tail,omitempty"`

	// InputDuration is the length of generated silence used when no input
	// file is given.
	// Default: "5s"
	InputDuration Duration `json:"input_duration,omitempty" koanf:"input_duration" toml:"input_duration,omitempty" yaml:"input_duration,omitempty"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `json:"level,omitempty" koanf:"level" toml:"level,omitempty" yaml:"level,omitempty"`

	// File receives log lines instead of stderr when set. Supports ~ expansion.
	File string `json:"file,omitempty" koanf:"file" toml:"file,omitempty" yaml:"file,omitempty"`
}

// CrashDumpConfig controls crash dump creation and retention.
type CrashDumpConfig struct {
	// Enabled writes a crash dump when plughost panics.
	// Default: true
	Enabled *bool `json:"enabled,omitempty" koanf:"enabled" toml:"enabled,omitempty" yaml:"enabled,omitempty"`

	// DumpDir is where crash dumps are stored. Supports ~ expansion.
	// Default: "$XDG_STATE_HOME/plughost/crashes"
	DumpDir string `json:"dump_dir,omitempty" koanf:"dump_dir" toml:"dump_dir,omitempty" yaml:"dump_dir,omitempty"`

	// MaxDumps is the number of dumps kept. Older dumps are removed first.
	// Default: 10
	MaxDumps int `json:"max_dumps,omitempty" koanf:"max_dumps" toml:"max_dumps,omitempty" yaml:"max_dumps,omitempty"`

	// MaxAge removes dumps older than this. Zero keeps dumps regardless of age.
	// Default: "720h"
	MaxAge Duration `json:"max_age,omitempty" koanf:"max_age" toml:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// IsRealtimeEnabled returns whether realtime pacing is enabled.
func (p *ProcessingConfig) IsRealtimeEnabled() bool {
	if p == nil || p.Realtime == nil {
		return false
	}

	return *p.Realtime
}

// IsTailEnabled returns whether tail processing is enabled.
func (p *ProcessingConfig) IsTailEnabled() bool {
	if p == nil || p.Tail == nil {
		return true
	}

	return *p.Tail
}

// GetAudio returns the audio config, creating it if it doesn't exist.
func (c *Config) GetAudio() *AudioConfig {
	if c.Audio == nil {
		c.Audio = &AudioConfig{}
	}

	return c.Audio
}

// GetPlugins returns the plugins config, creating it if it doesn't exist.
func (c *Config) GetPlugins() *PluginsConfig {
	if c.Plugins == nil {
		c.Plugins = &PluginsConfig{}
	}

	return c.Plugins
}

// GetProcessing returns the processing config, creating it if it doesn't exist.
func (c *Config) GetProcessing() *ProcessingConfig {
	if c.Processing == nil {
		c.Processing = &ProcessingConfig{}
	}

	return c.Processing
}

// GetLogging returns the logging config, creating it if it doesn't exist.
func (c *Config) GetLogging() *LoggingConfig {
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}

	return c.Logging
}

// GetCrashDump returns the crash dump config, creating it if it doesn't exist.
func (c *Config) GetCrashDump() *CrashDumpConfig {
	if c.CrashDump == nil {
		c.CrashDump = &CrashDumpConfig{}
	}

	return c.CrashDump
}

// IsEnabled returns whether crash dumps are written.
func (c *CrashDumpConfig) IsEnabled() bool {
	if c == nil || c.Enabled == nil {
		return true
	}

	return *c.Enabled
}
