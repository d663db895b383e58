package config

import (
	"time"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/config"
)

const (
	// DefaultInputDuration is the length of generated silence when no input is given.
	DefaultInputDuration = 5 * time.Second

	// DefaultTimeSignature is the meter reported to plugins.
	DefaultTimeSignature = "4/4"

	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"

	// DefaultMaxCrashDumps is the number of crash dumps kept.
	DefaultMaxCrashDumps = 10

	// DefaultCrashDumpMaxAge is how long crash dumps are kept.
	DefaultCrashDumpMaxAge = 30 * 24 * time.Hour
)

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *config.Config {
	realtime := false
	tail := true
	crashDumps := true

	return &config.Config{
		Version: config.CurrentConfigVersion,
		Audio: &config.AudioConfig{
			SampleRate:    audio.DefaultSampleRate,
			Channels:      audio.DefaultChannels,
			BlockSize:     audio.DefaultBlockSize,
			Tempo:         audio.DefaultTempo,
			TimeSignature: DefaultTimeSignature,
		},
		Plugins: &config.PluginsConfig{},
		Processing: &config.ProcessingConfig{
			Realtime:      &realtime,
			Tail:          &tail,
			InputDuration: config.Duration(DefaultInputDuration),
		},
		Logging: &config.LoggingConfig{
			Level: DefaultLogLevel,
		},
		CrashDump: &config.CrashDumpConfig{
			Enabled:  &crashDumps,
			MaxDumps: DefaultMaxCrashDumps,
			MaxAge:   config.Duration(DefaultCrashDumpMaxAge),
		},
	}
}

// defaultsToMap converts DefaultConfig to a map for koanf loading.
func defaultsToMap() map[string]any {
	return map[string]any{
		"version": config.CurrentConfigVersion,
		"audio": map[string]any{
			"sample_rate":    audio.DefaultSampleRate,
			"channels":       audio.DefaultChannels,
			"block_size":     audio.DefaultBlockSize,
			"tempo":          audio.DefaultTempo,
			"time_signature": DefaultTimeSignature,
		},
		"processing": map[string]any{
			"realtime":       false,
			"tail":           true,
			"input_duration": DefaultInputDuration.String(),
		},
		"logging": map[string]any{
			"level": DefaultLogLevel,
		},
		"crash_dump": map[string]any{
			"enabled":   true,
			"max_dumps": DefaultMaxCrashDumps,
			"max_age":   DefaultCrashDumpMaxAge.String(),
		},
	}
}
