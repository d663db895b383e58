package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/config"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrOutOfRange is returned when a numeric value is outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrEmptyValue is returned when a required value is empty.
	ErrEmptyValue = errors.New("empty value not allowed")
)

// Validator validates configuration semantics. Zero values are accepted and
// mean "use the default".
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration.
// Returns an error describing all validation failures.
func (v *Validator) Validate(cfg *config.Config) error {
	if cfg == nil {
		return errors.WithMessage(ErrInvalidConfig, "config is nil")
	}

	var validationErrors []error

	if cfg.Audio != nil {
		validationErrors = append(validationErrors, v.validateAudioConfig(cfg.Audio)...)
	}

	if cfg.Plugins != nil {
		validationErrors = append(validationErrors, v.validatePluginsConfig(cfg.Plugins)...)
	}

	if cfg.Processing != nil && cfg.Processing.InputDuration < 0 {
		validationErrors = append(validationErrors, errors.Wrapf(
			config.ErrNegativeDuration,
			"processing.input_duration: got %s",
			cfg.Processing.InputDuration,
		))
	}

	if cfg.Logging != nil {
		if _, err := logger.ParseLevel(cfg.Logging.Level); err != nil {
			validationErrors = append(validationErrors, errors.Wrap(err, "logging.level"))
		}
	}

	if cfg.CrashDump != nil && cfg.CrashDump.MaxDumps < 0 {
		validationErrors = append(validationErrors, errors.Wrapf(ErrOutOfRange,
			"crash_dump.max_dumps: %d must not be negative", cfg.CrashDump.MaxDumps))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf(
			"%w: validation failed with %d error(s): %w",
			ErrInvalidConfig,
			len(validationErrors),
			combineErrors(validationErrors),
		)
	}

	return nil
}

func (*Validator) validateAudioConfig(cfg *config.AudioConfig) []error {
	var errs []error

	if cfg.SampleRate < 0 {
		errs = append(errs, errors.Wrapf(ErrOutOfRange,
			"audio.sample_rate: %v must be positive", cfg.SampleRate))
	}

	if cfg.Channels < 0 || cfg.Channels > audio.MaxChannels {
		errs = append(errs, errors.Wrapf(ErrOutOfRange,
			"audio.channels: %d must be between 1 and %d", cfg.Channels, audio.MaxChannels))
	}

	if cfg.BlockSize < 0 {
		errs = append(errs, errors.Wrapf(ErrOutOfRange,
			"audio.block_size: %d must be positive", cfg.BlockSize))
	}

	if cfg.Tempo < 0 {
		errs = append(errs, errors.Wrapf(ErrOutOfRange,
			"audio.tempo: %v must be positive", cfg.Tempo))
	}

	if cfg.TimeSignature != "" {
		if _, err := config.ParseTimeSignature(cfg.TimeSignature); err != nil {
			errs = append(errs, errors.Wrap(err, "audio.time_signature"))
		}
	}

	return errs
}

func (*Validator) validatePluginsConfig(cfg *config.PluginsConfig) []error {
	var errs []error

	if strings.TrimSpace(cfg.Chain) != "" {
		if _, err := chain.ParseArgument(cfg.Chain); err != nil {
			errs = append(errs, errors.Wrap(err, "plugins.chain"))
		}
	}

	for i, dir := range cfg.AllowedDirs {
		if strings.TrimSpace(dir) == "" {
			errs = append(errs, errors.Wrapf(ErrEmptyValue, "plugins.allowed_dirs[%d]", i))
		}
	}

	return errs
}

func combineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return errors.Join(errs...)
}
