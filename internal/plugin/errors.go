package plugin

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors for plugin operations. Each affects only the plugin or slot that
// raised it.
var (
	// ErrDiscovery is returned when no file matches a plugin name.
	ErrDiscovery = errors.New("plugin not found")

	// ErrLoad is returned when a library cannot be mapped or has no entry point.
	ErrLoad = errors.New("failed to load plugin")

	// ErrValidation is returned for a bad magic number or a shell plugin used without
	// a sub-plugin selector.
	ErrValidation = errors.New("plugin validation failed")

	// ErrInvalidParameterIndex is returned for parameter indexes the plugin does not have.
	ErrInvalidParameterIndex = errors.New("invalid parameter index")

	// ErrParameterOutOfRange is returned for values outside [0,1].
	ErrParameterOutOfRange = errors.New("parameter value out of range")

	// ErrInvalidProgram is returned for program indexes the plugin does not have.
	ErrInvalidProgram = errors.New("invalid program index")

	// ErrProgramChangeMismatch is returned when the plugin reports a different current
	// program after a program change.
	ErrProgramChangeMismatch = errors.New("program change not applied")

	// ErrUnsupportedFeature is returned for features the host or plugin does not support.
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrNotOpen is returned by operations that need an opened plugin.
	ErrNotOpen = errors.New("plugin is not open")

	// ErrLoaderClosed is returned when attempting to use a closed loader.
	ErrLoaderClosed = errors.New("loader has been closed")
)

// ValidateParameterValue checks that value is a normalized parameter value.
func ValidateParameterValue(index int, value float32) error {
	if value < 0 || value > 1 {
		return errors.Wrapf(ErrParameterOutOfRange, "parameter %d value %v", index, value)
	}

	return nil
}
