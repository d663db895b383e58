//go:build !darwin && !linux

package vst2

import (
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/plugin"
)

// NativePlatform reports that native loading is unavailable on this OS.
type NativePlatform struct{}

// NewNativePlatform creates the platform for the running OS.
func NewNativePlatform() *NativePlatform {
	return &NativePlatform{}
}

// Open implements Platform.
//
//nolint:ireturn // matches the Platform interface
func (*NativePlatform) Open(path string) (Library, error) {
	return nil, errors.Wrapf(plugin.ErrLoad, "%s: %v on %s", path, ErrUnsupportedPlatform, runtime.GOOS)
}

// Enter implements Platform.
//
//nolint:ireturn // matches the Platform interface
func (*NativePlatform) Enter(uintptr, HostCallback) (Effect, error) {
	return nil, errors.Wrapf(plugin.ErrLoad, "%v on %s", ErrUnsupportedPlatform, runtime.GOOS)
}
