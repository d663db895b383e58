package vst2

import (
	"unsafe"
)

// HostCallback is the host side of the audioMaster callback. effect is the address
// of the calling AEffect, or zero while the entry point is still running.
type HostCallback func(
	effect uintptr,
	opcode HostOpcode,
	index int32,
	value int64,
	ptr unsafe.Pointer,
	opt float32,
) int64

// Effect is a loaded native effect instance.
type Effect interface {
	// Address identifies the instance in host callbacks.
	Address() uintptr

	// Header reads the current AEffect fields. Plugins may change channel counts
	// after negotiation, so callers must not cache it.
	Header() Header

	// Dispatch calls the effect dispatcher.
	Dispatch(opcode EffectOpcode, index int32, value int64, ptr unsafe.Pointer, opt float32) int64

	// ProcessReplacing renders frames frames from inputs into outputs. Each slice
	// holds one channel.
	ProcessReplacing(inputs, outputs [][]float32, frames int32)

	// SetParameter calls the effect's setParameter entry.
	SetParameter(index int32, value float32)

	// GetParameter calls the effect's getParameter entry.
	GetParameter(index int32) float32
}

// Library is a mapped dynamic library.
type Library interface {
	// Lookup resolves an exported symbol.
	Lookup(symbol string) (uintptr, error)

	// Close unmaps the library.
	Close() error
}

// Platform maps libraries and calls their entry points.
type Platform interface {
	// Open maps the library at path.
	Open(path string) (Library, error)

	// Enter calls the entry point at entry, passing callback as the host callback.
	// It returns nil when the plugin declines to create an instance.
	Enter(entry uintptr, callback HostCallback) (Effect, error)
}
