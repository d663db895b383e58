// Package plugin defines the uniform plugin contract, the built-in internal plugins,
// and the registry that resolves plugin names to implementations.
package plugin

//go:generate mockgen -source=plugin.go -destination=plugin_mock.go -package=plugin

import (
	"context"
	"fmt"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

// Kind is the interface variant backing a plugin.
type Kind int

const (
	// KindInternal is a plugin implemented inside the host.
	KindInternal Kind = iota

	// KindVST2 is a native binary speaking the VST 2.x protocol.
	KindVST2
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindVST2:
		return "vst2"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Role is what the plugin does, discovered from the plugin itself.
type Role int

const (
	// RoleUnknown is reported before a native plugin is opened.
	RoleUnknown Role = iota

	// RoleEffect processes incoming audio.
	RoleEffect

	// RoleInstrument generates audio from MIDI.
	RoleInstrument

	// RoleInternal marks the built-in plugins.
	RoleInternal
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleUnknown:
		return "unknown"
	case RoleEffect:
		return "effect"
	case RoleInstrument:
		return "instrument"
	case RoleInternal:
		return "internal"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// SettingKind selects a read-only value queried with Plugin.Setting.
type SettingKind int

const (
	// SettingTailFrames is the raw tail size in frames as reported by the plugin.
	// Zero and one both mean the plugin has no tail.
	SettingTailFrames SettingKind = iota

	// SettingTailTimeMs is the tail converted to milliseconds at the host sample rate.
	SettingTailTimeMs

	// SettingInputs is the number of audio inputs.
	SettingInputs

	// SettingOutputs is the number of audio outputs.
	SettingOutputs

	// SettingLatencyFrames is the processing delay reported by the plugin.
	SettingLatencyFrames

	// SettingParameters is the number of automatable parameters.
	SettingParameters

	// SettingPrograms is the number of programs.
	SettingPrograms
)

// SettingUnsupported is returned by Plugin.Setting for kinds a plugin cannot answer.
const SettingUnsupported int64 = -1

// Plugin is a single processing unit in a chain. Calls on one instance must not be
// made concurrently.
//
// Lifecycle: Open, Prepare, then ProcessMIDI and ProcessAudio once per block.
// Suspend deactivates the plugin and may be followed by another Prepare. Close
// releases everything and is safe to call more than once.
type Plugin interface {
	// Name returns the name the plugin was resolved from.
	Name() string

	// Location returns the directory the plugin was loaded from.
	Location() string

	// Kind returns the interface variant.
	Kind() Kind

	// Role returns the discovered role; RoleUnknown until a native plugin is opened.
	Role() Role

	// Open loads and validates the plugin. On failure the plugin stays unopened.
	Open(ctx context.Context) error

	// Prepare activates the plugin for the process-wide audio settings.
	Prepare() error

	// ProcessAudio renders one block from in into out. Neither buffer is retained.
	ProcessAudio(in, out *audio.SampleBuffer)

	// ProcessMIDI delivers the events of the current block. It is called before
	// ProcessAudio for the same block.
	ProcessMIDI(events []midi.Event)

	// SetParameter sets a normalized parameter value in [0,1].
	SetParameter(index int, value float32) error

	// Setting answers a read-only query, or SettingUnsupported.
	Setting(kind SettingKind) int64

	// Describe collects diagnostic information.
	Describe() Description

	// DisplayInfo logs the diagnostic information.
	DisplayInfo()

	// Suspend deactivates the plugin. It is a no-op on an unopened plugin.
	Suspend() error

	// Close releases every resource held by the plugin.
	Close() error
}

// Preset is a program applied to exactly one plugin when its chain initializes.
type Preset interface {
	// Name returns the preset name as it was given.
	Name() string

	// Open reads the preset.
	Open() error

	// Apply loads the preset into an opened plugin.
	Apply(p Plugin) error

	// Close releases the preset.
	Close() error
}
