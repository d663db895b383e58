package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

// Names of the built-in plugins.
const (
	NamePassthru = "mrs_passthru"
	NameSilence  = "mrs_silence"
	NameGain     = "mrs_gain"
)

// InternalLocation is reported as the location of every built-in plugin.
const InternalLocation = "(internal)"

// maxGain is the linear gain at a normalized parameter value of 1.
const maxGain = 2.0

// renderFunc writes one block of output for an internal plugin.
type renderFunc func(params []float32, in, out *audio.SampleBuffer)

// builtin describes one built-in plugin.
type builtin struct {
	description string
	params      []string
	defaults    []float32
	render      renderFunc
}

var internalPlugins = map[string]builtin{
	NamePassthru: {
		description: "Copies input to output unchanged",
		render:      renderPassthru,
	},
	NameSilence: {
		description: "Writes silence",
		render:      renderSilence,
	},
	NameGain: {
		description: "Scales input by a linear gain",
		params:      []string{"Gain"},
		defaults:    []float32{0.5},
		render:      renderGain,
	},
}

// InternalNames returns the names of the built-in plugins in sorted order.
func InternalNames() []string {
	names := make([]string, 0, len(internalPlugins))
	for name := range internalPlugins {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// IsInternal reports whether name is a built-in plugin.
func IsInternal(name string) bool {
	_, ok := internalPlugins[name]

	return ok
}

// InternalPlugin is a plugin implemented by the host itself.
type InternalPlugin struct {
	name     string
	def      builtin
	params   []float32
	settings audio.Settings
	logger   logger.Logger
	opened   bool
	prepared bool
}

// NewInternal creates the built-in plugin called name.
func NewInternal(name string, settings audio.Settings, log logger.Logger) (*InternalPlugin, error) {
	def, ok := internalPlugins[name]
	if !ok {
		return nil, errors.Wrapf(ErrDiscovery, "no internal plugin named %q", name)
	}

	return &InternalPlugin{
		name:     name,
		def:      def,
		params:   append([]float32(nil), def.defaults...),
		settings: settings,
		logger:   log.With("plugin", name),
	}, nil
}

// Name implements Plugin.
func (p *InternalPlugin) Name() string { return p.name }

// Location implements Plugin.
func (*InternalPlugin) Location() string { return InternalLocation }

// Kind implements Plugin.
func (*InternalPlugin) Kind() Kind { return KindInternal }

// Role implements Plugin. Built-in plugins are tagged internal from construction.
func (*InternalPlugin) Role() Role { return RoleInternal }

// Open implements Plugin.
func (p *InternalPlugin) Open(context.Context) error {
	p.opened = true
	p.logger.Debug("opened internal plugin")

	return nil
}

// Prepare implements Plugin.
func (p *InternalPlugin) Prepare() error {
	if !p.opened {
		return errors.Wrap(ErrNotOpen, p.name)
	}

	p.prepared = true

	return nil
}

// ProcessAudio implements Plugin. Until Prepare succeeds out is left untouched.
func (p *InternalPlugin) ProcessAudio(in, out *audio.SampleBuffer) {
	if !p.prepared {
		return
	}

	p.def.render(p.params, in, out)
}

// ProcessMIDI implements Plugin. Built-in plugins ignore MIDI.
func (*InternalPlugin) ProcessMIDI([]midi.Event) {}

// SetParameter implements Plugin.
func (p *InternalPlugin) SetParameter(index int, value float32) error {
	if index < 0 || index >= len(p.params) {
		return errors.Wrapf(ErrInvalidParameterIndex, "%s has %d parameters, got %d",
			p.name, len(p.params), index)
	}

	if err := ValidateParameterValue(index, value); err != nil {
		return err
	}

	p.params[index] = value

	return nil
}

// Parameter returns the current value of a parameter.
func (p *InternalPlugin) Parameter(index int) (float32, error) {
	if index < 0 || index >= len(p.params) {
		return 0, errors.Wrapf(ErrInvalidParameterIndex, "%s has %d parameters, got %d",
			p.name, len(p.params), index)
	}

	return p.params[index], nil
}

// Setting implements Plugin.
func (p *InternalPlugin) Setting(kind SettingKind) int64 {
	switch kind {
	case SettingTailFrames, SettingTailTimeMs, SettingLatencyFrames, SettingPrograms:
		return 0
	case SettingInputs, SettingOutputs:
		return int64(p.settings.Channels)
	case SettingParameters:
		return int64(len(p.params))
	default:
		return SettingUnsupported
	}
}

// Describe implements Plugin.
func (p *InternalPlugin) Describe() Description {
	d := Description{
		Name:     p.name,
		Location: InternalLocation,
		Kind:     KindInternal.String(),
		Role:     RoleInternal.String(),
		Product:  p.def.description,
		Inputs:   p.settings.Channels,
		Outputs:  p.settings.Channels,
	}

	for i, name := range p.def.params {
		d.Parameters = append(d.Parameters, ParameterInfo{
			Index:   i,
			Name:    name,
			Value:   p.params[i],
			Display: p.displayParameter(i),
		})
	}

	return d
}

// DisplayInfo implements Plugin.
func (p *InternalPlugin) DisplayInfo() {
	LogDescription(p.logger, p.Describe())
}

// Suspend implements Plugin.
func (p *InternalPlugin) Suspend() error {
	p.prepared = false

	return nil
}

// Close implements Plugin.
func (p *InternalPlugin) Close() error {
	p.prepared = false
	p.opened = false

	return nil
}

func (p *InternalPlugin) displayParameter(index int) string {
	if p.name == NameGain {
		return fmt.Sprintf("%.2fx", p.params[index]*maxGain)
	}

	return fmt.Sprintf("%.3f", p.params[index])
}

// renderPassthru copies rather than aliases so both buffers stay independently owned.
func renderPassthru(_ []float32, in, out *audio.SampleBuffer) {
	for ch := range min(in.Channels(), out.Channels()) {
		copy(out.Samples[ch], in.Samples[ch])
	}
}

func renderSilence(_ []float32, _, out *audio.SampleBuffer) {
	out.Clear()
}

func renderGain(params []float32, in, out *audio.SampleBuffer) {
	gain := params[0] * maxGain

	for ch := range min(in.Channels(), out.Channels()) {
		src, dst := in.Samples[ch], out.Samples[ch]
		for i := range min(len(src), len(dst)) {
			dst[i] = src[i] * gain
		}
	}
}
