package vst2

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

// maxProgramNameLength is kVstMaxProgNameLen plus the terminator.
const maxProgramNameLength = 25

// maxSubPlugins bounds shell enumeration for plugins that never report the end.
const maxSubPlugins = 1024

// commonCanDos are queried for the diagnostic dump.
var commonCanDos = []string{
	"sendVstEvents",
	"sendVstMidiEvent",
	"receiveVstEvents",
	"receiveVstMidiEvent",
	"receiveVstTimeInfo",
	"offline",
	"midiProgramNames",
	"bypass",
}

// Plugin hosts one native VST 2.x effect.
type Plugin struct {
	name        string
	baseName    string
	subPlugin   pluginid.ID
	path        string
	location    string
	settings    audio.Settings
	platform    Platform
	router      *router
	allowedDirs []string
	realtime    bool
	logger      logger.Logger

	lib      Library
	effect   Effect
	host     *Host
	role     plugin.Role
	category Category
	prepared bool

	batch       *eventBatch
	speakersIn  *vstSpeakerArrangement
	speakersOut *vstSpeakerArrangement
	pinner      runtime.Pinner

	inputs  [][]float32
	outputs [][]float32
	spare   *audio.SampleBuffer
}

// Name implements plugin.Plugin. It includes the sub-plugin selector when given.
func (p *Plugin) Name() string { return p.name }

// Location implements plugin.Plugin.
func (p *Plugin) Location() string { return p.location }

// Path returns the file the plugin is loaded from.
func (p *Plugin) Path() string { return p.path }

// Kind implements plugin.Plugin.
func (*Plugin) Kind() plugin.Kind { return plugin.KindVST2 }

// Role implements plugin.Plugin.
func (p *Plugin) Role() plugin.Role { return p.role }

// SubPluginID returns the sub-plugin selector, if one was given.
func (p *Plugin) SubPluginID() (pluginid.ID, bool) {
	return p.subPlugin, p.subPlugin.Value != 0
}

// IsShell reports whether the opened plugin hosts sub-plugins.
func (p *Plugin) IsShell() bool {
	return p.category == CategoryShell
}

// SetRealtime selects the process level reported to the plugin.
func (p *Plugin) SetRealtime(realtime bool) {
	p.realtime = realtime
	if p.host != nil {
		p.host.SetRealtime(realtime)
	}
}

// Open implements plugin.Plugin. It maps the library, runs the entry point with the
// sub-plugin selector installed for host callbacks, validates the effect and
// negotiates the audio settings.
func (p *Plugin) Open(ctx context.Context) error {
	if p.effect != nil {
		return nil
	}

	p.logger.Info("opening VST2.x plugin", "path", p.path)

	if err := plugin.ValidatePath(p.path, p.allowedDirs); err != nil {
		return err
	}

	lib, err := p.platform.Open(p.path)
	if err != nil {
		return errors.Wrapf(plugin.ErrLoad, "%s: %v", p.name, err)
	}

	entry, err := lookupEntry(lib)
	if err != nil {
		_ = lib.Close()

		return errors.Wrapf(plugin.ErrLoad, "%s: %v", p.name, err)
	}

	host := NewHost(p.settings, p.logger, p.subPlugin.Value, p.location)
	host.SetRealtime(p.realtime)

	effect, err := p.router.load(ctx, host, func() (Effect, error) {
		return p.platform.Enter(entry, p.router.dispatch)
	})

	switch {
	case err != nil:
		err = errors.Wrapf(plugin.ErrLoad, "%s: %v", p.name, err)
	case effect == nil:
		err = errors.Wrapf(plugin.ErrLoad, "%s: entry point returned no effect", p.name)
	case effect.Header().Magic != EffectMagic:
		p.logger.Error("plugin has bad magic number, possibly corrupt",
			"magic", fmt.Sprintf("0x%08x", uint32(effect.Header().Magic)))

		err = errors.Wrapf(plugin.ErrValidation, "%s: bad magic number", p.name)
	}

	if err != nil {
		host.Release()
		_ = lib.Close()

		return err
	}

	p.router.register(effect.Address(), host)
	p.lib, p.effect, p.host = lib, effect, host

	p.negotiate()

	return nil
}

func lookupEntry(lib Library) (uintptr, error) {
	var errs error

	for _, symbol := range entrySymbols {
		addr, err := lib.Lookup(symbol)
		if err == nil && addr == 0 {
			err = errors.Newf("symbol %s is nil", symbol)
		}

		if err == nil {
			return addr, nil
		}

		errs = errors.CombineErrors(errs, err)
	}

	return 0, errors.Wrap(errs, "no entry point")
}

// negotiate discovers the role and category, opens the effect and sets sample
// rate, block size and speaker arrangement.
func (p *Plugin) negotiate() {
	if p.effect.Header().Flags&effFlagsIsSynth != 0 {
		p.role = plugin.RoleInstrument
	} else {
		p.role = plugin.RoleEffect
	}

	p.category = Category(p.effect.Dispatch(effGetPlugCategory, 0, 0, nil, 0))
	if p.IsShell() {
		if id, ok := p.SubPluginID(); ok {
			p.logger.Debug("plugin is a shell", "sub_plugin", id)
		} else {
			p.logger.Warn("shell plugin opened without a sub-plugin selector, processing is unavailable")
		}
	}

	p.effect.Dispatch(effOpen, 0, 0, nil, 0)
	p.effect.Dispatch(effSetSampleRate, 0, 0, nil, float32(p.settings.SampleRate))
	p.effect.Dispatch(effSetBlockSize, 0, int64(p.settings.BlockSize), nil, 0)

	p.speakersIn = newSpeakerArrangement(p.settings.Channels)
	p.speakersOut = newSpeakerArrangement(p.settings.Channels)
	p.pinner.Pin(p.speakersIn)
	p.pinner.Pin(p.speakersOut)

	p.effect.Dispatch(effSetSpeakerArrangement, 0,
		int64(uintptr(unsafe.Pointer(p.speakersIn))), unsafe.Pointer(p.speakersOut), 0)
}

// newSpeakerArrangement describes channels speakers. Only mono and stereo layouts
// exist; larger counts use the stereo type and pass the count through.
func newSpeakerArrangement(channels int) *vstSpeakerArrangement {
	arr := &vstSpeakerArrangement{Type: speakerArrStereo, NumChannels: int32(channels)}
	if channels == 1 {
		arr.Type = speakerArrMono
	}

	for i := range min(channels, maxSpeakers) {
		arr.Speakers[i].Type = speakerUndefined
	}

	return arr
}

// Prepare implements plugin.Plugin by resuming the effect.
func (p *Plugin) Prepare() error {
	if p.effect == nil {
		return errors.Wrap(plugin.ErrNotOpen, p.name)
	}

	if _, ok := p.SubPluginID(); p.IsShell() && !ok {
		p.logger.Error("shell plugin needs a sub-plugin selector",
			"hint", fmt.Sprintf("use %s%cXXXX with an id from 'plughost info'", p.baseName, SubPluginSeparator))

		return errors.Wrapf(plugin.ErrValidation, "%s is a shell plugin and no sub-plugin was selected", p.name)
	}

	if p.prepared {
		return nil
	}

	p.logger.Debug("resuming plugin")
	p.effect.Dispatch(effMainsChanged, 0, 1, nil, 0)
	p.effect.Dispatch(effStartProcess, 0, 0, nil, 0)
	p.prepared = true

	return nil
}

// ProcessAudio implements plugin.Plugin. The effect sees exactly as many channels
// as it declares; missing inputs read silence and surplus host outputs are cleared.
func (p *Plugin) ProcessAudio(in, out *audio.SampleBuffer) {
	if p.effect == nil || !p.prepared {
		return
	}

	h := p.effect.Header()
	numInputs, numOutputs := max(int(h.NumInputs), 0), max(int(h.NumOutputs), 0)
	p.ensureSpare(numInputs+numOutputs, out.Frames())

	p.inputs = p.inputs[:0]
	for ch := range numInputs {
		if ch < in.Channels() {
			p.inputs = append(p.inputs, in.Samples[ch])

			continue
		}

		spare := p.spare.Samples[ch]
		clear(spare)
		p.inputs = append(p.inputs, spare)
	}

	p.outputs = p.outputs[:0]
	for ch := range numOutputs {
		if ch < out.Channels() {
			p.outputs = append(p.outputs, out.Samples[ch])

			continue
		}

		p.outputs = append(p.outputs, p.spare.Samples[numInputs+ch])
	}

	for ch := numOutputs; ch < out.Channels(); ch++ {
		clear(out.Samples[ch])
	}

	p.effect.ProcessReplacing(p.inputs, p.outputs, int32(out.Frames()))
	p.host.AdvanceSamplePosition(out.Frames())
}

func (p *Plugin) ensureSpare(channels, frames int) {
	if p.spare != nil && p.spare.Channels() >= channels && p.spare.Frames() == frames {
		return
	}

	p.spare = audio.NewSampleBuffer(channels, frames)
}

// ProcessMIDI implements plugin.Plugin. The previous block's batch is released
// before the next one is built.
func (p *Plugin) ProcessMIDI(events []midi.Event) {
	p.releaseBatch()

	if p.effect == nil {
		return
	}

	ordered := OrderEvents(events, p.logger)
	if len(ordered) == 0 {
		return
	}

	p.batch = newEventBatch(ordered)
	p.effect.Dispatch(effProcessEvents, 0, 0, p.batch.pointer(), 0)
}

func (p *Plugin) releaseBatch() {
	if p.batch != nil {
		p.batch.release()
		p.batch = nil
	}
}

// SetParameter implements plugin.Plugin. It calls the effect's setParameter entry
// directly and reads back the display string.
func (p *Plugin) SetParameter(index int, value float32) error {
	if p.effect == nil {
		return errors.Wrap(plugin.ErrNotOpen, p.name)
	}

	if count := int(p.effect.Header().NumParams); index < 0 || index >= count {
		p.logger.Error("cannot set parameter, invalid index", "index", index, "parameters", count)

		return errors.Wrapf(plugin.ErrInvalidParameterIndex, "%s has %d parameters, got %d",
			p.name, count, index)
	}

	if err := plugin.ValidateParameterValue(index, value); err != nil {
		return err
	}

	p.effect.SetParameter(int32(index), value)

	p.logger.Info("set parameter",
		"index", index,
		"value", value,
		"display", p.dispatchString(effGetParamDisplay, index, stringBufferSize),
	)

	return nil
}

// Parameter returns the current normalized value of a parameter.
func (p *Plugin) Parameter(index int) (float32, error) {
	if p.effect == nil {
		return 0, errors.Wrap(plugin.ErrNotOpen, p.name)
	}

	if count := int(p.effect.Header().NumParams); index < 0 || index >= count {
		return 0, errors.Wrapf(plugin.ErrInvalidParameterIndex, "%s has %d parameters, got %d",
			p.name, count, index)
	}

	return p.effect.GetParameter(int32(index)), nil
}

// ParameterCount returns the number of parameters of the opened effect.
func (p *Plugin) ParameterCount() int {
	if p.effect == nil {
		return 0
	}

	return int(p.effect.Header().NumParams)
}

// UniqueID returns the effect's unique identifier.
func (p *Plugin) UniqueID() uint32 {
	if p.effect == nil {
		return 0
	}

	return uint32(p.effect.Header().UniqueID)
}

// SetProgram selects a program and confirms the change by reading the current
// program back. A plugin reporting success but a different current program fails
// with ErrProgramChangeMismatch.
func (p *Plugin) SetProgram(index int) error {
	if p.effect == nil {
		return errors.Wrap(plugin.ErrNotOpen, p.name)
	}

	if count := int(p.effect.Header().NumPrograms); index < 0 || index >= count {
		p.logger.Error("cannot load program, index out of range", "program", index, "programs", count)

		return errors.Wrapf(plugin.ErrInvalidProgram, "%s has %d programs, got %d", p.name, count, index)
	}

	p.effect.Dispatch(effBeginSetProgram, 0, 0, nil, 0)
	result := p.effect.Dispatch(effSetProgram, 0, int64(index), nil, 0)
	p.effect.Dispatch(effEndSetProgram, 0, 0, nil, 0)

	if result != 0 {
		p.logger.Error("plugin failed to load program", "program", index)

		return errors.Wrapf(plugin.ErrProgramChangeMismatch, "%s rejected program %d", p.name, index)
	}

	if current := p.effect.Dispatch(effGetProgram, 0, 0, nil, 0); current != int64(index) {
		p.logger.Error("plugin claimed to load program, but current program differs",
			"program", index, "current", current)

		return errors.Wrapf(plugin.ErrProgramChangeMismatch, "%s: requested program %d, current is %d",
			p.name, index, current)
	}

	p.logger.Debug("current program changed",
		"program", index,
		"name", p.dispatchString(effGetProgramName, 0, stringBufferSize),
	)

	return nil
}

// SetProgramName renames the current program.
func (p *Plugin) SetProgramName(name string) error {
	if p.effect == nil {
		return errors.Wrap(plugin.ErrNotOpen, p.name)
	}

	buf := make([]byte, maxProgramNameLength)
	copy(buf[:maxProgramNameLength-1], name)

	p.effect.Dispatch(effSetProgramName, 0, 0, unsafe.Pointer(&buf[0]), 0)
	runtime.KeepAlive(buf)

	return nil
}

// SetProgramChunk hands an opaque program chunk to an effect that stores its
// programs as chunks.
func (p *Plugin) SetProgramChunk(chunk []byte) error {
	if p.effect == nil {
		return errors.Wrap(plugin.ErrNotOpen, p.name)
	}

	if p.effect.Header().Flags&effFlagsProgramChunks == 0 {
		return errors.Wrapf(plugin.ErrUnsupportedFeature, "%s does not accept program chunks", p.name)
	}

	if len(chunk) == 0 {
		return nil
	}

	var pinner runtime.Pinner
	defer pinner.Unpin()

	pinner.Pin(&chunk[0])
	p.effect.Dispatch(effSetChunk, 1, int64(len(chunk)), unsafe.Pointer(&chunk[0]), 0)

	return nil
}

// Setting implements plugin.Plugin.
func (p *Plugin) Setting(kind plugin.SettingKind) int64 {
	if p.effect == nil {
		return plugin.SettingUnsupported
	}

	h := p.effect.Header()

	switch kind {
	case plugin.SettingTailFrames:
		return p.effect.Dispatch(effGetTailSize, 0, 0, nil, 0)
	case plugin.SettingTailTimeMs:
		return TailMillis(p.effect.Dispatch(effGetTailSize, 0, 0, nil, 0), p.settings.SampleRate)
	case plugin.SettingInputs:
		return int64(h.NumInputs)
	case plugin.SettingOutputs:
		return int64(h.NumOutputs)
	case plugin.SettingLatencyFrames:
		return int64(h.InitialDelay)
	case plugin.SettingParameters:
		return int64(h.NumParams)
	case plugin.SettingPrograms:
		return int64(h.NumPrograms)
	default:
		p.logger.Debug("unsupported plugin setting", "kind", int(kind))

		return plugin.SettingUnsupported
	}
}

// TailMillis converts a reported tail size to milliseconds. Zero and one both mean
// there is no tail.
func TailMillis(tailFrames int64, sampleRate float64) int64 {
	if tailFrames <= 1 || sampleRate <= 0 {
		return 0
	}

	return int64(float64(tailFrames) * 1000 / sampleRate)
}

// SubPlugins enumerates the plugins inside a shell. It is diagnostic only.
func (p *Plugin) SubPlugins() []plugin.SubPlugin {
	if p.effect == nil || !p.IsShell() {
		return nil
	}

	var subs []plugin.SubPlugin

	buf := make([]byte, stringBufferSize)

	for range maxSubPlugins {
		clear(buf)

		id := p.effect.Dispatch(effShellGetNextPlugin, 0, 0, unsafe.Pointer(&buf[0]), 0)
		name := cString(buf)

		if id == 0 || name == "" {
			break
		}

		subs = append(subs, plugin.SubPlugin{
			ID:   pluginid.FromValue(uint32(id)).String(),
			Name: name,
		})
	}

	return subs
}

// CanDo asks the effect about a capability: 1 yes, -1 no, 0 unknown.
func (p *Plugin) CanDo(capability string) int64 {
	if p.effect == nil {
		return 0
	}

	buf := cStringBytes(capability)
	result := p.effect.Dispatch(effCanDo, 0, 0, unsafe.Pointer(&buf[0]), 0)
	runtime.KeepAlive(buf)

	return result
}

func canDoText(result int64) string {
	switch result {
	case -1:
		return "No"
	case 0:
		return "Don't know"
	case 1:
		return "Yes"
	default:
		return "Undefined response"
	}
}

// Describe implements plugin.Plugin.
func (p *Plugin) Describe() plugin.Description {
	d := plugin.Description{
		Name:     p.name,
		Location: p.location,
		Kind:     plugin.KindVST2.String(),
		Role:     p.role.String(),
	}

	if p.effect == nil {
		return d
	}

	h := p.effect.Header()

	d.Vendor = p.dispatchString(effGetVendorString, 0, stringBufferSize)
	d.Product = p.dispatchString(effGetProductString, 0, stringBufferSize)

	if d.Product == "" {
		d.Product = p.dispatchString(effGetEffectName, 0, stringBufferSize)
	}

	d.Version = strconv.FormatInt(p.effect.Dispatch(effGetVendorVersion, 0, 0, nil, 0), 10)
	d.UniqueID = pluginid.FromValue(uint32(h.UniqueID)).String()
	d.Category = p.category.String()
	d.Inputs = int(h.NumInputs)
	d.Outputs = int(h.NumOutputs)
	d.Latency = int(h.InitialDelay)

	for _, f := range flagNames {
		if h.Flags&f.flag != 0 {
			d.Flags = append(d.Flags, f.name)
		}
	}

	if _, ok := p.SubPluginID(); p.IsShell() && !ok {
		d.SubPlugins = p.SubPlugins()

		return d
	}

	for i := range int(h.NumParams) {
		d.Parameters = append(d.Parameters, plugin.ParameterInfo{
			Index:   i,
			Name:    p.dispatchString(effGetParamName, i, stringBufferSize),
			Value:   p.effect.GetParameter(int32(i)),
			Display: p.dispatchString(effGetParamDisplay, i, stringBufferSize),
			Label:   p.dispatchString(effGetParamLabel, i, stringBufferSize),
		})
	}

	for i := range int(h.NumPrograms) {
		d.Programs = append(d.Programs, plugin.ProgramInfo{
			Index: i,
			Name:  p.dispatchString(effGetProgramNameIndexed, i, stringBufferSize),
		})
	}

	for _, capability := range commonCanDos {
		d.Capabilities = append(d.Capabilities, plugin.Capability{
			Name:    capability,
			Support: canDoText(p.CanDo(capability)),
		})
	}

	return d
}

// DisplayInfo implements plugin.Plugin.
func (p *Plugin) DisplayInfo() {
	plugin.LogDescription(p.logger, p.Describe())
}

// dispatchString calls an opcode that writes a string into a host buffer.
func (p *Plugin) dispatchString(opcode EffectOpcode, index, size int) string {
	buf := make([]byte, size)
	p.effect.Dispatch(opcode, int32(index), 0, unsafe.Pointer(&buf[0]), 0)

	return cString(buf)
}

// Suspend implements plugin.Plugin by stopping the effect. It is a no-op on an
// unopened plugin.
func (p *Plugin) Suspend() error {
	if p.effect == nil || !p.prepared {
		return nil
	}

	p.logger.Debug("suspending plugin")
	p.effect.Dispatch(effMainsChanged, 0, 0, nil, 0)
	p.effect.Dispatch(effStopProcess, 0, 0, nil, 0)
	p.prepared = false

	return nil
}

// Close implements plugin.Plugin. It suspends if needed, closes the effect and
// unmaps the library. Calling it again does nothing.
func (p *Plugin) Close() error {
	p.releaseBatch()

	if p.effect == nil {
		return nil
	}

	_ = p.Suspend()

	p.effect.Dispatch(effClose, 0, 0, nil, 0)
	p.router.unregister(p.effect.Address())
	p.effect = nil

	p.host.Release()
	p.host = nil
	p.pinner.Unpin()

	lib := p.lib
	p.lib = nil

	if err := lib.Close(); err != nil {
		return errors.Wrapf(err, "failed to unload %s", p.name)
	}

	return nil
}
