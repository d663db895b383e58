package vst2

import (
	"math"
	"runtime"
	"unsafe"

	"github.com/Masterminds/semver/v3"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/pluginid"
)

// Identity reported to plugins.
const (
	HostVendor  = "smykla-skalski"
	HostProduct = "plughost"
)

// hostVersion is the vendor version reported through audioMasterGetVendorVersion.
// It is replaced at link time through SetHostVersion.
var hostVersion = semver.MustParse("0.1.0")

// SetHostVersion sets the version reported to plugins. Invalid versions are ignored.
func SetHostVersion(version string) {
	if v, err := semver.NewVersion(version); err == nil {
		hostVersion = v
	}
}

// VendorVersion returns the version reported to plugins in its packed form.
func VendorVersion() int64 {
	return vendorVersion(hostVersion)
}

// vendorVersion packs a semantic version as major*1000 + minor*100 + patch.
func vendorVersion(v *semver.Version) int64 {
	return int64(v.Major())*1000 + int64(v.Minor())*100 + int64(v.Patch())
}

// hostCanDos are the capabilities the host answers yes to.
var hostCanDos = map[string]bool{
	"sendVstEvents":           true,
	"sendVstMidiEvent":        true,
	"sendVstTimeInfo":         true,
	"shellCategory":           true,
	"supportShell":            true,
	"startStopProcess":        true,
	"reportConnectionChanges": false,
	"sizeWindow":              false,
	"openFileSelector":        false,
	"editFile":                false,
}

// Host answers callbacks for one plugin instance. Memory handed to the plugin
// (time info, directory) is pinned for the lifetime of the host.
type Host struct {
	settings  audio.Settings
	logger    logger.Logger
	subPlugin uint32
	realtime  bool
	samplePos int64

	timeInfo  *vstTimeInfo
	directory []byte
	pinner    runtime.Pinner
}

// NewHost creates the callback state for one plugin. subPlugin is the packed
// sub-plugin selector, or zero.
func NewHost(settings audio.Settings, log logger.Logger, subPlugin uint32, directory string) *Host {
	h := &Host{
		settings:  settings,
		logger:    log,
		subPlugin: subPlugin,
		timeInfo:  &vstTimeInfo{},
		directory: cStringBytes(directory),
	}

	h.pinner.Pin(h.timeInfo)
	h.pinner.Pin(&h.directory[0])

	return h
}

// SetRealtime switches the process level reported to the plugin.
func (h *Host) SetRealtime(realtime bool) {
	h.realtime = realtime
}

// AdvanceSamplePosition moves the transport forward by frames.
func (h *Host) AdvanceSamplePosition(frames int) {
	h.samplePos += int64(frames)
}

// SamplePosition returns the current transport position in frames.
func (h *Host) SamplePosition() int64 {
	return h.samplePos
}

// Release unpins memory handed to the plugin. The host must not be used afterwards.
func (h *Host) Release() {
	h.pinner.Unpin()
}

// Dispatch answers one audioMaster callback.
//
//nolint:cyclop,funlen // one case per opcode
func (h *Host) Dispatch(
	_ uintptr,
	opcode HostOpcode,
	index int32,
	value int64,
	ptr unsafe.Pointer,
	opt float32,
) int64 {
	switch opcode {
	case audioMasterAutomate:
		h.logger.Debug("plugin automated parameter", "index", index, "value", opt)

		return 0
	case audioMasterVersion:
		return HostVersion
	case audioMasterCurrentID:
		if h.subPlugin != 0 {
			h.logger.Debug("plugin asked for sub-plugin", "id", pluginid.FromValue(h.subPlugin))
		}

		return int64(int32(h.subPlugin))
	case audioMasterIdle, audioMasterUpdateDisplay, audioMasterBeginEdit, audioMasterEndEdit:
		return 0
	case audioMasterGetTime:
		h.fillTimeInfo()

		return int64(uintptr(unsafe.Pointer(h.timeInfo)))
	case audioMasterGetSampleRate:
		return int64(h.settings.SampleRate)
	case audioMasterGetBlockSize:
		return int64(h.settings.BlockSize)
	case audioMasterGetInputLatency, audioMasterGetOutputLatency:
		return 0
	case audioMasterGetCurrentProcessLevel:
		if h.realtime {
			return processLevelRealtime
		}

		return processLevelOffline
	case audioMasterGetAutomationState:
		return automationOff
	case audioMasterGetVendorString:
		putCString(ptr, maxNameLength, HostVendor)

		return 1
	case audioMasterGetProductString:
		putCString(ptr, maxNameLength, HostProduct)

		return 1
	case audioMasterGetVendorVersion:
		return vendorVersion(hostVersion)
	case audioMasterCanDo:
		return h.canDo(readCString(ptr, stringBufferSize))
	case audioMasterGetLanguage:
		return languageEnglish
	case audioMasterGetDirectory:
		return int64(uintptr(unsafe.Pointer(&h.directory[0])))
	case audioMasterProcessEvents, audioMasterIOChanged, audioMasterSizeWindow:
		h.logger.Debug("plugin requested unsupported host feature", "opcode", int32(opcode), "value", value)

		return 0
	default:
		h.logger.Debug("unhandled host opcode", "opcode", int32(opcode), "index", index, "value", value)

		return 0
	}
}

func (h *Host) canDo(capability string) int64 {
	supported, known := hostCanDos[capability]

	switch {
	case !known:
		h.logger.Debug("plugin asked about unknown host capability", "capability", capability)

		return 0
	case supported:
		return 1
	default:
		return -1
	}
}

// fillTimeInfo derives every field from the sample position so repeated runs
// report identical transport state.
func (h *Host) fillTimeInfo() {
	s := h.settings
	seconds := float64(h.samplePos) / s.SampleRate
	ppq := seconds * s.Tempo / 60
	quartersPerBar := float64(s.TimeSignature.Numerator) * 4 / float64(s.TimeSignature.Denominator)

	*h.timeInfo = vstTimeInfo{
		SamplePos:          float64(h.samplePos),
		SampleRate:         s.SampleRate,
		NanoSeconds:        seconds * 1e9,
		PpqPos:             ppq,
		Tempo:              s.Tempo,
		BarStartPos:        math.Floor(ppq/quartersPerBar) * quartersPerBar,
		TimeSigNumerator:   int32(s.TimeSignature.Numerator),
		TimeSigDenominator: int32(s.TimeSignature.Denominator),
		Flags: timeTransportPlaying | timeNanosValid | timePpqPosValid |
			timeTempoValid | timeBarsValid | timeSigValid,
	}
}
