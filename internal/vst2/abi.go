package vst2

import (
	"unsafe"
)

// EffectMagic is the value of AEffect.magic ('VstP').
const EffectMagic int32 = 0x56737450

// HostVersion is the protocol version reported to plugins.
const HostVersion = 2400

// Entry point symbols, tried in order.
var entrySymbols = []string{"VSTPluginMain", "main"}

// EffectOpcode is a host-to-plugin dispatcher opcode.
type EffectOpcode int32

const (
	effOpen                  EffectOpcode = 0
	effClose                 EffectOpcode = 1
	effSetProgram            EffectOpcode = 2
	effGetProgram            EffectOpcode = 3
	effSetProgramName        EffectOpcode = 4
	effGetProgramName        EffectOpcode = 5
	effGetParamLabel         EffectOpcode = 6
	effGetParamDisplay       EffectOpcode = 7
	effGetParamName          EffectOpcode = 8
	effSetSampleRate         EffectOpcode = 10
	effSetBlockSize          EffectOpcode = 11
	effMainsChanged          EffectOpcode = 12
	effGetChunk              EffectOpcode = 23
	effSetChunk              EffectOpcode = 24
	effProcessEvents         EffectOpcode = 25
	effGetProgramNameIndexed EffectOpcode = 29
	effGetPlugCategory       EffectOpcode = 35
	effSetSpeakerArrangement EffectOpcode = 42
	effGetEffectName         EffectOpcode = 45
	effGetVendorString       EffectOpcode = 47
	effGetProductString      EffectOpcode = 48
	effGetVendorVersion      EffectOpcode = 49
	effCanDo                 EffectOpcode = 51
	effGetTailSize           EffectOpcode = 52
	effGetVstVersion         EffectOpcode = 58
	effBeginSetProgram       EffectOpcode = 67
	effEndSetProgram         EffectOpcode = 68
	effShellGetNextPlugin    EffectOpcode = 70
	effStartProcess          EffectOpcode = 71
	effStopProcess           EffectOpcode = 72
)

// HostOpcode is a plugin-to-host callback opcode.
type HostOpcode int32

const (
	audioMasterAutomate               HostOpcode = 0
	audioMasterVersion                HostOpcode = 1
	audioMasterCurrentID              HostOpcode = 2
	audioMasterIdle                   HostOpcode = 3
	audioMasterGetTime                HostOpcode = 7
	audioMasterProcessEvents          HostOpcode = 8
	audioMasterIOChanged              HostOpcode = 13
	audioMasterSizeWindow             HostOpcode = 15
	audioMasterGetSampleRate          HostOpcode = 16
	audioMasterGetBlockSize           HostOpcode = 17
	audioMasterGetInputLatency        HostOpcode = 18
	audioMasterGetOutputLatency       HostOpcode = 19
	audioMasterGetCurrentProcessLevel HostOpcode = 23
	audioMasterGetAutomationState     HostOpcode = 24
	audioMasterGetVendorString        HostOpcode = 32
	audioMasterGetProductString       HostOpcode = 33
	audioMasterGetVendorVersion       HostOpcode = 34
	audioMasterCanDo                  HostOpcode = 37
	audioMasterGetLanguage            HostOpcode = 38
	audioMasterGetDirectory           HostOpcode = 41
	audioMasterUpdateDisplay          HostOpcode = 42
	audioMasterBeginEdit              HostOpcode = 43
	audioMasterEndEdit                HostOpcode = 44
)

// Effect flags.
const (
	effFlagsHasEditor     int32 = 1 << 0
	effFlagsCanReplacing  int32 = 1 << 4
	effFlagsProgramChunks int32 = 1 << 5
	effFlagsIsSynth       int32 = 1 << 8
	effFlagsNoSoundInStop int32 = 1 << 9
)

var flagNames = []struct {
	flag int32
	name string
}{
	{effFlagsHasEditor, "has editor"},
	{effFlagsCanReplacing, "can replace"},
	{effFlagsProgramChunks, "program chunks"},
	{effFlagsIsSynth, "synth"},
	{effFlagsNoSoundInStop, "no sound in stop"},
}

// Category is the plugin category reported by effGetPlugCategory.
type Category int64

const (
	CategoryUnknown        Category = 0
	CategoryEffect         Category = 1
	CategorySynth          Category = 2
	CategoryAnalysis       Category = 3
	CategoryMastering      Category = 4
	CategorySpacializer    Category = 5
	CategoryRoomFx         Category = 6
	CategorySurroundFx     Category = 7
	CategoryRestoration    Category = 8
	CategoryOfflineProcess Category = 9
	CategoryShell          Category = 10
	CategoryGenerator      Category = 11
)

var categoryNames = map[Category]string{
	CategoryUnknown:        "unknown",
	CategoryEffect:         "effect",
	CategorySynth:          "synth",
	CategoryAnalysis:       "analysis",
	CategoryMastering:      "mastering",
	CategorySpacializer:    "spacializer",
	CategoryRoomFx:         "room fx",
	CategorySurroundFx:     "surround fx",
	CategoryRestoration:    "restoration",
	CategoryOfflineProcess: "offline process",
	CategoryShell:          "shell",
	CategoryGenerator:      "generator",
}

// String returns the category name.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}

	return "other"
}

// Process levels returned for audioMasterGetCurrentProcessLevel.
const (
	processLevelRealtime = 2
	processLevelOffline  = 4
)

const (
	automationOff   = 1
	languageEnglish = 1
)

// VstTimeInfo flags.
const (
	timeTransportPlaying = 1 << 1
	timeNanosValid       = 1 << 8
	timePpqPosValid      = 1 << 9
	timeTempoValid       = 1 << 10
	timeBarsValid        = 1 << 11
	timeSigValid         = 1 << 13
)

// String buffer sizes used by the protocol. Buffers are allocated larger than the
// protocol limits because plugins routinely overrun them.
const (
	maxNameLength    = 64
	stringBufferSize = 256
)

// Speaker arrangement types.
const (
	speakerArrMono    int32 = 0
	speakerArrStereo  int32 = 1
	speakerUndefined  int32 = 0x7fffffff
	maxSpeakers             = 8
	vstMidiType       int32 = 1
	vstMidiEventBytes       = int32(unsafe.Sizeof(vstMidiEvent{}))
)

// aEffect mirrors the native AEffect struct. Go's natural alignment matches the C
// layout on both 32 and 64 bit targets.
type aEffect struct {
	Magic                  int32
	Dispatcher             uintptr
	Process                uintptr
	SetParameter           uintptr
	GetParameter           uintptr
	NumPrograms            int32
	NumParams              int32
	NumInputs              int32
	NumOutputs             int32
	Flags                  int32
	Resvd1                 uintptr
	Resvd2                 uintptr
	InitialDelay           int32
	RealQualities          int32
	OffQualities           int32
	IORatio                float32
	Object                 uintptr
	User                   uintptr
	UniqueID               int32
	Version                int32
	ProcessReplacing       uintptr
	ProcessDoubleReplacing uintptr
	Future                 [56]byte
}

// Header is a snapshot of the AEffect fields the host reads.
type Header struct {
	Magic        int32
	NumPrograms  int32
	NumParams    int32
	NumInputs    int32
	NumOutputs   int32
	Flags        int32
	InitialDelay int32
	UniqueID     int32
	Version      int32
}

func (a *aEffect) header() Header {
	return Header{
		Magic:        a.Magic,
		NumPrograms:  a.NumPrograms,
		NumParams:    a.NumParams,
		NumInputs:    a.NumInputs,
		NumOutputs:   a.NumOutputs,
		Flags:        a.Flags,
		InitialDelay: a.InitialDelay,
		UniqueID:     a.UniqueID,
		Version:      a.Version,
	}
}

// vstMidiEvent mirrors VstMidiEvent (32 bytes).
type vstMidiEvent struct {
	Type            int32
	ByteSize        int32
	DeltaFrames     int32
	Flags           int32
	NoteLength      int32
	NoteOffset      int32
	MidiData        [4]byte
	Detune          int8
	NoteOffVelocity uint8
	Reserved1       uint8
	Reserved2       uint8
}

// vstSpeakerProperties mirrors VstSpeakerProperties (112 bytes).
type vstSpeakerProperties struct {
	Azimuth   float32
	Elevation float32
	Radius    float32
	Reserved  float32
	Name      [maxNameLength]byte
	Type      int32
	Future    [28]byte
}

// vstSpeakerArrangement mirrors VstSpeakerArrangement.
type vstSpeakerArrangement struct {
	Type        int32
	NumChannels int32
	Speakers    [maxSpeakers]vstSpeakerProperties
}

// vstTimeInfo mirrors VstTimeInfo.
type vstTimeInfo struct {
	SamplePos          float64
	SampleRate         float64
	NanoSeconds        float64
	PpqPos             float64
	Tempo              float64
	BarStartPos        float64
	CycleStartPos      float64
	CycleEndPos        float64
	TimeSigNumerator   int32
	TimeSigDenominator int32
	SmpteOffset        int32
	SmpteFrameRate     int32
	SamplesToNextClock int32
	Flags              int32
}

// cString reads a NUL-terminated string from a protocol buffer.
func cString(buf []byte) string {
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i])
		}
	}

	return string(buf)
}

// putCString copies s into the memory at ptr as a NUL-terminated string of at most
// size bytes including the terminator.
func putCString(ptr unsafe.Pointer, size int, s string) {
	if ptr == nil || size <= 0 {
		return
	}

	dst := unsafe.Slice((*byte)(ptr), size)
	n := copy(dst[:size-1], s)
	dst[n] = 0
}

// readCString reads a NUL-terminated string of at most limit bytes from ptr. It
// stops at the terminator and never reads past it.
func readCString(ptr unsafe.Pointer, limit int) string {
	if ptr == nil {
		return ""
	}

	buf := make([]byte, 0, maxNameLength)

	for i := range limit {
		c := *(*byte)(unsafe.Add(ptr, i))
		if c == 0 {
			break
		}

		buf = append(buf, c)
	}

	return string(buf)
}

// cStringBytes returns s as a NUL-terminated byte slice.
func cStringBytes(s string) []byte {
	return append([]byte(s), 0)
}
