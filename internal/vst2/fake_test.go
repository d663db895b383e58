package vst2

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/midi"
)

// fakeEffect behaves like a small native effect: it doubles its input, stores
// parameters and programs, and records every dispatcher call.
type fakeEffect struct {
	header   Header
	category Category
	calls    []EffectOpcode

	params          []float32
	program         int64
	rejectProgram   bool
	programReadback func(requested int64) int64
	tail            int64
	vendor          string
	product         string
	subPlugins      []SubPluginFixture
	nextSub         int
	chunk           []byte
	programName     string

	sampleRate float32
	blockSize  int64
	speakers   vstSpeakerArrangement
	received   [][]midi.Event
	canDo      map[string]int64
}

// SubPluginFixture is one sub-plugin reported by a fake shell.
type SubPluginFixture struct {
	ID   uint32
	Name string
}

func newFakeEffect() *fakeEffect {
	return &fakeEffect{
		header: Header{
			Magic:       EffectMagic,
			NumPrograms: 3,
			NumParams:   2,
			NumInputs:   2,
			NumOutputs:  2,
			Flags:       effFlagsCanReplacing | effFlagsProgramChunks,
			UniqueID:    0x46616b65, // "Fake"
			Version:     1,
		},
		category: CategoryEffect,
		params:   []float32{0.5, 0.25},
		vendor:   "Fake Audio",
		product:  "Doubler",
		canDo:    map[string]int64{"receiveVstMidiEvent": 1, "offline": -1},
	}
}

func (f *fakeEffect) Address() uintptr { return 0xfeed }

func (f *fakeEffect) Header() Header { return f.header }

func (f *fakeEffect) called(op EffectOpcode) int {
	n := 0

	for _, c := range f.calls {
		if c == op {
			n++
		}
	}

	return n
}

//nolint:cyclop // one case per opcode
func (f *fakeEffect) Dispatch(op EffectOpcode, index int32, value int64, ptr unsafe.Pointer, opt float32) int64 {
	f.calls = append(f.calls, op)

	switch op {
	case effGetPlugCategory:
		return int64(f.category)
	case effSetSampleRate:
		f.sampleRate = opt
	case effSetBlockSize:
		f.blockSize = value
	case effSetSpeakerArrangement:
		//nolint:govet // the host passes the input arrangement address in value
		f.speakers = *(*vstSpeakerArrangement)(unsafe.Pointer(uintptr(value)))
	case effProcessEvents:
		f.received = append(f.received, decodeBatch(ptr))
	case effSetProgram:
		if f.rejectProgram {
			return 1
		}

		f.program = value
		if f.programReadback != nil {
			f.program = f.programReadback(value)
		}
	case effGetProgram:
		return f.program
	case effGetProgramName, effGetProgramNameIndexed:
		putCString(ptr, maxProgramNameLength, "Program")
	case effSetProgramName:
		f.programName = readCString(ptr, maxProgramNameLength)
	case effGetParamName:
		putCString(ptr, stringBufferSize, []string{"Drive", "Tone"}[index])
	case effGetParamDisplay:
		putCString(ptr, stringBufferSize, "display")
	case effGetVendorString:
		putCString(ptr, stringBufferSize, f.vendor)
	case effGetProductString:
		putCString(ptr, stringBufferSize, f.product)
	case effGetVendorVersion:
		return 1200
	case effGetTailSize:
		return f.tail
	case effCanDo:
		return f.canDo[readCString(ptr, stringBufferSize)]
	case effSetChunk:
		f.chunk = append([]byte(nil), unsafe.Slice((*byte)(ptr), value)...)
	case effShellGetNextPlugin:
		if f.nextSub >= len(f.subPlugins) {
			return 0
		}

		sub := f.subPlugins[f.nextSub]
		f.nextSub++
		putCString(ptr, stringBufferSize, sub.Name)

		return int64(sub.ID)
	}

	return 0
}

func (f *fakeEffect) ProcessReplacing(inputs, outputs [][]float32, frames int32) {
	for ch := range outputs {
		for i := range int(frames) {
			var in float32
			if ch < len(inputs) {
				in = inputs[ch][i]
			}

			outputs[ch][i] = in * 2
		}
	}
}

func (f *fakeEffect) SetParameter(index int32, value float32) { f.params[index] = value }

func (f *fakeEffect) GetParameter(index int32) float32 { return f.params[index] }

// fakeLibrary resolves the configured entry symbols.
type fakeLibrary struct {
	symbols map[string]uintptr
	closed  int
}

func (l *fakeLibrary) Lookup(symbol string) (uintptr, error) {
	if addr, ok := l.symbols[symbol]; ok {
		return addr, nil
	}

	return 0, errors.Newf("undefined symbol %s", symbol)
}

func (l *fakeLibrary) Close() error {
	l.closed++

	return nil
}

// fakePlatform hands out one fake effect. Its entry point asks the host for the
// version and the current sub-plugin id, as shell plugins do.
type fakePlatform struct {
	effect  *fakeEffect
	library *fakeLibrary
	openErr error
	entry   uintptr

	seenVersion   int64
	seenCurrentID int64
}

func newFakePlatform(effect *fakeEffect) *fakePlatform {
	return &fakePlatform{
		effect:  effect,
		library: &fakeLibrary{symbols: map[string]uintptr{"VSTPluginMain": 0x1000}},
	}
}

func (f *fakePlatform) Open(string) (Library, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}

	return f.library, nil
}

func (f *fakePlatform) Enter(entry uintptr, callback HostCallback) (Effect, error) {
	f.entry = entry
	f.seenVersion = callback(0, audioMasterVersion, 0, 0, nil, 0)
	f.seenCurrentID = callback(0, audioMasterCurrentID, 0, 0, nil, 0)

	if f.effect == nil {
		return nil, nil
	}

	return f.effect, nil
}

// decodeBatch reads a VstEvents struct back into events, the way a native plugin
// walks it.
func decodeBatch(ptr unsafe.Pointer) []midi.Event {
	if ptr == nil {
		return nil
	}

	count := int(*(*int32)(ptr))
	pointers := unsafe.Slice((*uintptr)(unsafe.Add(ptr, batchHeaderWords*unsafe.Sizeof(uintptr(0)))), count)
	events := make([]midi.Event, 0, count)

	for _, p := range pointers {
		//nolint:govet // p points into pinned batch memory
		raw := (*vstMidiEvent)(unsafe.Pointer(p))
		if raw.Type != vstMidiType || raw.ByteSize != vstMidiEventBytes {
			continue
		}

		events = append(events, midi.Event{
			Kind:        midi.KindRegular,
			DeltaFrames: int(raw.DeltaFrames),
			Status:      raw.MidiData[0],
			Data1:       raw.MidiData[1],
			Data2:       raw.MidiData[2],
		})
	}

	return events
}
