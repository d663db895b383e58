package vst2

import (
	"runtime"
	"unsafe"

	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

// OrderEvents returns the regular events of a block with every note-off first,
// followed by the remaining regular events. Both groups keep their input order.
// Some plugins mishandle a note-on and note-off for the same key in one block, so
// note-offs must arrive first. SysEx events are dropped with a warning and meta
// events are dropped silently.
func OrderEvents(events []midi.Event, log logger.Logger) []midi.Event {
	ordered := make([]midi.Event, 0, len(events))

	for _, ev := range events {
		if ev.IsNoteOff() {
			ordered = append(ordered, ev)
		}
	}

	for _, ev := range events {
		switch ev.Kind {
		case midi.KindRegular:
			if !ev.IsNoteOff() {
				ordered = append(ordered, ev)
			}
		case midi.KindSysEx:
			log.Warn("sysex messages are not supported by VST2.x plugins, dropping event",
				"delta_frames", ev.DeltaFrames,
				"bytes", len(ev.Data),
			)
		case midi.KindMeta:
		}
	}

	return ordered
}

// eventBatch owns the native VstEvents memory for one block. words holds the
// VstEvents header followed by the event pointers: numEvents, reserved, then one
// pointer per event. Both the words and the events stay pinned until release.
type eventBatch struct {
	words  []uintptr
	events []vstMidiEvent
	pinner runtime.Pinner
}

const batchHeaderWords = 2

func newEventBatch(events []midi.Event) *eventBatch {
	b := &eventBatch{
		words:  make([]uintptr, batchHeaderWords+len(events)),
		events: make([]vstMidiEvent, len(events)),
	}

	b.words[0] = uintptr(len(events))

	for i, ev := range events {
		b.events[i] = vstMidiEvent{
			Type:        vstMidiType,
			ByteSize:    vstMidiEventBytes,
			DeltaFrames: int32(ev.DeltaFrames),
			MidiData:    [4]byte{ev.Status, ev.Data1, ev.Data2, 0},
		}
	}

	if len(b.events) > 0 {
		b.pinner.Pin(&b.events[0])
	}

	for i := range b.events {
		b.words[batchHeaderWords+i] = uintptr(unsafe.Pointer(&b.events[i]))
	}

	b.pinner.Pin(&b.words[0])

	return b
}

// pointer returns the address of the VstEvents struct.
func (b *eventBatch) pointer() unsafe.Pointer {
	return unsafe.Pointer(&b.words[0])
}

// len returns the number of events in the batch.
func (b *eventBatch) len() int {
	return len(b.events)
}

func (b *eventBatch) release() {
	b.pinner.Unpin()
	b.words = nil
	b.events = nil
}
