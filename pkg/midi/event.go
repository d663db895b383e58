// Package midi defines the timed MIDI events delivered to plugins once per block.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Kind tags the variant carried by an Event.
type Kind int

const (
	// KindRegular is a channel voice or system common message of up to three bytes.
	KindRegular Kind = iota

	// KindSysEx is a system-exclusive message.
	KindSysEx

	// KindMeta is a file-level meta event with no meaning to plugins.
	KindMeta
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRegular:
		return "regular"
	case KindSysEx:
		return "sysex"
	case KindMeta:
		return "meta"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

const (
	statusNoteOff = 0x8
	statusSysEx   = 0xF0
	statusMeta    = 0xFF
)

// Event is a MIDI message scheduled at a frame offset inside the current block.
type Event struct {
	Kind        Kind
	DeltaFrames int
	Status      byte
	Data1       byte
	Data2       byte

	// Data holds the raw payload of sysex and meta events.
	Data []byte
}

// FromMessage converts a gomidi message to an Event at deltaFrames.
func FromMessage(deltaFrames int, msg gomidi.Message) Event {
	if len(msg) == 0 {
		return Event{Kind: KindMeta, DeltaFrames: deltaFrames}
	}

	switch msg[0] {
	case statusSysEx:
		return Event{
			Kind:        KindSysEx,
			DeltaFrames: deltaFrames,
			Status:      msg[0],
			Data:        append([]byte(nil), msg...),
		}
	case statusMeta:
		return Event{
			Kind:        KindMeta,
			DeltaFrames: deltaFrames,
			Status:      msg[0],
			Data:        append([]byte(nil), msg...),
		}
	}

	ev := Event{Kind: KindRegular, DeltaFrames: deltaFrames, Status: msg[0]}

	if len(msg) > 1 {
		ev.Data1 = msg[1]
	}

	if len(msg) > 2 {
		ev.Data2 = msg[2]
	}

	return ev
}

// NoteOn builds a note-on event.
func NoteOn(deltaFrames int, channel, key, velocity uint8) Event {
	return FromMessage(deltaFrames, gomidi.NoteOn(channel, key, velocity))
}

// NoteOff builds a note-off event (status 0x8n).
func NoteOff(deltaFrames int, channel, key uint8) Event {
	return FromMessage(deltaFrames, gomidi.NoteOff(channel, key))
}

// ControlChange builds a control change event.
func ControlChange(deltaFrames int, channel, controller, value uint8) Event {
	return FromMessage(deltaFrames, gomidi.ControlChange(channel, controller, value))
}

// SysEx builds a system-exclusive event from the payload between F0 and F7.
func SysEx(deltaFrames int, data []byte) Event {
	msg := make([]byte, 0, len(data)+2)
	msg = append(msg, statusSysEx)
	msg = append(msg, data...)
	msg = append(msg, 0xF7)

	return FromMessage(deltaFrames, msg)
}

// Meta builds a meta event carrying raw bytes.
func Meta(deltaFrames int, data []byte) Event {
	return Event{Kind: KindMeta, DeltaFrames: deltaFrames, Status: statusMeta, Data: data}
}

// IsNoteOff reports whether ev is a regular message with a 0x8 high nibble. Note-on
// messages with zero velocity are not note-offs here.
func (ev Event) IsNoteOff() bool {
	return ev.Kind == KindRegular && ev.Status>>4 == statusNoteOff
}

// Bytes returns the three wire bytes of a regular event.
func (ev Event) Bytes() [3]byte {
	return [3]byte{ev.Status, ev.Data1, ev.Data2}
}

// Message returns the event as a gomidi message.
func (ev Event) Message() gomidi.Message {
	if ev.Kind != KindRegular {
		return gomidi.Message(ev.Data)
	}

	return gomidi.Message([]byte{ev.Status, ev.Data1, ev.Data2})[:messageLength(ev.Status)]
}

// String describes the event for logs.
func (ev Event) String() string {
	switch ev.Kind {
	case KindRegular:
		return fmt.Sprintf("%s @%d", ev.Message().String(), ev.DeltaFrames)
	default:
		return fmt.Sprintf("%s (%d bytes) @%d", ev.Kind, len(ev.Data), ev.DeltaFrames)
	}
}

// Clone returns a deep copy of events.
func Clone(events []Event) []Event {
	if events == nil {
		return nil
	}

	out := make([]Event, len(events))
	for i, ev := range events {
		out[i] = ev
		if ev.Data != nil {
			out[i].Data = append([]byte(nil), ev.Data...)
		}
	}

	return out
}

func messageLength(status byte) int {
	switch status >> 4 {
	case 0xC, 0xD:
		return 2
	case 0xF:
		switch status {
		case 0xF1, 0xF3:
			return 2
		case 0xF2:
			return 3
		default:
			return 1
		}
	default:
		return 3
	}
}
