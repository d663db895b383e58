// Package midisource reads Standard MIDI Files and hands out their events one
// block at a time.
package midisource

import (
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

// ErrInvalidFile is returned for files that are not Standard MIDI Files.
var ErrInvalidFile = errors.New("invalid MIDI file")

// TimedEvent is an event at an absolute frame position.
type TimedEvent struct {
	Frame int64
	Event midi.Event
}

// Source holds every event of a MIDI file ordered by frame. Events at the same
// frame keep their track order.
type Source struct {
	events []TimedEvent
}

// New creates a source from events, which need not be sorted.
func New(events []TimedEvent) *Source {
	sorted := append([]TimedEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	return &Source{events: sorted}
}

// ReadFile parses the file at path and converts tick times to frames using the
// file's tempo map.
func ReadFile(path string, settings audio.Settings, log logger.Logger) (*Source, error) {
	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFile, "%s: %v", path, err)
	}

	var events []TimedEvent

	for _, track := range file.Tracks {
		var ticks int64

		for _, ev := range track {
			ticks += int64(ev.Delta)

			micros := file.TimeAt(ticks)
			frame := settings.DurationToFrames(time.Duration(micros) * time.Microsecond)

			events = append(events, TimedEvent{
				Frame: frame,
				Event: midi.FromMessage(0, gomidi.Message(ev.Message)),
			})
		}
	}

	src := New(events)

	log.Debug("read MIDI file",
		"path", path,
		"tracks", len(file.Tracks),
		"events", len(src.events),
		"frames", src.EndFrame(),
	)

	return src, nil
}

// Len returns the number of events.
func (s *Source) Len() int {
	return len(s.events)
}

// EndFrame returns the frame of the last event, or zero when there are none.
func (s *Source) EndFrame() int64 {
	if len(s.events) == 0 {
		return 0
	}

	return s.events[len(s.events)-1].Frame
}

// Events returns the events in [start, start+frames) with delta frames relative to
// start. Meta events are included; plugins drop them.
func (s *Source) Events(start int64, frames int) []midi.Event {
	end := start + int64(frames)
	first := sort.Search(len(s.events), func(i int) bool { return s.events[i].Frame >= start })

	var block []midi.Event

	for _, te := range s.events[first:] {
		if te.Frame >= end {
			break
		}

		ev := te.Event
		ev.DeltaFrames = int(te.Frame - start)
		block = append(block, ev)
	}

	return block
}
