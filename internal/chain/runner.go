package chain

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

// EventSource supplies the MIDI events of each block.
type EventSource interface {
	// Events returns the events starting in [start, start+frames), with delta
	// frames relative to start.
	Events(start int64, frames int) []midi.Event
}

// RunOptions controls Run.
type RunOptions struct {
	// MaxFrames stops reading input after this many frames. Zero reads until the
	// source ends.
	MaxFrames int64

	// SkipTail stops when the input ends instead of rendering the chain's tail.
	SkipTail bool
}

// Stats summarizes a run.
type Stats struct {
	Blocks      int64
	InputFrames int64
	TailFrames  int64
	Elapsed     time.Duration
}

// Frames returns the total number of frames written.
func (s Stats) Frames() int64 {
	return s.InputFrames + s.TailFrames
}

// Run processes src through the prepared chain into sink, block by block. After the
// input ends, silence is fed for the chain's maximum tail time. Cancelling ctx stops
// the run between blocks.
func (c *Chain) Run(ctx context.Context, src audio.Source, sink audio.Sink, events EventSource, opts RunOptions) (stats Stats, err error) {
	started := c.now()
	defer func() { stats.Elapsed = c.now().Sub(started) }()

	in := c.settings.NewBuffer()
	out := c.settings.NewBuffer()

	for opts.MaxFrames == 0 || stats.InputFrames < opts.MaxFrames {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, "run cancelled")
		}

		n, err := src.ReadBlock(in)
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, errors.Wrap(err, "reading input")
		}

		if n == 0 {
			break
		}

		if opts.MaxFrames > 0 {
			n = int(min(int64(n), opts.MaxFrames-stats.InputFrames))
			in.ClearFrom(n)
		}

		if err := c.block(stats.InputFrames, n, in, out, sink, events); err != nil {
			return stats, err
		}

		stats.Blocks++
		stats.InputFrames += int64(n)

		if errors.Is(err, io.EOF) {
			break
		}
	}

	if opts.SkipTail {
		return stats, nil
	}

	tail := c.settings.DurationToFrames(time.Duration(c.MaxTailTimeMs()) * time.Millisecond)
	if tail > 0 {
		c.logger.Debug("rendering plugin tail", "frames", tail)
	}

	in.Clear()

	for stats.TailFrames < tail {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, "run cancelled")
		}

		n := int(min(int64(in.Frames()), tail-stats.TailFrames))

		if err := c.block(stats.Frames(), n, in, out, sink, events); err != nil {
			return stats, err
		}

		stats.Blocks++
		stats.TailFrames += int64(n)
	}

	return stats, nil
}

func (c *Chain) block(
	position int64,
	frames int,
	in, out *audio.SampleBuffer,
	sink audio.Sink,
	events EventSource,
) error {
	if events != nil {
		if err := c.ProcessMIDI(events.Events(position, frames)); err != nil {
			return err
		}
	}

	if err := c.ProcessAudio(in, out); err != nil {
		return err
	}

	return errors.Wrap(sink.WriteBlock(out, frames), "writing output")
}
