//go:build !headless

package playback

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ebitengine/oto/v3"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

// drainPoll is how often Close checks whether the device finished playing.
const drainPoll = 10 * time.Millisecond

// Sink writes blocks to the output device. Writes block while the device buffer is
// full, so a run is paced by the device.
type Sink struct {
	ctx    *oto.Context
	player *oto.Player
	pipe   *io.PipeWriter
	writer *audio.WriterSink
	logger logger.Logger
}

// Open starts playback on the default device.
func Open(opts Options, log logger.Logger) (*Sink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.Buffer,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio device")
	}

	<-ready

	r, w := io.Pipe()

	s := &Sink{
		ctx:    ctx,
		player: ctx.NewPlayer(r),
		pipe:   w,
		writer: audio.NewWriterSink(w),
		logger: log,
	}

	s.player.Play()

	log.Debug("opened audio device", "sample_rate", opts.SampleRate, "channels", opts.Channels)

	return s, nil
}

// WriteBlock implements audio.Sink.
func (s *Sink) WriteBlock(buf *audio.SampleBuffer, frames int) error {
	return s.writer.WriteBlock(buf, frames)
}

// FramesWritten returns the number of frames handed to the device.
func (s *Sink) FramesWritten() int64 {
	return s.writer.FramesWritten()
}

// Close waits for buffered audio to finish and stops playback.
func (s *Sink) Close() error {
	if err := s.pipe.Close(); err != nil {
		return errors.Wrap(err, "closing audio stream")
	}

	for s.player.IsPlaying() {
		time.Sleep(drainPoll)
	}

	return errors.Wrap(s.player.Close(), "closing audio player")
}
