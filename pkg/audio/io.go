package audio

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// bytesPerSample is the size of one float32 sample on the wire.
const bytesPerSample = 4

// ErrShortWrite is returned when a sink accepts fewer frames than it was given.
// It is the only signal for that condition; partial frame counts are carried in
// the error message.
var ErrShortWrite = errors.New("short write")

// Source produces fixed-size blocks of samples.
type Source interface {
	// ReadBlock fills buf and returns the number of frames read. A short final block
	// is zero-padded. It returns io.EOF once no frames remain.
	ReadBlock(buf *SampleBuffer) (int, error)
}

// Sink consumes blocks of samples.
type Sink interface {
	// WriteBlock consumes the first frames frames of buf.
	WriteBlock(buf *SampleBuffer, frames int) error
}

// SilenceSource produces zeroed blocks for a fixed number of frames.
type SilenceSource struct {
	remaining int64
}

// NewSilenceSource creates a source producing frames frames of silence.
func NewSilenceSource(frames int64) *SilenceSource {
	return &SilenceSource{remaining: frames}
}

// ReadBlock implements Source.
func (s *SilenceSource) ReadBlock(buf *SampleBuffer) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}

	n := int(min(int64(buf.Frames()), s.remaining))
	s.remaining -= int64(n)

	buf.Clear()

	return n, nil
}

// DiscardSink drops every block and counts frames.
type DiscardSink struct {
	Frames int64
}

// WriteBlock implements Sink.
func (d *DiscardSink) WriteBlock(_ *SampleBuffer, frames int) error {
	d.Frames += int64(frames)

	return nil
}

// RawSource reads interleaved little-endian float32 samples.
type RawSource struct {
	r       io.Reader
	scratch []byte
	done    bool
}

// NewRawSource wraps r.
func NewRawSource(r io.Reader) *RawSource {
	return &RawSource{r: r}
}

// ReadBlock implements Source.
func (s *RawSource) ReadBlock(buf *SampleBuffer) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	frameBytes := buf.Channels() * bytesPerSample
	need := buf.Frames() * frameBytes

	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}

	s.scratch = s.scratch[:need]

	n, err := io.ReadFull(s.r, s.scratch)

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
	case err != nil:
		return 0, errors.Wrap(err, "failed to read samples")
	}

	frames := n / frameBytes
	if frames == 0 {
		return 0, io.EOF
	}

	deinterleave(s.scratch[:frames*frameBytes], buf)
	buf.ClearFrom(frames)

	return frames, nil
}

// WriterSink writes interleaved little-endian float32 samples.
type WriterSink struct {
	w       io.Writer
	scratch []byte
	frames  int64
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// FramesWritten returns the number of frames fully written so far.
func (s *WriterSink) FramesWritten() int64 {
	return s.frames
}

// WriteBlock implements Sink. A write that stores fewer bytes than requested fails
// with ErrShortWrite, and the frame counter is left unchanged.
func (s *WriterSink) WriteBlock(buf *SampleBuffer, frames int) error {
	frames = min(frames, buf.Frames())
	frameBytes := buf.Channels() * bytesPerSample
	need := frames * frameBytes

	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}

	s.scratch = s.scratch[:need]
	interleave(buf, frames, s.scratch)

	n, err := s.w.Write(s.scratch)
	if n < need {
		short := errors.Wrapf(ErrShortWrite, "wrote %d of %d frames", n/frameBytes, frames)
		if err != nil {
			return errors.WithSecondaryError(short, err)
		}

		return short
	}

	if err != nil {
		return errors.Wrap(err, "failed to write samples")
	}

	s.frames += int64(frames)

	return nil
}

// MultiSink writes each block to every sink in order. The first failing sink
// stops the block.
type MultiSink []Sink

// WriteBlock implements Sink.
func (m MultiSink) WriteBlock(buf *SampleBuffer, frames int) error {
	for _, sink := range m {
		if err := sink.WriteBlock(buf, frames); err != nil {
			return err
		}
	}

	return nil
}

func interleave(buf *SampleBuffer, frames int, dst []byte) {
	channels := buf.Channels()

	for i := range frames {
		for ch := range channels {
			off := (i*channels + ch) * bytesPerSample
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(buf.Samples[ch][i]))
		}
	}
}

func deinterleave(src []byte, buf *SampleBuffer) {
	channels := buf.Channels()
	frames := len(src) / (channels * bytesPerSample)

	for i := range frames {
		for ch := range channels {
			off := (i*channels + ch) * bytesPerSample
			buf.Samples[ch][i] = math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
		}
	}
}
