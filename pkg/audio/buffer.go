package audio

import (
	"github.com/cockroachdb/errors"
)

// ErrShapeMismatch is returned when two buffers differ in channel count or length.
var ErrShapeMismatch = errors.New("sample buffer shape mismatch")

// SampleBuffer is a fixed-shape block of non-interleaved float samples. The shape
// never changes after allocation.
type SampleBuffer struct {
	Samples [][]float32
	frames  int
}

// NewSampleBuffer allocates a zeroed buffer. Channel storage is contiguous.
func NewSampleBuffer(channels, frames int) *SampleBuffer {
	storage := make([]float32, channels*frames)
	samples := make([][]float32, channels)

	for ch := range samples {
		samples[ch] = storage[ch*frames : (ch+1)*frames : (ch+1)*frames]
	}

	return &SampleBuffer{Samples: samples, frames: frames}
}

// Channels returns the number of channels.
func (b *SampleBuffer) Channels() int {
	return len(b.Samples)
}

// Frames returns the block length.
func (b *SampleBuffer) Frames() int {
	return b.frames
}

// SameShape reports whether other has the same channel count and length.
func (b *SampleBuffer) SameShape(other *SampleBuffer) bool {
	return other != nil && b.Channels() == other.Channels() && b.frames == other.frames
}

// Clear zeroes every sample.
func (b *SampleBuffer) Clear() {
	for _, ch := range b.Samples {
		clear(ch)
	}
}

// ClearFrom zeroes every sample at or after frame. Used to pad short final blocks.
func (b *SampleBuffer) ClearFrom(frame int) {
	if frame < 0 {
		frame = 0
	}

	if frame >= b.frames {
		return
	}

	for _, ch := range b.Samples {
		clear(ch[frame:])
	}
}

// CopyFrom copies every sample of src into b.
func (b *SampleBuffer) CopyFrom(src *SampleBuffer) error {
	if !b.SameShape(src) {
		return errors.Wrapf(ErrShapeMismatch, "copy %dx%d into %dx%d",
			src.Channels(), src.Frames(), b.Channels(), b.frames)
	}

	for ch := range b.Samples {
		copy(b.Samples[ch], src.Samples[ch])
	}

	return nil
}

// IsSilent reports whether every sample is zero.
func (b *SampleBuffer) IsSilent() bool {
	for _, ch := range b.Samples {
		for _, s := range ch {
			if s != 0 {
				return false
			}
		}
	}

	return true
}
