// Package audio holds the process-wide audio settings and the sample block types
// exchanged between pipeline stages.
package audio

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultSampleRate is the sample rate used when none is configured.
	DefaultSampleRate = 44100.0

	// DefaultChannels is the channel count used when none is configured.
	DefaultChannels = 2

	// DefaultBlockSize is the number of frames per block used when none is configured.
	DefaultBlockSize = 512

	// DefaultTempo is the tempo reported to plugins, in beats per minute.
	DefaultTempo = 120.0

	// MaxChannels bounds the channel count accepted by the host.
	MaxChannels = 8
)

// ErrInvalidSettings is returned by Settings.Validate.
var ErrInvalidSettings = errors.New("invalid audio settings")

// TimeSignature is a musical meter such as 4/4.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// String renders the signature as "N/D".
func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

// Settings is the read-only audio configuration shared by every component of a run.
// It is built once before any plugin is opened and passed by value afterwards.
type Settings struct {
	SampleRate    float64
	Channels      int
	BlockSize     int
	Tempo         float64
	TimeSignature TimeSignature
}

// DefaultSettings returns 44.1kHz stereo with 512-frame blocks at 120 BPM in 4/4.
func DefaultSettings() Settings {
	return Settings{
		SampleRate:    DefaultSampleRate,
		Channels:      DefaultChannels,
		BlockSize:     DefaultBlockSize,
		Tempo:         DefaultTempo,
		TimeSignature: TimeSignature{Numerator: 4, Denominator: 4},
	}
}

// Validate checks that every field is usable.
func (s Settings) Validate() error {
	switch {
	case s.SampleRate <= 0:
		return errors.Wrapf(ErrInvalidSettings, "sample rate %v must be positive", s.SampleRate)
	case s.Channels < 1 || s.Channels > MaxChannels:
		return errors.Wrapf(ErrInvalidSettings, "channel count %d must be between 1 and %d",
			s.Channels, MaxChannels)
	case s.BlockSize <= 0:
		return errors.Wrapf(ErrInvalidSettings, "block size %d must be positive", s.BlockSize)
	case s.Tempo <= 0:
		return errors.Wrapf(ErrInvalidSettings, "tempo %v must be positive", s.Tempo)
	case s.TimeSignature.Numerator <= 0 || s.TimeSignature.Denominator <= 0:
		return errors.Wrapf(ErrInvalidSettings, "time signature %s is invalid", s.TimeSignature)
	}

	return nil
}

// BlockDuration is the wall-clock length of one block.
func (s Settings) BlockDuration() time.Duration {
	return s.FramesToDuration(int64(s.BlockSize))
}

// FramesToDuration converts a frame count to wall-clock time at the sample rate.
func (s Settings) FramesToDuration(frames int64) time.Duration {
	return time.Duration(float64(frames) / s.SampleRate * float64(time.Second))
}

// DurationToFrames converts wall-clock time to a frame count at the sample rate.
func (s Settings) DurationToFrames(d time.Duration) int64 {
	return int64(d.Seconds() * s.SampleRate)
}

// FramesToMillis converts a frame count to whole milliseconds.
func (s Settings) FramesToMillis(frames int64) int64 {
	return int64(float64(frames) * 1000 / s.SampleRate)
}

// NewBuffer allocates a zeroed block shaped by these settings.
func (s Settings) NewBuffer() *SampleBuffer {
	return NewSampleBuffer(s.Channels, s.BlockSize)
}
