//go:build headless

package playback

import (
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

// Sink is unavailable in headless builds.
type Sink struct{}

// Open always fails with ErrUnavailable.
func Open(Options, logger.Logger) (*Sink, error) {
	return nil, ErrUnavailable
}

// WriteBlock implements audio.Sink.
func (*Sink) WriteBlock(*audio.SampleBuffer, int) error {
	return ErrUnavailable
}

// FramesWritten returns zero.
func (*Sink) FramesWritten() int64 {
	return 0
}

// Close does nothing.
func (*Sink) Close() error {
	return nil
}
