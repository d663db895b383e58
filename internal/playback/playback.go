// Package playback plays processed audio on the default output device.
package playback

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/plughost/pkg/audio"
)

// ErrUnavailable is returned when the binary was built without audio output.
var ErrUnavailable = errors.New("audio playback is not available in this build")

// DefaultBufferDuration is the device buffer length.
const DefaultBufferDuration = 100 * time.Millisecond

// Options configures the device.
type Options struct {
	SampleRate int
	Channels   int
	// Buffer is the device buffer length.
	Buffer time.Duration
}

// OptionsFor derives device options from the engine settings.
func OptionsFor(settings audio.Settings) (Options, error) {
	if err := settings.Validate(); err != nil {
		return Options{}, err
	}

	if settings.SampleRate != float64(int(settings.SampleRate)) {
		return Options{}, errors.Wrapf(audio.ErrInvalidSettings,
			"sample rate %v is not a whole number of hertz", settings.SampleRate)
	}

	return Options{
		SampleRate: int(settings.SampleRate),
		Channels:   settings.Channels,
		Buffer:     DefaultBufferDuration,
	}, nil
}
