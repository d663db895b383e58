package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"github.com/smykla-skalski/plughost/pkg/audio"
)

var (
	// ErrNegativeDuration is returned when a negative duration is provided.
	ErrNegativeDuration = errors.New("duration must be non-negative")

	// ErrInvalidTimeSignature is returned when a time signature is not "N/D"
	// with positive integers.
	ErrInvalidTimeSignature = errors.New("invalid time signature")
)

// Duration wraps time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(err, "invalid duration")
	}

	if dur < 0 {
		return errors.Wrapf(ErrNegativeDuration, "got %s", dur)
	}

	*d = Duration(dur)

	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML serialization.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// ToDuration converts Duration to time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}

// JSONSchema describes Duration as a Go duration string.
func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Description: "Duration such as 500ms, 5s or 1m30s",
		Examples:    []any{"5s", "1m30s"},
	}
}

// ParseTimeSignature parses "N/D" into an audio.TimeSignature.
func ParseTimeSignature(s string) (audio.TimeSignature, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return audio.TimeSignature{}, errors.Wrapf(ErrInvalidTimeSignature, "%q is not N/D", s)
	}

	n, errN := strconv.Atoi(strings.TrimSpace(num))
	d, errD := strconv.Atoi(strings.TrimSpace(den))

	if errN != nil || errD != nil || n <= 0 || d <= 0 {
		return audio.TimeSignature{}, errors.Wrapf(
			ErrInvalidTimeSignature,
			"%q must use positive integers",
			s,
		)
	}

	return audio.TimeSignature{Numerator: n, Denominator: d}, nil
}

// Settings converts the section into audio settings. Zero fields fall back to
// the audio package defaults.
func (a *AudioConfig) Settings() (audio.Settings, error) {
	settings := audio.DefaultSettings()

	if a == nil {
		return settings, nil
	}

	if a.SampleRate != 0 {
		settings.SampleRate = a.SampleRate
	}

	if a.Channels != 0 {
		settings.Channels = a.Channels
	}

	if a.BlockSize != 0 {
		settings.BlockSize = a.BlockSize
	}

	if a.Tempo != 0 {
		settings.Tempo = a.Tempo
	}

	if a.TimeSignature != "" {
		ts, err := ParseTimeSignature(a.TimeSignature)
		if err != nil {
			return audio.Settings{}, err
		}

		settings.TimeSignature = ts
	}

	if err := settings.Validate(); err != nil {
		return audio.Settings{}, err
	}

	return settings, nil
}
