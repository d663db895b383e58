package playback_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/internal/playback"
	"github.com/smykla-skalski/plughost/pkg/audio"
)

var _ = Describe("OptionsFor", func() {
	It("should take rate and channels from the settings", func() {
		settings := audio.DefaultSettings()
		settings.SampleRate = 48000
		settings.Channels = 1

		opts, err := playback.OptionsFor(settings)
		Expect(err).NotTo(HaveOccurred())
		Expect(opts).To(Equal(playback.Options{
			SampleRate: 48000,
			Channels:   1,
			Buffer:     playback.DefaultBufferDuration,
		}))
	})

	It("should reject fractional sample rates", func() {
		settings := audio.DefaultSettings()
		settings.SampleRate = 44100.5

		_, err := playback.OptionsFor(settings)
		Expect(err).To(MatchError(audio.ErrInvalidSettings))
	})

	It("should reject invalid settings", func() {
		settings := audio.DefaultSettings()
		settings.Channels = 0

		_, err := playback.OptionsFor(settings)
		Expect(err).To(MatchError(audio.ErrInvalidSettings))
	})
})
