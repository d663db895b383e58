package config_test

import (
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/config"
)

var _ = Describe("Duration", func() {
	It("parses Go duration strings", func() {
		var d config.Duration

		Expect(d.UnmarshalText([]byte("1m30s"))).To(Succeed())
		Expect(d.ToDuration()).To(Equal(90 * time.Second))
		Expect(d.String()).To(Equal("1m30s"))
	})

	It("rejects negative durations", func() {
		var d config.Duration

		err := d.UnmarshalText([]byte("-5s"))
		Expect(errors.Is(err, config.ErrNegativeDuration)).To(BeTrue())
	})

	It("rejects garbage", func() {
		var d config.Duration

		Expect(d.UnmarshalText([]byte("soon"))).NotTo(Succeed())
	})

	It("marshals back to text", func() {
		text, err := config.Duration(250 * time.Millisecond).MarshalText()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal("250ms"))
	})
})

var _ = Describe("ParseTimeSignature", func() {
	DescribeTable("valid",
		func(in string, num, den int) {
			ts, err := config.ParseTimeSignature(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(ts).To(Equal(audio.TimeSignature{Numerator: num, Denominator: den}))
		},
		Entry("common time", "4/4", 4, 4),
		Entry("waltz", "3/4", 3, 4),
		Entry("spaces", " 7 / 8 ", 7, 8),
	)

	DescribeTable("invalid",
		func(in string) {
			_, err := config.ParseTimeSignature(in)
			Expect(errors.Is(err, config.ErrInvalidTimeSignature)).To(BeTrue())
		},
		Entry("no slash", "44"),
		Entry("zero numerator", "0/4"),
		Entry("negative denominator", "4/-4"),
		Entry("words", "four/four"),
	)
})

var _ = Describe("AudioConfig", func() {
	It("falls back to defaults when nil", func() {
		var a *config.AudioConfig

		settings, err := a.Settings()
		Expect(err).NotTo(HaveOccurred())
		Expect(settings).To(Equal(audio.DefaultSettings()))
	})

	It("overrides only the fields that are set", func() {
		a := &config.AudioConfig{SampleRate: 48000, TimeSignature: "6/8"}

		settings, err := a.Settings()
		Expect(err).NotTo(HaveOccurred())
		Expect(settings.SampleRate).To(Equal(48000.0))
		Expect(settings.Channels).To(Equal(audio.DefaultChannels))
		Expect(settings.TimeSignature).To(Equal(audio.TimeSignature{Numerator: 6, Denominator: 8}))
	})

	It("rejects out-of-range channel counts", func() {
		a := &config.AudioConfig{Channels: 9}

		_, err := a.Settings()
		Expect(errors.Is(err, audio.ErrInvalidSettings)).To(BeTrue())
	})

	It("rejects a malformed time signature", func() {
		a := &config.AudioConfig{TimeSignature: "4"}

		_, err := a.Settings()
		Expect(errors.Is(err, config.ErrInvalidTimeSignature)).To(BeTrue())
	})
})

var _ = Describe("ProcessingConfig", func() {
	It("defaults realtime off and tail on", func() {
		var p *config.ProcessingConfig

		Expect(p.IsRealtimeEnabled()).To(BeFalse())
		Expect(p.IsTailEnabled()).To(BeTrue())
	})

	It("honours explicit values", func() {
		on, off := true, false
		p := &config.ProcessingConfig{Realtime: &on, Tail: &off}

		Expect(p.IsRealtimeEnabled()).To(BeTrue())
		Expect(p.IsTailEnabled()).To(BeFalse())
	})

	It("creates sections lazily", func() {
		cfg := &config.Config{}

		cfg.GetProcessing().Realtime = new(bool)
		Expect(cfg.Processing).NotTo(BeNil())
		Expect(cfg.GetAudio()).To(BeIdenticalTo(cfg.GetAudio()))
	})
})
