package config

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/pkg/config"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

var _ = Describe("Validator", func() {
	var validator *Validator

	BeforeEach(func() {
		validator = NewValidator()
	})

	It("rejects a nil config", func() {
		err := validator.Validate(nil)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("config is nil"))
	})

	It("accepts an empty config", func() {
		Expect(validator.Validate(&config.Config{})).To(Succeed())
	})

	It("accepts the defaults", func() {
		Expect(validator.Validate(DefaultConfig())).To(Succeed())
	})

	DescribeTable("audio ranges",
		func(audio config.AudioConfig, field string) {
			err := validator.Validate(&config.Config{Audio: &audio})
			Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(field))
		},
		Entry("negative sample rate", config.AudioConfig{SampleRate: -1}, "audio.sample_rate"),
		Entry("too many channels", config.AudioConfig{Channels: 9}, "audio.channels"),
		Entry("negative block size", config.AudioConfig{BlockSize: -512}, "audio.block_size"),
		Entry("negative tempo", config.AudioConfig{Tempo: -120}, "audio.tempo"),
		Entry("bad time signature", config.AudioConfig{TimeSignature: "4-4"}, "audio.time_signature"),
	)

	It("checks the chain syntax", func() {
		cfg := &config.Config{Plugins: &config.PluginsConfig{Chain: "mrs_gain,"}}

		err := validator.Validate(cfg)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		Expect(errors.Is(err, chain.ErrMalformedToken)).To(BeTrue())
	})

	It("rejects blank allowed directories", func() {
		cfg := &config.Config{Plugins: &config.PluginsConfig{AllowedDirs: []string{"/ok", " "}}}

		err := validator.Validate(cfg)
		Expect(errors.Is(err, ErrEmptyValue)).To(BeTrue())
	})

	It("checks the log level", func() {
		cfg := &config.Config{Logging: &config.LoggingConfig{Level: "loud"}}

		err := validator.Validate(cfg)
		Expect(errors.Is(err, logger.ErrInvalidLevel)).To(BeTrue())
	})

	It("reports every failure", func() {
		cfg := &config.Config{
			Audio:   &config.AudioConfig{SampleRate: -1, Channels: 20},
			Logging: &config.LoggingConfig{Level: "loud"},
		}

		err := validator.Validate(cfg)
		Expect(err).To(MatchError(ContainSubstring("validation failed with 3 error(s)")))
		Expect(err).To(MatchError(ErrInvalidConfig))
		Expect(err).To(MatchError(logger.ErrInvalidLevel))
		Expect(err.Error()).To(ContainSubstring("audio.sample_rate"))
		Expect(err.Error()).To(ContainSubstring("audio.channels"))
		Expect(err.Error()).To(ContainSubstring("logging.level"))
	})
})
