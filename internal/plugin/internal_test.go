package plugin_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

var _ = Describe("InternalPlugin", func() {
	var (
		settings audio.Settings
		in, out  *audio.SampleBuffer
	)

	BeforeEach(func() {
		settings = audio.DefaultSettings()
		settings.BlockSize = 4
		in = settings.NewBuffer()
		out = settings.NewBuffer()

		for ch := range in.Samples {
			for i := range in.Samples[ch] {
				in.Samples[ch][i] = float32(i+1) / 10
			}
		}
	})

	newInternal := func(name string) *plugin.InternalPlugin {
		p, err := plugin.NewInternal(name, settings, logger.NewNoOpLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Open(context.Background())).To(Succeed())
		Expect(p.Prepare()).To(Succeed())

		return p
	}

	It("should reject unknown names", func() {
		_, err := plugin.NewInternal("mrs_nope", settings, logger.NewNoOpLogger())
		Expect(err).To(MatchError(plugin.ErrDiscovery))
	})

	It("should list the built-in plugins in order", func() {
		Expect(plugin.InternalNames()).To(Equal([]string{
			plugin.NameGain, plugin.NamePassthru, plugin.NameSilence,
		}))
	})

	Describe("mrs_passthru", func() {
		It("should copy rather than alias the input", func() {
			p := newInternal(plugin.NamePassthru)
			p.ProcessAudio(in, out)

			Expect(out.Samples).To(Equal(in.Samples))

			in.Samples[0][0] = 9
			Expect(out.Samples[0][0]).To(Equal(float32(0.1)))
		})

		It("should be tagged internal before it is opened", func() {
			p, err := plugin.NewInternal(plugin.NamePassthru, settings, logger.NewNoOpLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Role()).To(Equal(plugin.RoleInternal))
			Expect(p.Kind()).To(Equal(plugin.KindInternal))
		})

		It("should have no parameters", func() {
			p := newInternal(plugin.NamePassthru)
			Expect(p.SetParameter(0, 0.5)).To(MatchError(plugin.ErrInvalidParameterIndex))
		})

		It("should report no tail and the configured channel count", func() {
			p := newInternal(plugin.NamePassthru)
			Expect(p.Setting(plugin.SettingTailFrames)).To(BeZero())
			Expect(p.Setting(plugin.SettingOutputs)).To(Equal(int64(2)))
			Expect(p.Setting(plugin.SettingKind(99))).To(Equal(plugin.SettingUnsupported))
		})
	})

	Describe("mrs_silence", func() {
		It("should write zeros", func() {
			p := newInternal(plugin.NameSilence)
			Expect(out.CopyFrom(in)).To(Succeed())
			p.ProcessAudio(in, out)
			Expect(out.IsSilent()).To(BeTrue())
		})
	})

	Describe("mrs_gain", func() {
		It("should default to unity gain", func() {
			p := newInternal(plugin.NameGain)
			p.ProcessAudio(in, out)
			Expect(out.Samples).To(Equal(in.Samples))
		})

		It("should scale by twice the normalized value", func() {
			p := newInternal(plugin.NameGain)
			Expect(p.SetParameter(0, 1)).To(Succeed())
			p.ProcessAudio(in, out)
			Expect(out.Samples[1][0]).To(BeNumerically("~", 0.2, 1e-6))
		})

		It("should leave state unchanged for out-of-range values", func() {
			p := newInternal(plugin.NameGain)
			Expect(p.SetParameter(0, 1.5)).To(MatchError(plugin.ErrParameterOutOfRange))
			Expect(p.SetParameter(1, 0.5)).To(MatchError(plugin.ErrInvalidParameterIndex))

			value, err := p.Parameter(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(float32(0.5)))
		})

		It("should describe its parameter", func() {
			d := newInternal(plugin.NameGain).Describe()
			Expect(d.Parameters).To(HaveLen(1))
			Expect(d.Parameters[0].Display).To(Equal("1.00x"))
			Expect(d.Role).To(Equal("internal"))
		})
	})

	Describe("lifecycle", func() {
		It("should refuse to prepare before open", func() {
			p, err := plugin.NewInternal(plugin.NamePassthru, settings, logger.NewNoOpLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Prepare()).To(MatchError(plugin.ErrNotOpen))
		})

		It("should not render until prepared", func() {
			p, err := plugin.NewInternal(plugin.NameSilence, settings, logger.NewNoOpLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(out.CopyFrom(in)).To(Succeed())

			p.ProcessAudio(in, out)
			Expect(out.Samples).To(Equal(in.Samples))

			Expect(p.Open(context.Background())).To(Succeed())
			p.ProcessAudio(in, out)
			Expect(out.Samples).To(Equal(in.Samples))

			Expect(p.Prepare()).To(Succeed())
			p.ProcessAudio(in, out)
			Expect(out.IsSilent()).To(BeTrue())
		})

		It("should stop rendering after suspend", func() {
			p := newInternal(plugin.NameSilence)
			Expect(p.Suspend()).To(Succeed())
			Expect(out.CopyFrom(in)).To(Succeed())

			p.ProcessAudio(in, out)
			Expect(out.IsSilent()).To(BeFalse())
		})

		It("should tolerate suspend and close without open", func() {
			p, err := plugin.NewInternal(plugin.NamePassthru, settings, logger.NewNoOpLogger())
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Suspend()).To(Succeed())
			Expect(p.Close()).To(Succeed())
			Expect(p.Close()).To(Succeed())
		})
	})
})
