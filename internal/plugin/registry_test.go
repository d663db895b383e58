package plugin_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

var _ = Describe("Registry", func() {
	var (
		registry *plugin.Registry
		log      logger.Logger
		ctrl     *gomock.Controller
		fallback *plugin.MockLoader
	)

	BeforeEach(func() {
		log = logger.NewNoOpLogger()
		ctrl = gomock.NewController(GinkgoT())
		fallback = plugin.NewMockLoader(ctrl)
		registry = plugin.NewRegistry(log,
			plugin.NewInternalLoader(audio.DefaultSettings(), log),
			fallback,
		)
	})

	AfterEach(func() {
		ctrl.Finish()
	})

	Describe("Load", func() {
		It("should resolve internal names before falling back", func() {
			p, err := registry.Load(plugin.NamePassthru)

			Expect(err).NotTo(HaveOccurred())
			Expect(p.Kind()).To(Equal(plugin.KindInternal))
		})

		It("should fall back to the next loader", func() {
			native := plugin.NewMockPlugin(ctrl)
			native.EXPECT().Kind().Return(plugin.KindVST2)

			fallback.EXPECT().Handles("again").Return(true)
			fallback.EXPECT().Load("again").Return(native, nil)

			p, err := registry.Load("again")

			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeIdenticalTo(native))
		})

		It("should wrap loader failures", func() {
			fallback.EXPECT().Handles("missing").Return(true)
			fallback.EXPECT().Load("missing").Return(nil, errors.Wrap(plugin.ErrDiscovery, "missing"))

			_, err := registry.Load("missing")

			Expect(err).To(MatchError(plugin.ErrDiscovery))
			Expect(err.Error()).To(ContainSubstring("failed to load plugin missing"))
		})

		It("should report names no loader handles", func() {
			fallback.EXPECT().Handles("odd").Return(false)

			_, err := registry.Load("odd")

			Expect(err).To(MatchError(plugin.ErrDiscovery))
		})

		It("should reject empty names without asking loaders", func() {
			_, err := registry.Load("  ")

			Expect(err).To(MatchError(plugin.ErrDiscovery))
		})
	})

	Describe("Close", func() {
		It("should close every loader once and keep the first error", func() {
			fallback.EXPECT().Close().Return(errors.New("boom")).Times(1)

			Expect(registry.Close()).To(MatchError("boom"))
			Expect(registry.Close()).To(Succeed())

			_, err := registry.Load(plugin.NamePassthru)
			Expect(err).To(MatchError(plugin.ErrLoaderClosed))
		})
	})
})
