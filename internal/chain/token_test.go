package chain_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smykla-skalski/plughost/internal/chain"
)

var _ = Describe("ParseToken", func() {
	DescribeTable("valid tokens",
		func(input string, expected chain.Token) {
			token, err := chain.ParseToken(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal(expected))
		},
		Entry("name only", "mrs_passthru", chain.Token{Name: "mrs_passthru"}),
		Entry("with preset", "mrs_passthru,testPreset.fxp",
			chain.Token{Name: "mrs_passthru", Preset: "testPreset.fxp"}),
		Entry("preset with spaces", "mrs_passthru,test preset.fxp",
			chain.Token{Name: "mrs_passthru", Preset: "test preset.fxp"}),
		Entry("selector", "shell:ABCD,lead.fxp", chain.Token{Name: "shell:ABCD", Preset: "lead.fxp"}),
		Entry("split at first comma", "again,a,b.fxp", chain.Token{Name: "again", Preset: "a,b.fxp"}),
		Entry("surrounding spaces in name", "  mrs_gain ", chain.Token{Name: "mrs_gain"}),
	)

	DescribeTable("malformed tokens",
		func(input string) {
			_, err := chain.ParseToken(input)
			Expect(err).To(MatchError(chain.ErrMalformedToken))
		},
		Entry("empty", ""),
		Entry("blank", "   "),
		Entry("preset only", ",lead.fxp"),
		Entry("empty preset", "mrs_passthru,"),
	)

	It("should render back to argument form", func() {
		Expect(chain.Token{Name: "a", Preset: "b.fxp"}.String()).To(Equal("a,b.fxp"))
		Expect(chain.Token{Name: "a"}.String()).To(Equal("a"))
	})
})

var _ = Describe("ParseArgument", func() {
	It("should split tokens and skip empty entries", func() {
		tokens, err := chain.ParseArgument("mrs_passthru;; mrs_gain,x.fxp;")
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(Equal([]chain.Token{
			{Name: "mrs_passthru"},
			{Name: "mrs_gain", Preset: "x.fxp"},
		}))
	})

	It("should keep valid tokens next to malformed ones", func() {
		tokens, err := chain.ParseArgument("mrs_passthru;,x.fxp")
		Expect(err).To(MatchError(chain.ErrMalformedToken))
		Expect(tokens).To(HaveLen(1))
	})

	It("should reject an empty argument", func() {
		_, err := chain.ParseArgument("")
		Expect(err).To(MatchError(chain.ErrMalformedToken))
	})
})
