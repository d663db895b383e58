package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/internal/color"
	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/report"
	"github.com/smykla-skalski/plughost/internal/vst2"
	"github.com/smykla-skalski/plughost/pkg/audio"
)

var description = plugin.Description{
	Name:     "doubler",
	Location: "/opt/vst",
	Kind:     "vst2",
	Role:     "effect",
	Vendor:   "Fake Audio",
	UniqueID: "Fake",
	Inputs:   2,
	Outputs:  2,
	Flags:    []string{"canReplacing", "programChunks"},
	Parameters: []plugin.ParameterInfo{
		{Index: 0, Name: "Drive", Value: 0.5, Display: "50", Label: "%"},
	},
	Programs: []plugin.ProgramInfo{{Index: 0, Name: "Init"}},
	Capabilities: []plugin.Capability{
		{Name: "receiveVstMidiEvent", Support: "Yes"},
		{Name: "offline", Support: "No"},
	},
}

var _ = Describe("RenderDescription", func() {
	var out string

	BeforeEach(func() {
		out = report.RenderDescription(description, color.NewTheme(false))
	})

	It("renders the overview", func() {
		Expect(out).To(ContainSubstring("doubler"))
		Expect(out).To(ContainSubstring("Fake Audio"))
		Expect(out).To(ContainSubstring("2 in / 2 out"))
		Expect(out).To(ContainSubstring("canReplacing, programChunks"))
	})

	It("omits empty optional fields", func() {
		Expect(out).NotTo(ContainSubstring("Product"))
		Expect(out).NotTo(ContainSubstring("Latency"))
	})

	It("renders one section per list", func() {
		Expect(out).To(ContainSubstring("Parameters"))
		Expect(out).To(ContainSubstring("Drive"))
		Expect(out).To(ContainSubstring("50 %"))
		Expect(out).To(ContainSubstring("Programs"))
		Expect(out).To(ContainSubstring("Capabilities"))
		Expect(out).To(ContainSubstring("receiveVstMidiEvent"))
		Expect(out).NotTo(ContainSubstring("Sub-plugins"))
	})

	It("shortens overlong plugin strings", func() {
		d := description
		d.Vendor = strings.Repeat("v", 200)

		rendered := report.RenderDescription(d, color.NewTheme(false))
		Expect(rendered).To(ContainSubstring("…"))
		Expect(rendered).NotTo(ContainSubstring(strings.Repeat("v", 49)))
	})
})

var _ = Describe("RenderListing", func() {
	It("shows plugins and markers per location", func() {
		out := report.RenderListing([]vst2.LocationListing{
			{Location: "/a", Plugins: []string{"Reverb", "delay"}},
			{Location: "/b", Marker: vst2.MarkerEmptyDir},
		}, color.NewTheme(false))

		Expect(out).To(ContainSubstring("/a"))
		Expect(out).To(ContainSubstring("Reverb"))
		Expect(out).To(ContainSubstring("delay"))
		Expect(out).To(ContainSubstring(vst2.MarkerEmptyDir))
	})
})

var _ = Describe("Format", func() {
	DescribeTable("ParseFormat",
		func(in string, want report.Format) {
			got, err := report.ParseFormat(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("empty", "", report.FormatTable),
		Entry("table", "table", report.FormatTable),
		Entry("upper case json", "JSON", report.FormatJSON),
		Entry("yaml", "yaml", report.FormatYAML),
	)

	It("rejects unknown formats", func() {
		_, err := report.ParseFormat("xml")
		Expect(errors.Is(err, report.ErrUnknownFormat)).To(BeTrue())
	})

	It("encodes JSON", func() {
		var buf bytes.Buffer

		Expect(report.Encode(&buf, report.FormatJSON, description)).To(Succeed())

		var decoded map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("unique_id", "Fake"))
	})

	It("encodes YAML", func() {
		var buf bytes.Buffer

		Expect(report.Encode(&buf, report.FormatYAML, description)).To(Succeed())

		var decoded map[string]any
		Expect(yaml.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("vendor", "Fake Audio"))
	})

	It("does not encode tables", func() {
		err := report.Encode(&bytes.Buffer{}, report.FormatTable, description)
		Expect(errors.Is(err, report.ErrUnknownFormat)).To(BeTrue())
	})
})

var _ = Describe("RunSummary", func() {
	It("describes frames, audio time and elapsed time", func() {
		stats := chain.Stats{Blocks: 3, InputFrames: 44100, Elapsed: 250 * time.Millisecond}

		summary := report.RunSummary(stats, audio.DefaultSettings())
		Expect(summary).To(ContainSubstring("44,100 frames"))
		Expect(summary).To(ContainSubstring("3 blocks"))
		Expect(summary).To(ContainSubstring("1 second of audio"))
		Expect(summary).To(ContainSubstring("KiB"))
		Expect(summary).To(HaveSuffix("in 250ms"))
	})

	It("mentions the tail", func() {
		stats := chain.Stats{Blocks: 1, InputFrames: 100, TailFrames: 4410}

		summary := report.RunSummary(stats, audio.DefaultSettings())
		Expect(summary).To(ContainSubstring("including 4,410 tail frames"))
	})
})
