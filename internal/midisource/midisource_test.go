package midisource_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/smykla-skalski/plughost/internal/midisource"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

var _ = Describe("Source", func() {
	var settings audio.Settings

	BeforeEach(func() {
		settings = audio.DefaultSettings()
		settings.SampleRate = 48000
	})

	Describe("ReadFile", func() {
		It("should convert ticks to frames", func() {
			var track smf.Track

			track.Add(0, smf.MetaTempo(120))
			track.Add(0, gomidi.NoteOn(0, 60, 100))
			track.Add(960, gomidi.NoteOff(0, 60))
			track.Close(0)

			file := smf.New()
			Expect(file.Add(track)).To(Succeed())

			path := filepath.Join(GinkgoT().TempDir(), "song.mid")
			Expect(file.WriteFile(path)).To(Succeed())

			src, err := midisource.ReadFile(path, settings, logger.NewNoOpLogger())
			Expect(err).NotTo(HaveOccurred())

			// One quarter note at 120 bpm is half a second.
			block := src.Events(24000, 512)
			Expect(block).To(ContainElement(midi.NoteOff(0, 0, 60)))
			Expect(src.Events(1, 23999)).To(BeEmpty())

			first := src.Events(0, 512)
			Expect(first).To(ContainElement(midi.NoteOn(0, 0, 60, 100)))
		})

		It("should reject other files", func() {
			path := filepath.Join(GinkgoT().TempDir(), "notes.txt")
			Expect(os.WriteFile(path, []byte("not midi"), 0o644)).To(Succeed())

			_, err := midisource.ReadFile(path, settings, logger.NewNoOpLogger())
			Expect(err).To(MatchError(midisource.ErrInvalidFile))
		})
	})

	Describe("Events", func() {
		var src *midisource.Source

		BeforeEach(func() {
			src = midisource.New([]midisource.TimedEvent{
				{Frame: 700, Event: midi.NoteOff(0, 0, 60)},
				{Frame: 10, Event: midi.NoteOn(0, 0, 60, 100)},
				{Frame: 512, Event: midi.ControlChange(0, 0, 1, 64)},
				{Frame: 512, Event: midi.ControlChange(0, 0, 1, 65)},
			})
		})

		It("should order events by frame and keep ties in order", func() {
			Expect(src.Len()).To(Equal(4))
			Expect(src.EndFrame()).To(BeEquivalentTo(700))

			block := src.Events(512, 512)
			Expect(block).To(Equal([]midi.Event{
				midi.ControlChange(0, 0, 1, 64),
				midi.ControlChange(0, 0, 1, 65),
				midi.NoteOff(188, 0, 60),
			}))
		})

		It("should use offsets relative to the block", func() {
			Expect(src.Events(0, 512)).To(Equal([]midi.Event{midi.NoteOn(10, 0, 60, 100)}))
		})

		It("should return nothing past the end", func() {
			Expect(src.Events(1024, 512)).To(BeEmpty())
		})

		It("should allow going back", func() {
			Expect(src.Events(600, 512)).To(HaveLen(1))
			Expect(src.Events(0, 11)).To(HaveLen(1))
		})
	})
})
