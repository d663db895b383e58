package chain_test

import (
	"context"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/logger"
	"github.com/smykla-skalski/plughost/pkg/midi"
)

// blockSink records the frame count of every block and the first sample of it.
type blockSink struct {
	frames []int
	first  []float32
	err    error
}

func (s *blockSink) WriteBlock(buf *audio.SampleBuffer, frames int) error {
	if s.err != nil {
		return s.err
	}

	s.frames = append(s.frames, frames)
	s.first = append(s.first, buf.Samples[0][0])

	return nil
}

// windowEvents hands out one note per block and remembers the windows asked for.
type windowEvents struct {
	windows [][2]int64
}

func (w *windowEvents) Events(start int64, frames int) []midi.Event {
	w.windows = append(w.windows, [2]int64{start, int64(frames)})

	return []midi.Event{midi.NoteOn(0, 0, uint8(start), 100)}
}

var _ = Describe("Run", func() {
	var (
		ctrl     *gomock.Controller
		ctx      context.Context
		settings audio.Settings
		c        *chain.Chain
		m        *plugin.MockPlugin
		sink     *blockSink
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		ctx = context.Background()

		settings = audio.DefaultSettings()
		settings.SampleRate = 1000
		settings.Channels = 1
		settings.BlockSize = 4

		c = chain.New(settings, chain.WithLogger(logger.NewNoOpLogger()))
		sink = &blockSink{}

		m = plugin.NewMockPlugin(ctrl)
		m.EXPECT().Name().Return("adder").AnyTimes()
		m.EXPECT().Kind().Return(plugin.KindVST2).AnyTimes()
		m.EXPECT().Open(gomock.Any()).Return(nil)
		m.EXPECT().Prepare().Return(nil)
		m.EXPECT().ProcessAudio(gomock.Any(), gomock.Any()).Do(addOne).AnyTimes()

		Expect(c.Append(m, nil)).To(Succeed())
		Expect(c.Initialize(ctx)).To(Succeed())
		Expect(c.Prepare()).To(Succeed())
	})

	It("renders the input and then the tail in block-sized pieces", func() {
		m.EXPECT().Setting(plugin.SettingTailFrames).Return(int64(10))

		stats, err := c.Run(ctx, audio.NewSilenceSource(6), sink, nil, chain.RunOptions{})
		Expect(err).NotTo(HaveOccurred())

		Expect(sink.frames).To(Equal([]int{4, 2, 4, 4, 2}))
		Expect(sink.first).To(HaveEach(float32(1)))
		Expect(stats.Blocks).To(Equal(int64(5)))
		Expect(stats.InputFrames).To(Equal(int64(6)))
		Expect(stats.TailFrames).To(Equal(int64(10)))
		Expect(stats.Frames()).To(Equal(int64(16)))
	})

	It("ignores tails of one frame", func() {
		m.EXPECT().Setting(plugin.SettingTailFrames).Return(int64(1))

		stats, err := c.Run(ctx, audio.NewSilenceSource(8), sink, nil, chain.RunOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(sink.frames).To(Equal([]int{4, 4}))
		Expect(stats.TailFrames).To(BeZero())
	})

	It("skips the tail on request", func() {
		stats, err := c.Run(ctx, audio.NewSilenceSource(6), sink, nil, chain.RunOptions{SkipTail: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(sink.frames).To(Equal([]int{4, 2}))
		Expect(stats.TailFrames).To(BeZero())
	})

	It("stops reading at MaxFrames", func() {
		stats, err := c.Run(ctx, audio.NewSilenceSource(100), sink, nil, chain.RunOptions{
			MaxFrames: 6,
			SkipTail:  true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(sink.frames).To(Equal([]int{4, 2}))
		Expect(stats.InputFrames).To(Equal(int64(6)))
	})

	It("asks the event source for each block window", func() {
		m.EXPECT().Setting(plugin.SettingTailFrames).Return(int64(0))

		var delivered [][]midi.Event

		m.EXPECT().ProcessMIDI(gomock.Any()).Do(func(events []midi.Event) {
			delivered = append(delivered, events)
		}).Times(2)

		events := &windowEvents{}

		_, err := c.Run(ctx, audio.NewSilenceSource(8), sink, events, chain.RunOptions{})
		Expect(err).NotTo(HaveOccurred())
		Expect(events.windows).To(Equal([][2]int64{{0, 4}, {4, 4}}))
		Expect(delivered).To(HaveLen(2))
		Expect(delivered[1]).To(Equal([]midi.Event{midi.NoteOn(0, 0, 4, 100)}))
	})

	It("stops when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		stats, err := c.Run(cancelled, audio.NewSilenceSource(8), sink, nil, chain.RunOptions{})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(stats.Blocks).To(BeZero())
		Expect(sink.frames).To(BeEmpty())
	})

	It("reports sink failures", func() {
		sink.err = errors.Wrap(audio.ErrShortWrite, "device full")

		stats, err := c.Run(ctx, audio.NewSilenceSource(8), sink, nil, chain.RunOptions{})
		Expect(errors.Is(err, audio.ErrShortWrite)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("writing output"))
		Expect(stats.Blocks).To(BeZero())
	})

	It("refuses to run a chain that is not prepared", func() {
		fresh := chain.New(settings)

		_, err := fresh.Run(ctx, audio.NewSilenceSource(4), sink, nil, chain.RunOptions{})
		Expect(errors.Is(err, chain.ErrInvalidState)).To(BeTrue())
	})
})
