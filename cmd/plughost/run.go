package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/internal/config/factory"
	"github.com/smykla-skalski/plughost/internal/midisource"
	"github.com/smykla-skalski/plughost/internal/playback"
	"github.com/smykla-skalski/plughost/internal/report"
	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/audio"
	"github.com/smykla-skalski/plughost/pkg/config"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

// ErrNoPlugins is returned when a run has an empty chain.
var ErrNoPlugins = errors.New("no plugins in chain")

var (
	pluginArg     string
	pluginRoot    string
	realtimeFlag  bool
	midiFile      string
	inputFile     string
	outputFile    string
	playFlag      bool
	durationFlag  string
	sampleRate    float64
	channels      int
	blockSize     int
	tempo         float64
	timeSignature string
	noTailFlag    bool
	quietFlag     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run audio through a plugin chain",
	Long: `Build a plugin chain and run audio through it.

The chain is a ';' separated list of tokens of the form name[:SUBID][,preset.fxp].
Input is raw interleaved little-endian float32 samples, or silence for --duration
when no input is given. Output is written in the same format.

Examples:
  plughost run --plugin mrs_gain --output out.raw
  plughost run --plugin "synth;reverb,hall.fxp" --midi-file song.mid --play --realtime
  plughost run --plugin "shell:ABCD" --input in.raw --output out.raw`,
	Args: cobra.NoArgs,
	RunE: runChain,
}

func init() {
	rootCmd.AddCommand(runCmd)
	registerRunFlags(runCmd)
}

// registerRunFlags binds the run flags to cmd. The root command shares them so
// that "plughost" alone behaves like "plughost run".
func registerRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&pluginArg, "plugin", "p", "", "Plugin chain, e.g. \"mrs_gain;reverb,hall.fxp\"")
	flags.StringVar(&pluginRoot, "plugin-root", "", "Directory searched before the default plugin locations")
	flags.BoolVar(&realtimeFlag, "realtime", false, "Pace processing to the wall clock")
	flags.StringVarP(&midiFile, "midi-file", "m", "", "Standard MIDI file sent to the chain")
	flags.StringVarP(&inputFile, "input", "i", "", "Raw float32 input file (default: silence)")
	flags.StringVarP(&outputFile, "output", "o", "", "Raw float32 output file")
	flags.BoolVar(&playFlag, "play", false, "Play the output on the default audio device")
	flags.StringVarP(&durationFlag, "duration", "d", "", "Length of generated silence when no input is given")
	flags.Float64Var(&sampleRate, "sample-rate", 0, "Sample rate in Hz")
	flags.IntVar(&channels, "channels", 0, "Channel count")
	flags.IntVar(&blockSize, "block-size", 0, "Frames per block")
	flags.Float64Var(&tempo, "tempo", 0, "Tempo reported to plugins in BPM")
	flags.StringVar(&timeSignature, "time-signature", "", "Time signature reported to plugins, e.g. 3/4")
	flags.BoolVar(&noTailFlag, "no-tail", false, "Stop when the input ends instead of rendering plugin tails")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "Do not print the run summary")
}

func runChain(cmd *cobra.Command, _ []string) error {
	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	pipeline, err := factory.NewPipelineFactory(log).Build(cfg)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := pipeline.Close(); closeErr != nil {
			log.Error("failed to close pipeline", "error", closeErr)
		}
	}()

	crashChain = pipeline.Chain

	if pipeline.ChainErr != nil {
		log.Warn("some plugins were left out of the chain", "error", pipeline.ChainErr)
	}

	if pipeline.Chain.Len() == 0 {
		return errors.Wrap(ErrNoPlugins, "use --plugin or plugins.chain in the configuration")
	}

	stats, err := process(ctx, cfg, pipeline, log)
	if err != nil {
		return err
	}

	if !quietFlag {
		fmt.Fprint(cmd.OutOrStdout(), report.RunSummary(stats, pipeline.Settings))
	}

	return nil
}

func process(ctx context.Context, cfg *config.Config, p *factory.Pipeline, log logger.Logger) (chain.Stats, error) {
	c := p.Chain

	if err := c.Initialize(ctx); err != nil {
		return chain.Stats{}, err
	}

	if err := c.Prepare(); err != nil {
		return chain.Stats{}, err
	}

	var (
		events    chain.EventSource
		minFrames int64
	)

	if midiFile != "" {
		midi, err := midisource.ReadFile(midiFile, p.Settings, log)
		if err != nil {
			return chain.Stats{}, err
		}

		events = midi
		minFrames = midi.EndFrame()
	}

	src, closeSrc, err := openSource(cfg, p.Settings, minFrames)
	if err != nil {
		return chain.Stats{}, err
	}

	defer func() { _ = closeSrc() }()

	sink, closeSink, err := openSink(p.Settings, log)
	if err != nil {
		return chain.Stats{}, err
	}

	stats, err := c.Run(ctx, src, sink, events, chain.RunOptions{
		SkipTail: !cfg.GetProcessing().IsTailEnabled(),
	})

	// Closing the sink flushes the device and the output file.
	if closeErr := closeSink(); closeErr != nil && err == nil {
		err = closeErr
	}

	return stats, err
}

// openSource opens the input file, or generates silence. Generated silence is
// at least minFrames long so that a MIDI file plays to its last event.
func openSource(cfg *config.Config, settings audio.Settings, minFrames int64) (audio.Source, closeFunc, error) {
	if inputFile == "" {
		frames := settings.DurationToFrames(cfg.GetProcessing().InputDuration.ToDuration())
		frames = max(frames, minFrames)

		return audio.NewSilenceSource(frames), noopClose, nil
	}

	path, err := xdg.ExpandPath(inputFile)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path) //nolint:gosec // input path comes from the command line
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open input")
	}

	return audio.NewRawSource(f), f.Close, nil
}

func openSink(settings audio.Settings, log logger.Logger) (audio.Sink, closeFunc, error) {
	var (
		sinks   audio.MultiSink
		closers []closeFunc
	)

	closeAll := func() error {
		var err error

		for _, c := range closers {
			err = errors.CombineErrors(err, c())
		}

		return err
	}

	if outputFile != "" {
		f, err := os.Create(outputFile) //nolint:gosec // output path comes from the command line
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create output")
		}

		sinks = append(sinks, audio.NewWriterSink(f))
		closers = append(closers, f.Close)
	}

	if playFlag {
		opts, err := playback.OptionsFor(settings)
		if err != nil {
			_ = closeAll()

			return nil, nil, err
		}

		device, err := playback.Open(opts, log)
		if err != nil {
			_ = closeAll()

			return nil, nil, err
		}

		sinks = append(sinks, device)
		closers = append(closers, device.Close)
	}

	if len(sinks) == 0 {
		return &audio.DiscardSink{}, noopClose, nil
	}

	return sinks, closeAll, nil
}

func noopClose() error { return nil }
