package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/pkg/audio"
)

const bytesPerSample = 4

// RunSummary describes a finished run in one line.
func RunSummary(stats chain.Stats, settings audio.Settings) string {
	frames := stats.Frames()
	audioTime := settings.FramesToDuration(frames)
	size := uint64(frames) * uint64(settings.Channels) * bytesPerSample //nolint:gosec // frames is never negative

	summary := fmt.Sprintf(
		"processed %s frames in %s blocks (%s of audio, %s) in %s",
		humanize.Comma(frames),
		humanize.Comma(stats.Blocks),
		formatDuration(audioTime),
		humanize.IBytes(size),
		formatDuration(stats.Elapsed),
	)

	if stats.TailFrames > 0 {
		summary += fmt.Sprintf(", including %s tail frames", humanize.Comma(stats.TailFrames))
	}

	return summary
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	return durafmt.Parse(d.Round(time.Millisecond)).LimitFirstN(2).String()
}
