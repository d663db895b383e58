// Package color decides whether CLI output is colored and holds the styles
// used by reports.
package color

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// EnvAllows reports whether the environment permits color.
//
// Color is forced by CLICOLOR_FORCE (any value but "0") and refused by
// --no-color, NO_COLOR (any value, see https://no-color.org), CLICOLOR=0 and
// TERM=dumb. The flag beats the force variable.
func EnvAllows(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	return os.Getenv("CLICOLOR") != "0" && os.Getenv("TERM") != "dumb"
}

func forced() bool {
	v, ok := os.LookupEnv("CLICOLOR_FORCE")

	return ok && v != "0"
}

// IsTerminal reports whether w is a terminal. Writers without a file
// descriptor never are.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })

	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits int
}

// Enabled reports whether output written to w should be colored.
func Enabled(noColorFlag bool, w io.Writer) bool {
	if !EnvAllows(noColorFlag) {
		return false
	}

	return forced() || IsTerminal(w)
}

// Theme holds the lipgloss styles for report output. The zero Theme renders
// text unchanged.
type Theme struct {
	Header  lipgloss.Style
	Key     lipgloss.Style
	Yes     lipgloss.Style
	No      lipgloss.Style
	Unknown lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}

// NewTheme returns the colored theme, or the zero Theme when color is false.
func NewTheme(color bool) Theme {
	if !color {
		return Theme{}
	}

	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	return Theme{
		Header:  fg("14").Bold(true),
		Key:     lipgloss.NewStyle().Bold(true),
		Yes:     fg("10"),
		No:      fg("9"),
		Unknown: fg("11"),
		Error:   fg("9").Bold(true),
		Border:  fg("8"),
	}
}

// Answer styles a plugin's answer to a capability query ("Yes", "No" or
// anything else for unknown).
func (t Theme) Answer(answer string) string {
	switch answer {
	case "Yes":
		return t.Yes.Render(answer)
	case "No":
		return t.No.Render(answer)
	default:
		return t.Unknown.Render(answer)
	}
}
