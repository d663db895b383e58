package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/smykla-skalski/plughost/internal/color"
	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/vst2"
)

// maxCellWidth bounds plugin-supplied strings, which are not always terminated
// sensibly.
const maxCellWidth = 48

// RenderDescription renders d as a set of tables: an overview followed by
// parameters, programs, sub-plugins and capabilities when present.
func RenderDescription(d plugin.Description, theme color.Theme) string {
	sections := []string{renderOverview(d, theme)}

	if len(d.Parameters) > 0 {
		rows := make([][]string, 0, len(d.Parameters))
		for _, p := range d.Parameters {
			rows = append(rows, []string{
				strconv.Itoa(p.Index),
				truncate(p.Name),
				strconv.FormatFloat(float64(p.Value), 'f', 4, 32),
				truncate(strings.TrimSpace(p.Display + " " + p.Label)),
			})
		}

		sections = append(sections, section("Parameters", []string{"#", "Name", "Value", "Display"}, rows, theme))
	}

	if len(d.Programs) > 0 {
		rows := make([][]string, 0, len(d.Programs))
		for _, p := range d.Programs {
			rows = append(rows, []string{strconv.Itoa(p.Index), truncate(p.Name)})
		}

		sections = append(sections, section("Programs", []string{"#", "Name"}, rows, theme))
	}

	if len(d.SubPlugins) > 0 {
		rows := make([][]string, 0, len(d.SubPlugins))
		for _, s := range d.SubPlugins {
			rows = append(rows, []string{s.ID, truncate(s.Name)})
		}

		sections = append(sections, section("Sub-plugins", []string{"ID", "Name"}, rows, theme))
	}

	if len(d.Capabilities) > 0 {
		rows := make([][]string, 0, len(d.Capabilities))
		for _, c := range d.Capabilities {
			rows = append(rows, []string{c.Name, theme.Answer(c.Support)})
		}

		sections = append(sections, section("Capabilities", []string{"Query", "Answer"}, rows, theme))
	}

	return strings.Join(sections, "\n\n")
}

func renderOverview(d plugin.Description, theme color.Theme) string {
	rows := [][]string{
		{"Name", d.Name},
		{"Kind", d.Kind},
		{"Role", d.Role},
		{"Location", d.Location},
	}

	optional := [][2]string{
		{"Vendor", d.Vendor},
		{"Product", d.Product},
		{"Version", d.Version},
		{"Unique ID", d.UniqueID},
		{"Category", d.Category},
	}

	for _, kv := range optional {
		if kv[1] != "" {
			rows = append(rows, []string{kv[0], truncate(kv[1])})
		}
	}

	rows = append(rows, []string{"Channels", fmt.Sprintf("%d in / %d out", d.Inputs, d.Outputs)})

	if d.Latency > 0 {
		rows = append(rows, []string{"Latency", fmt.Sprintf("%d frames", d.Latency)})
	}

	if len(d.Flags) > 0 {
		rows = append(rows, []string{"Flags", strings.Join(d.Flags, ", ")})
	}

	for _, row := range rows {
		row[0] = theme.Key.Render(row[0])
	}

	return renderTable(nil, rows, theme)
}

// RenderListing renders one row per searched location.
func RenderListing(listings []vst2.LocationListing, theme color.Theme) string {
	rows := make([][]string, 0, len(listings))

	for _, l := range listings {
		plugins := strings.Join(l.Plugins, "\n")
		if l.Marker != "" {
			plugins = theme.Border.Render(l.Marker)
		}

		rows = append(rows, []string{l.Location, plugins})
	}

	return renderTable([]string{"Location", "Plugins"}, rows, theme)
}

func section(title string, headers []string, rows [][]string, theme color.Theme) string {
	return theme.Header.Render(title) + "\n" + renderTable(headers, rows, theme)
}

func renderTable(headers []string, rows [][]string, theme color.Theme) string {
	var buf bytes.Buffer

	t := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleRounded),
		})),
		tablewriter.WithConfig(tablewriter.NewConfigBuilder().
			WithTrimSpace(tw.Off).
			Row().Formatting().WithAutoWrap(tw.WrapNormal).Build().
			Build().Build()),
	)

	if len(headers) > 0 {
		t.Header(headers)
	}

	for _, row := range rows {
		_ = t.Append(row)
	}

	_ = t.Render()

	return dimBorders(strings.TrimRight(buf.String(), "\n"), theme)
}

// truncate shortens s to maxCellWidth display columns.
func truncate(s string) string {
	s = ansi.Strip(s)
	if runewidth.StringWidth(s) <= maxCellWidth {
		return s
	}

	return runewidth.Truncate(s, maxCellWidth, "…")
}

// dimBorders applies the border style to all box-drawing border
// characters in the rendered table output.
func dimBorders(s string, theme color.Theme) string {
	for _, ch := range []string{
		"╭", "╮", "╰", "╯", "│", "─", "┬", "┴", "├", "┤", "┼",
	} {
		s = strings.ReplaceAll(s, ch, theme.Border.Render(ch))
	}

	return s
}
