package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// HelpHint is printed after the diagnostics whenever an Error or Fatal was reported.
const HelpHint = "Run lintmux --help for the list of supported options."

// RenderOptions controls how diagnostics are printed.
type RenderOptions struct {
	// CommandLine is the space-joined source command line the positions index into.
	CommandLine string
	// Width is the terminal width used to window long command lines. 0 disables windowing.
	Width int
	// NoColor disables ANSI styling even when the writer is a terminal.
	NoColor bool
}

// Sorted returns a copy of ds ordered by (Level, FirstPos). Equal keys keep
// their append order.
func Sorted(ds []Diagnostic) []Diagnostic {
	out := append([]Diagnostic(nil), ds...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].FirstPos < out[j].FirstPos
	})
	return out
}

// Render prints ds to w sorted for display. Error and Fatal entries that carry
// a span are followed by the command line with a caret underline.
func Render(w io.Writer, ds []Diagnostic, opts RenderOptions) {
	if len(ds) == 0 {
		return
	}
	styles := newLevelStyles(w, opts.NoColor)
	upper := cases.Upper(language.Und)

	for _, d := range Sorted(ds) {
		label := fmt.Sprintf("%-7s", upper.String(d.Level.String()))
		label = styles.render(d.Level, label)
		if d.Origin != "" {
			fmt.Fprintf(w, "%s %s: %s\n", label, d.Origin, d.Text)
		} else {
			fmt.Fprintf(w, "%s %s\n", label, d.Text)
		}
		if d.Level >= Error && d.HasSpan() && opts.CommandLine != "" {
			line, caret := Underline(opts.CommandLine, d.FirstPos, d.LastPos, opts.Width)
			fmt.Fprintf(w, "    %s\n    %s\n", line, styles.render(d.Level, caret))
		}
	}

	if HasErrors(ds) {
		fmt.Fprintln(w, HelpHint)
	}
}

// Underline returns the (possibly windowed) command line and a caret line
// marking [first, last). Widths are measured in terminal cells.
func Underline(cmdline string, first, last, width int) (string, string) {
	if first < 0 {
		first = 0
	}
	if last > len(cmdline) {
		last = len(cmdline)
	}
	if first > last {
		first = last
	}

	start := 0
	prefix := ""
	if width > 0 && runewidth.StringWidth(cmdline) > width && first > width/3 {
		start = first - width/3
		for start > 0 && !utf8.RuneStart(cmdline[start]) {
			start--
		}
		prefix = "…"
	}

	line := prefix + cmdline[start:]
	if width > 0 && runewidth.StringWidth(line) > width {
		line = runewidth.Truncate(line, width, "…")
	}

	pad := runewidth.StringWidth(prefix) + runewidth.StringWidth(cmdline[start:first])
	span := runewidth.StringWidth(cmdline[first:last])
	if span < 1 {
		span = 1
	}
	caret := strings.Repeat(" ", pad) + "^" + strings.Repeat("~", span-1)
	return line, caret
}

type levelStyles struct {
	noColor bool
	styles  map[Level]lipgloss.Style
}

func newLevelStyles(w io.Writer, noColor bool) levelStyles {
	r := lipgloss.NewRenderer(w)
	return levelStyles{
		noColor: noColor,
		styles: map[Level]lipgloss.Style{
			Trace:   r.NewStyle().Foreground(lipgloss.Color("8")),
			Debug:   r.NewStyle().Foreground(lipgloss.Color("8")),
			Info:    r.NewStyle().Foreground(lipgloss.Color("12")),
			Warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
			Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Fatal:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Underline(true),
		},
	}
}

func (s levelStyles) render(level Level, text string) string {
	if s.noColor {
		return text
	}
	style, ok := s.styles[level]
	if !ok {
		return text
	}
	return style.Render(text)
}
