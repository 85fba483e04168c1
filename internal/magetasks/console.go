package magetasks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Out receives everything the tasks print.
var Out io.Writer = os.Stdout

const headerWidth = 80

var (
	renderer     = lipgloss.NewRenderer(os.Stdout)
	titleStyle   = renderer.NewStyle().Bold(true)
	successStyle = renderer.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = renderer.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = renderer.NewStyle().Foreground(lipgloss.Color("12"))
)

// PrintH1Header prints a centered title between two rules.
func PrintH1Header(title string) {
	rule := strings.Repeat("=", headerWidth)
	padding := (headerWidth - runewidth.StringWidth(title)) / 2
	if padding < 0 {
		padding = 0
	}
	fmt.Fprintf(Out, "\n%s\n%s%s\n%s\n\n", rule, strings.Repeat(" ", padding), titleStyle.Render(title), rule)
}

// PrintH2Header prints a section header.
func PrintH2Header(title string) {
	fmt.Fprintf(Out, "\n=== %s ===\n\n", titleStyle.Render(title))
}

// PrintSuccess prints a success message.
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, successStyle.Render("ok   "+msg))
}

// PrintWarning prints a warning message.
func PrintWarning(msg string) {
	fmt.Fprintln(Out, warningStyle.Render("warn "+msg))
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintln(Out, errorStyle.Render("FAIL "+msg))
}

// PrintInfo prints an informational message.
func PrintInfo(msg string) {
	fmt.Fprintln(Out, infoStyle.Render("     "+msg))
}
