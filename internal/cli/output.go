package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Output styles, disabled when stdout is not a terminal.
var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7"))
	styleCitation = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	styleWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00"))
)

// isTTY reports whether stdout is a terminal. Piped output gets plain text.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func render(style lipgloss.Style, text string) string {
	if !isTTY() {
		return text
	}
	return style.Render(text)
}
