package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#4687FF")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// palette renders styled text only when the output is a terminal, so piped
// output stays plain.
type palette struct {
	styled bool
}

func newPalette(w io.Writer) palette {
	f, ok := w.(*os.File)
	return palette{styled: ok && term.IsTerminal(int(f.Fd()))}
}

func (p palette) render(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}

func (p palette) title(text string) string   { return p.render(titleStyle, text) }
func (p palette) success(text string) string { return p.render(successStyle, "✓ "+text) }
func (p palette) failure(text string) string { return p.render(errorStyle, "✗ "+text) }
func (p palette) muted(text string) string   { return p.render(mutedStyle, text) }

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
