package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/audytor/internal/core/domain"
)

// palette is the colour set used for terminal output.
type palette struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Primary: lipgloss.Color("#7C3AED"), // Purple
		Muted:   lipgloss.Color("#6C7086"), // Medium gray
		Success: lipgloss.Color("#A6E3A1"), // Green
		Warning: lipgloss.Color("#F9E2AF"), // Yellow
		Error:   lipgloss.Color("#F38BA8"), // Red
	}
}

// styles holds the lipgloss styles for command output. Without a terminal
// every style renders text unchanged.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(colour bool) *styles {
	if !colour {
		plain := lipgloss.NewStyle()
		return &styles{Title: plain, Label: plain, Muted: plain, Success: plain, Warning: plain, Error: plain}
	}
	p := defaultPalette()
	return &styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		Label:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Success: lipgloss.NewStyle().Bold(true).Foreground(p.Success),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(p.Error),
	}
}

// stylesFor returns coloured styles only when w is a terminal.
func stylesFor(w io.Writer) *styles {
	f, ok := w.(*os.File)
	return newStyles(ok && term.IsTerminal(int(f.Fd())))
}

// consistency renders TAK in the success colour and NIE in the error colour.
func (s *styles) consistency(c domain.Consistency) string {
	if c == domain.ConsistencyYes {
		return s.Success.Render(string(c))
	}
	return s.Error.Render(string(c))
}
