package formatter

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/spotbak/internal/models"
)

// palette holds the named styles the renderers share.
type palette struct {
	title lipgloss.Style
	label lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

var styles = newPalette(
	lipgloss.AdaptiveColor{Light: "#1AA34A", Dark: "#1DB954"},
	lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF5F56"},
	lipgloss.AdaptiveColor{Light: "#B9770E", Dark: "#FFBD2E"},
	lipgloss.AdaptiveColor{Light: "#7F8C8D", Dark: "#8A8A8A"},
)

func newPalette(accent, danger, caution, subtle lipgloss.TerminalColor) palette {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	return palette{
		title: fg(accent).Bold(true).MarginBottom(1),
		label: fg(subtle).Width(22),
		ok:    fg(accent),
		err:   fg(danger).Bold(true),
		warn:  fg(caution),
		muted: fg(subtle).Italic(true),
	}
}

// status colors a run status: completed green, failed red, anything still open amber.
func (p palette) status(s models.RunStatus) string {
	switch s {
	case models.RunCompleted:
		return p.ok.Render(string(s))
	case models.RunFailed:
		return p.err.Render(string(s))
	default:
		return p.warn.Render(string(s))
	}
}
