package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Slate / sky palette
// ---------------------------------------------------------------------------

const (
	colorBase     lipgloss.Color = "#0F172A"
	colorSurface  lipgloss.Color = "#1E293B"
	colorMuted    lipgloss.Color = "#4B5563"
	colorText     lipgloss.Color = "#E0F2FE"
	colorSubtext  lipgloss.Color = "#94A3B8"
	colorSky      lipgloss.Color = "#38BDF8"
	colorBlue     lipgloss.Color = "#2563EB"
	colorRed      lipgloss.Color = "#DC2626"
	colorRedLight lipgloss.Color = "#F87171"
)

const (
	colorAccent = colorSky
	colorError  = colorRedLight
)

// Styles groups every style the renderer uses.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Badge    lipgloss.Style
	Error    lipgloss.Style
	Hint     lipgloss.Style
	Panel    lipgloss.Style
}

// DefaultStyles is the interactive theme.
func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colorText),
		Subtitle: lipgloss.NewStyle().Foreground(colorSubtext),
		Section:  lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Underline(true),
		Label:    lipgloss.NewStyle().Foreground(colorSubtext),
		Value:    lipgloss.NewStyle().Foreground(colorText),
		Badge:    lipgloss.NewStyle().Foreground(colorAccent).Background(colorBase).Padding(0, 1),
		Error: lipgloss.NewStyle().Foreground(colorError).Bold(true).
			BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(colorRed).PaddingLeft(1),
		Hint:  lipgloss.NewStyle().Foreground(colorMuted),
		Panel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface).Padding(0, 1),
	}
}

// PlainStyles renders without color or borders, for non-interactive output.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:    plain,
		Subtitle: plain,
		Section:  plain,
		Label:    plain,
		Value:    plain,
		Badge:    plain,
		Error:    plain,
		Hint:     plain,
		Panel:    plain,
	}
}
