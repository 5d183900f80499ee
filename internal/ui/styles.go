package ui

import "github.com/charmbracelet/lipgloss"

// Color palette: a single lime accent on grays.
const (
	ColorLime     = "154" // Primary accent
	ColorLimeDim  = "106" // Inactive accent
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Borders, separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Loading
)

// Styles holds all UI styles for TUI rendering.
type Styles struct {
	Header   lipgloss.Style
	Prompt   lipgloss.Style
	Idle     lipgloss.Style
	Loading  lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Rank     lipgloss.Style
	Hint     lipgloss.Style
	Latency  lipgloss.Style
	Label    lipgloss.Style
	Panel    lipgloss.Style
}

// DefaultStyles returns styled components for TUI mode.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Idle:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Loading:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Item:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Rank:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Hint:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(ColorDarkGray)),
		Latency:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLimeDim)),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:   plain,
		Prompt:   plain,
		Idle:     plain,
		Loading:  plain,
		Success:  plain,
		Error:    plain,
		Item:     plain,
		Selected: plain,
		Rank:     plain,
		Hint:     plain,
		Latency:  plain,
		Label:    plain,
		Panel:    plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// PhaseStyle returns the status style for a phase.
func (s Styles) PhaseStyle(phase string) lipgloss.Style {
	switch phase {
	case "loading":
		return s.Loading
	case "success":
		return s.Success
	case "error":
		return s.Error
	default:
		return s.Idle
	}
}
