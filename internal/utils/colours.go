package utils

import "github.com/charmbracelet/lipgloss"

// ColourScheme is the subset of the Catppuccin Mocha palette the UI draws with.
type ColourScheme struct {
	Red      string
	Peach    string
	Yellow   string
	Green    string
	Blue     string
	Lavender string
	Text     string
	Subtext0 string
	Overlay1 string
	Surface1 string
	Surface0 string
	Base     string
}

var Colours = ColourScheme{
	Red:      "#f38ba8",
	Peach:    "#fab387",
	Yellow:   "#f9e2af",
	Green:    "#a6e3a1",
	Blue:     "#89b4fa",
	Lavender: "#b4befe",
	Text:     "#cdd6f4",
	Subtext0: "#a6adc8",
	Overlay1: "#7f849c",
	Surface1: "#45475a",
	Surface0: "#313244",
	Base:     "#1e1e2e",
}

// Styles groups the lipgloss styles shared by the views.
type Styles struct {
	Header   lipgloss.Style
	Label    lipgloss.Style
	Prompt   lipgloss.Style
	Input    lipgloss.Style
	Row      lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Badge    lipgloss.Style
}

func NewStyles(c ColourScheme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Text)).
			Background(lipgloss.Color(c.Surface0)).
			Padding(0, 1),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Subtext0)).Width(12),
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Blue)),
		Input:  lipgloss.NewStyle().Foreground(lipgloss.Color(c.Text)),
		Row: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Text)).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Text)).
			Background(lipgloss.Color(c.Surface1)).
			Padding(0, 1),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Overlay1)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Green)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(c.Red)).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(c.Yellow)),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Base)).
			Background(lipgloss.Color(c.Lavender)).
			Padding(0, 1),
	}
}

var DefaultStyles = NewStyles(Colours)
