package termview

import "github.com/charmbracelet/lipgloss"

var (
	ColorFrost  = lipgloss.Color("#A8D8FF")
	ColorSnow   = lipgloss.Color("#FFFFFF")
	ColorDim    = lipgloss.Color("#4A6A8A")
	ColorBorder = lipgloss.Color("#6FA8DC")
)

var (
	StyleGlobe = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Foreground(ColorSnow)

	StyleStats = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorDim).
			Padding(0, 1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorFrost).
			Bold(true)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorSnow)
)
