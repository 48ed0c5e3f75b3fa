package ui

import (
	"github.com/charmbracelet/lipgloss"

	"marketdash/format"
	"marketdash/theme"
)

// Styles is the full style set for one palette. Rebuild it with NewStyles
// whenever the theme changes.
type Styles struct {
	Tokens theme.Tokens

	Title    lipgloss.Style
	Header   lipgloss.Style
	Menu     lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	Disabled lipgloss.Style
	Info     lipgloss.Style

	Value    lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Neutral  lipgloss.Style
	Price    lipgloss.Style
	Muted    lipgloss.Style

	TableHeader lipgloss.Style
	TableRow    lipgloss.Style

	Loading lipgloss.Style
	Error   lipgloss.Style
	Input   lipgloss.Style

	NavActive   lipgloss.Style
	NavInactive lipgloss.Style
	Star        lipgloss.Style
}

func NewStyles(t theme.Tokens) Styles {
	return Styles{
		Tokens: t,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text.Inverse).
			Background(t.Primary).
			Padding(0, 1),

		Menu: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Foreground(t.PrimaryHover).
			Background(t.Card.Hover).
			Bold(true),

		Disabled: lipgloss.NewStyle().
			Foreground(t.Secondary),

		Info: lipgloss.NewStyle().
			Foreground(t.Text.Secondary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(t.Border),

		Value: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text.Primary),

		Positive: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		Negative: lipgloss.NewStyle().
			Foreground(t.Danger).
			Bold(true),

		Neutral: lipgloss.NewStyle().
			Foreground(t.Text.Secondary),

		Price: lipgloss.NewStyle().
			Foreground(t.Text.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(t.Text.Secondary),

		TableHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),

		TableRow: lipgloss.NewStyle().
			Foreground(t.Text.Primary),

		Loading: lipgloss.NewStyle().
			Foreground(t.Warning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(t.Danger).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Danger).
			PaddingLeft(1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		NavActive: lipgloss.NewStyle().
			Foreground(t.Text.Inverse).
			Background(t.Primary).
			Bold(true).
			Padding(0, 1),

		NavInactive: lipgloss.NewStyle().
			Foreground(t.Text.Secondary).
			Padding(0, 1),

		Star: lipgloss.NewStyle().
			Foreground(t.Warning),
	}
}

// Trend picks the colour for a signed change. Zero is neutral.
func (s Styles) Trend(v float64) lipgloss.Style {
	switch format.TrendOf(v) {
	case format.Up:
		return s.Positive
	case format.Down:
		return s.Negative
	}
	return s.Neutral
}

// Percent renders a coloured percentage change.
func (s Styles) Percent(v float64) string {
	return s.Trend(v).Render(format.Percent(v))
}

// Change renders a coloured change with its trend arrow.
func (s Styles) Change(v float64) string {
	return s.Trend(v).Render(format.TrendOf(v).Arrow() + " " + format.Percent(v))
}
