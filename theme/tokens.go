package theme

import "github.com/charmbracelet/lipgloss"

// Tokens is one palette. Every presentation style is derived from it.
type Tokens struct {
	Primary      lipgloss.Color
	PrimaryHover lipgloss.Color
	Secondary    lipgloss.Color
	Success      lipgloss.Color
	Danger       lipgloss.Color
	Warning      lipgloss.Color

	Background struct {
		Primary   lipgloss.Color
		Secondary lipgloss.Color
		Tertiary  lipgloss.Color
	}
	Text struct {
		Primary   lipgloss.Color
		Secondary lipgloss.Color
		Inverse   lipgloss.Color
	}

	Border lipgloss.Color
	Card   struct {
		Background lipgloss.Color
		Hover      lipgloss.Color
	}
}

// Light and Dark are the two palettes the store switches between.
var (
	Light = newTokens(palette{
		primary:      "#2563eb",
		primaryHover: "#1d4ed8",
		secondary:    "#64748b",
		bg:           [3]string{"#ffffff", "#f8fafc", "#f1f5f9"},
		text:         [3]string{"#1e293b", "#64748b", "#ffffff"},
		border:       "#e2e8f0",
		card:         [2]string{"#ffffff", "#f8fafc"},
	})

	Dark = newTokens(palette{
		primary:      "#3b82f6",
		primaryHover: "#2563eb",
		secondary:    "#94a3b8",
		bg:           [3]string{"#0f172a", "#1e293b", "#334155"},
		text:         [3]string{"#f1f5f9", "#cbd5e1", "#0f172a"},
		border:       "#334155",
		card:         [2]string{"#1e293b", "#334155"},
	})
)

// For returns the palette for a dark or light preference.
func For(dark bool) Tokens {
	if dark {
		return Dark
	}
	return Light
}

type palette struct {
	primary, primaryHover, secondary string
	bg, text                         [3]string
	border                           string
	card                             [2]string
}

func newTokens(p palette) Tokens {
	t := Tokens{
		Primary:      lipgloss.Color(p.primary),
		PrimaryHover: lipgloss.Color(p.primaryHover),
		Secondary:    lipgloss.Color(p.secondary),
		// status colours are shared by both palettes
		Success: lipgloss.Color("#10b981"),
		Danger:  lipgloss.Color("#ef4444"),
		Warning: lipgloss.Color("#f59e0b"),
		Border:  lipgloss.Color(p.border),
	}
	t.Background.Primary = lipgloss.Color(p.bg[0])
	t.Background.Secondary = lipgloss.Color(p.bg[1])
	t.Background.Tertiary = lipgloss.Color(p.bg[2])
	t.Text.Primary = lipgloss.Color(p.text[0])
	t.Text.Secondary = lipgloss.Color(p.text[1])
	t.Text.Inverse = lipgloss.Color(p.text[2])
	t.Card.Background = lipgloss.Color(p.card[0])
	t.Card.Hover = lipgloss.Color(p.card[1])
	return t
}
