package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

// NewSearchInput returns an unfocused text input for a search bar.
func NewSearchInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = "🔍 "
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// SearchBar renders a text input with its key hint.
func SearchBar(s Styles, in textinput.Model, hint string, width int) string {
	style := s.Input
	if width > 4 {
		style = style.Width(width - 2)
	}
	if !in.Focused() {
		style = style.BorderForeground(s.Tokens.Border)
	}
	bar := style.Render(in.View())
	if hint == "" {
		return bar
	}
	return bar + "\n" + s.Muted.Render(hint)
}

// NewSpinner returns the loading spinner used by every page.
func NewSpinner(s Styles) spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.Loading),
	)
}
