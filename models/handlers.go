package models

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.pages[m.active]

	if msg.String() == "ctrl+c" {
		page.Unmount()
		return m, tea.Quit
	}

	// A page editing text gets every other key.
	if page.Capturing() {
		return m, page.Update(msg)
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		page.Unmount()
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "t":
		m.env.Theme.Toggle()
		return m, nil

	case "1", "2", "3", "4", "5":
		return m, m.Navigate(Routes[int(msg.String()[0]-'1')])

	case "]":
		return m, m.step(1)

	case "[":
		return m, m.step(-1)
	}

	return m, page.Update(msg)
}
