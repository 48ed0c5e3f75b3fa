package models

import (
	"fmt"
	"strings"

	"marketdash/ui"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

func (m *AppModel) size() (int, int) {
	w, h := m.Width, m.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m *AppModel) navItems() ([]ui.NavItem, int) {
	items := make([]ui.NavItem, len(Routes))
	active := 0
	for i, r := range Routes {
		items[i] = ui.NavItem{Key: fmt.Sprintf("%d", i+1), Label: r.Label()}
		if r == m.active {
			active = i
		}
	}
	return items, active
}

func (m *AppModel) view() string {
	s := m.env.Styles
	width, height := m.size()

	items, active := m.navItems()
	header := ui.Header(s, items, active, m.env.Theme.Preference(), width)
	footer := ui.Help(s, "1-5 pages", "[/] prev/next", "t theme", "? help", "q quit")

	var body string
	if m.showHelp {
		body = m.helpView()
	} else {
		bodyHeight := height - strings.Count(header, "\n") - strings.Count(footer, "\n") - 4
		body = m.pages[m.active].View(width-4, bodyHeight)
	}

	return fmt.Sprintf("%s\n%s\n%s", header, s.Menu.Render(body), footer)
}

func (m *AppModel) helpView() string {
	s := m.env.Styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	b.WriteString(s.Value.Render("Global"))
	b.WriteString("\n")
	b.WriteString("  1-5          Jump to a page\n")
	b.WriteString("  [ ]          Previous / next page\n")
	b.WriteString("  t            Toggle light/dark theme\n")
	b.WriteString("  ?            Show or hide this help\n")
	b.WriteString("  q, Ctrl+C    Quit\n\n")

	b.WriteString(s.Value.Render("Lists"))
	b.WriteString("\n")
	b.WriteString("  ↑/↓, k/j     Move the cursor\n")
	b.WriteString("  /            Search or filter\n")
	b.WriteString("  Esc          Leave the search, close a panel\n")
	b.WriteString("  r            Refresh the page\n\n")

	b.WriteString(s.Value.Render("Crypto"))
	b.WriteString("\n")
	b.WriteString("  Enter        Open coin details (in search: query the server)\n")
	b.WriteString("  f            Toggle favorite\n")
	b.WriteString("  v            Show favorites only\n\n")

	b.WriteString(s.Value.Render("Forex"))
	b.WriteString("\n")
	b.WriteString("  Tab          Next converter field\n")
	b.WriteString("  ←/→          Change currency\n")
	b.WriteString("  s            Swap currencies\n\n")

	b.WriteString(s.Value.Render("News"))
	b.WriteString("\n")
	b.WriteString("  Tab, ←/→     Switch feed\n")
	b.WriteString("  b            Toggle bookmark\n")
	b.WriteString("  Enter, c     Copy the article link\n\n")

	b.WriteString(s.Info.Render("Press ? or Esc to close"))
	return b.String()
}
