package models

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Page is one screen of the app. The router mounts a page when it becomes
// active and unmounts it when the user leaves; only the active page
// receives messages.
type Page interface {
	// Mount starts the page's fetches and timers.
	Mount() tea.Cmd
	// Unmount cancels everything Mount started.
	Unmount()
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	// Capturing reports whether the page is taking raw text input, in which
	// case global shortcuts are suspended.
	Capturing() bool
}

// Route names a page.
type Route string

const (
	RouteDashboard Route = "/"
	RouteCrypto    Route = "/crypto"
	RouteStocks    Route = "/stocks"
	RouteForex     Route = "/forex"
	RouteNews      Route = "/news"
)

// Routes lists every page in navigation order.
var Routes = []Route{RouteDashboard, RouteCrypto, RouteStocks, RouteForex, RouteNews}

var routeLabels = map[Route]string{
	RouteDashboard: "Dashboard",
	RouteCrypto:    "Crypto",
	RouteStocks:    "Stocks",
	RouteForex:     "Forex",
	RouteNews:      "News",
}

func (r Route) Label() string { return routeLabels[r] }

// ParseRoute accepts a route path or a page name, with or without the
// leading slash. Unknown input falls back to the dashboard.
func ParseRoute(s string) (Route, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "/" || s == "home" || s == "dashboard" {
		return RouteDashboard, true
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	for _, r := range Routes {
		if Route(s) == r {
			return r, true
		}
	}
	return RouteDashboard, false
}

// AppModel is the root bubbletea model. It owns the pages and routes input
// between them.
type AppModel struct {
	Width  int
	Height int

	env      *Env
	pages    map[Route]Page
	active   Route
	showHelp bool
}

func NewAppModel(env *Env, start Route) *AppModel {
	if _, ok := routeLabels[start]; !ok {
		start = RouteDashboard
	}
	return &AppModel{
		env: env,
		pages: map[Route]Page{
			RouteDashboard: NewDashboard(env),
			RouteCrypto:    NewCrypto(env),
			RouteStocks:    NewStocks(env),
			RouteForex:     NewForex(env),
			RouteNews:      NewNews(env),
		},
		active: start,
	}
}

// Active returns the current route.
func (m *AppModel) Active() Route { return m.active }

// Page returns the page for r.
func (m *AppModel) Page(r Route) Page { return m.pages[r] }

// Bubble Tea interface methods
func (m *AppModel) Init() tea.Cmd {
	return m.pages[m.active].Mount()
}

// Navigate unmounts the current page and mounts r. Navigating to the
// current page does nothing.
func (m *AppModel) Navigate(r Route) tea.Cmd {
	page, ok := m.pages[r]
	if !ok || r == m.active {
		return nil
	}
	m.pages[m.active].Unmount()
	m.env.Logger.Debug("navigate", zap.String("from", string(m.active)), zap.String("to", string(r)))
	m.active = r
	m.showHelp = false
	return page.Mount()
}

// step moves through Routes by delta, wrapping around.
func (m *AppModel) step(delta int) tea.Cmd {
	for i, r := range Routes {
		if r == m.active {
			return m.Navigate(Routes[(i+delta+len(Routes))%len(Routes)])
		}
	}
	return nil
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, m.pages[m.active].Update(msg)
}

func (m *AppModel) View() string {
	return m.view()
}
