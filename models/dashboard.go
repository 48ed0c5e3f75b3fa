package models

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"marketdash/api"
	"marketdash/ui"
)

const (
	keyDashCrypto  = "dashboard.crypto"
	keyDashNews    = "dashboard.news"
	keyDashIndices = "dashboard.indices"
	keyDashTicker  = "dashboard.ticker"

	tickerStep = 150 * time.Millisecond
)

// Dashboard is the home page. Its four sections load independently so one
// failing endpoint only empties its own section. While mounted it refetches
// everything on the configured interval and scrolls the ticker strip.
type Dashboard struct {
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc

	Crypto  Remote[[]api.Coin]
	News    Remote[[]api.Article]
	Indices Remote[[]api.MarketIndex]
	Ticker  Remote[[]api.Coin]

	refresh *Refresher
	scroll  *Refresher
	offset  int
	spinner spinner.Model

	LastUpdated time.Time
}

func NewDashboard(env *Env) *Dashboard {
	return &Dashboard{
		env:     env,
		refresh: NewRefresher("dashboard.refresh", env.Config.Dashboard.RefreshInterval),
		scroll:  NewRefresher("dashboard.scroll", tickerStep),
		spinner: ui.NewSpinner(env.Styles),
	}
}

func (d *Dashboard) Mount() tea.Cmd {
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return tea.Batch(
		d.fetchAll(),
		d.refresh.Start(),
		d.scroll.Start(),
	)
}

// Unmount stops both tickers and abandons requests in flight.
func (d *Dashboard) Unmount() {
	d.refresh.Stop()
	d.scroll.Stop()
	if d.cancel != nil {
		d.cancel()
	}
	d.Crypto.Cancel()
	d.News.Cancel()
	d.Indices.Cancel()
	d.Ticker.Cancel()
}

func (d *Dashboard) Capturing() bool { return false }

func (d *Dashboard) fetchAll() tea.Cmd {
	cfg := d.env.Config.Dashboard
	client := d.env.Client

	return tea.Batch(
		load(d.ctx, keyDashCrypto, d.Crypto.Begin(), func(ctx context.Context) ([]api.Coin, error) {
			return client.Crypto.Top(ctx, cfg.CryptoLimit)
		}),
		load(d.ctx, keyDashNews, d.News.Begin(), func(ctx context.Context) ([]api.Article, error) {
			articles, err := client.News.Market(ctx)
			if len(articles) > cfg.NewsLimit {
				articles = articles[:cfg.NewsLimit]
			}
			return articles, err
		}),
		load(d.ctx, keyDashIndices, d.Indices.Begin(), client.Stocks.MajorIndices),
		load(d.ctx, keyDashTicker, d.Ticker.Begin(), func(ctx context.Context) ([]api.Coin, error) {
			return client.Crypto.Top(ctx, cfg.TickerLimit)
		}),
		d.spinner.Tick,
	)
}

func (d *Dashboard) loading() bool {
	return d.Crypto.Loading() || d.News.Loading() || d.Indices.Loading() || d.Ticker.Loading()
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case refreshMsg:
		switch {
		case d.refresh.Accept(msg):
			return tea.Batch(d.fetchAll(), d.refresh.Next())
		case d.scroll.Accept(msg):
			d.offset++
			return d.scroll.Next()
		}
		return nil

	case loadedMsg[[]api.Coin]:
		switch msg.key {
		case keyDashCrypto:
			d.env.logFailure(msg.key, msg.err)
			d.touch(d.Crypto.Resolve(msg.token, msg.data, msg.err), msg.err)
		case keyDashTicker:
			d.env.logFailure(msg.key, msg.err)
			d.touch(d.Ticker.Resolve(msg.token, msg.data, msg.err), msg.err)
		}
		return nil

	case loadedMsg[[]api.Article]:
		if msg.key == keyDashNews {
			d.env.logFailure(msg.key, msg.err)
			d.touch(d.News.Resolve(msg.token, msg.data, msg.err), msg.err)
		}
		return nil

	case loadedMsg[[]api.MarketIndex]:
		if msg.key == keyDashIndices {
			d.env.logFailure(msg.key, msg.err)
			d.touch(d.Indices.Resolve(msg.token, msg.data, msg.err), msg.err)
		}
		return nil

	case spinner.TickMsg:
		if !d.loading() {
			return nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		if msg.String() == "r" {
			return d.fetchAll()
		}
	}
	return nil
}

func (d *Dashboard) touch(applied bool, err error) {
	if applied && err == nil {
		d.LastUpdated = d.env.Now()
	}
}

// FirstError returns the error of the first failed section, in page order.
func (d *Dashboard) FirstError() error {
	for _, err := range []error{d.Crypto.Err, d.News.Err, d.Indices.Err, d.Ticker.Err} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Dashboard) View(width, height int) string {
	s := d.env.Styles
	d.spinner.Style = s.Loading

	var sections []string

	if strip := ui.Ticker(s, d.Ticker.Data, d.offset, width); strip != "" {
		sections = append(sections, strip)
	}

	if err := d.FirstError(); err != nil {
		sections = append(sections, ui.ErrorBanner(s, "Some market data failed to load: "+err.Error()))
	}

	cardWidth := width / 3
	if cardWidth < 24 {
		cardWidth = 24
	}

	sections = append(sections, s.Title.Render("Top Cryptocurrencies"))
	sections = append(sections, d.section(d.Crypto.Loading() && !d.Crypto.HasData(), len(d.Crypto.Data) == 0,
		"Loading cryptocurrencies...", "No cryptocurrency data", func() string {
			cards := make([]string, 0, len(d.Crypto.Data))
			for _, c := range d.Crypto.Data {
				cards = append(cards, ui.CoinCard(s, c, cardWidth))
			}
			return grid(cards, 3)
		}))

	sections = append(sections, s.Title.Render("Major Indices"))
	sections = append(sections, d.section(d.Indices.Loading() && !d.Indices.HasData(), len(d.Indices.Data) == 0,
		"Loading indices...", "No index data", func() string {
			cards := make([]string, 0, len(d.Indices.Data))
			for _, idx := range d.Indices.Data {
				cards = append(cards, ui.IndexCard(s, idx, cardWidth))
			}
			return grid(cards, 3)
		}))

	sections = append(sections, s.Title.Render("Latest News"))
	sections = append(sections, d.section(d.News.Loading() && !d.News.HasData(), len(d.News.Data) == 0,
		"Loading news...", "No news available", func() string {
			now := d.env.Now()
			items := make([]string, 0, len(d.News.Data))
			for _, a := range d.News.Data {
				items = append(items, ui.NewsItem(s, a, now, false, false, width))
			}
			return strings.Join(items, "\n")
		}))

	status := "Refreshes every " + d.refresh.Interval().String()
	if !d.LastUpdated.IsZero() {
		status = "Updated " + d.LastUpdated.Format("15:04:05") + " • " + status
	}
	sections = append(sections, ui.Help(s, status, "r refresh"))

	return strings.Join(sections, "\n")
}

func (d *Dashboard) section(loading, empty bool, loadingLabel, emptyLabel string, render func() string) string {
	s := d.env.Styles
	switch {
	case loading:
		return ui.Loading(s, d.spinner.View(), loadingLabel)
	case empty:
		return ui.Empty(s, emptyLabel)
	}
	return render()
}

// grid lays out blocks in rows of n.
func grid(blocks []string, n int) string {
	var rows []string
	for i := 0; i < len(blocks); i += n {
		end := i + n
		if end > len(blocks) {
			end = len(blocks)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks[i:end]...))
	}
	return strings.Join(rows, "\n")
}
