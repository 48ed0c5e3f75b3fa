package models

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marketdash/api"
	"marketdash/format"
	"marketdash/ui"
)

const (
	keyStocksData    = "stocks.data"
	keyStocksIndices = "stocks.indices"

	stocksFetchError = "Failed to fetch stock data. Please check the symbol and try again."
)

// StockData is everything the page shows for one symbol.
type StockData struct {
	Symbol  string
	Quote   *api.StockQuote
	Profile *api.StockProfile
	History []api.StockBar
}

// fetchStock loads quote, profile and history concurrently. The first
// failure cancels the rest.
func fetchStock(ctx context.Context, client *api.Client, symbol string) (StockData, error) {
	g, gctx := errgroup.WithContext(ctx)

	out := StockData{Symbol: symbol}
	g.Go(func() error {
		q, err := client.Stocks.Quote(gctx, symbol)
		out.Quote = q
		return err
	})
	g.Go(func() error {
		p, err := client.Stocks.Profile(gctx, symbol)
		out.Profile = p
		return err
	})
	g.Go(func() error {
		h, err := client.Stocks.History(gctx, symbol)
		out.History = h
		return err
	})
	if err := g.Wait(); err != nil {
		return StockData{}, err
	}
	return out, nil
}

// Stocks shows a quote, company profile and price history for one symbol,
// plus the major indices.
type Stocks struct {
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc

	Symbol  string
	Data    Remote[StockData]
	Indices Remote[[]api.MarketIndex]

	input   textinput.Model
	spinner spinner.Model
}

func NewStocks(env *Env) *Stocks {
	in := ui.NewSearchInput("Enter stock symbol (e.g., AAPL, GOOGL, TSLA, MSFT)", 10)
	symbol := api.NormalizeSymbol(env.Config.Stocks.DefaultSymbol)
	in.SetValue(symbol)
	return &Stocks{
		env:     env,
		Symbol:  symbol,
		input:   in,
		spinner: ui.NewSpinner(env.Styles),
	}
}

func (p *Stocks) Mount() tea.Cmd {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return tea.Batch(p.fetch(p.Symbol), p.fetchIndices(), p.spinner.Tick)
}

func (p *Stocks) Unmount() {
	if p.cancel != nil {
		p.cancel()
	}
	p.Data.Cancel()
	p.Indices.Cancel()
	p.input.Blur()
}

func (p *Stocks) Capturing() bool { return p.input.Focused() }

// Submit looks up symbol. Blank input is ignored.
func (p *Stocks) Submit(symbol string) tea.Cmd {
	symbol = api.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil
	}
	p.Symbol = symbol
	p.input.SetValue(symbol)
	return tea.Batch(p.fetch(symbol), p.spinner.Tick)
}

func (p *Stocks) fetch(symbol string) tea.Cmd {
	client := p.env.Client
	return load(p.ctx, keyStocksData, p.Data.Begin(), func(ctx context.Context) (StockData, error) {
		return fetchStock(ctx, client, symbol)
	})
}

// fetchIndices never fails the page: errors are logged and the section
// renders empty.
func (p *Stocks) fetchIndices() tea.Cmd {
	client, logger := p.env.Client, p.env.Logger
	return load(p.ctx, keyStocksIndices, p.Indices.Begin(), func(ctx context.Context) ([]api.MarketIndex, error) {
		indices, err := client.Stocks.MajorIndices(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Warn("major indices unavailable", zap.Error(err))
			return []api.MarketIndex{}, nil
		}
		return indices, err
	})
}

func (p *Stocks) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[StockData]:
		if msg.key == keyStocksData {
			p.env.logFailure(msg.key, msg.err)
			p.Data.Resolve(msg.token, msg.data, msg.err)
		}
	case loadedMsg[[]api.MarketIndex]:
		if msg.key == keyStocksIndices {
			p.Indices.Resolve(msg.token, msg.data, msg.err)
		}
	case spinner.TickMsg:
		if p.Data.Loading() || p.Indices.Loading() {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return cmd
		}
	case tea.KeyMsg:
		if p.input.Focused() {
			switch msg.String() {
			case "enter":
				p.input.Blur()
				return p.Submit(p.input.Value())
			case "esc":
				p.input.Blur()
				p.input.SetValue(p.Symbol)
				return nil
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return cmd
		}
		switch msg.String() {
		case "/":
			p.input.SetValue("")
			return p.input.Focus()
		case "r":
			return tea.Batch(p.fetch(p.Symbol), p.fetchIndices(), p.spinner.Tick)
		}
	}
	return nil
}

func (p *Stocks) View(width, height int) string {
	s := p.env.Styles
	p.spinner.Style = s.Loading

	hint := "enter looks up the symbol • esc cancels"
	if !p.input.Focused() {
		hint = "/ to look up another symbol"
	}
	sections := []string{ui.SearchBar(s, p.input, hint, width)}

	if p.Data.Failed() {
		sections = append(sections, ui.ErrorBanner(s, stocksFetchError))
	}

	switch {
	case p.Data.Loading() && !p.Data.HasData():
		sections = append(sections, ui.Loading(s, p.spinner.View(), "Loading "+p.Symbol+"..."))
	case p.Data.HasData() && p.Data.Data.Quote != nil && p.Data.Data.Profile != nil:
		sections = append(sections, p.quoteView(width), p.detailView(width))
	}

	sections = append(sections, s.Title.Render("Major Indices"))
	switch {
	case p.Indices.Loading() && !p.Indices.HasData():
		sections = append(sections, ui.Loading(s, p.spinner.View(), "Loading indices..."))
	case len(p.Indices.Data) == 0:
		sections = append(sections, ui.Empty(s, "No index data"))
	default:
		cardWidth := width / 3
		if cardWidth < 24 {
			cardWidth = 24
		}
		cards := make([]string, 0, len(p.Indices.Data))
		for _, idx := range p.Indices.Data {
			cards = append(cards, ui.IndexCard(s, idx, cardWidth))
		}
		sections = append(sections, grid(cards, 3))
	}

	sections = append(sections, ui.Help(s, "/ symbol", "r refresh"))
	return strings.Join(sections, "\n")
}

func (p *Stocks) quoteView(width int) string {
	s := p.env.Styles
	d := p.Data.Data
	q := d.Quote

	name := d.Profile.Name
	if name == "" {
		name = "Company Information Not Available"
	}

	change := q.Change.Or(0)
	pct := q.PercentChange.Or(0)
	arrow := "▼"
	if change > 0 {
		arrow = "▲"
	}
	move := s.Trend(change).Render(fmt.Sprintf("%s %s (%s)", arrow, format.Price(math.Abs(change)), format.Percent(pct)))

	head := s.Title.Render(d.Symbol) + "  " + s.Muted.Render(name) + "\n" +
		s.Price.Render(format.Price(q.Current.Float64())) + "  " + move

	stats := []string{
		"Open " + format.Price(q.Open.Float64()),
		"High " + format.Price(q.High.Float64()),
		"Low " + format.Price(q.Low.Float64()),
		"Previous Close " + format.Price(q.PreviousClose.Float64()),
	}
	body := head + "\n\n" + strings.Join(stats, "   ")
	if q.Time.Valid() {
		body += "\n" + s.Muted.Render("As of "+format.DateTime(q.Time.Time))
	}
	return ui.Card(s, "Quote", body, width)
}

func (p *Stocks) detailView(width int) string {
	s := p.env.Styles
	d := p.Data.Data
	prof := d.Profile

	half := width / 2
	if half < 30 {
		half = 30
	}

	var chart string
	if points := api.ClosePoints(d.History); len(points) > 0 {
		chart = ui.Chart(s, points, half-6, 8)
	} else {
		chart = s.Muted.Render("Historical data not available")
	}

	info := []string{
		"Industry:   " + orNotAvailable(prof.Industry),
		"Market Cap: " + format.MarketCap(prof.MarketCap.Float64()),
		"Exchange:   " + orNotAvailable(prof.Exchange),
	}
	if prof.Country != "" {
		info = append(info, "Country:    "+prof.Country)
	}
	if prof.IPO != "" {
		info = append(info, "IPO:        "+prof.IPO)
	}
	if prof.WebURL != "" {
		info = append(info, "Website:    "+prof.WebURL)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		ui.Card(s, "Price Chart", chart, half),
		ui.Card(s, "Company Information", strings.Join(info, "\n"), half),
	)
}

func orNotAvailable(v string) string {
	if strings.TrimSpace(v) == "" {
		return "Not Available"
	}
	return v
}
