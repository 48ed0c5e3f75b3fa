package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"marketdash/api"
	"marketdash/favorites"
	"marketdash/format"
	"marketdash/ui"
)

const (
	keyCryptoList    = "crypto.list"
	keyCryptoDetail  = "crypto.detail"
	keyCryptoSearch  = "crypto.search"
	keyCryptoFavs    = "favorites." + favorites.ScopeCrypto
	cryptoListHeight = 15
)

// CoinDetail is the detail panel payload: the coin and its recent prices.
type CoinDetail struct {
	Coin    *api.CoinDetail
	History []api.PricePoint
}

// fetchCoinDetail loads the coin and its history concurrently. Either
// failing fails both and cancels the other.
func fetchCoinDetail(ctx context.Context, client *api.Client, id string, days int) (CoinDetail, error) {
	g, gctx := errgroup.WithContext(ctx)

	var out CoinDetail
	g.Go(func() error {
		coin, err := client.Crypto.Coin(gctx, id)
		out.Coin = coin
		return err
	})
	g.Go(func() error {
		history, err := client.Crypto.History(gctx, id, days)
		out.History = history
		return err
	})
	if err := g.Wait(); err != nil {
		return CoinDetail{}, err
	}
	return out, nil
}

// Crypto lists the top coins with market stats, a live filter, favorites,
// server-side search and a detail panel.
type Crypto struct {
	env    *Env
	ctx    context.Context
	cancel context.CancelFunc

	Coins   Remote[[]api.Coin]
	Detail  Remote[CoinDetail]
	Results Remote[[]api.SearchResult]

	Favorites     *favorites.Set
	FavoritesOnly bool

	favs        Remote[[]string]
	search      textinput.Model
	cursor      int
	showDetail  bool
	showResults bool
	spinner     spinner.Model
}

func NewCrypto(env *Env) *Crypto {
	return &Crypto{
		env:       env,
		Favorites: favorites.NewSet(),
		search:    ui.NewSearchInput("Search cryptocurrencies...", 50),
		spinner:   ui.NewSpinner(env.Styles),
	}
}

func (c *Crypto) Mount() tea.Cmd {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	cmds := []tea.Cmd{c.fetchList(), c.spinner.Tick}
	if c.env.Favorites != nil && !c.favs.HasData() {
		c.Favorites.Track()
		cmds = append(cmds, c.env.loadFavorites(c.ctx, favorites.ScopeCrypto, c.favs.Begin()))
	}
	return tea.Batch(cmds...)
}

func (c *Crypto) Unmount() {
	if c.cancel != nil {
		c.cancel()
	}
	c.Coins.Cancel()
	c.Detail.Cancel()
	c.Results.Cancel()
	c.favs.Cancel()
	c.search.Blur()
}

func (c *Crypto) Capturing() bool { return c.search.Focused() }

func (c *Crypto) fetchList() tea.Cmd {
	client, limit := c.env.Client, c.env.Config.Crypto.ListLimit
	return load(c.ctx, keyCryptoList, c.Coins.Begin(), func(ctx context.Context) ([]api.Coin, error) {
		return client.Crypto.Top(ctx, limit)
	})
}

func (c *Crypto) openDetail(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	c.showDetail = true
	client, days := c.env.Client, c.env.Config.Crypto.HistoryDays
	return tea.Batch(
		load(c.ctx, keyCryptoDetail, c.Detail.Begin(), func(ctx context.Context) (CoinDetail, error) {
			return fetchCoinDetail(ctx, client, id, days)
		}),
		c.spinner.Tick,
	)
}

func (c *Crypto) runSearch(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		c.showResults = false
		c.Results.Cancel()
		return nil
	}
	c.showResults = true
	c.cursor = 0
	client := c.env.Client
	return tea.Batch(
		load(c.ctx, keyCryptoSearch, c.Results.Begin(), func(ctx context.Context) ([]api.SearchResult, error) {
			return client.Crypto.Search(ctx, query)
		}),
		c.spinner.Tick,
	)
}

// Visible returns the rows the table shows: the filtered list, narrowed to
// favorites when that view is on.
func (c *Crypto) Visible() []api.Coin {
	coins := FilterCoins(c.Coins.Data, c.search.Value())
	if c.FavoritesOnly {
		coins = onlyFavorites(coins, c.Favorites)
	}
	return coins
}

// Stats summarises the full list, not the filtered view.
func (c *Crypto) Stats() Stats {
	return MarketStats(c.Coins.Data)
}

// SetQuery replaces the filter text.
func (c *Crypto) SetQuery(q string) {
	c.search.SetValue(q)
	c.cursor = 0
}

func (c *Crypto) rows() int {
	if c.showResults {
		return len(c.Results.Data)
	}
	return len(c.Visible())
}

func (c *Crypto) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[[]api.Coin]:
		if msg.key == keyCryptoList {
			c.env.logFailure(msg.key, msg.err)
			c.Coins.Resolve(msg.token, msg.data, msg.err)
			c.clampCursor()
		}
	case loadedMsg[CoinDetail]:
		if msg.key == keyCryptoDetail {
			c.env.logFailure(msg.key, msg.err)
			c.Detail.Resolve(msg.token, msg.data, msg.err)
		}
	case loadedMsg[[]api.SearchResult]:
		if msg.key == keyCryptoSearch {
			c.env.logFailure(msg.key, msg.err)
			c.Results.Resolve(msg.token, msg.data, msg.err)
			c.clampCursor()
		}
	case loadedMsg[[]string]:
		if msg.key == keyCryptoFavs {
			c.env.logFailure(msg.key, msg.err)
			if c.favs.Resolve(msg.token, msg.data, msg.err) {
				if msg.err != nil {
					c.Favorites.Merge(nil)
				} else {
					c.Favorites.Merge(msg.data)
				}
			}
		}
	case savedMsg:
		c.env.handleSaved(msg)
	case spinner.TickMsg:
		if c.Coins.Loading() || c.Detail.Loading() || c.Results.Loading() {
			var cmd tea.Cmd
			c.spinner, cmd = c.spinner.Update(msg)
			return cmd
		}
	case tea.KeyMsg:
		if c.search.Focused() {
			return c.handleSearchKeys(msg)
		}
		return c.handleKeys(msg)
	}
	return nil
}

func (c *Crypto) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		c.search.Blur()
		return c.runSearch(c.search.Value())
	case "esc":
		c.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	c.search, cmd = c.search.Update(msg)
	c.cursor = 0
	return cmd
}

func (c *Crypto) handleKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		c.showDetail = false
		return c.search.Focus()
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < c.rows()-1 {
			c.cursor++
		}
	case "enter":
		return c.openDetail(c.selectedID())
	case "f":
		return c.toggleFavorite(c.selectedID())
	case "v":
		c.FavoritesOnly = !c.FavoritesOnly
		c.cursor = 0
	case "esc":
		switch {
		case c.showDetail:
			c.showDetail = false
			c.Detail.Cancel()
		case c.showResults:
			c.showResults = false
			c.Results.Cancel()
			c.cursor = 0
		case c.search.Value() != "":
			c.SetQuery("")
		}
	case "r":
		switch {
		case c.showDetail && c.Detail.Failed():
			if c.Detail.HasData() && c.Detail.Data.Coin != nil {
				return c.openDetail(c.Detail.Data.Coin.ID)
			}
			return c.openDetail(c.selectedID())
		case c.showResults:
			return c.runSearch(c.search.Value())
		}
		return tea.Batch(c.fetchList(), c.spinner.Tick)
	}
	return nil
}

func (c *Crypto) selectedID() string {
	if c.showResults {
		if c.cursor >= 0 && c.cursor < len(c.Results.Data) {
			return c.Results.Data[c.cursor].ID
		}
		return ""
	}
	visible := c.Visible()
	if c.cursor >= 0 && c.cursor < len(visible) {
		return visible[c.cursor].ID
	}
	return ""
}

func (c *Crypto) toggleFavorite(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	on := c.Favorites.Toggle(id)
	if c.FavoritesOnly {
		c.clampCursor()
	}
	return c.env.saveFavorite(favorites.ScopeCrypto, id, on)
}

func (c *Crypto) clampCursor() {
	if n := c.rows(); c.cursor >= n {
		c.cursor = n - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

func (c *Crypto) View(width, height int) string {
	s := c.env.Styles
	c.spinner.Style = s.Loading

	sections := []string{c.statsView(width)}

	hint := "enter searches the server • esc leaves the search"
	if !c.search.Focused() {
		hint = "/ to filter"
	}
	sections = append(sections, ui.SearchBar(s, c.search, hint, width))

	if c.Coins.Failed() {
		sections = append(sections, ui.ErrorBanner(s, "Failed to load cryptocurrencies: "+c.Coins.Err.Error()))
	}

	listHeight := height - 12
	if listHeight < 5 {
		listHeight = cryptoListHeight
	}

	switch {
	case c.showDetail:
		sections = append(sections, c.detailView(width))
	case c.showResults:
		sections = append(sections, c.resultsView())
	case c.Coins.Loading() && !c.Coins.HasData():
		sections = append(sections, ui.Loading(s, c.spinner.View(), "Loading cryptocurrencies..."))
	default:
		title := fmt.Sprintf("All Cryptocurrencies (%d)", len(c.Visible()))
		if c.FavoritesOnly {
			title = fmt.Sprintf("Favorites (%d)", len(c.Visible()))
		}
		sections = append(sections, s.Title.Render(title))
		sections = append(sections, ui.CoinTable(s, c.Visible(), c.cursor, c.Favorites, listHeight))
	}

	sections = append(sections, ui.Help(s, "↑/↓ move", "enter details", "f favorite", "v favorites only", "r refresh"))
	return strings.Join(sections, "\n")
}

func (c *Crypto) statsView(width int) string {
	s := c.env.Styles
	st := c.Stats()
	cardWidth := width / 4
	if cardWidth < 20 {
		cardWidth = 20
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		ui.Card(s, "Total Market Cap", s.Value.Render(format.Compact(st.TotalMarketCap)), cardWidth),
		ui.Card(s, "24h Volume", s.Value.Render(format.Compact(st.TotalVolume)), cardWidth),
		ui.Card(s, "Active Cryptos", s.Value.Render(fmt.Sprintf("%d", st.Active)), cardWidth),
		ui.Card(s, "Trending", s.Positive.Render(fmt.Sprintf("%d", st.Trending)), cardWidth),
	)
}

func (c *Crypto) resultsView() string {
	s := c.env.Styles
	switch {
	case c.Results.Loading() && !c.Results.HasData():
		return ui.Loading(s, c.spinner.View(), "Searching...")
	case c.Results.Failed():
		return ui.ErrorBanner(s, "Search failed: "+c.Results.Err.Error())
	case len(c.Results.Data) == 0:
		return ui.Empty(s, "No coins found")
	}

	lines := []string{s.Title.Render(fmt.Sprintf("Search results for %q", strings.TrimSpace(c.search.Value())))}
	for i, r := range c.Results.Data {
		rank := "-"
		if r.MarketCapRank.Valid {
			rank = fmt.Sprintf("#%d", int(r.MarketCapRank.Value))
		}
		line := fmt.Sprintf("%-5s %s (%s)", rank, r.Name, strings.ToUpper(r.Symbol))
		if i == c.cursor {
			line = s.Selected.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (c *Crypto) detailView(width int) string {
	s := c.env.Styles
	switch {
	case c.Detail.Loading() && !c.Detail.HasData():
		return ui.Loading(s, c.spinner.View(), "Loading coin details...")
	case c.Detail.Failed():
		return ui.ErrorBanner(s, "Failed to load coin details: "+c.Detail.Err.Error())
	case c.Detail.Data.Coin == nil:
		return ui.Empty(s, "No details available")
	}

	d := c.Detail.Data
	coin := d.Coin
	pct := coin.PriceChangePercent24h.Float64()

	star := ""
	if c.Favorites.Has(coin.ID) {
		star = s.Star.Render(" ★")
	}
	title := fmt.Sprintf("%s (%s)%s", coin.Name, strings.ToUpper(coin.Symbol), star)

	facts := []string{
		s.Price.Render(format.Price(coin.CurrentPrice.Float64())) + "  " + s.Change(pct),
		"24h High   " + format.Price(coin.High24h.Float64()),
		"24h Low    " + format.Price(coin.Low24h.Float64()),
		"Market Cap " + format.MarketCap(coin.MarketCap.Float64()),
		"Volume     " + format.Compact(coin.TotalVolume.Float64()),
		"ATH        " + format.Price(coin.ATH.Float64()),
	}
	if coin.CirculatingSupply.Valid {
		facts = append(facts, "Supply     "+format.Amount(coin.CirculatingSupply.Value))
	}

	chartWidth := width - 6
	if chartWidth < 20 {
		chartWidth = 20
	}
	body := strings.Join(facts, "\n") + "\n\n" +
		s.Muted.Render(fmt.Sprintf("Last %d days", c.env.Config.Crypto.HistoryDays)) + "\n" +
		ui.Chart(s, d.History, chartWidth, 6)
	return ui.Card(s, title, body, width) + "\n" + s.Muted.Render("esc closes the panel")
}
