package models

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marketdash/api"
	"marketdash/config"
	"marketdash/prefs"
	"marketdash/theme"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

const (
	pathTop      = "/crypto/topCryptoCurrencies"
	pathNews     = "/market-news/"
	pathCrypNews = "/market-news/crypto"
	pathIndices  = "/stocks/major-indices"
	pathRates    = "/forex/rates"
	pathConvert  = "/forex/convert"
	pathPairs    = "/forex/major-pairs"
)

var fixtures = map[string]string{
	pathTop: `[
		{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":45000,"price_change_24h":900,"price_change_percentage_24h":2,"market_cap":880000000000,"total_volume":25000000000},
		{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":2500,"price_change_percentage_24h":-1.5,"market_cap":300000000000,"total_volume":12000000000},
		{"id":"pepe","symbol":"pepe","name":"Pepe","current_price":0.00001,"price_change_percentage_24h":15,"market_cap":null,"total_volume":"n/a"}
	]`,
	pathNews: `[
		{"id":1,"headline":"Fed holds rates","summary":"Policy unchanged","source":"Reuters","datetime":1710496800,"url":"https://example.com/1"},
		{"id":2,"title":"Stocks rally","summary":"Tech leads","source":"Bloomberg","datetime":1710493200,"url":"https://example.com/2"},
		{"id":3,"title":"Oil slips","source":"CNBC","datetime":1710489600,"url":"https://example.com/3"},
		{"id":4,"title":"Gold steady","source":"Reuters","datetime":1710486000,"url":"https://example.com/4"},
		{"id":5,"title":"Yen weakens","source":"Nikkei","datetime":1710482400,"url":"https://example.com/5"}
	]`,
	pathCrypNews: `[
		{"id":"c1","title":"Bitcoin ETF inflows","source":"CoinDesk","datetime":"2024-03-15T10:00:00Z","url":"https://example.com/c1"},
		{"title":"Ethereum upgrade lands","source":"The Block","datetime":"garbage","url":"https://example.com/c2"}
	]`,
	pathIndices: `[{"symbol":"^GSPC","name":"S&P 500","current":5100.5,"change":25.2,"change_percent":0.5}]`,
	pathRates:   `{"base":"usd","date":"2024-03-15","rates":{"EUR":0.92,"gbp":0.79,"JPY":150.2,"BAD":-1}}`,
	pathConvert: `{"from":"USD","to":"EUR","amount":1,"converted_amount":0.92,"rate":0.92}`,
	pathPairs:   `[{"pair":"EUR/USD","rate":1.08,"change":0.001,"change_percent":0.1}]`,

	"/crypto/coin/bitcoin":         `{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":45000,"price_change_percentage_24h":2,"ath":69000,"circulating_supply":19600000}`,
	"/crypto/coin/bitcoin/history": `{"prices":[[1710000000000,44000],[1710086400000,45000]]}`,
	"/crypto/search/bit":           `{"coins":[{"id":"bitcoin","name":"Bitcoin","symbol":"BTC","market_cap_rank":1}]}`,

	"/stocks/quote/AAPL":   `{"c":189.5,"d":1.2,"dp":0.63,"h":191,"l":188,"o":190,"pc":188.3,"t":1710500000}`,
	"/stocks/profile/AAPL": `{"name":"Apple Inc","ticker":"AAPL","exchange":"NASDAQ","finnhubIndustry":"Technology","marketCapitalization":2950000,"weburl":"https://apple.com"}`,
	"/stocks/history/AAPL": `[{"date":"2024-03-13","close":188},{"date":"2024-03-14","close":189.5}]`,
	"/stocks/quote/TSLA":   `{"c":175,"d":-3,"dp":-1.7,"h":180,"l":170,"o":178,"pc":178}`,
	"/stocks/profile/TSLA": `{"name":"Tesla Inc","ticker":"TSLA","exchange":"NASDAQ"}`,
	"/stocks/history/TSLA": `[]`,
}

// backend is a fake market API serving the fixtures above.
type backend struct {
	*httptest.Server

	mu       sync.Mutex
	status   map[string]int
	bodies   map[string]string
	requests map[string][]string
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		status:   make(map[string]int),
		bodies:   make(map[string]string),
		requests: make(map[string][]string),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")

	b.mu.Lock()
	b.requests[path] = append(b.requests[path], r.URL.RawQuery)
	code := b.status[path]
	body, overridden := b.bodies[path]
	b.mu.Unlock()

	if code != 0 {
		http.Error(w, "upstream unavailable", code)
		return
	}
	if !overridden {
		var ok bool
		if body, ok = fixtures[path]; !ok {
			http.NotFound(w, r)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// fail makes path answer with an HTTP error status.
func (b *backend) fail(path string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status[path] = code
}

// respond replaces the fixture served for path.
func (b *backend) respond(path, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[path] = body
}

func (b *backend) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests[path])
}

func (b *backend) queries(path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests[path]...)
}

func newTestEnv(t *testing.T, b *backend) *Env {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.API.BaseURL = b.URL + "/api"
	client := api.NewClient(cfg.API.BaseURL, 2*time.Second, nil)
	store := theme.New(prefs.NewMemoryStorage(), nil, nil)

	env := NewEnv(client, cfg, store, nil)
	env.Now = func() time.Time { return fixedNow }
	env.Clipboard = func(string) error { return nil }
	return env
}

// pump runs commands the way the bubbletea runtime would and queues the
// messages they produce. Timer commands simply deliver late or never.
type pump struct {
	t    *testing.T
	msgs chan tea.Msg
}

func newPump(t *testing.T) *pump {
	return &pump{t: t, msgs: make(chan tea.Msg, 512)}
}

func (p *pump) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				p.run(c)
			}
			return
		}
		if msg == nil {
			return
		}
		select {
		case p.msgs <- msg:
		default:
		}
	}()
}

// until feeds queued messages to update until cond holds.
func (p *pump) until(update func(tea.Msg) tea.Cmd, cond func() bool) {
	p.t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case msg := <-p.msgs:
			p.run(update(msg))
		case <-deadline:
			p.t.Fatal("timed out waiting for condition")
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends each key to page and runs what comes back.
func (p *pump) press(page Page, keys ...string) {
	for _, k := range keys {
		p.run(page.Update(keyPress(k)))
	}
}

// typeText sends s one rune at a time.
func (p *pump) typeText(page Page, s string) {
	for _, r := range s {
		p.run(page.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
}
