package ui

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"marketdash/api"
	"marketdash/favorites"
	"marketdash/safe"
	"marketdash/theme"
)

func testStyles() Styles { return NewStyles(theme.Light) }

func bitcoin() api.Coin {
	return api.Coin{
		ID:                    "bitcoin",
		Symbol:                "btc",
		Name:                  "Bitcoin",
		CurrentPrice:          safe.Of(45231.5),
		PriceChangePercent24h: safe.Of(3.21),
		MarketCap:             safe.Of(890000000000),
		TotalVolume:           safe.Of(25000000000),
		MarketCapRank:         safe.Of(1),
	}
}

func TestCoinCardFormatsQuote(t *testing.T) {
	out := CoinCard(testStyles(), bitcoin(), 30)
	for _, want := range []string{"Bitcoin", "BTC", "$45,231.50", "+3.21%", "$890.00B", "$25.00B"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}

func TestCoinCardMissingValues(t *testing.T) {
	out := CoinCard(testStyles(), api.Coin{Name: "Ghost", Symbol: "gst"}, 30)
	for _, bad := range []string{"NaN", "Inf"} {
		if strings.Contains(out, bad) {
			t.Errorf("card leaks %q:\n%s", bad, out)
		}
	}
	if !strings.Contains(out, "$0.00") || !strings.Contains(out, "0.00%") {
		t.Errorf("missing values should use fallbacks:\n%s", out)
	}
}

func TestCoinTableMarksFavoritesAndCursor(t *testing.T) {
	eth := api.Coin{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: safe.Of(2500)}
	favs := favorites.NewSet("ethereum")

	out := CoinTable(testStyles(), []api.Coin{bitcoin(), eth}, 1, favs, 10)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d:\n%s", len(lines), out)
	}
	if strings.Contains(lines[1], "★") {
		t.Error("bitcoin is not a favorite")
	}
	if !strings.Contains(lines[2], "★") {
		t.Error("ethereum should be starred")
	}
	if !strings.Contains(lines[2], "$2,500.00") {
		t.Errorf("row missing price: %s", lines[2])
	}
}

func TestCoinTableEmpty(t *testing.T) {
	out := CoinTable(testStyles(), nil, 0, nil, 10)
	if !strings.Contains(out, "No cryptocurrencies match") {
		t.Errorf("unexpected empty table:\n%s", out)
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		n, cursor, height int
		start, end        int
	}{
		{5, 0, 10, 0, 5},
		{100, 0, 10, 0, 10},
		{100, 50, 10, 45, 55},
		{100, 99, 10, 90, 100},
		{100, 3, 0, 0, 100},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.n, tt.cursor, tt.height)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = %d,%d want %d,%d",
				tt.n, tt.cursor, tt.height, start, end, tt.start, tt.end)
		}
		if tt.cursor < tt.n && (tt.cursor < start || tt.cursor >= end) {
			t.Errorf("cursor %d outside window %d..%d", tt.cursor, start, end)
		}
	}
}

func TestTickerWindowAndWrap(t *testing.T) {
	s := testStyles()
	coins := []api.Coin{bitcoin(), {Symbol: "eth", CurrentPrice: safe.Of(2500), PriceChangePercent24h: safe.Of(-1.5)}}

	const width = 40
	out := Ticker(s, coins, 0, width)
	if got := utf8.RuneCountInString(stripANSI(out)); got != width {
		t.Errorf("ticker width = %d, want %d", got, width)
	}
	if !strings.HasPrefix(stripANSI(out), "BTC $45,231.50") {
		t.Errorf("ticker should start at the first quote: %q", stripANSI(out))
	}

	cycle := utf8.RuneCountInString("BTC $45,231.50 ▲ +3.21%" + tickerSeparator + "ETH $2,500.00 ▼ -1.50%" + tickerSeparator)
	if stripANSI(Ticker(s, coins, cycle, width)) != stripANSI(out) {
		t.Error("offset should wrap after one full pass")
	}
	if stripANSI(Ticker(s, coins, -1, 10)) != stripANSI(Ticker(s, coins, cycle-1, 10)) {
		t.Error("negative offsets should wrap")
	}
	if stripANSI(Ticker(s, coins, 1, width)) == stripANSI(out) {
		t.Error("advancing the offset should scroll the strip")
	}
	if Ticker(s, nil, 0, 10) != "" {
		t.Error("empty ticker should render nothing")
	}
}

func TestChart(t *testing.T) {
	s := testStyles()
	points := make([]api.PricePoint, 50)
	for i := range points {
		points[i] = api.PricePoint{Time: time.Unix(int64(i), 0), Price: float64(100 + i)}
	}
	out := Chart(s, points, 20, 4)
	lines := strings.Split(stripANSI(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 4 rows + caption, got %d", len(lines))
	}
	for _, line := range lines[:4] {
		if n := utf8.RuneCountInString(line); n != 20 {
			t.Errorf("row width = %d, want 20", n)
		}
	}
	if !strings.Contains(lines[4], "Low $100.00") || !strings.Contains(lines[4], "High $149.00") {
		t.Errorf("caption = %q", lines[4])
	}
	if got := Chart(s, points[:1], 20, 4); !strings.Contains(got, "No chart data") {
		t.Errorf("single point should not chart: %q", got)
	}
}

func TestChartKeepsSpikesWhenDownsampling(t *testing.T) {
	s := testStyles()
	points := make([]api.PricePoint, 100)
	for i := range points {
		points[i] = api.PricePoint{Time: time.Unix(int64(i), 0), Price: 100}
	}
	points[37].Price = 5000
	points[81].Price = 20

	lines := strings.Split(stripANSI(Chart(s, points, 10, 3)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 3 rows + caption, got %d", len(lines))
	}
	if !strings.Contains(lines[3], "Low $20.00") || !strings.Contains(lines[3], "High $5,000.00") {
		t.Errorf("caption = %q", lines[3])
	}
	if !strings.ContainsRune(lines[0], '█') {
		t.Errorf("spike should reach the top row: %q", lines[0])
	}
	if n := utf8.RuneCountInString(lines[0]); n != 10 {
		t.Errorf("row width = %d, want 10", n)
	}
}

func TestResampleBuckets(t *testing.T) {
	values := []float64{1, 1, 9, 1, 1, 1, 1, 0, 1, 1}
	got := resample(values, 5)
	want := []float64{1, 9, 1, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("resample len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resample = %v, want %v", got, want)
			break
		}
	}
	if short := resample(values[:3], 5); len(short) != 3 {
		t.Errorf("short series should pass through, got %v", short)
	}
}

func TestErrorBannerHasRetryHint(t *testing.T) {
	out := ErrorBanner(testStyles(), "Failed to load market data")
	if !strings.Contains(out, "Failed to load market data") || !strings.Contains(out, "press r to retry") {
		t.Errorf("banner = %q", out)
	}
}

func TestNewsItem(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	a := api.Article{
		Title:    "Bitcoin breaks resistance",
		Summary:  "Analysts expect volatility.",
		Source:   "Reuters",
		Datetime: api.Timestamp{Time: now.Add(-3 * time.Hour)},
	}
	out := stripANSI(NewsItem(testStyles(), a, now, true, true, 80))
	for _, want := range []string{"★", "▸ Bitcoin breaks resistance", "Analysts expect volatility.", "Reuters • 3h ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("news item missing %q:\n%s", want, out)
		}
	}

	a.Datetime = api.ParseTimestamp("not a date")
	if out := NewsItem(testStyles(), a, now, false, false, 80); !strings.Contains(out, "Recent") {
		t.Errorf("unparsable date should read Recent:\n%s", out)
	}
}

func TestRateTable(t *testing.T) {
	table := &api.RateTable{Base: "USD", Rates: map[string]safe.Float{"EUR": safe.Of(0.92), "GBP": safe.Of(0.79), "JPY": safe.Of(151.2)}}
	out := stripANSI(RateTable(testStyles(), table, 3, 2))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "EUR") || !strings.Contains(out, "0.920000") || strings.Contains(out, "USD") {
		t.Errorf("unexpected table:\n%s", out)
	}
}

func TestHeaderMarksActivePage(t *testing.T) {
	items := []NavItem{{"1", "Dashboard"}, {"2", "Crypto"}}
	out := Header(testStyles(), items, 1, true, 120)
	if !strings.Contains(out, "2 Crypto") || !strings.Contains(out, "dark") {
		t.Errorf("header = %q", out)
	}
	if w := lipgloss.Width(out); w != 120 {
		t.Errorf("header width = %d, want 120", w)
	}
}

// stripANSI drops escape sequences so tests work whether or not the
// renderer emits colour.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
