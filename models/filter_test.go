package models

import (
	"testing"

	"marketdash/api"
	"marketdash/favorites"
	"marketdash/safe"
)

func sampleCoins() []api.Coin {
	return []api.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCap: safe.Of(880e9), TotalVolume: safe.Of(25e9), PriceChangePercent24h: safe.Of(2)},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCap: safe.Of(300e9), TotalVolume: safe.Of(12e9), PriceChangePercent24h: safe.Of(-1.5)},
		{ID: "bitcoin-cash", Symbol: "bch", Name: "Bitcoin Cash", PriceChangePercent24h: safe.Of(12)},
		{ID: "pepe", Symbol: "pepe", Name: "Pepe", PriceChangePercent24h: safe.Of(10)},
	}
}

func ids(coins []api.Coin) []string {
	out := make([]string, len(coins))
	for i, c := range coins {
		out[i] = c.ID
	}
	return out
}

func TestFilterCoins(t *testing.T) {
	coins := sampleCoins()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"bitcoin", "ethereum", "bitcoin-cash", "pepe"}},
		{"   ", []string{"bitcoin", "ethereum", "bitcoin-cash", "pepe"}},
		{"BIT", []string{"bitcoin", "bitcoin-cash"}},
		{"eth", []string{"ethereum"}},
		{"bch", []string{"bitcoin-cash"}},
		{"doge", []string{}},
	}
	for _, tt := range tests {
		got := ids(FilterCoins(coins, tt.query))
		if len(got) != len(tt.want) {
			t.Errorf("FilterCoins(%q) = %v, want %v", tt.query, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("FilterCoins(%q) = %v, want %v", tt.query, got, tt.want)
				break
			}
		}
	}
}

func TestFilterArticles(t *testing.T) {
	articles := []api.Article{
		{Title: "Fed holds rates", Source: "Reuters"},
		{Title: "Stocks rally", Summary: "Tech leads the FED-day bounce", Source: "Bloomberg"},
		{Title: "Oil slips", Source: "CNBC"},
	}

	if got := FilterArticles(articles, ""); len(got) != 3 {
		t.Errorf("empty query returned %d articles", len(got))
	}
	got := FilterArticles(articles, "fed")
	if len(got) != 2 || got[0].Title != "Fed holds rates" || got[1].Title != "Stocks rally" {
		t.Errorf("title/summary match = %+v", got)
	}
	if got := FilterArticles(articles, "cnbc"); len(got) != 1 || got[0].Title != "Oil slips" {
		t.Errorf("source match = %+v", got)
	}
}

func TestMarketStats(t *testing.T) {
	st := MarketStats(sampleCoins())
	if st.TotalMarketCap != 1180e9 {
		t.Errorf("TotalMarketCap = %v", st.TotalMarketCap)
	}
	if st.TotalVolume != 37e9 {
		t.Errorf("TotalVolume = %v", st.TotalVolume)
	}
	if st.Active != 4 {
		t.Errorf("Active = %d", st.Active)
	}
	// 10% exactly is not trending.
	if st.Trending != 1 {
		t.Errorf("Trending = %d", st.Trending)
	}

	if empty := MarketStats(nil); empty != (Stats{}) {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestOnlyFavorites(t *testing.T) {
	favs := favorites.NewSet("pepe", "bitcoin")
	got := ids(onlyFavorites(sampleCoins(), favs))
	if len(got) != 2 || got[0] != "bitcoin" || got[1] != "pepe" {
		t.Errorf("onlyFavorites = %v", got)
	}
}
