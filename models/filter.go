package models

import (
	"strings"

	"marketdash/api"
	"marketdash/safe"
)

// trendingThreshold is the 24h percent change above which a coin counts
// as trending.
const trendingThreshold = 10.0

// FilterCoins keeps coins whose name or symbol contains query, ignoring
// case. An empty query returns coins unchanged. Order is preserved.
func FilterCoins(coins []api.Coin, query string) []api.Coin {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return coins
	}
	out := make([]api.Coin, 0, len(coins))
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterArticles keeps articles whose title, summary or source contains
// query, ignoring case.
func FilterArticles(articles []api.Article, query string) []api.Article {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return articles
	}
	out := make([]api.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Summary), q) ||
			strings.Contains(strings.ToLower(a.Source), q) {
			out = append(out, a)
		}
	}
	return out
}

// Stats summarises a coin list for the crypto page.
type Stats struct {
	TotalMarketCap float64
	TotalVolume    float64
	Active         int
	Trending       int
}

// MarketStats totals market cap and volume, skipping missing values, and
// counts coins up more than 10% in 24h.
func MarketStats(coins []api.Coin) Stats {
	st := Stats{Active: len(coins)}
	caps := make([]safe.Float, 0, len(coins))
	vols := make([]safe.Float, 0, len(coins))
	for _, c := range coins {
		caps = append(caps, c.MarketCap)
		vols = append(vols, c.TotalVolume)
		if c.PriceChangePercent24h.Or(0) > trendingThreshold {
			st.Trending++
		}
	}
	st.TotalMarketCap = safe.Sum(caps...)
	st.TotalVolume = safe.Sum(vols...)
	return st
}

// onlyFavorites keeps the coins whose id is in favs, in list order.
func onlyFavorites(coins []api.Coin, favs interface{ Has(string) bool }) []api.Coin {
	out := make([]api.Coin, 0, len(coins))
	for _, c := range coins {
		if favs.Has(c.ID) {
			out = append(out, c)
		}
	}
	return out
}
