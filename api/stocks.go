package api

import (
	"context"
	"strings"
)

// StocksService covers the /stocks endpoints.
type StocksService struct {
	client *Client
}

// NormalizeSymbol trims and upper-cases a ticker the way the backend expects.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Quote returns the real-time quote for symbol.
func (s *StocksService) Quote(ctx context.Context, symbol string) (*StockQuote, error) {
	var quote StockQuote
	if err := s.client.get(ctx, "stocks.quote", "/stocks/quote/"+segment(symbol), nil, &quote); err != nil {
		return nil, err
	}
	quote.Normalize()
	return &quote, nil
}

// Profile returns the company profile for symbol.
func (s *StocksService) Profile(ctx context.Context, symbol string) (*StockProfile, error) {
	var profile StockProfile
	if err := s.client.get(ctx, "stocks.profile", "/stocks/profile/"+segment(symbol), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// History returns daily bars for symbol, oldest first as sent.
func (s *StocksService) History(ctx context.Context, symbol string) ([]StockBar, error) {
	var bars []StockBar
	if err := s.client.get(ctx, "stocks.history", "/stocks/history/"+segment(symbol), nil, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// MajorIndices returns the indices snapshot.
func (s *StocksService) MajorIndices(ctx context.Context) ([]MarketIndex, error) {
	var indices []MarketIndex
	if err := s.client.get(ctx, "stocks.indices", "/stocks/major-indices", nil, &indices); err != nil {
		return nil, err
	}
	return indices, nil
}

// ClosePoints turns bars into a chart series, skipping bars without a date or close.
func ClosePoints(bars []StockBar) []PricePoint {
	points := make([]PricePoint, 0, len(bars))
	for _, b := range bars {
		if !b.Date.Valid() || !b.Close.Valid {
			continue
		}
		points = append(points, PricePoint{Time: b.Date.Time, Price: b.Close.Value})
	}
	return points
}
