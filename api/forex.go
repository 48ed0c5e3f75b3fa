package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// ForexService covers the /forex endpoints.
type ForexService struct {
	client *Client
}

// Rates returns the full rate table. Codes are upper-cased and rates that
// are not strictly positive are dropped.
func (s *ForexService) Rates(ctx context.Context) (*RateTable, error) {
	var table RateTable
	if err := s.client.get(ctx, "forex.rates", "/forex/rates", nil, &table); err != nil {
		return nil, err
	}
	table.sanitize()
	return &table, nil
}

// Convert asks the backend to convert amount from one currency to another.
// The backend is the authority on the rate; nothing is computed locally.
func (s *ForexService) Convert(ctx context.Context, from, to string, amount float64) (*Conversion, error) {
	q := url.Values{}
	q.Set("from", strings.ToUpper(strings.TrimSpace(from)))
	q.Set("to", strings.ToUpper(strings.TrimSpace(to)))
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))

	var conv Conversion
	if err := s.client.get(ctx, "forex.convert", "/forex/convert", q, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// MajorPairs returns the curated pairs snapshot.
func (s *ForexService) MajorPairs(ctx context.Context) ([]MajorPair, error) {
	var pairs []MajorPair
	if err := s.client.get(ctx, "forex.pairs", "/forex/major-pairs", nil, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}
