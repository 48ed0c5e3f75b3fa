package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"marketdash/safe"
)

const (
	defaultTopLimit    = 50
	defaultHistoryDays = 7
)

// CryptoService covers the /crypto endpoints.
type CryptoService struct {
	client *Client
}

// Top returns the top coins by market cap. limit <= 0 asks for 50.
func (s *CryptoService) Top(ctx context.Context, limit int) ([]Coin, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var coins []Coin
	if err := s.client.get(ctx, "crypto.top", "/crypto/topCryptoCurrencies", q, &coins); err != nil {
		return nil, err
	}
	for i := range coins {
		coins[i].Normalize()
	}
	return coins, nil
}

// Coin returns the detail record for a coin id such as "bitcoin".
func (s *CryptoService) Coin(ctx context.Context, id string) (*CoinDetail, error) {
	var detail CoinDetail
	if err := s.client.get(ctx, "crypto.coin", "/crypto/coin/"+segment(id), nil, &detail); err != nil {
		return nil, err
	}
	detail.Normalize()
	return &detail, nil
}

// History returns the coin's price series over the last days days.
// The backend answers {"prices": [[unix_ms, price], ...]}; samples with a
// missing time or price are dropped.
func (s *CryptoService) History(ctx context.Context, id string, days int) ([]PricePoint, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var raw struct {
		Prices [][]safe.Float `json:"prices"`
	}
	if err := s.client.get(ctx, "crypto.history", "/crypto/coin/"+segment(id)+"/history", q, &raw); err != nil {
		return nil, err
	}

	points := make([]PricePoint, 0, len(raw.Prices))
	for _, sample := range raw.Prices {
		if len(sample) < 2 || !sample[0].Valid || !sample[1].Valid {
			continue
		}
		points = append(points, PricePoint{
			Time:  time.UnixMilli(int64(sample[0].Value)).UTC(),
			Price: sample[1].Value,
		})
	}
	return points, nil
}

// Search looks coins up by name or symbol on the server. Both a bare array
// and a {"coins": [...]} envelope are accepted.
func (s *CryptoService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	const op = "crypto.search"

	body, err := s.client.getRaw(ctx, op, "/crypto/search/"+segment(query), nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []SearchResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, &Error{Kind: KindParse, Op: op, Body: snippet(body), Err: err}
		}
		return results, nil
	}

	var envelope struct {
		Coins *[]SearchResult `json:"coins"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &Error{Kind: KindParse, Op: op, Body: snippet(body), Err: err}
	}
	if envelope.Coins == nil {
		return nil, &Error{Kind: KindParse, Op: op, Body: snippet(body), Err: fmt.Errorf("missing coins field")}
	}
	return *envelope.Coins, nil
}
