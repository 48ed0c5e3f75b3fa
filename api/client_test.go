package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder captures the request paths and queries a test server sees.
type recorder struct {
	mu       sync.Mutex
	paths    []string
	rawPaths []string
	queries  []string
	headers  []http.Header
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, req.URL.Path)
	r.rawPaths = append(r.rawPaths, req.URL.EscapedPath())
	r.queries = append(r.queries, req.URL.RawQuery)
	r.headers = append(r.headers, req.Header.Clone())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", 2*time.Second, nil), rec
}

func jsonBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestEndpointsHitExpectedPaths(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		body      string
		call      func(c *Client) error
		wantPath  string
		wantQuery string
	}{
		{
			name: "top crypto default limit",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.Crypto.Top(ctx, 0)
				return err
			},
			wantPath:  "/api/crypto/topCryptoCurrencies",
			wantQuery: "limit=50",
		},
		{
			name: "top crypto explicit limit",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.Crypto.Top(ctx, 6)
				return err
			},
			wantPath:  "/api/crypto/topCryptoCurrencies",
			wantQuery: "limit=6",
		},
		{
			name: "coin detail",
			body: `{"id":"bitcoin"}`,
			call: func(c *Client) error {
				_, err := c.Crypto.Coin(ctx, "bitcoin")
				return err
			},
			wantPath: "/api/crypto/coin/bitcoin",
		},
		{
			name: "coin history default days",
			body: `{"prices":[]}`,
			call: func(c *Client) error {
				_, err := c.Crypto.History(ctx, "bitcoin", 0)
				return err
			},
			wantPath:  "/api/crypto/coin/bitcoin/history",
			wantQuery: "days=7",
		},
		{
			name: "crypto search",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.Crypto.Search(ctx, "eth")
				return err
			},
			wantPath: "/api/crypto/search/eth",
		},
		{
			name: "stock quote",
			body: `{"c":1}`,
			call: func(c *Client) error {
				_, err := c.Stocks.Quote(ctx, "AAPL")
				return err
			},
			wantPath: "/api/stocks/quote/AAPL",
		},
		{
			name: "stock profile",
			body: `{"name":"Apple"}`,
			call: func(c *Client) error {
				_, err := c.Stocks.Profile(ctx, "AAPL")
				return err
			},
			wantPath: "/api/stocks/profile/AAPL",
		},
		{
			name: "stock history",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.Stocks.History(ctx, "AAPL")
				return err
			},
			wantPath: "/api/stocks/history/AAPL",
		},
		{
			name: "major indices",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.Stocks.MajorIndices(ctx)
				return err
			},
			wantPath: "/api/stocks/major-indices",
		},
		{
			name: "forex rates",
			body: `{"base":"USD","rates":{}}`,
			call: func(c *Client) error {
				_, err := c.Forex.Rates(ctx)
				return err
			},
			wantPath: "/api/forex/rates",
		},
		{
			name: "forex convert",
			body: `{"converted_amount":92,"rate":0.92}`,
			call: func(c *Client) error {
				_, err := c.Forex.Convert(ctx, "usd", "eur", 100)
				return err
			},
			wantPath:  "/api/forex/convert",
			wantQuery: "amount=100&from=USD&to=EUR",
		},
		{
			name: "major pairs",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.Forex.MajorPairs(ctx)
				return err
			},
			wantPath: "/api/forex/major-pairs",
		},
		{
			name: "market news",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.News.Market(ctx)
				return err
			},
			wantPath: "/api/market-news/",
		},
		{
			name: "crypto news",
			body: `[]`,
			call: func(c *Client) error {
				_, err := c.News.Crypto(ctx)
				return err
			},
			wantPath: "/api/market-news/crypto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, jsonBody(tt.body))
			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rec.paths) != 1 {
				t.Fatalf("expected 1 request, got %d", len(rec.paths))
			}
			if rec.paths[0] != tt.wantPath {
				t.Errorf("path = %q, want %q", rec.paths[0], tt.wantPath)
			}
			if rec.queries[0] != tt.wantQuery {
				t.Errorf("query = %q, want %q", rec.queries[0], tt.wantQuery)
			}
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	c, rec := newTestClient(t, jsonBody(`[]`))
	if _, err := c.Stocks.MajorIndices(context.Background()); err != nil {
		t.Fatalf("MajorIndices: %v", err)
	}
	if _, err := c.Stocks.MajorIndices(context.Background()); err != nil {
		t.Fatalf("MajorIndices: %v", err)
	}

	h := rec.headers[0]
	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q", got)
	}
	if got := h.Get("User-Agent"); got != userAgent {
		t.Errorf("User-Agent = %q", got)
	}
	first, second := rec.headers[0].Get("X-Request-ID"), rec.headers[1].Get("X-Request-ID")
	if first == "" || first == second {
		t.Errorf("request ids should be unique, got %q and %q", first, second)
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	c, rec := newTestClient(t, jsonBody(`[]`))

	if _, err := c.Crypto.Search(context.Background(), "usd coin/x"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got, want := rec.rawPaths[0], "/api/crypto/search/usd%20coin%2Fx"; got != want {
		t.Errorf("escaped path = %q, want %q", got, want)
	}
}

func TestNonSuccessStatusIsHTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"symbol not found"}`, http.StatusNotFound)
	})

	_, err := c.Stocks.Quote(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsHTTP(err) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if StatusCode(err) != http.StatusNotFound {
		t.Errorf("status = %d, want 404", StatusCode(err))
	}
	if !strings.Contains(err.Error(), "API error 404") {
		t.Errorf("message %q should mention the status", err.Error())
	}
	if !strings.Contains(err.Error(), "symbol not found") {
		t.Errorf("message %q should carry the body", err.Error())
	}
}

func TestMalformedBodyIsParseError(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`<html>oops</html>`))

	_, err := c.Crypto.Top(context.Background(), 10)
	if !IsParse(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSlowServerIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond, nil)
	_, err := c.Forex.Rates(context.Background())
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.News.Market(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestCanceledContextPassesThrough(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`[]`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Crypto.Top(ctx, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if IsNetwork(err) || IsTimeout(err) {
		t.Errorf("cancellation should not be classified, got %v", err)
	}
}

func TestTopNormalizesChangeSign(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`[
		{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":45231.5,
		 "price_change_24h":1406.2,"price_change_percentage_24h":-3.21,"market_cap":890000000000}
	]`))

	coins, err := c.Crypto.Top(context.Background(), 1)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(coins) != 1 {
		t.Fatalf("expected 1 coin, got %d", len(coins))
	}
	if coins[0].PriceChange24h.Value >= 0 {
		t.Errorf("absolute change should follow the percent sign, got %v", coins[0].PriceChange24h.Value)
	}
}

func TestHistoryDecodesPrices(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`{"prices":[[1700000000000,100.5],[null,3],[1700003600000,"101.25"],[1]]}`))

	points, err := c.Crypto.History(context.Background(), "bitcoin", 7)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Price != 100.5 || points[1].Price != 101.25 {
		t.Errorf("unexpected prices: %+v", points)
	}
	if !points[0].Time.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("time = %v", points[0].Time)
	}
}

func TestSearchAcceptsEnvelope(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`{"coins":[{"id":"ethereum","name":"Ethereum","symbol":"ETH","market_cap_rank":2}]}`))

	results, err := c.Crypto.Search(context.Background(), "eth")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "ethereum" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestSearchRejectsUnknownShape(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`{"items":[]}`))

	if _, err := c.Crypto.Search(context.Background(), "eth"); !IsParse(err) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNewsTitleFallsBackToHeadline(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`[
		{"id":1,"headline":"Fed holds rates","source":"Reuters","datetime":1700000000,"url":"https://example.com/a"},
		{"id":"b","title":"ETF inflows","headline":"ignored"}
	]`))

	articles, err := c.News.Crypto(context.Background())
	if err != nil {
		t.Fatalf("Crypto news: %v", err)
	}
	if articles[0].Title != "Fed holds rates" {
		t.Errorf("title = %q", articles[0].Title)
	}
	if articles[0].ID != "1" {
		t.Errorf("numeric id should decode, got %q", articles[0].ID)
	}
	if articles[1].Title != "ETF inflows" {
		t.Errorf("title = %q", articles[1].Title)
	}
	if !articles[0].Datetime.Valid() {
		t.Error("unix seconds should parse")
	}
}

func TestRatesSanitized(t *testing.T) {
	c, _ := newTestClient(t, jsonBody(`{"base":"usd","date":"2024-03-15","rates":{"eur":0.92,"GBP":"0.79","BAD":0,"NEG":-1,"NUL":null}}`))

	table, err := c.Forex.Rates(context.Background())
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	want := []string{"EUR", "GBP", "USD"}
	got := table.Currencies()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("currencies = %v, want %v", got, want)
	}
	if r, ok := table.Rate("usd"); !ok || r != 1 {
		t.Errorf("base rate = %v, %v", r, ok)
	}
}
