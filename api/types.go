package api

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketdash/safe"
)

// Coin is a crypto market quote as returned by the top-list endpoint.
type Coin struct {
	ID                    string     `json:"id"`
	Symbol                string     `json:"symbol"`
	Name                  string     `json:"name"`
	Image                 string     `json:"image"`
	CurrentPrice          safe.Float `json:"current_price"`
	PriceChange24h        safe.Float `json:"price_change_24h"`
	PriceChangePercent24h safe.Float `json:"price_change_percentage_24h"`
	High24h               safe.Float `json:"high_24h"`
	Low24h                safe.Float `json:"low_24h"`
	MarketCap             safe.Float `json:"market_cap"`
	MarketCapRank         safe.Float `json:"market_cap_rank"`
	TotalVolume           safe.Float `json:"total_volume"`
}

// Normalize makes the absolute and percent change agree in sign.
func (c *Coin) Normalize() {
	c.PriceChange24h = reconcile(c.PriceChange24h, c.PriceChangePercent24h, c.CurrentPrice)
}

// CoinDetail is the single-coin endpoint: the quote plus descriptive fields.
type CoinDetail struct {
	Coin
	Description       Text       `json:"description"`
	Homepage          string     `json:"homepage"`
	CirculatingSupply safe.Float `json:"circulating_supply"`
	TotalSupply       safe.Float `json:"total_supply"`
	MaxSupply         safe.Float `json:"max_supply"`
	ATH               safe.Float `json:"ath"`
	LastUpdated       Timestamp  `json:"last_updated"`
}

// PricePoint is one sample of a price series.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// SearchResult is a coin match from the search endpoint.
type SearchResult struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Symbol        string     `json:"symbol"`
	MarketCapRank safe.Float `json:"market_cap_rank"`
	Thumb         string     `json:"thumb"`
}

// StockQuote is a real-time stock quote (c/d/dp/h/l/o/pc field names).
type StockQuote struct {
	Current       safe.Float `json:"c"`
	Change        safe.Float `json:"d"`
	PercentChange safe.Float `json:"dp"`
	High          safe.Float `json:"h"`
	Low           safe.Float `json:"l"`
	Open          safe.Float `json:"o"`
	PreviousClose safe.Float `json:"pc"`
	Time          Timestamp  `json:"t"`
}

// Normalize makes the absolute and percent change agree in sign.
func (q *StockQuote) Normalize() {
	q.Change = reconcile(q.Change, q.PercentChange, q.Current)
}

// StockProfile describes the company behind a symbol.
type StockProfile struct {
	Name      string     `json:"name"`
	Ticker    string     `json:"ticker"`
	Exchange  string     `json:"exchange"`
	Industry  string     `json:"finnhubIndustry"`
	MarketCap safe.Float `json:"marketCapitalization"`
	WebURL    string     `json:"weburl"`
	Logo      string     `json:"logo"`
	Country   string     `json:"country"`
	Currency  string     `json:"currency"`
	IPO       string     `json:"ipo"`
}

// StockBar is one daily bar of a symbol's history.
type StockBar struct {
	Date   Timestamp  `json:"date"`
	Open   safe.Float `json:"open"`
	High   safe.Float `json:"high"`
	Low    safe.Float `json:"low"`
	Close  safe.Float `json:"close"`
	Volume safe.Float `json:"volume"`
}

// MarketIndex is a snapshot of a major stock index.
type MarketIndex struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Current       safe.Float `json:"current"`
	Change        safe.Float `json:"change"`
	ChangePercent safe.Float `json:"change_percent"`
}

// RateTable maps currency codes to their rate against Base.
type RateTable struct {
	Base  string                `json:"base"`
	Date  string                `json:"date"`
	Rates map[string]safe.Float `json:"rates"`
}

// Rate returns the rate for code. The base currency is always 1 whether or
// not the mapping lists it.
func (t *RateTable) Rate(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code != "" && code == t.Base {
		return 1, true
	}
	r, ok := t.Rates[code]
	if !ok || !r.Positive() {
		return 0, false
	}
	return r.Value, true
}

// Currencies lists every code in the table, base included, sorted.
func (t *RateTable) Currencies() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool, len(t.Rates)+1)
	var codes []string
	if t.Base != "" {
		seen[t.Base] = true
		codes = append(codes, t.Base)
	}
	for code := range t.Rates {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// sanitize upper-cases codes and drops rates that are not strictly positive.
func (t *RateTable) sanitize() {
	t.Base = strings.ToUpper(strings.TrimSpace(t.Base))
	clean := make(map[string]safe.Float, len(t.Rates))
	for code, r := range t.Rates {
		if !r.Positive() {
			continue
		}
		clean[strings.ToUpper(strings.TrimSpace(code))] = r
	}
	t.Rates = clean
}

// Conversion is the backend's answer to a convert request.
type Conversion struct {
	From            string     `json:"from"`
	To              string     `json:"to"`
	Amount          safe.Float `json:"amount"`
	ConvertedAmount safe.Float `json:"converted_amount"`
	Rate            safe.Float `json:"rate"`
}

// MajorPair is one entry of the curated forex pairs snapshot.
type MajorPair struct {
	Pair          string     `json:"pair"`
	Rate          safe.Float `json:"rate"`
	Change        safe.Float `json:"change"`
	ChangePercent safe.Float `json:"change_percent"`
}

// Article is a news item.
type Article struct {
	ID       FlexString `json:"id"`
	Title    string     `json:"title"`
	Headline string     `json:"headline"`
	Summary  string     `json:"summary"`
	Image    string     `json:"image"`
	Source   string     `json:"source"`
	Datetime Timestamp  `json:"datetime"`
	URL      string     `json:"url"`
	Category string     `json:"category"`
}

// reconcile returns change with its sign aligned to pct. When change is
// missing it is derived from price and pct.
func reconcile(change, pct, price safe.Float) safe.Float {
	if !pct.Valid {
		return change
	}
	if !change.Valid {
		denom := 1 + pct.Value/100
		if price.Positive() && denom > 0 {
			return safe.Of(price.Value - price.Value/denom)
		}
		return change
	}
	if change.Value != 0 && pct.Value != 0 && (change.Value > 0) != (pct.Value > 0) {
		return safe.Of(-change.Value)
	}
	return change
}

// FlexString decodes a JSON string or number into a string.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(string(data))
	return nil
}

// Text decodes either a plain string or a localized object such as
// {"en": "..."}; English wins, otherwise any non-empty entry.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = ""
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Text(v)
		return nil
	}
	var localized map[string]string
	if err := json.Unmarshal(data, &localized); err != nil {
		return nil
	}
	if en := localized["en"]; en != "" {
		*t = Text(en)
		return nil
	}
	keys := make([]string, 0, len(localized))
	for k := range localized {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if localized[k] != "" {
			*t = Text(localized[k])
			return nil
		}
	}
	return nil
}

// Timestamp is a publish or sample time that tolerates the formats seen on
// the wire: unix seconds, unix milliseconds, RFC 3339, or a plain date. An
// unrecognised value leaves Time zero and keeps the text in Raw.
type Timestamp struct {
	Time time.Time
	Raw  string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses s with the same rules as the JSON decoder.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	ts := Timestamp{Raw: s}
	if s == "" {
		return ts
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		ts.Time = fromUnix(n)
		return ts
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return ts
		}
	}
	return ts
}

// Valid reports whether the timestamp was understood.
func (t Timestamp) Valid() bool { return !t.Time.IsZero() }

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*t = Timestamp{Raw: string(data)}
			return nil
		}
		*t = ParseTimestamp(s)
		return nil
	}
	*t = ParseTimestamp(string(data))
	return nil
}

func fromUnix(n float64) time.Time {
	if !safe.Finite(n) || n <= 0 {
		return time.Time{}
	}
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	return time.Unix(int64(n), 0).UTC()
}
