package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second

	userAgent    = "marketdash/1.0"
	maxBodyBytes = 8 << 20
	snippetBytes = 512
)

// Client talks to the market backend. Operations are grouped by resource:
// Crypto, Stocks, Forex and News. The client never retries and never caches.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string

	logger *zap.Logger

	Crypto *CryptoService
	Stocks *StocksService
	Forex  *ForexService
	News   *NewsService
}

// NewClient creates a client for baseURL with a client-wide timeout.
// A zero timeout means DefaultTimeout; a nil logger disables logging.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return newClient(&http.Client{Timeout: timeout}, baseURL, logger)
}

func newClient(httpClient *http.Client, baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
	c.Crypto = &CryptoService{client: c}
	c.Stocks = &StocksService{client: c}
	c.Forex = &ForexService{client: c}
	c.News = &NewsService{client: c}
	return c
}

// get issues a GET for path (already escaped) and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	body, err := c.getRaw(ctx, op, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindParse, Op: op, Body: snippet(body), Err: err}
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, classify(ctx, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTP, Op: op, Status: resp.StatusCode, Body: snippet(body)}
	}
	if err != nil {
		return nil, classify(ctx, op, err)
	}
	return body, nil
}

// classify maps a transport error onto the error taxonomy. Caller
// cancellation is passed through untouched.
func classify(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetBytes {
		s = s[:snippetBytes] + "…"
	}
	return s
}

// segment escapes a single path segment supplied by the user.
func segment(s string) string {
	return url.PathEscape(strings.TrimSpace(s))
}
