// Package yahoo fetches daily price history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/stocksim/stocksim/internal/domain"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"
)

// DefaultHosts are tried in order on every attempt.
var DefaultHosts = []string{
	"https://query1.finance.yahoo.com",
	"https://query2.finance.yahoo.com",
}

var defaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// Client is a Yahoo Finance chart API client. It implements
// domain.PriceSource and domain.QuoteSource.
type Client struct {
	hosts      []string
	httpClient *http.Client
	limiter    *rate.Limiter
	backoffs   []time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHosts replaces the base URLs tried on each attempt.
func WithHosts(hosts ...string) ClientOption {
	return func(c *Client) {
		if len(hosts) > 0 {
			c.hosts = hosts
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithBackoffs sets the pauses between full passes over the hosts.
func WithBackoffs(backoffs ...time.Duration) ClientOption {
	return func(c *Client) {
		c.backoffs = backoffs
	}
}

// NewClient creates a new Yahoo chart client.
func NewClient(log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		hosts:      DefaultHosts,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		backoffs:   defaultBackoffs,
		now:        time.Now,
		log:        log.With().Str("client", "yahoo").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchHistory returns ascending daily closes for ticker over period.
// Unknown or delisted symbols yield an empty slice and no error.
func (c *Client) FetchHistory(ctx context.Context, ticker, period string) ([]domain.PricePoint, error) {
	params, err := periodParams(period, c.now())
	if err != nil {
		return nil, err
	}
	params.Set("interval", "1d")
	params.Set("events", "div,splits")

	resp, err := c.chart(ctx, ticker, params)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Chart.Result) == 0 {
		return []domain.PricePoint{}, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []domain.PricePoint{}, nil
	}
	closes := result.Indicators.Quote[0].Close

	points := make([]domain.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		v := *closes[i]
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		points = append(points, domain.PricePoint{Date: time.Unix(ts, 0).UTC(), Close: v})
	}

	c.log.Debug().Str("ticker", ticker).Str("period", period).Int("points", len(points)).Msg("Fetched price history")
	return points, nil
}

// FetchQuotes returns the latest regular-market price per ticker. Tickers the
// API does not know are left out of the map; any other failure aborts.
func (c *Client) FetchQuotes(ctx context.Context, tickers []string) (map[string]float64, error) {
	quotes := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		params := url.Values{}
		params.Set("range", "5d")
		params.Set("interval", "1d")

		resp, err := c.chart(ctx, ticker, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote for %s: %w", ticker, err)
		}
		if resp == nil || len(resp.Chart.Result) == 0 {
			continue
		}

		result := resp.Chart.Result[0]
		price := result.Meta.RegularMarketPrice
		if price <= 0 && len(result.Indicators.Quote) > 0 {
			closes := result.Indicators.Quote[0].Close
			for i := len(closes) - 1; i >= 0; i-- {
				if closes[i] != nil && *closes[i] > 0 {
					price = *closes[i]
					break
				}
			}
		}
		if price > 0 {
			quotes[ticker] = price
		}
	}
	return quotes, nil
}

// chart runs one chart query with host failover and backoff. A nil response
// with a nil error means the symbol is unknown.
func (c *Client) chart(ctx context.Context, ticker string, params url.Values) (*chartResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	path := "/v8/finance/chart/" + url.PathEscape(symbol)

	var lastErr error
	for attempt := 0; attempt <= len(c.backoffs); attempt++ {
		for _, host := range c.hosts {
			resp, err := c.get(ctx, host, path, symbol, params)
			if err == nil {
				return resp, nil
			}
			if errors.Is(err, errNotFound) {
				c.log.Debug().Str("ticker", symbol).Msg("Symbol not found")
				return nil, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var rlErr *RateLimitError
			if errors.As(err, &rlErr) {
				return nil, err
			}
			lastErr = err
			c.log.Debug().Err(err).Str("host", host).Str("ticker", symbol).Int("attempt", attempt).Msg("Chart request failed")
		}

		if attempt < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoffs[attempt]):
			}
		}
	}

	return nil, lastErr
}

var errNotFound = errors.New("symbol not found")

func (c *Client) get(ctx context.Context, host, path, symbol string, params url.Values) (*chartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &RateLimitError{RetryAfter: time.Second}
	}

	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimRight(host, "/"), path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", symbol))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chartResponse
	jsonErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode == http.StatusNotFound && jsonErr == nil &&
		parsed.Chart.Error != nil && strings.EqualFold(parsed.Chart.Error.Code, "Not Found") {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: preview(body), Endpoint: path}
	}
	if jsonErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w; body: %s", jsonErr, preview(body))
	}
	if parsed.Chart.Error != nil {
		if strings.EqualFold(parsed.Chart.Error.Code, "Not Found") {
			return nil, errNotFound
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: parsed.Chart.Error.Description, Endpoint: path}
	}
	return &parsed, nil
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}
