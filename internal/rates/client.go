package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrUnexpectedStatus = errors.New("unexpected status from rates provider")

// Quote is a set of rates for one base currency.
type Quote struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Client fetches the latest exchange rates from an HTTP provider.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// ClientOption customizes a Client.
type ClientOption func(*retryablehttp.Client)

// WithRetries sets the maximum retry count and the wait bounds between attempts.
func WithRetries(max int, waitMin, waitMax time.Duration) ClientOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = max
		c.RetryWaitMin = waitMin
		c.RetryWaitMax = waitMax
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = timeout
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = leveledLogger{log.Logger.With().Str("component", "rates-client").Logger()}
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: rc}
}

// Latest returns the current rates quoted against base.
func (c *Client) Latest(ctx context.Context, base string) (Quote, error) {
	endpoint := c.baseURL + "/latest?" + url.Values{"base": {base}}.Encode()
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	var q Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return Quote{}, fmt.Errorf("decode rates: %w", err)
	}
	if q.Base == "" {
		q.Base = base
	}
	return q, nil
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.l.Error().Fields(kv).Msg(msg) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.l.Info().Fields(kv).Msg(msg) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.l.Debug().Fields(kv).Msg(msg) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.l.Warn().Fields(kv).Msg(msg) }
