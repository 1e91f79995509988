package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.igdb.com/v4"

// Sentinel errors for IGDB API responses.
var (
	// ErrAuth indicates credential acquisition or refresh failed.
	ErrAuth = errors.New("igdb: authentication failed")

	// ErrRateLimited indicates the retry budget was exhausted on 429s.
	ErrRateLimited = errors.New("igdb: rate limited: too many requests")
)

const (
	defaultRetryAttempts  = 4
	defaultRetryBaseDelay = time.Second
)

// Client is an IGDB API v4 client authenticating via the Twitch OAuth
// client-credentials grant.
type Client struct {
	baseURL    string
	httpClient *http.Client
	broker     *tokenBroker
	log        *slog.Logger

	retryAttempts  int
	retryBaseDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTokenURL sets a custom identity endpoint URL (for testing).
func WithTokenURL(url string) Option {
	return func(c *Client) {
		c.broker.tokenURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.broker.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "igdb")
	}
}

// WithRetry overrides the request retry budget and base delay.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryBaseDelay = baseDelay
	}
}

// New creates a new IGDB client.
func New(clientID, clientSecret string, opts ...Option) *Client {
	hc := &http.Client{Timeout: 30 * time.Second}
	c := &Client{
		baseURL:        defaultBaseURL,
		httpClient:     hc,
		broker:         newTokenBroker(clientID, clientSecret, hc),
		retryAttempts:  defaultRetryAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Games executes one query against the /games endpoint.
// 429 and 5xx responses are retried with exponential backoff and jitter up
// to the retry budget; 401 clears the token and re-authenticates once.
func (c *Client) Games(ctx context.Context, q Query) ([]Game, error) {
	start := time.Now()

	body, err := c.do(ctx, "/games", q.Body())
	if err != nil {
		return nil, err
	}

	var games []Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("decode games response: %w", err)
	}

	if c.log != nil {
		c.log.Debug("fetched games page", "count", len(games), "offset", q.Offset, "duration_ms", time.Since(start).Milliseconds())
	}

	return games, nil
}

func (c *Client) do(ctx context.Context, endpoint, query string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		body, retryable, err := c.doOnce(ctx, endpoint, query)
		if err == nil {
			return body, nil
		}
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err

		if attempt < c.retryAttempts {
			delay := backoffDelay(c.retryBaseDelay, attempt)
			if c.log != nil {
				c.log.Debug("retrying request", "endpoint", endpoint, "attempt", attempt, "delay_ms", delay.Milliseconds())
			}
			if err := sleepContext(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retryAttempts, lastErr)
}

// doOnce performs a single authenticated request. The bool result reports
// whether the error is worth retrying.
func (c *Client) doOnce(ctx context.Context, endpoint, query string) ([]byte, bool, error) {
	token, err := c.broker.acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.request(ctx, endpoint, query, token)
	if err != nil {
		return nil, true, err
	}

	// Expired token: re-authenticate and retry the request once.
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()

		if c.log != nil {
			c.log.Debug("token rejected, refreshing")
		}
		c.broker.invalidate()

		token, err = c.broker.acquire(ctx)
		if err != nil {
			return nil, false, err
		}
		resp, err = c.request(ctx, endpoint, query, token)
		if err != nil {
			return nil, true, err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("IGDB API error: %s", resp.Status)
	default:
		return nil, false, fmt.Errorf("IGDB API error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	return body, false, nil
}

func (c *Client) request(ctx context.Context, endpoint, query, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Client-ID", c.broker.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}
