package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultTokenURL = "https://id.twitch.tv/oauth2/token"

// Token refresh happens this long before the reported expiry.
const tokenSafetyMargin = 60 * time.Second

const (
	tokenRetryAttempts  = 3
	tokenRetryBaseDelay = 500 * time.Millisecond
)

// tokenBroker acquires and refreshes the Twitch OAuth access token used by
// the IGDB API. Concurrent callers hitting an expired token collapse into a
// single refresh.
type tokenBroker struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	now          func() time.Time

	mu      sync.RWMutex
	token   string
	expires time.Time

	flight singleflight.Group
}

func newTokenBroker(clientID, clientSecret string, hc *http.Client) *tokenBroker {
	return &tokenBroker{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     defaultTokenURL,
		httpClient:   hc,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// acquire returns a valid access token, refreshing it when missing or within
// the safety margin of expiry.
func (b *tokenBroker) acquire(ctx context.Context) (string, error) {
	if tok, ok := b.cached(); ok {
		return tok, nil
	}

	v, err, _ := b.flight.Do("token", func() (any, error) {
		// Another caller may have refreshed while we waited on the flight.
		if tok, ok := b.cached(); ok {
			return tok, nil
		}
		return b.refresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *tokenBroker) cached() (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.token == "" || b.now().Add(tokenSafetyMargin).After(b.expires) {
		return "", false
	}
	return b.token, true
}

// invalidate drops the cached token so the next acquire refreshes.
func (b *tokenBroker) invalidate() {
	b.mu.Lock()
	b.token = ""
	b.mu.Unlock()
}

func (b *tokenBroker) refresh(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= tokenRetryAttempts; attempt++ {
		tok, expiresIn, err := b.requestToken(ctx)
		if err == nil {
			b.mu.Lock()
			b.token = tok
			b.expires = b.now().Add(time.Duration(expiresIn) * time.Second)
			b.mu.Unlock()
			return tok, nil
		}
		if errors.Is(err, ErrAuth) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err
		if attempt < tokenRetryAttempts {
			if err := sleepContext(ctx, backoffDelay(tokenRetryBaseDelay, attempt)); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAuth, lastErr)
}

func (b *tokenBroker) requestToken(ctx context.Context) (string, int64, error) {
	form := url.Values{
		"client_id":     {b.clientID},
		"client_secret": {b.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.tokenURL+"?"+form.Encode(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("create token request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("execute token request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", 0, fmt.Errorf("%w: identity endpoint rejected credentials (%s)", ErrAuth, resp.Status)
	default:
		return "", 0, fmt.Errorf("token endpoint: %s", resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", 0, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response missing access_token", ErrAuth)
	}
	return tr.AccessToken, tr.ExpiresIn, nil
}

// backoffDelay returns an exponential delay with jitter for the given
// 1-based attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
