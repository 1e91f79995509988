package igdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBroker(t *testing.T, tokenURL string) *tokenBroker {
	t.Helper()
	b := newTokenBroker("client-id", "client-secret", &http.Client{Timeout: 5 * time.Second})
	b.tokenURL = tokenURL
	return b
}

func TestTokenBroker_SingleFlight(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// Slow response so concurrent callers pile up on the flight.
		time.Sleep(50 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok-shared", ExpiresIn: 3600})
	}))
	defer server.Close()

	broker := newBroker(t, server.URL)

	const n = 16
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = broker.acquire(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", tokens[i])
	}
	assert.Equal(t, int64(1), calls.Load(), "concurrent callers must share one refresh")
}

func TestTokenBroker_CachesUntilSafetyMargin(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	}))
	defer server.Close()

	broker := newBroker(t, server.URL)

	now := time.Unix(1700000000, 0)
	broker.now = func() time.Time { return now }

	_, err := broker.acquire(context.Background())
	require.NoError(t, err)

	// Well before expiry: cached.
	now = now.Add(30 * time.Minute)
	_, err = broker.acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	// Inside the safety margin: refreshed.
	now = now.Add(30*time.Minute - 30*time.Second)
	_, err = broker.acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestTokenBroker_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok-after-retry", ExpiresIn: 3600})
	}))
	defer server.Close()

	broker := newBroker(t, server.URL)

	tok, err := broker.acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-after-retry", tok)
	assert.Equal(t, int64(3), calls.Load())
}

func TestTokenBroker_RejectedCredentialsFailFast(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	broker := newBroker(t, server.URL)

	_, err := broker.acquire(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, int64(1), calls.Load(), "rejected credentials must not be retried")
}
