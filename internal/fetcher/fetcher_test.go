package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MinIntervalMs:    1,
		MaxRetries:       2,
		InitialBackoffMs: 1,
		MaxBackoffMs:     10,
	}
}

func TestGetBytesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Casalista-PurchaseService/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("<nfeProc/>"))
	}))
	defer srv.Close()

	client := NewClient(fastConfig())
	data, err := client.GetBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<nfeProc/>", string(data))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewClient(fastConfig())
	data, err := client.GetBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(fastConfig())
	_, err := client.GetBytes(context.Background(), srv.URL)
	require.Error(t, err)

	var retryErr *FetchRetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, http.StatusNotFound, retryErr.LastStatus)
	assert.Equal(t, 1, retryErr.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := fastConfig()
	client := NewClient(cfg)
	_, err := client.GetBytes(context.Background(), srv.URL)
	require.Error(t, err)

	var retryErr *FetchRetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, cfg.MaxRetries+1, retryErr.Attempts)
	assert.Equal(t, int32(cfg.MaxRetries+1), calls.Load())
}

func TestSerializesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MinIntervalMs = 100
	client := NewClient(cfg)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.GetBytes(ctx, srv.URL)
		require.NoError(t, err)
	}
	// Burst 1: the second and third request each wait out the interval.
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := fastConfig()
	cfg.MinIntervalMs = 60000
	client := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// First request consumes the burst token, second blocks on the limiter.
	_, err := client.GetBytes(ctx, srv.URL)
	require.NoError(t, err)
	_, err = client.GetBytes(ctx, srv.URL)
	require.Error(t, err)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	cfg := Config{InitialBackoffMs: 100, MaxBackoffMs: 500, MaxRetries: 5}

	b0 := calculateBackoff(0, cfg)
	assert.GreaterOrEqual(t, b0, 100*time.Millisecond)
	assert.Less(t, b0, 126*time.Millisecond)

	b1 := calculateBackoff(1, cfg)
	assert.GreaterOrEqual(t, b1, 200*time.Millisecond)

	// Attempt 4 would be 1600ms uncapped; with jitter the cap still holds.
	b4 := calculateBackoff(4, cfg)
	assert.LessOrEqual(t, b4, 625*time.Millisecond)
}

func TestRateLimitBackoffHonorsRetryAfter(t *testing.T) {
	cfg := DefaultConfig()
	b := calculateRateLimitBackoff(0, cfg, "7")
	assert.GreaterOrEqual(t, b, 7*time.Second)
	assert.Less(t, b, 8*time.Second+time.Millisecond)
}

func TestComputeSha256(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		ComputeSha256(nil))
}
