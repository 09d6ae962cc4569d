package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/mubas-somase/voting-backend/tests/fixtures"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return false, 0, errors.New("redis: connection refused")
}

func TestMemoryLimiter(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }

	for range 3 {
		ok, _, err := l.Allow(t.Context(), "k", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, retry, err := l.Allow(t.Context(), "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	ok, _, _ = l.Allow(t.Context(), "other", 3, time.Minute)
	assert.True(t, ok, "keys are limited separately")

	now = now.Add(time.Minute + time.Second)
	ok, _, _ = l.Allow(t.Context(), "k", 3, time.Minute)
	assert.True(t, ok, "a new window starts after expiry")
}

func TestMiddleware_RateLimit(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(Args{Secret: []byte(fixtures.SessionSecret)})
	h := m.RateLimit("register", 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, do("41.70.1.1").Code)
	assert.Equal(t, http.StatusCreated, do("41.70.1.1").Code)

	rec := do("41.70.1.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")

	assert.Equal(t, http.StatusCreated, do("41.70.2.2").Code)
}

func TestMiddleware_RateLimit_FailsOpen(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(Args{Secret: []byte(fixtures.SessionSecret), Limiter: failingLimiter{}})
	h := m.RateLimit("apply", 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/candidates/apply", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
}

func TestMiddleware_ClientIP(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(Args{
		Secret: []byte(fixtures.SessionSecret),
		TrustedProxies: []netip.Prefix{
			netip.MustParsePrefix("10.0.0.0/8"),
			netip.MustParsePrefix("192.0.2.1/32"),
		},
	})

	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{name: "direct client", remote: "41.70.1.1:5555", want: "41.70.1.1"},
		{name: "untrusted peer cannot spoof", remote: "41.70.1.1:5555", forwarded: "203.0.113.9", want: "41.70.1.1"},
		{name: "trusted proxy", remote: "10.1.2.3:80", forwarded: "41.70.1.1", want: "41.70.1.1"},
		{name: "spoofed leftmost hop ignored", remote: "10.1.2.3:80", forwarded: "203.0.113.9, 41.70.1.1", want: "41.70.1.1"},
		{name: "proxy chain", remote: "10.1.2.3:80", forwarded: "41.70.1.1, 192.0.2.1, 10.9.9.9", want: "41.70.1.1"},
		{name: "trusted proxy without header", remote: "10.1.2.3:80", want: "10.1.2.3"},
		{name: "only proxies in header", remote: "10.1.2.3:80", forwarded: "10.0.0.5", want: "10.1.2.3"},
		{name: "mapped ipv4 peer", remote: "[::ffff:10.1.2.3]:80", forwarded: "41.70.1.1", want: "41.70.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, m.ClientIP(req))
		})
	}
}

func TestMiddleware_RateLimit_IgnoresForwardedFromUntrustedPeer(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(Args{Secret: []byte(fixtures.SessionSecret)})
	h := m.RateLimit("register", 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 3)
	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		req.RemoteAddr = "41.70.1.1:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRedisLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client)
	for range 2 {
		ok, _, err := l.Allow(ctx, "ratelimit:test:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, retry, err := l.Allow(ctx, "ratelimit:test:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)
}
