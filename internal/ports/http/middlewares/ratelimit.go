package middlewares

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/otelx"
)

type Limiter interface {
	// Allow counts one hit for key in a fixed window. When the limit is
	// exceeded it returns false and the time left in the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimit rejects requests from one client address beyond limit per window.
// Limiter failures let the request through.
func (m *Middleware) RateLimit(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := m.tracer.Start(r.Context(), "RateLimitMiddleware")
			key := fmt.Sprintf("ratelimit:%s:%s", scope, m.ClientIP(r))
			allowed, retryAfter, err := m.limiter.Allow(ctx, key, limit, window)
			span.SetAttributes(attribute.String("ratelimit.scope", scope), attribute.Bool("ratelimit.allowed", allowed || err != nil))
			if err != nil {
				otelx.RecordSpanError(span, err, "rate limiter unavailable")
				m.logger.WarnContext(ctx, "rate limiter unavailable, allowing request", "scope", scope, "error", err.Error())
				span.End()
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				m.errhandler.HandleError(w, r, span, errorx.NewRateLimitExceededWithRetry(secs), "rate limit exceeded")
				span.End()
				return
			}
			span.End()

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the peer address unless the peer is a trusted proxy. Then
// X-Forwarded-For is read right to left and the first hop outside the
// trusted ranges wins, since only the hops proxies appended can be believed.
func (m *Middleware) ClientIP(r *http.Request) string {
	peer := PeerIP(r)
	if !m.isTrustedProxy(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !m.isTrustedProxy(hop) {
			return hop
		}
	}
	return peer
}

// PeerIP is the host part of the connection's remote address.
func PeerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (m *Middleware) isTrustedProxy(ip string) bool {
	if len(m.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// The script returns 0 when the hit is allowed, otherwise the window's
// remaining time in milliseconds.
const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl < 1 then
    ttl = 1
  end
  return ttl
end
return 0
`

type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	timeout time.Duration
}

func NewRedisLimiter(client redis.Scripter) *RedisLimiter {
	if client == nil {
		panic("redis client is required for rate limiter")
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(rateLimitScript),
		timeout: 250 * time.Millisecond,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	remaining, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		return true, 0, err
	}
	if remaining > 0 {
		return false, time.Duration(remaining) * time.Millisecond, nil
	}
	return true, 0, nil
}

// MemoryLimiter is a process local fixed window limiter, used when no Redis
// is configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, b := range l.buckets {
		if now.After(b.windowEnd) {
			delete(l.buckets, k)
		}
	}

	bucket, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		return true, 0, nil
	}
	if bucket.count >= limit {
		return false, bucket.windowEnd.Sub(now), nil
	}
	bucket.count++
	return true, 0, nil
}
