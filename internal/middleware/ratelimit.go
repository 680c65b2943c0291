package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iliyamo/fantasy-corps/internal/config"
)

// bucketScript refills KEYS[1] by whole intervals, then takes one token.
// ARGV: now_ms, capacity, refill tokens, interval_ms, ttl_s.
// Returns {allowed, remaining, retry_ms}.
var bucketScript = redis.NewScript(`
local b = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local now, cap, add, every = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4])
local tokens, at = tonumber(b[1]) or cap, tonumber(b[2]) or now
local n = math.floor(math.max(0, now - at) / every)
if n > 0 then
	tokens = math.min(cap, tokens + n * add)
	at = at + n * every
end
local ok, retry = 0, 0
if tokens > 0 then
	ok, tokens = 1, tokens - 1
else
	retry = math.max(0, every - (now - at))
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', at)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {ok, tokens, retry}
`)

type verdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

type bucketStore interface {
	take(c echo.Context, key string) (verdict, error)
}

// NewTokenBucket limits each caller per route.  Callers are keyed by JWT
// subject when authenticated and by client IP otherwise.  Buckets are
// shared through Redis when rdb is set; if Redis errors the request is let
// through and the failure logged.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	var buckets bucketStore = newLocalBuckets(cfg)
	if rdb != nil {
		buckets = redisBuckets{rdb: rdb, cfg: cfg}
	}
	log = log.With().Str("component", "ratelimit").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := bucketKey(cfg.Prefix, c)
			v, err := buckets.take(c, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if v.allowed {
				return next(c)
			}
			secs := int(math.Max(0, math.Ceil(v.retry.Seconds())))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "too_many_requests",
				"retry_after": secs,
			})
		}
	}
}

// bucketKey is prefix:user:<id>:<route> or prefix:ip:<addr>:<route>.
func bucketKey(prefix string, c echo.Context) string {
	who := "user:" + UserID(c)
	if UserID(c) == Anonymous {
		ip := c.RealIP()
		if ip == "" {
			ip = "unknown"
		}
		who = "ip:" + ip
	}
	return prefix + ":" + who + ":" + c.Request().Method + ":" + c.Path()
}

type redisBuckets struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (r redisBuckets) take(c echo.Context, key string) (verdict, error) {
	out, err := bucketScript.Run(c.Request().Context(), r.rdb, []string{key},
		time.Now().UnixMilli(), r.cfg.Capacity, r.cfg.RefillTokens,
		r.cfg.RefillInterval.Milliseconds(), int64(r.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(out) != 3 {
		return verdict{}, fmt.Errorf("rate limit script returned %d values", len(out))
	}
	return verdict{allowed: out[0] == 1, remaining: out[1], retry: time.Duration(out[2]) * time.Millisecond}, nil
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// localBuckets keeps per-key limiters in process.  Buckets idle for longer
// than the TTL are dropped on the next sweep.
type localBuckets struct {
	cfg       config.RateLimitConfig
	every     rate.Limit
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

func newLocalBuckets(cfg config.RateLimitConfig) *localBuckets {
	return &localBuckets{
		cfg:     cfg,
		every:   rate.Every(cfg.RefillInterval / time.Duration(cfg.RefillTokens)),
		buckets: make(map[string]*localBucket),
	}
}

func (l *localBuckets) take(_ echo.Context, key string) (verdict, error) {
	return l.takeAt(key, time.Now()), nil
}

func (l *localBuckets) takeAt(key string, now time.Time) verdict {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) > l.cfg.TTL {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > l.cfg.TTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{lim: rate.NewLimiter(l.every, l.cfg.Capacity)}
		l.buckets[key] = b
	}
	b.seen = now

	r := b.lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return verdict{retry: delay}
	}
	return verdict{allowed: true, remaining: int64(b.lim.TokensAt(now))}
}
