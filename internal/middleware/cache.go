package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fantasy-corps/internal/config"
)

// cachedResponse is what a show-result response is stored as.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// teeWriter copies up to limit bytes of the body while passing it through.
type teeWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
		w.truncated = true
	} else if !w.truncated {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// resultKey names the cache entry for one season's show result.  Routes
// without a resultId param fall back to the concrete path.
func resultKey(prefix string, c echo.Context) string {
	season, result := c.Param("id"), c.Param("resultId")
	if season == "" || result == "" {
		return prefix + ":path:" + strings.TrimPrefix(c.Request().URL.Path, "/")
	}
	return prefix + ":season:" + season + ":result:" + result
}

func replay(c echo.Context, bs []byte) bool {
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
		return false
	}
	h := c.Response().Header()
	if cr.ContentType != "" {
		h.Set(echo.HeaderContentType, cr.ContentType)
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cr.Status)
	_, _ = c.Response().Write(cr.Body)
	return true
}

// NewRedisCache serves committed show results from Redis.  Only 200
// responses are stored; a nil client or disabled config passes through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Cacheable(c.Request().Method) {
				return next(c)
			}
			ctx := c.Request().Context()
			key := resultKey(cfg.Prefix, c)
			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil && replay(c, bs) {
				return nil
			}

			w := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = w
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if w.status != http.StatusOK || w.truncated {
				return nil
			}
			payload, err := json.Marshal(cachedResponse{
				Status:      w.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        w.buf.Bytes(),
			})
			if err == nil {
				_ = rdb.SetEx(context.WithoutCancel(ctx), key, payload, cfg.TTL).Err()
			}
			return nil
		}
	}
}
