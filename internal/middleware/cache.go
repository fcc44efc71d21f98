package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/wqam/backend/internal/config"
)

// captureWriter captures the response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// ResponseCache caches successful GET responses in Redis under the config
// prefix. The lifecycle service invalidates the prefix after every mutation,
// and the short TTL bounds staleness if invalidation is ever missed. A nil
// Redis client or a disabled config turns the middleware into a pass-through.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cfg.Prefix + ":" + c.Path()

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status == http.StatusOK {
				_ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}

// Invalidator drops every cached response under the config prefix. It is
// handed to the lifecycle service so register/approve/reject immediately
// bust the pending-list cache.
type Invalidator struct {
	rdb    *redis.Client
	prefix string
}

func NewInvalidator(cfg config.CacheConfig, rdb *redis.Client) *Invalidator {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	return &Invalidator{rdb: rdb, prefix: cfg.Prefix}
}

// Invalidate scans for keys under the prefix and deletes them.
func (i *Invalidator) Invalidate(ctx context.Context) error {
	if i == nil || i.rdb == nil {
		return nil
	}
	iter := i.rdb.Scan(ctx, 0, i.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := i.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
