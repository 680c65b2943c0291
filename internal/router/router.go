// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/fantasy-corps/internal/config"
	"github.com/iliyamo/fantasy-corps/internal/handler"
	"github.com/iliyamo/fantasy-corps/internal/metrics"
	"github.com/iliyamo/fantasy-corps/internal/middleware"
)

// RegisterRoutes registers unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, rec *metrics.Recorder) {
	e.GET("/healthz", handler.Health(db))
	if rec != nil {
		e.GET("/metrics", echo.WrapHandler(rec.Handler()))
	}
}

// RegisterPublic registers read-only season endpoints.  Single results are
// immutable and go through the Redis response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/seasons/:id/results", p.GetResults)
	e.GET("/v1/seasons/:id/results/:resultId", p.GetResult, middleware.NewRedisCache(cacheCfg, rdb))
	e.GET("/v1/seasons/:id/matchups", p.GetMatchups)
}
