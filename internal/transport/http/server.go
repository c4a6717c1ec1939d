// Package http provides the HTTP server for the context engine API.
package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dat2003as/ragAIFullStack/internal/config"
	"github.com/dat2003as/ragAIFullStack/internal/metrics"
	"github.com/dat2003as/ragAIFullStack/internal/ratelimit"
	"github.com/dat2003as/ragAIFullStack/internal/service"
)

// NewServer creates and configures the echo server with all middleware and
// routes. limiter keys requests by client IP; pass nil to disable limiting.
func NewServer(cfg *config.Config, svc *service.Service, limiter *ratelimit.Limiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))
	if limiter != nil {
		e.Use(rateLimitMiddleware(limiter))
	}
	e.Use(metricsMiddleware())

	// Handlers
	h := NewHandler(cfg, svc)
	h.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// rateLimitMiddleware rejects clients that exceed the per-window request
// budget with 429 and annotates every response with the limit headers.
func rateLimitMiddleware(limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, remaining := limiter.Allow(ip, time.Now())
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": fmt.Sprintf("Rate limit exceeded. Max %d requests per minute.", limiter.Limit()),
				})
			}
			return next(c)
		}
	}
}

func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			metrics.HTTPDuration.WithLabelValues(c.Request().Method, path).
				Observe(time.Since(start).Seconds())
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			metrics.HTTPRequests.WithLabelValues(
				c.Request().Method, path, strconv.Itoa(status)).Inc()
			return err
		}
	}
}
