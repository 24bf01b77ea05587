package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gabapcia/faucet/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// deriveLogger attaches request-scoped fields to the context logger.
func deriveLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := logger.Derive(req.Context(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
			)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// requestLogger writes one log line per request through the context logger.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			kv := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				kv = append(kv, "error", v.Error)
			}

			logger.Info(c.Request().Context(), "request handled", kv...)
			return nil
		},
	})
}

// bodyLimit rejects oversized bodies as a malformed request (400) instead of echo's 413.
func bodyLimit(limit string) echo.MiddlewareFunc {
	limiter := middleware.BodyLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := limiter(next)
		return func(c echo.Context) error {
			err := h(c)

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) && httpErr.Code == http.StatusRequestEntityTooLarge {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
			}

			return err
		}
	}
}

// rateLimiter throttles requests per client IP with a token bucket.
func rateLimiter(limit rate.Limit, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(rateLimiterConfig(limit, burst))
}

func rateLimiterConfig(limit rate.Limit, burst int) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal error"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "Too many requests"})
		},
	}
}
