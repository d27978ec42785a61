package ratelimit

import (
	"math"
	"strconv"
	"time"

	"github.com/example/task-manager/domain/apperror"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Config holds the limits enforced by the fiber middleware.
type Config struct {
	// Name scopes the counters, e.g. "auth".
	Name   string
	Limit  int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to the remote IP.
	KeyFunc func(c *fiber.Ctx) string
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithLimit sets the number of requests allowed per window.
func WithLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.Limit = limit
		c.Window = window
	}
}

// WithKeyFunc sets how clients are identified.
func WithKeyFunc(fn func(c *fiber.Ctx) string) Option {
	return func(c *Config) {
		c.KeyFunc = fn
	}
}

// DefaultConfig returns a config allowing 20 requests per minute per IP.
func DefaultConfig(name string) Config {
	return Config{
		Name:   name,
		Limit:  20,
		Window: time.Minute,
		KeyFunc: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}
}

// New returns a fiber handler enforcing the limit through allower.
// Rejected requests fail with an apperror of kind rate_limited and carry a
// Retry-After header. Limiter errors let the request through.
func New(allower Allower, logger types.Logger, name string, opts ...Option) fiber.Handler {
	cfg := DefaultConfig(name)
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *fiber.Ctx) error {
		clientID := cfg.KeyFunc(c)
		key := cfg.Name + ":" + clientID

		result, err := allower.Allow(c.UserContext(), key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.Error("Rate limit check failed", "limiter", cfg.Name, "client_id", clientID, "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(math.Ceil(time.Until(result.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))

			logger.Warn("Rate limit exceeded", "limiter", cfg.Name, "client_id", clientID, "limit", result.Limit)
			return apperror.RateLimited("Too many requests, please try again later")
		}
		return c.Next()
	}
}
