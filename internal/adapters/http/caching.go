package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/graphql":
			ttl = "private, max-age=0"

		// Live state must never be served stale.
		case strings.HasSuffix(path, "/state"):
			ttl = "no-store"

		case strings.HasSuffix(path, "/trace"):
			ttl = "private, max-age=10"

		case strings.HasPrefix(path, "/v1/routes/preview"):
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/sessions"):
			ttl = "private, max-age=5"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
