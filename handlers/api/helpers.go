package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// IsAPIRequest reports whether the caller expects JSON or a fragment rather
// than a full page: script requests carry HX-Request, JSON routes live
// under /api.
func IsAPIRequest(c *fiber.Ctx) bool {
	if c == nil {
		return false
	}
	if IsPartialRequest(c) {
		return true
	}
	return strings.HasPrefix(c.Path(), "/api")
}

// IsPartialRequest reports whether the page script asked for a fragment
func IsPartialRequest(c *fiber.Ctx) bool {
	return c.Get("HX-Request") != ""
}
