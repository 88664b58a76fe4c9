package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/harborline/partner-survey/internal/types"
)

// VersionMiddleware parses the X-Api-Version header and stores it in context.
// A malformed header is rejected before any handler runs.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", "1.0.0")

		// Support version aliases
		if version == "1.0" {
			version = "1.0.0"
		}

		if !validVersion(version) {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: "Invalid X-Api-Version header",
				Type:    "version",
			}
		}

		// Store version in context
		c.Locals("apiVersion", version)

		return c.Next()
	}
}

// validVersion accepts dotted numeric versions like 1, 1.0, 1.0.0
func validVersion(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) > 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
