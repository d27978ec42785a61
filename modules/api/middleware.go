package api

import (
	"strings"

	"github.com/example/task-manager/domain/apperror"
	"github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the key used to store the caller's profile in the Fiber context.
const UserContextKey = "user"

// AuthMiddleware requires a valid bearer token for an existing user and
// stores the user's profile in the request locals.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.Unauthenticated("Access token required")
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return apperror.Unauthenticated("Invalid authorization header format. Use: Bearer <token>")
		}

		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return err
		}

		profile, err := authPort.GetProfile(c.UserContext(), claims.UserID)
		if err != nil {
			return err
		}

		c.Locals(UserContextKey, profile)
		return c.Next()
	}
}

// currentUser returns the profile stored by AuthMiddleware.
func currentUser(c *fiber.Ctx) (*user.Profile, error) {
	profile, ok := c.Locals(UserContextKey).(*user.Profile)
	if !ok || profile == nil {
		return nil, apperror.Unauthenticated("Access token required")
	}
	return profile, nil
}
