package middleware

import (
	"errors"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

const localUser = "user"

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		user, err := auth.Authenticate(c.UserContext(), parts[1])
		switch {
		case err == nil:
		case errors.Is(err, jwt.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
		case errors.Is(err, service.ErrUserInactive), errors.Is(err, service.ErrSessionRevoked):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		default:
			return err
		}

		// Set user info in context for downstream handlers
		c.Locals(localUser, user)
		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("user_privileges", user.GetPrivilegeCodes())

		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires '" + strings.Join(requiredPrivileges, "' or '") + "' privilege",
		})
	}
}

// CurrentUser returns the user set by RequireAuth.
func CurrentUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals(localUser).(*model.User)
	return user, ok && user != nil
}

// CurrentActor returns the acting user for catalog mutations.
func CurrentActor(c *fiber.Ctx) (service.Actor, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: user.ID, Name: user.FullName, Email: user.Email}, true
}
