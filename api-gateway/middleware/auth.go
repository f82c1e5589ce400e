package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tair/freshsave/pkg/auth"
)

// Identity headers forwarded to backend services. Client supplied values are
// always dropped.
const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
	HeaderStore  = "X-Store-ID"
)

func clearIdentity(c *fiber.Ctx) {
	c.Request().Header.Del(HeaderUserID)
	c.Request().Header.Del(HeaderRole)
	c.Request().Header.Del(HeaderStore)
}

func setIdentity(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)

	c.Request().Header.Set(HeaderUserID, claims.UserID)
	c.Request().Header.Set(HeaderRole, claims.Role)
	if claims.StoreID != "" {
		c.Request().Header.Set(HeaderStore, claims.StoreID)
	}
}

// AuthMiddleware validates JWT tokens
func AuthMiddleware(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clearIdentity(c)

		token, err := auth.ParseBearer(c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Authorization header required",
			})
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token",
			})
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// StoreAdminMiddleware checks if user has the store admin role
func StoreAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != auth.RoleStoreAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Store admin access required",
			})
		}
		return c.Next()
	}
}

// OptionalAuthMiddleware validates token if present but doesn't require it
func OptionalAuthMiddleware(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clearIdentity(c)

		if token, err := auth.ParseBearer(c.Get("Authorization")); err == nil {
			if claims, err := tokens.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}

		return c.Next()
	}
}

// StripIdentityMiddleware drops client supplied identity headers on public routes
func StripIdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clearIdentity(c)
		return c.Next()
	}
}
