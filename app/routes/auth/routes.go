package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
)

func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/login", LoginAPI)
	auth.Post("/logout", LogoutAPI)

	// Protected routes
	auth.Get("/me", AuthMiddleware, MeAPI)
}

// AuthMiddleware validates the JWT from the cookie or bearer header and stores the
// user in the request context.
func AuthMiddleware(c *fiber.Ctx) error {
	tokenString := c.Cookies(tokenCookie)
	if tokenString == "" {
		header := c.Get(fiber.HeaderAuthorization)
		if strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
	}

	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "No token found"})
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
	}

	user := claims.User()
	c.Locals("user_id", user.ID)
	c.Locals("user_role", user.Role)
	c.Locals("school_id", user.Tenant())
	c.Locals("user", user)

	return c.Next()
}

// CurrentUser returns the user AuthMiddleware stored, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// RoleMiddleware checks if user has required role
func RoleMiddleware(allowedRoles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user != nil {
			for _, allowed := range allowedRoles {
				if user.Role == allowed {
					return c.Next()
				}
			}
		}
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
}
