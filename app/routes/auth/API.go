package auth

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/config"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"go.uber.org/zap"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func LoginAPI(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	user, err := database.GetUserByEmail(config.GetDB(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		config.Logger().Error("Login lookup failed", zap.String("email", req.Email), zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}

	if !CheckPasswordHash(req.Password, user.Password) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := GenerateJWT(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Expires:  time.Now().Add(config.JWTTTL()),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	config.Logger().Info("User logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func LogoutAPI(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func MeAPI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": CurrentUser(c)})
}
