package main

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: customErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked here") })

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/teapot", 418, "short and stout"},
		{"/boom", 500, "Internal Server Error"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()

		assert.Equal(t, tt.code, resp.StatusCode)
		assert.Equal(t, false, out["success"])
		assert.Equal(t, tt.message, out["error"])
		assert.Equal(t, float64(tt.code), out["code"])
	}
}
