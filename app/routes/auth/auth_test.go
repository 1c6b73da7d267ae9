package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/config"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := config.OpenDB("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db, nil))
	require.NoError(t, database.SeedDemoData(db, nil))
	config.AppConfig = &config.Config{DB: db, Driver: "sqlite3"}

	app := fiber.New()
	SetupAuthRoutes(app)
	app.Get("/admin-only", AuthMiddleware, RoleMiddleware(models.SuperAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func login(t *testing.T, app *fiber.App, email, password string) (int, map[string]any) {
	t.Helper()
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(data, &out))
	return resp.StatusCode, out
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)

	status, out := login(t, app, "admin@kampalahill.test", database.DemoPassword)
	require.Equal(t, 200, status)
	token, _ := out["token"].(string)
	require.NotEmpty(t, token)
	assert.NotContains(t, out["user"], "password")

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "school_admin", claims.Role)
	assert.Equal(t, database.DemoID("school", "KHP"), claims.SchoolID)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestLoginRejected(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"wrong password", "admin@kampalahill.test", "nope", 401},
		{"unknown user", "ghost@kampalahill.test", "password123", 401},
		{"missing password", "admin@kampalahill.test", "", 400},
		{"invalid email", "admin", "password123", 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := login(t, app, tt.email, tt.password)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	token, err := GenerateJWT(&models.User{ID: "u1", Email: "super@nexus.test", Role: models.SuperAdmin})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/admin-only", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClaimsUser(t *testing.T) {
	school := "s1"
	token, err := GenerateJWT(&models.User{ID: "u1", Email: "t@x.test", FirstName: "T", LastName: "X", Role: models.Teacher, SchoolID: &school})
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	user := claims.User()
	assert.Equal(t, models.Teacher, user.Role)
	assert.Equal(t, "s1", user.Tenant())
	assert.Equal(t, "T X", user.FullName())
}
