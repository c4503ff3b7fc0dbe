package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"microcredit-api/internal/config"
	"microcredit-api/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{AppMode: "dev", JWT: config.JWTConfig{Secret: "access-secret", AccessTokenMins: 5}}
}

func token(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(7, "caja-sur", "ana@example.com", role, cfg.JWT.Secret, cfg.JWT.AccessTokenMins)
	require.NoError(t, err)
	return tok
}

func whoAmI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"userID":   c.Locals("userID"),
		"tenantID": c.Locals("tenantID"),
		"role":     c.Locals("role"),
	})
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Get("/me", AuthMiddleware(cfg), whoAmI)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cfg, "USER"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", "access_token="+token(t, cfg, "USER"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoleMiddleware(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Get("/staff", AuthMiddleware(cfg), StaffOnly(), whoAmI)
	app.Get("/admin", AuthMiddleware(cfg), AdminOnly(), whoAmI)

	cases := []struct {
		path string
		role string
		want int
	}{
		{"/staff", "USER", fiber.StatusForbidden},
		{"/staff", "OFFICER", fiber.StatusOK},
		{"/admin", "OFFICER", fiber.StatusForbidden},
		{"/admin", "ADMIN", fiber.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+token(t, cfg, tc.role))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "%s as %s", tc.path, tc.role)
	}
}

func TestOptionalAuthIgnoresBadToken(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Get("/", OptionalAuth(cfg), whoAmI)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/public", CacheControl(time.Hour), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/private", PrivateCacheHeaders(time.Minute), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/none", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", CacheControl(time.Hour), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	get := func(path string) string {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		return resp.Header.Get("Cache-Control")
	}

	assert.Equal(t, "public, max-age=3600", get("/public"))
	assert.Equal(t, "private, max-age=60", get("/private"))
	assert.Equal(t, "no-store, no-cache, must-revalidate", get("/none"))
	assert.Empty(t, get("/missing"))
}

func TestStrictRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/otp", StrictRateLimiter(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/otp", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/otp", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestVerifyRateLimiterFitsAttemptCycle(t *testing.T) {
	app := fiber.New()
	app.Post("/verify", VerifyRateLimiter(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/verify", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/verify", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
