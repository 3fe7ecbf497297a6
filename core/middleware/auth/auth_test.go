package auth_test

import (
	"net/http/httptest"
	"testing"

	"geo-manager/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(apiKey string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: apiKey}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestNew_RejectsMissingKey(t *testing.T) {
	app := protectedApp("secret")

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestNew_AcceptsMatchingKey(t *testing.T) {
	app := protectedApp("secret")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Api-Key", "secret")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestNew_EmptyKeyDisablesAuth(t *testing.T) {
	app := protectedApp("")

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
