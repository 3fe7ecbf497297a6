package rayid_test

import (
	"net/http/httptest"
	"testing"

	"geo-manager/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_GeneratesRayID(t *testing.T) {
	app := fiber.New()
	app.Use(rayid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, c.Locals("ray_id"))
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))
}

func TestNew_HonorsIncomingRayID(t *testing.T) {
	app := fiber.New()
	app.Use(rayid.New())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Ray-ID", "upstream-trace")

	resp, err := app.Test(req, 2000)
	require.NoError(t, err)
	assert.Equal(t, "upstream-trace", resp.Header.Get("X-Ray-ID"))
}
