package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationStreamSkipsAuthGuard(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, nil)

	// No credentials at all: the websocket endpoint must answer for
	// itself (it authenticates via its first message), not be cut off
	// by the /api/v1 auth middleware.
	req := httptest.NewRequest(fiber.MethodGet, "/ws/notifications", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestAPIRoutesRequireAuth(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/notifications/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
