package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func newAutomationTestApp(apiKey string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	h := NewAutomationHandler(nil, apiKey)
	app.Post("/callback", h.Authenticate, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAutomationAuthenticateAcceptsSharedKey(t *testing.T) {
	app := newAutomationTestApp("secret")

	req := httptest.NewRequest("POST", "/callback", nil)
	req.Header.Set("X-Api-Key", "secret")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAutomationAuthenticateRejectsWrongKey(t *testing.T) {
	app := newAutomationTestApp("secret")

	req := httptest.NewRequest("POST", "/callback", nil)
	req.Header.Set("X-Api-Key", "wrong")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAutomationAuthenticateRejectsMissingKey(t *testing.T) {
	app := newAutomationTestApp("secret")

	resp, err := app.Test(httptest.NewRequest("POST", "/callback", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAutomationAuthenticateDisabledWithoutKey(t *testing.T) {
	app := newAutomationTestApp("")

	req := httptest.NewRequest("POST", "/callback", nil)
	req.Header.Set("X-Api-Key", "anything")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
