package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SettingsHandler manages per-company configuration endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// List GET /settings.
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	settings, err := h.settings.List(c.Context(), principal.CompanyID)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		var value any
		_ = json.Unmarshal(setting.Value, &value)
		items = append(items, dto.SettingResponse{
			Key:       setting.Key,
			Value:     value,
			UpdatedAt: setting.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Upsert PUT /settings.
func (h *SettingsHandler) Upsert(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Key == "" {
		return apperrors.NewValidationError("key required", nil)
	}
	value, err := json.Marshal(req.Value)
	if err != nil {
		return apperrors.NewValidationError("value must be JSON-encodable", nil)
	}
	if err := h.settings.Set(c.Context(), principal.CompanyID, req.Key, value); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
