package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AutomationHandler receives callbacks from the workflow-automation system.
// Requests authenticate with the shared automation API key instead of an
// agent token.
type AutomationHandler struct {
	tickets *service.TicketService
	apiKey  string
}

// NewAutomationHandler constructs handler.
func NewAutomationHandler(tickets *service.TicketService, apiKey string) *AutomationHandler {
	return &AutomationHandler{tickets: tickets, apiKey: apiKey}
}

// Authenticate verifies the shared key on automation callback routes.
func (h *AutomationHandler) Authenticate(c *fiber.Ctx) error {
	if h.apiKey == "" {
		return apperrors.NewForbidden("automation callbacks disabled")
	}
	if c.Get("X-Api-Key") != h.apiKey {
		return apperrors.NewUnauthorized("invalid api key")
	}
	return c.Next()
}

// ApplyTriage POST /automation/companies/:companyId/tickets/:id/triage.
func (h *AutomationHandler) ApplyTriage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.ApplyTriage(c.Context(), c.Params("companyId"), c.Params("id"), service.TriageInput{
		Classification:      req.Classification,
		SuggestedPriority:   req.SuggestedPriority,
		ConfidenceScore:     req.ConfidenceScore,
		NeedsAdditionalInfo: req.NeedsAdditionalInfo,
		NeedsHumanReview:    req.NeedsHumanReview,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}
