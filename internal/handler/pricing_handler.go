package handler

import (
	"eps-procurement/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PricingHandler struct {
	pricing      service.PricingService
	requirements service.RequirementService
}

func NewPricingHandler(pricing service.PricingService, requirements service.RequirementService) *PricingHandler {
	return &PricingHandler{pricing: pricing, requirements: requirements}
}

type quoteRequest struct {
	Items []service.ConfigItemInput `json:"items"`
}

// Quote totals the given SKU lines at current prices without persisting
// anything.
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	total, err := h.pricing.ConfigurationPrice(req.Items)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"total_price": total})
}

// CheckConfigurationPrice recomputes a configuration's total from its
// items and reports whether the stored total still matches.
func (h *PricingHandler) CheckConfigurationPrice(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	config, err := h.requirements.GetConfiguration(id)
	if err != nil {
		return respondError(c, err)
	}

	calculated := h.pricing.RecalculateConfigurationTotal(config.Items)
	return c.JSON(fiber.Map{
		"configuration_id": config.ID,
		"stored_total":     config.TotalPrice,
		"calculated_total": calculated,
		"consistent":       h.pricing.ValidateConfigurationPrice(config, config.Items),
	})
}
