package handler

import (
	"eps-procurement/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SKUHandler struct {
	service service.SKUService
}

func NewSKUHandler(s service.SKUService) *SKUHandler {
	return &SKUHandler{service: s}
}

func (h *SKUHandler) CreateSKU(c *fiber.Ctx) error {
	var req service.CreateSKURequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sku, err := h.service.CreateSKU(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "SKU created", "data": sku})
}

// GetSKUs lists SKUs, optionally filtered by keyword (q) and supplier.
func (h *SKUHandler) GetSKUs(c *fiber.Ctx) error {
	skus, err := h.service.SearchSKUs(c.Query("q"), c.Query("supplier"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(skus)
}

func (h *SKUHandler) GetSKU(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	sku, err := h.service.GetSKU(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sku)
}

func (h *SKUHandler) GetSKUByCode(c *fiber.Ctx) error {
	sku, err := h.service.GetSKUByCode(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sku)
}

func (h *SKUHandler) UpdateSKU(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req service.UpdateSKURequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sku, err := h.service.UpdateSKU(id, &req, c.Query("changed_by"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "SKU updated", "data": sku})
}

func (h *SKUHandler) DeleteSKU(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.DeleteSKU(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "SKU deleted"})
}

func (h *SKUHandler) GetPriceHistory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	history, err := h.service.GetPriceHistory(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}
