package handler

import (
	"eps-procurement/internal/repository"
	"eps-procurement/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RequirementHandler struct {
	service   service.RequirementService
	integrity service.IntegrityService
}

func NewRequirementHandler(s service.RequirementService, integrity service.IntegrityService) *RequirementHandler {
	return &RequirementHandler{service: s, integrity: integrity}
}

func (h *RequirementHandler) CreateRequirement(c *fiber.Ctx) error {
	var req service.CreateRequirementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	requirement, err := h.service.CreateRequirement(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Requirement created", "data": requirement})
}

func (h *RequirementHandler) GetRequirements(c *fiber.Ctx) error {
	filters := repository.RequirementFilters{
		RequirementCode: c.Query("requirement_code"),
		JiraCase:        c.Query("jira_case"),
		Status:          c.Query("status"),
	}

	requirements, err := h.service.ListRequirements(filters)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requirements)
}

func (h *RequirementHandler) GetRequirement(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	requirement, err := h.service.GetRequirement(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requirement)
}

func (h *RequirementHandler) GetRequirementByCode(c *fiber.Ctx) error {
	requirement, err := h.service.GetRequirementByCode(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requirement)
}

// GetRequirementsByJiraCase lists every requirement raised under one Jira
// case.
func (h *RequirementHandler) GetRequirementsByJiraCase(c *fiber.Ctx) error {
	requirements, err := h.service.FindByJiraCase(c.Params("case"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requirements)
}

func (h *RequirementHandler) UpdateRequirement(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req service.UpdateRequirementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	requirement, err := h.service.UpdateRequirement(id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Requirement updated", "data": requirement})
}

// DeleteRequirement removes a requirement. Plain deletion is blocked when
// dependent orders exist; pass ?cascade=true to delete the full subtree.
func (h *RequirementHandler) DeleteRequirement(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if c.QueryBool("cascade") {
		stats, err := h.integrity.CascadeDeleteRequirement(id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Requirement deleted", "stats": stats})
	}

	if err := h.service.DeleteRequirement(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Requirement deleted"})
}

func (h *RequirementHandler) CheckDependencies(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	report, err := h.integrity.CheckRequirementDependencies(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *RequirementHandler) VerifyConsistency(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	snapshot, err := h.integrity.VerifyRequirementConsistency(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

func (h *RequirementHandler) CreateConfiguration(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	config, err := h.service.CreateConfiguration(id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Configuration created", "data": config})
}

func (h *RequirementHandler) GetConfigurations(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	configs, err := h.service.ListConfigurations(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(configs)
}

func (h *RequirementHandler) GetConfiguration(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	config, err := h.service.GetConfiguration(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(config)
}

func (h *RequirementHandler) AddConfigurationItem(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var input service.ConfigItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.service.AddConfigurationItem(id, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Configuration item added", "data": item})
}

func (h *RequirementHandler) RemoveConfigurationItem(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.RemoveConfigurationItem(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Configuration item removed"})
}
