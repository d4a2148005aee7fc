package handler

import (
	"eps-procurement/internal/apperr"
	"eps-procurement/internal/repository"
	"eps-procurement/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	service   service.OrderService
	integrity service.IntegrityService
}

func NewOrderHandler(s service.OrderService, integrity service.IntegrityService) *OrderHandler {
	return &OrderHandler{service: s, integrity: integrity}
}

type splitRequest struct {
	// configuration id -> supplier; items of unlisted configurations
	// resolve through their SKU's supplier
	SupplierOverrides map[string]string `json:"supplier_overrides"`
}

// SplitRequirement partitions a requirement's configured items into one
// order per resolved supplier.
func (h *OrderHandler) SplitRequirement(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req splitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
		}
	}

	overrides := make(map[uuid.UUID]string, len(req.SupplierOverrides))
	for rawID, supplier := range req.SupplierOverrides {
		configID, err := uuid.Parse(rawID)
		if err != nil {
			return respondError(c, apperr.Validation("supplier_overrides", "invalid configuration UUID %q", rawID))
		}
		overrides[configID] = supplier
	}

	orders, err := h.service.SplitRequirementToOrders(id, overrides)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Requirement split into orders", "data": orders})
}

func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	filters := repository.OrderFilters{
		Supplier:   c.Query("supplier"),
		Status:     c.Query("status"),
		OrderCode:  c.Query("order_code"),
		JiraCase:   c.Query("jira_case"),
		BudgetCode: c.Query("budget_code"),
		SortBy:     c.Query("sort_by"),
	}
	if raw := c.Query("requirement_id"); raw != "" {
		reqID, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, apperr.Validation("requirement_id", "invalid UUID %q", raw))
		}
		filters.RequirementID = reqID
	}

	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)

	orders, total, err := h.service.ListOrders(filters, page, perPage)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"data":     orders,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	details, err := h.service.GetOrderDetails(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(details)
}

func (h *OrderHandler) GetOrderByCode(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByCode(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req service.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.UpdateOrder(id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.service.DeleteOrder(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order deleted"})
}

type allocationRequest struct {
	Allocations []service.AllocationEntry `json:"allocations"`
}

// SetBudgetAllocations atomically replaces the order's allocation set.
func (h *OrderHandler) SetBudgetAllocations(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req allocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	allocations, err := h.service.AllocateBudget(id, req.Allocations)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Budget allocations set", "data": allocations})
}

func (h *OrderHandler) GetBudgetAllocations(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	allocations, err := h.service.GetAllocations(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(allocations)
}

func (h *OrderHandler) VerifyConsistency(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	snapshot, err := h.integrity.VerifyOrderConsistency(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}

func (h *OrderHandler) GetBudgetTotal(c *fiber.Ctx) error {
	code := c.Params("code")

	total, err := h.service.CalculateBudgetTotal(code)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"budget_code": code, "total_amount": total})
}

func (h *OrderHandler) GetOrdersByBudget(c *fiber.Ctx) error {
	code := c.Params("code")

	orders, err := h.service.FindOrdersByBudgetCode(code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}
