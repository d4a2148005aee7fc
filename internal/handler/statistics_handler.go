package handler

import (
	"eps-procurement/internal/service"

	"github.com/gofiber/fiber/v2"
)

type StatisticsHandler struct {
	service service.StatisticsService
}

func NewStatisticsHandler(s service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: s}
}

// GetSupplierStatistics aggregates order totals per supplier within the
// optional start_date/end_date range. ?format=csv downloads the result.
func (h *StatisticsHandler) GetSupplierStatistics(c *fiber.Ctx) error {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return respondError(c, err)
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.service.SupplierStatistics(start, end)
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "csv" {
		rows, fields := service.SupplierStatRows(stats)
		return respondCSV(c, h.service, rows, fields, "supplier_statistics.csv")
	}
	return c.JSON(stats)
}

func (h *StatisticsHandler) GetBudgetStatistics(c *fiber.Ctx) error {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return respondError(c, err)
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.service.BudgetStatistics(c.Query("budget_code"), start, end)
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "csv" {
		rows, fields := service.BudgetStatRows(stats)
		return respondCSV(c, h.service, rows, fields, "budget_statistics.csv")
	}
	return c.JSON(stats)
}

func (h *StatisticsHandler) GetSKUStatistics(c *fiber.Ctx) error {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		return respondError(c, err)
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.service.SKUStatistics(start, end)
	if err != nil {
		return respondError(c, err)
	}

	if c.Query("format") == "csv" {
		rows, fields := service.SKUStatRows(stats)
		return respondCSV(c, h.service, rows, fields, "sku_statistics.csv")
	}
	return c.JSON(stats)
}

type importCSVRequest struct {
	Content       string   `json:"content"`
	DecimalFields []string `json:"decimal_fields"`
}

// ImportCSV parses previously exported statistics back into typed rows.
func (h *StatisticsHandler) ImportCSV(c *fiber.Ctx) error {
	var req importCSVRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	rows, err := h.service.ImportCSV(req.Content, req.DecimalFields)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": rows, "count": len(rows)})
}

func respondCSV(c *fiber.Ctx, s service.StatisticsService, rows []service.StatRow, fields []string, filename string) error {
	out, err := s.ExportCSV(rows, fields)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.SendString(out)
}
