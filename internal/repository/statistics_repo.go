package repository

import (
	"time"

	"eps-procurement/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierStat aggregates order spend per supplier.
type SupplierStat struct {
	Supplier    string          `json:"supplier"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderCount  int64           `json:"order_count"`
}

// BudgetStat aggregates allocated spend per budget code.
type BudgetStat struct {
	BudgetCode  string          `json:"budget_code"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderCount  int64           `json:"order_count"`
}

// SKUStat aggregates ordered quantity and spend per SKU.
type SKUStat struct {
	SKUID         uuid.UUID       `json:"sku_id"`
	SKUCode       string          `json:"sku_code"`
	SKUName       string          `json:"sku_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type StatisticsRepository interface {
	SupplierStatistics(startDate, endDate *time.Time) ([]SupplierStat, error)
	BudgetStatistics(budgetCode string, startDate, endDate *time.Time) ([]BudgetStat, error)
	SKUStatistics(startDate, endDate *time.Time) ([]SKUStat, error)
}

type statisticsRepo struct {
	db *gorm.DB
}

func NewStatisticsRepo(db *gorm.DB) StatisticsRepository {
	return &statisticsRepo{db}
}

func (r *statisticsRepo) SupplierStatistics(startDate, endDate *time.Time) ([]SupplierStat, error) {
	query := r.db.Model(&model.EPSOrder{}).
		Select("supplier, COALESCE(SUM(total_amount), 0) AS total_amount, COUNT(id) AS order_count")

	if startDate != nil {
		query = query.Where("created_at >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("created_at <= ?", *endDate)
	}

	var stats []SupplierStat
	err := query.Group("supplier").Order("total_amount DESC").Scan(&stats).Error
	return stats, err
}

func (r *statisticsRepo) BudgetStatistics(budgetCode string, startDate, endDate *time.Time) ([]BudgetStat, error) {
	query := r.db.Model(&model.BudgetAllocation{}).
		Select("budget_code, COALESCE(SUM(amount), 0) AS total_amount, COUNT(DISTINCT order_id) AS order_count")

	if budgetCode != "" {
		query = query.Where("budget_code = ?", budgetCode)
	}
	if startDate != nil || endDate != nil {
		query = query.Joins("JOIN eps_orders ON eps_orders.id = budget_allocations.order_id")
		if startDate != nil {
			query = query.Where("eps_orders.created_at >= ?", *startDate)
		}
		if endDate != nil {
			query = query.Where("eps_orders.created_at <= ?", *endDate)
		}
	}

	var stats []BudgetStat
	err := query.Group("budget_code").Order("total_amount DESC").Scan(&stats).Error
	return stats, err
}

func (r *statisticsRepo) SKUStatistics(startDate, endDate *time.Time) ([]SKUStat, error) {
	query := r.db.Model(&model.EPSOrderItem{}).
		Select(`eps_order_items.sku_id,
			skus.sku_code,
			skus.name AS sku_name,
			COALESCE(SUM(eps_order_items.quantity), 0) AS total_quantity,
			COALESCE(SUM(eps_order_items.subtotal), 0) AS total_amount`).
		Joins("JOIN skus ON skus.id = eps_order_items.sku_id")

	if startDate != nil || endDate != nil {
		query = query.Joins("JOIN eps_orders ON eps_orders.id = eps_order_items.order_id")
		if startDate != nil {
			query = query.Where("eps_orders.created_at >= ?", *startDate)
		}
		if endDate != nil {
			query = query.Where("eps_orders.created_at <= ?", *endDate)
		}
	}

	var stats []SKUStat
	err := query.Group("eps_order_items.sku_id, skus.sku_code, skus.name").
		Order("total_amount DESC").
		Scan(&stats).Error
	return stats, err
}
