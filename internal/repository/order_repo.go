package repository

import (
	"errors"

	"eps-procurement/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderFilters narrows the paged order listing. Empty fields are ignored.
// SortBy accepts created_at_asc, created_at_desc, total_amount_asc,
// total_amount_desc; anything else falls back to created_at_desc.
type OrderFilters struct {
	RequirementID uuid.UUID
	Supplier      string
	Status        string
	OrderCode     string
	JiraCase      string
	BudgetCode    string
	SortBy        string
}

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.EPSOrder) error
	Save(tx *gorm.DB, order *model.EPSOrder) error
	CreateItem(tx *gorm.DB, item *model.EPSOrderItem) error
	CreateAllocation(tx *gorm.DB, alloc *model.BudgetAllocation) error
	FindByID(id uuid.UUID) (*model.EPSOrder, error)
	FindByCode(code string) (*model.EPSOrder, error)
	FindByRequirement(requirementID uuid.UUID) ([]model.EPSOrder, error)
	CountByRequirement(requirementID uuid.UUID) (int64, error)
	FindByBudgetCode(budgetCode string) ([]model.EPSOrder, error)
	FindAllWithFilters(filters OrderFilters, page, perPage int) ([]model.EPSOrder, int64, error)
	Items(orderID uuid.UUID) ([]model.EPSOrderItem, error)
	Allocations(orderID uuid.UUID) ([]model.BudgetAllocation, error)
	SumAmountByBudgetCode(budgetCode string) (decimal.Decimal, error)
	Delete(tx *gorm.DB, id uuid.UUID) error

	// Batch deletes for atomic replace and cascade paths. All return rows
	// affected.
	DeleteAllocationsByOrder(tx *gorm.DB, orderID uuid.UUID) (int64, error)
	DeleteItemsByOrderIDs(tx *gorm.DB, orderIDs []uuid.UUID) (int64, error)
	DeleteAllocationsByOrderIDs(tx *gorm.DB, orderIDs []uuid.UUID) (int64, error)
	DeleteByRequirement(tx *gorm.DB, requirementID uuid.UUID) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.EPSOrder) error {
	return tx.Create(order).Error
}

func (r *orderRepo) Save(tx *gorm.DB, order *model.EPSOrder) error {
	return tx.Save(order).Error
}

func (r *orderRepo) CreateItem(tx *gorm.DB, item *model.EPSOrderItem) error {
	return tx.Create(item).Error
}

func (r *orderRepo) CreateAllocation(tx *gorm.DB, alloc *model.BudgetAllocation) error {
	return tx.Create(alloc).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.EPSOrder, error) {
	var order model.EPSOrder
	err := r.db.First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByCode(code string) (*model.EPSOrder, error) {
	var order model.EPSOrder
	err := r.db.First(&order, "order_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByRequirement(requirementID uuid.UUID) ([]model.EPSOrder, error) {
	var orders []model.EPSOrder
	err := r.db.Where("requirement_id = ?", requirementID).Order("created_at").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByRequirement(requirementID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.EPSOrder{}).Where("requirement_id = ?", requirementID).Count(&count).Error
	return count, err
}

func (r *orderRepo) FindByBudgetCode(budgetCode string) ([]model.EPSOrder, error) {
	var orders []model.EPSOrder
	err := r.db.
		Joins("JOIN budget_allocations ON budget_allocations.order_id = eps_orders.id").
		Where("budget_allocations.budget_code = ?", budgetCode).
		Distinct().
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindAllWithFilters(filters OrderFilters, page, perPage int) ([]model.EPSOrder, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	query := r.db.Model(&model.EPSOrder{}).
		Joins("JOIN requirements ON requirements.id = eps_orders.requirement_id")

	if filters.RequirementID != uuid.Nil {
		query = query.Where("eps_orders.requirement_id = ?", filters.RequirementID)
	}
	if filters.Supplier != "" {
		query = query.Where("eps_orders.supplier ILIKE ?", "%"+filters.Supplier+"%")
	}
	if filters.Status != "" {
		query = query.Where("eps_orders.status = ?", filters.Status)
	}
	if filters.OrderCode != "" {
		query = query.Where("eps_orders.order_code ILIKE ?", "%"+filters.OrderCode+"%")
	}
	if filters.JiraCase != "" {
		query = query.Where("requirements.jira_case ILIKE ?", "%"+filters.JiraCase+"%")
	}
	if filters.BudgetCode != "" {
		query = query.
			Joins("JOIN budget_allocations ON budget_allocations.order_id = eps_orders.id").
			Where("budget_allocations.budget_code ILIKE ?", "%"+filters.BudgetCode+"%").
			Distinct("eps_orders.*")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filters.SortBy {
	case "created_at_asc":
		query = query.Order("eps_orders.created_at ASC")
	case "total_amount_asc":
		query = query.Order("eps_orders.total_amount ASC")
	case "total_amount_desc":
		query = query.Order("eps_orders.total_amount DESC")
	default:
		query = query.Order("eps_orders.created_at DESC")
	}

	var orders []model.EPSOrder
	err := query.Offset((page - 1) * perPage).Limit(perPage).Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) Items(orderID uuid.UUID) ([]model.EPSOrderItem, error) {
	var items []model.EPSOrderItem
	err := r.db.Where("order_id = ?", orderID).Order("created_at").Find(&items).Error
	return items, err
}

func (r *orderRepo) Allocations(orderID uuid.UUID) ([]model.BudgetAllocation, error) {
	var allocations []model.BudgetAllocation
	err := r.db.Where("order_id = ?", orderID).Order("created_at").Find(&allocations).Error
	return allocations, err
}

func (r *orderRepo) SumAmountByBudgetCode(budgetCode string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.BudgetAllocation{}).
		Where("budget_code = ?", budgetCode).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *orderRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.EPSOrder{}, "id = ?", id).Error
}

func (r *orderRepo) DeleteAllocationsByOrder(tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	res := tx.Where("order_id = ?", orderID).Delete(&model.BudgetAllocation{})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) DeleteItemsByOrderIDs(tx *gorm.DB, orderIDs []uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("order_id IN ?", orderIDs).Delete(&model.EPSOrderItem{})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) DeleteAllocationsByOrderIDs(tx *gorm.DB, orderIDs []uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("order_id IN ?", orderIDs).Delete(&model.BudgetAllocation{})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) DeleteByRequirement(tx *gorm.DB, requirementID uuid.UUID) (int64, error) {
	res := tx.Where("requirement_id = ?", requirementID).Delete(&model.EPSOrder{})
	return res.RowsAffected, res.Error
}
