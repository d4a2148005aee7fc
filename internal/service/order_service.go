package service

import (
	"time"

	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"
	"eps-procurement/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateOrderRequest carries partial updates; nil fields are untouched.
type UpdateOrderRequest struct {
	OrderCode   *string          `json:"order_code" validate:"omitempty,max=50"`
	Supplier    *string          `json:"supplier" validate:"omitempty,max=100"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
	Status      *string          `json:"status" validate:"omitempty,max=20"`
}

// OrderDetails is the full read model for one order.
type OrderDetails struct {
	Order             *model.EPSOrder          `json:"order"`
	Requirement       *model.Requirement       `json:"requirement"`
	Items             []model.EPSOrderItem     `json:"items"`
	BudgetAllocations []model.BudgetAllocation `json:"budget_allocations"`
}

type OrderService interface {
	// SplitRequirementToOrders partitions the requirement's configured
	// items into one order per resolved supplier. supplierOverrides maps
	// configuration IDs to suppliers; items of unlisted configurations
	// resolve through their SKU.
	SplitRequirementToOrders(requirementID uuid.UUID, supplierOverrides map[uuid.UUID]string) ([]model.EPSOrder, error)

	// AllocateBudget atomically replaces the order's allocation set. The
	// entry last in caller-supplied order absorbs the rounding remainder;
	// no canonical sort is applied.
	AllocateBudget(orderID uuid.UUID, entries []AllocationEntry) ([]model.BudgetAllocation, error)

	GetOrderDetails(orderID uuid.UUID) (*OrderDetails, error)
	GetOrderByCode(code string) (*model.EPSOrder, error)
	ListOrders(filters repository.OrderFilters, page, perPage int) ([]model.EPSOrder, int64, error)
	UpdateOrder(id uuid.UUID, req *UpdateOrderRequest) (*model.EPSOrder, error)
	DeleteOrder(id uuid.UUID) error
	GetAllocations(orderID uuid.UUID) ([]model.BudgetAllocation, error)
	CalculateBudgetTotal(budgetCode string) (decimal.Decimal, error)
	FindOrdersByBudgetCode(budgetCode string) ([]model.EPSOrder, error)
}

type orderService struct {
	orderRepo       repository.OrderRepository
	requirementRepo repository.RequirementRepository
	configRepo      repository.ConfigurationRepository
	skuRepo         repository.SKURepository
	db              *gorm.DB
	wsHub           *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	requirementRepo repository.RequirementRepository,
	configRepo repository.ConfigurationRepository,
	skuRepo repository.SKURepository,
	db *gorm.DB,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		requirementRepo: requirementRepo,
		configRepo:      configRepo,
		skuRepo:         skuRepo,
		db:              db,
		wsHub:           hub,
	}
}

func (s *orderService) SplitRequirementToOrders(requirementID uuid.UUID, supplierOverrides map[uuid.UUID]string) ([]model.EPSOrder, error) {
	requirement, err := s.requirementRepo.FindByID(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", requirementID)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", requirementID.String())
	}

	configs, err := s.configRepo.FindByRequirement(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configurations for requirement %s", requirementID)
	}
	if len(configs) == 0 {
		return nil, apperr.BusinessLogic("requirement %s has no configurations to split", requirement.RequirementCode)
	}

	// Load every item and resolve its SKU supplier before any write
	itemsByConfig := make(map[uuid.UUID][]model.ConfigurationItem, len(configs))
	supplierBySKU := make(map[uuid.UUID]string)
	for _, config := range configs {
		items, err := s.configRepo.Items(config.ID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load items for configuration %s", config.ID)
		}
		itemsByConfig[config.ID] = items

		for _, item := range items {
			if _, seen := supplierBySKU[item.SKUID]; seen {
				continue
			}
			sku, err := s.skuRepo.FindByID(item.SKUID)
			if err != nil {
				return nil, apperr.Internal(err, "failed to load SKU %s", item.SKUID)
			}
			if sku == nil {
				continue // groupItemsBySupplier reports the missing reference
			}
			supplierBySKU[item.SKUID] = sku.Supplier
		}
	}

	buckets, err := groupItemsBySupplier(configs, itemsByConfig, supplierBySKU, supplierOverrides)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format("20060102150405")
	orders := make([]model.EPSOrder, 0, len(buckets))

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for idx, bucket := range buckets {
			total := decimal.Zero
			for _, item := range bucket.Items {
				total = total.Add(item.Subtotal)
			}

			order := model.EPSOrder{
				OrderCode:     buildOrderCode(requirement.RequirementCode, bucket.Supplier, timestamp, idx),
				RequirementID: requirementID,
				Supplier:      bucket.Supplier,
				TotalAmount:   total,
				Status:        model.OrderStatusPending,
			}
			if err := s.orderRepo.Create(tx, &order); err != nil {
				return translateCreateErr(err, "order_code", order.OrderCode)
			}

			// One order item per source configuration item, snapshot
			// price unchanged
			for _, item := range bucket.Items {
				orderItem := model.EPSOrderItem{
					OrderID:   order.ID,
					SKUID:     item.SKUID,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
					Subtotal:  item.Subtotal,
				}
				if err := s.orderRepo.CreateItem(tx, &orderItem); err != nil {
					return apperr.Internal(err, "failed to create order item for order %s", order.OrderCode)
				}
			}

			orders = append(orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		codes := make([]string, len(orders))
		for i, o := range orders {
			codes[i] = o.OrderCode
		}
		s.wsHub.BroadcastEvent("requirement_split", map[string]interface{}{
			"requirement_id":   requirementID,
			"requirement_code": requirement.RequirementCode,
			"order_count":      len(orders),
			"order_codes":      codes,
		})
	}

	return orders, nil
}

func (s *orderService) AllocateBudget(orderID uuid.UUID, entries []AllocationEntry) ([]model.BudgetAllocation, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order %s", orderID)
	}
	if order == nil {
		return nil, apperr.NotFound("order", orderID.String())
	}

	if err := validateAllocationEntries(entries); err != nil {
		return nil, err
	}

	amounts := computeAllocationAmounts(order.TotalAmount, entries)
	allocations := make([]model.BudgetAllocation, 0, len(entries))

	// Replace the whole allocation set in one transaction: either all old
	// rows are gone and all new rows exist, or nothing changes
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.orderRepo.DeleteAllocationsByOrder(tx, orderID); err != nil {
			return apperr.Internal(err, "failed to clear allocations for order %s", order.OrderCode)
		}
		for i, entry := range entries {
			alloc := model.BudgetAllocation{
				OrderID:              orderID,
				BudgetCode:           entry.BudgetCode,
				AllocationPercentage: entry.Percentage,
				Amount:               amounts[i],
			}
			if err := s.orderRepo.CreateAllocation(tx, &alloc); err != nil {
				return apperr.Internal(err, "failed to create allocation %s for order %s", entry.BudgetCode, order.OrderCode)
			}
			allocations = append(allocations, alloc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		s.wsHub.BroadcastEvent("budget_allocated", map[string]interface{}{
			"order_id":         orderID,
			"order_code":       order.OrderCode,
			"allocation_count": len(allocations),
		})
	}

	return allocations, nil
}

func (s *orderService) GetOrderDetails(orderID uuid.UUID) (*OrderDetails, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order %s", orderID)
	}
	if order == nil {
		return nil, apperr.NotFound("order", orderID.String())
	}

	requirement, err := s.requirementRepo.FindByID(order.RequirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", order.RequirementID)
	}

	items, err := s.orderRepo.Items(orderID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load items for order %s", order.OrderCode)
	}

	allocations, err := s.orderRepo.Allocations(orderID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load allocations for order %s", order.OrderCode)
	}

	return &OrderDetails{
		Order:             order,
		Requirement:       requirement,
		Items:             items,
		BudgetAllocations: allocations,
	}, nil
}

func (s *orderService) GetOrderByCode(code string) (*model.EPSOrder, error) {
	order, err := s.orderRepo.FindByCode(code)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order %s", code)
	}
	if order == nil {
		return nil, apperr.NotFound("order", code)
	}
	return order, nil
}

func (s *orderService) ListOrders(filters repository.OrderFilters, page, perPage int) ([]model.EPSOrder, int64, error) {
	orders, total, err := s.orderRepo.FindAllWithFilters(filters, page, perPage)
	if err != nil {
		return nil, 0, apperr.Internal(err, "order listing failed")
	}
	return orders, total, nil
}

func (s *orderService) UpdateOrder(id uuid.UUID, req *UpdateOrderRequest) (*model.EPSOrder, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order %s", id)
	}
	if order == nil {
		return nil, apperr.NotFound("order", id.String())
	}

	if req.OrderCode != nil && *req.OrderCode != order.OrderCode {
		existing, err := s.orderRepo.FindByCode(*req.OrderCode)
		if err != nil {
			return nil, apperr.Internal(err, "failed to look up order code %s", *req.OrderCode)
		}
		if existing != nil {
			return nil, apperr.AlreadyExists("order_code", *req.OrderCode)
		}
		order.OrderCode = *req.OrderCode
	}
	if req.Supplier != nil {
		order.Supplier = *req.Supplier
	}
	if req.TotalAmount != nil {
		order.TotalAmount = *req.TotalAmount
	}
	if req.Status != nil {
		order.Status = *req.Status
	}

	if err := s.orderRepo.Save(s.db, order); err != nil {
		return nil, apperr.Internal(err, "failed to save order %s", order.OrderCode)
	}

	return order, nil
}

// DeleteOrder removes one order with its items and allocations.
func (s *orderService) DeleteOrder(id uuid.UUID) error {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return apperr.Internal(err, "failed to load order %s", id)
	}
	if order == nil {
		return apperr.NotFound("order", id.String())
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ids := []uuid.UUID{id}
		if _, err := s.orderRepo.DeleteItemsByOrderIDs(tx, ids); err != nil {
			return apperr.Internal(err, "failed to delete items for order %s", order.OrderCode)
		}
		if _, err := s.orderRepo.DeleteAllocationsByOrderIDs(tx, ids); err != nil {
			return apperr.Internal(err, "failed to delete allocations for order %s", order.OrderCode)
		}
		if err := s.orderRepo.Delete(tx, id); err != nil {
			return apperr.Internal(err, "failed to delete order %s", order.OrderCode)
		}
		return nil
	})
}

func (s *orderService) GetAllocations(orderID uuid.UUID) ([]model.BudgetAllocation, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order %s", orderID)
	}
	if order == nil {
		return nil, apperr.NotFound("order", orderID.String())
	}
	return s.orderRepo.Allocations(orderID)
}

// CalculateBudgetTotal sums every allocation amount booked against a
// budget code.
func (s *orderService) CalculateBudgetTotal(budgetCode string) (decimal.Decimal, error) {
	if err := validateBudgetCodeFormat(budgetCode); err != nil {
		return decimal.Zero, err
	}
	total, err := s.orderRepo.SumAmountByBudgetCode(budgetCode)
	if err != nil {
		return decimal.Zero, apperr.Internal(err, "failed to sum budget %s", budgetCode)
	}
	return total, nil
}

func (s *orderService) FindOrdersByBudgetCode(budgetCode string) ([]model.EPSOrder, error) {
	orders, err := s.orderRepo.FindByBudgetCode(budgetCode)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load orders for budget %s", budgetCode)
	}
	return orders, nil
}
