package service

import (
	"regexp"
	"strings"

	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"
	"eps-procurement/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DependencyReport describes what blocks a requirement deletion.
type DependencyReport struct {
	HasDependencies bool             `json:"has_dependencies"`
	OrdersCount     int64            `json:"orders_count"`
	Orders          []model.EPSOrder `json:"orders"`
}

// DeletionStats is the count-by-category summary of a cascade delete.
type DeletionStats struct {
	Orders             int64 `json:"orders"`
	OrderItems         int64 `json:"order_items"`
	BudgetAllocations  int64 `json:"budget_allocations"`
	Configurations     int64 `json:"configurations"`
	ConfigurationItems int64 `json:"configuration_items"`
}

// ConfigurationSnapshot is a configuration with its items, verified
// consistent.
type ConfigurationSnapshot struct {
	Configuration model.Configuration       `json:"configuration"`
	Items         []model.ConfigurationItem `json:"items"`
}

// RequirementSnapshot is the verified subtree under one requirement.
type RequirementSnapshot struct {
	Requirement    *model.Requirement      `json:"requirement"`
	Configurations []ConfigurationSnapshot `json:"configurations"`
	Orders         []model.EPSOrder        `json:"orders"`
}

// OrderSnapshot is the verified subtree under one order.
type OrderSnapshot struct {
	Order             *model.EPSOrder          `json:"order"`
	Requirement       *model.Requirement       `json:"requirement"`
	Items             []model.EPSOrderItem     `json:"items"`
	BudgetAllocations []model.BudgetAllocation `json:"budget_allocations"`
}

type IntegrityService interface {
	// CheckRequirementDependencies raises a referential-integrity error
	// carrying the dependent order count when any orders reference the
	// requirement.
	CheckRequirementDependencies(requirementID uuid.UUID) (*DependencyReport, error)

	// CascadeDeleteRequirement removes the requirement and its entire
	// subtree in dependency order as one transaction.
	CascadeDeleteRequirement(requirementID uuid.UUID) (*DeletionStats, error)

	ArchivePriceChange(skuID uuid.UUID, oldPrice, newPrice decimal.Decimal, changedBy string) (*model.PriceHistory, error)
	ValidateBudgetCodeFormat(budgetCode string) error

	// Reference validators used by create/attach operations.
	ValidateSKUReference(id uuid.UUID) error
	ValidateRequirementReference(id uuid.UUID) error
	ValidateOrderReference(id uuid.UUID) error
	ValidateConfigurationReference(id uuid.UUID) error

	VerifyRequirementConsistency(id uuid.UUID) (*RequirementSnapshot, error)
	VerifyOrderConsistency(id uuid.UUID) (*OrderSnapshot, error)
}

type integrityService struct {
	requirementRepo repository.RequirementRepository
	configRepo      repository.ConfigurationRepository
	orderRepo       repository.OrderRepository
	skuRepo         repository.SKURepository
	db              *gorm.DB
	wsHub           *ws.Hub
}

func NewIntegrityService(
	requirementRepo repository.RequirementRepository,
	configRepo repository.ConfigurationRepository,
	orderRepo repository.OrderRepository,
	skuRepo repository.SKURepository,
	db *gorm.DB,
	hub *ws.Hub,
) IntegrityService {
	return &integrityService{
		requirementRepo: requirementRepo,
		configRepo:      configRepo,
		orderRepo:       orderRepo,
		skuRepo:         skuRepo,
		db:              db,
		wsHub:           hub,
	}
}

func (s *integrityService) CheckRequirementDependencies(requirementID uuid.UUID) (*DependencyReport, error) {
	requirement, err := s.requirementRepo.FindByID(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", requirementID)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", requirementID.String())
	}

	orders, err := s.orderRepo.FindByRequirement(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load orders for requirement %s", requirementID)
	}

	if len(orders) > 0 {
		return nil, apperr.ReferentialIntegrity("requirement", requirementID.String(), len(orders),
			"requirement %s has %d dependent order(s) and cannot be deleted", requirement.RequirementCode, len(orders))
	}

	return &DependencyReport{HasDependencies: false, OrdersCount: 0, Orders: orders}, nil
}

func (s *integrityService) CascadeDeleteRequirement(requirementID uuid.UUID) (*DeletionStats, error) {
	requirement, err := s.requirementRepo.FindByID(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", requirementID)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", requirementID.String())
	}

	var stats *DeletionStats
	err = s.db.Transaction(func(tx *gorm.DB) error {
		stats, err = s.cascadeDelete(tx, requirement)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		s.wsHub.BroadcastEvent("requirement_deleted", map[string]interface{}{
			"requirement_id":   requirementID,
			"requirement_code": requirement.RequirementCode,
			"stats":            stats,
		})
	}

	return stats, nil
}

// cascadeDelete removes the subtree leaves-first: order items and
// allocations, then orders, then configuration items, configurations, and
// finally the requirement. Reports rows removed per category.
func (s *integrityService) cascadeDelete(tx *gorm.DB, requirement *model.Requirement) (*DeletionStats, error) {
	stats := &DeletionStats{}

	orders, err := s.orderRepo.FindByRequirement(requirement.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load orders for requirement %s", requirement.ID)
	}
	orderIDs := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	if stats.OrderItems, err = s.orderRepo.DeleteItemsByOrderIDs(tx, orderIDs); err != nil {
		return nil, apperr.Internal(err, "failed to delete order items")
	}
	if stats.BudgetAllocations, err = s.orderRepo.DeleteAllocationsByOrderIDs(tx, orderIDs); err != nil {
		return nil, apperr.Internal(err, "failed to delete budget allocations")
	}
	if stats.Orders, err = s.orderRepo.DeleteByRequirement(tx, requirement.ID); err != nil {
		return nil, apperr.Internal(err, "failed to delete orders")
	}

	configs, err := s.configRepo.FindByRequirement(requirement.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configurations for requirement %s", requirement.ID)
	}
	configIDs := make([]uuid.UUID, 0, len(configs))
	for _, c := range configs {
		configIDs = append(configIDs, c.ID)
	}

	if stats.ConfigurationItems, err = s.configRepo.DeleteItemsByConfigurationIDs(tx, configIDs); err != nil {
		return nil, apperr.Internal(err, "failed to delete configuration items")
	}
	if stats.Configurations, err = s.configRepo.DeleteByRequirement(tx, requirement.ID); err != nil {
		return nil, apperr.Internal(err, "failed to delete configurations")
	}

	if err := s.requirementRepo.Delete(tx, requirement.ID); err != nil {
		return nil, apperr.Internal(err, "failed to delete requirement %s", requirement.RequirementCode)
	}

	return stats, nil
}

func (s *integrityService) ArchivePriceChange(skuID uuid.UUID, oldPrice, newPrice decimal.Decimal, changedBy string) (*model.PriceHistory, error) {
	sku, err := s.skuRepo.FindByID(skuID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load SKU %s", skuID)
	}
	if sku == nil {
		return nil, apperr.NotFound("sku", skuID.String())
	}

	history := &model.PriceHistory{
		SKUID:     skuID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		ChangedBy: changedBy,
	}
	if err := s.skuRepo.CreatePriceHistory(s.db, history); err != nil {
		return nil, apperr.Internal(err, "failed to record price history for SKU %s", sku.SKUCode)
	}
	return history, nil
}

var budgetCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-_]*$`)

// validateBudgetCodeFormat enforces the budget code rule: 3-50 chars,
// letters/digits/hyphen/underscore only, first char alphanumeric.
func validateBudgetCodeFormat(budgetCode string) error {
	if strings.TrimSpace(budgetCode) == "" {
		return apperr.Validation("budget_code", "budget code must not be empty")
	}
	if len(budgetCode) < 3 || len(budgetCode) > 50 {
		return apperr.Validation("budget_code", "budget code length must be between 3 and 50 characters")
	}
	if !budgetCodePattern.MatchString(budgetCode) {
		return apperr.Validation("budget_code",
			"budget code may only contain letters, digits, hyphens and underscores, and must start with a letter or digit")
	}
	return nil
}

func (s *integrityService) ValidateBudgetCodeFormat(budgetCode string) error {
	return validateBudgetCodeFormat(budgetCode)
}

func (s *integrityService) ValidateSKUReference(id uuid.UUID) error {
	exists, err := s.skuRepo.Exists(id)
	if err != nil {
		return apperr.Internal(err, "failed to check SKU %s", id)
	}
	if !exists {
		return apperr.ForeignKey("sku_id", id.String(), "SKU %s does not exist", id)
	}
	return nil
}

func (s *integrityService) ValidateRequirementReference(id uuid.UUID) error {
	exists, err := s.requirementRepo.Exists(id)
	if err != nil {
		return apperr.Internal(err, "failed to check requirement %s", id)
	}
	if !exists {
		return apperr.ForeignKey("requirement_id", id.String(), "requirement %s does not exist", id)
	}
	return nil
}

func (s *integrityService) ValidateOrderReference(id uuid.UUID) error {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return apperr.Internal(err, "failed to check order %s", id)
	}
	if order == nil {
		return apperr.ForeignKey("order_id", id.String(), "order %s does not exist", id)
	}
	return nil
}

func (s *integrityService) ValidateConfigurationReference(id uuid.UUID) error {
	config, err := s.configRepo.FindByID(id)
	if err != nil {
		return apperr.Internal(err, "failed to check configuration %s", id)
	}
	if config == nil {
		return apperr.ForeignKey("configuration_id", id.String(), "configuration %s does not exist", id)
	}
	return nil
}

// VerifyRequirementConsistency loads the full subtree under a requirement
// and asserts every stored foreign key literally matches its parent and
// every SKU reference resolves. Returns the subtree as one consistent
// snapshot or fails on the first violation found.
func (s *integrityService) VerifyRequirementConsistency(id uuid.UUID) (*RequirementSnapshot, error) {
	requirement, err := s.requirementRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", id)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", id.String())
	}

	configs, err := s.configRepo.FindByRequirement(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configurations for requirement %s", id)
	}
	orders, err := s.orderRepo.FindByRequirement(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load orders for requirement %s", id)
	}

	itemsByConfig := make(map[uuid.UUID][]model.ConfigurationItem, len(configs))
	skuExists := make(map[uuid.UUID]bool)
	for _, config := range configs {
		items, err := s.configRepo.Items(config.ID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load items for configuration %s", config.ID)
		}
		itemsByConfig[config.ID] = items
		for _, item := range items {
			if _, seen := skuExists[item.SKUID]; !seen {
				exists, err := s.skuRepo.Exists(item.SKUID)
				if err != nil {
					return nil, apperr.Internal(err, "failed to check SKU %s", item.SKUID)
				}
				skuExists[item.SKUID] = exists
			}
		}
	}

	if err := verifyRequirementSubtree(requirement, configs, itemsByConfig, orders, skuExists); err != nil {
		return nil, err
	}

	snapshot := &RequirementSnapshot{Requirement: requirement, Orders: orders}
	for _, config := range configs {
		snapshot.Configurations = append(snapshot.Configurations, ConfigurationSnapshot{
			Configuration: config,
			Items:         itemsByConfig[config.ID],
		})
	}
	return snapshot, nil
}

// VerifyOrderConsistency is the order-rooted counterpart of
// VerifyRequirementConsistency.
func (s *integrityService) VerifyOrderConsistency(id uuid.UUID) (*OrderSnapshot, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load order %s", id)
	}
	if order == nil {
		return nil, apperr.NotFound("order", id.String())
	}

	requirement, err := s.requirementRepo.FindByID(order.RequirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", order.RequirementID)
	}

	items, err := s.orderRepo.Items(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load items for order %s", order.OrderCode)
	}
	allocations, err := s.orderRepo.Allocations(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load allocations for order %s", order.OrderCode)
	}

	skuExists := make(map[uuid.UUID]bool)
	for _, item := range items {
		if _, seen := skuExists[item.SKUID]; !seen {
			exists, err := s.skuRepo.Exists(item.SKUID)
			if err != nil {
				return nil, apperr.Internal(err, "failed to check SKU %s", item.SKUID)
			}
			skuExists[item.SKUID] = exists
		}
	}

	if err := verifyOrderSubtree(order, requirement != nil, items, allocations, skuExists); err != nil {
		return nil, err
	}

	return &OrderSnapshot{
		Order:             order,
		Requirement:       requirement,
		Items:             items,
		BudgetAllocations: allocations,
	}, nil
}

// verifyRequirementSubtree asserts consistency over already-loaded data,
// surfacing the first violation found.
func verifyRequirementSubtree(
	requirement *model.Requirement,
	configs []model.Configuration,
	itemsByConfig map[uuid.UUID][]model.ConfigurationItem,
	orders []model.EPSOrder,
	skuExists map[uuid.UUID]bool,
) error {
	for _, config := range configs {
		if config.RequirementID != requirement.ID {
			return apperr.BusinessLogic("configuration %s carries requirement ID %s, expected %s",
				config.ID, config.RequirementID, requirement.ID)
		}
		for _, item := range itemsByConfig[config.ID] {
			if item.ConfigurationID != config.ID {
				return apperr.BusinessLogic("configuration item %s carries configuration ID %s, expected %s",
					item.ID, item.ConfigurationID, config.ID)
			}
			if !skuExists[item.SKUID] {
				return apperr.BusinessLogic("configuration item %s references missing SKU %s", item.ID, item.SKUID)
			}
		}
	}

	for _, order := range orders {
		if order.RequirementID != requirement.ID {
			return apperr.BusinessLogic("order %s carries requirement ID %s, expected %s",
				order.OrderCode, order.RequirementID, requirement.ID)
		}
	}

	return nil
}

// verifyOrderSubtree asserts consistency of one order's children over
// already-loaded data.
func verifyOrderSubtree(
	order *model.EPSOrder,
	requirementExists bool,
	items []model.EPSOrderItem,
	allocations []model.BudgetAllocation,
	skuExists map[uuid.UUID]bool,
) error {
	if !requirementExists {
		return apperr.BusinessLogic("order %s references missing requirement %s", order.OrderCode, order.RequirementID)
	}

	for _, item := range items {
		if item.OrderID != order.ID {
			return apperr.BusinessLogic("order item %s carries order ID %s, expected %s",
				item.ID, item.OrderID, order.ID)
		}
		if !skuExists[item.SKUID] {
			return apperr.BusinessLogic("order item %s references missing SKU %s", item.ID, item.SKUID)
		}
	}

	for _, alloc := range allocations {
		if alloc.OrderID != order.ID {
			return apperr.BusinessLogic("budget allocation %s carries order ID %s, expected %s",
				alloc.ID, alloc.OrderID, order.ID)
		}
	}

	return nil
}
