package service

import (
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repositories so service logic runs against plain data. The tx
// handle is ignored; each fake mutates its own state directly.

type fakeRequirementRepo struct {
	reqs map[uuid.UUID]*model.Requirement
}

var _ repository.RequirementRepository = (*fakeRequirementRepo)(nil)

func newFakeRequirementRepo(reqs ...*model.Requirement) *fakeRequirementRepo {
	r := &fakeRequirementRepo{reqs: make(map[uuid.UUID]*model.Requirement)}
	for _, req := range reqs {
		r.reqs[req.ID] = req
	}
	return r
}

func (r *fakeRequirementRepo) Create(tx *gorm.DB, req *model.Requirement) error {
	r.reqs[req.ID] = req
	return nil
}

func (r *fakeRequirementRepo) Save(tx *gorm.DB, req *model.Requirement) error {
	r.reqs[req.ID] = req
	return nil
}

func (r *fakeRequirementRepo) FindByID(id uuid.UUID) (*model.Requirement, error) {
	return r.reqs[id], nil
}

func (r *fakeRequirementRepo) FindByCode(code string) (*model.Requirement, error) {
	for _, req := range r.reqs {
		if req.RequirementCode == code {
			return req, nil
		}
	}
	return nil, nil
}

func (r *fakeRequirementRepo) FindByJiraCase(jiraCase string) ([]model.Requirement, error) {
	var out []model.Requirement
	for _, req := range r.reqs {
		if req.JiraCase == jiraCase {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequirementRepo) FindAllWithFilters(filters repository.RequirementFilters) ([]model.Requirement, error) {
	var out []model.Requirement
	for _, req := range r.reqs {
		out = append(out, *req)
	}
	return out, nil
}

func (r *fakeRequirementRepo) Exists(id uuid.UUID) (bool, error) {
	_, ok := r.reqs[id]
	return ok, nil
}

func (r *fakeRequirementRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	delete(r.reqs, id)
	return nil
}

type fakeConfigurationRepo struct {
	configs []model.Configuration
	items   []model.ConfigurationItem
}

var _ repository.ConfigurationRepository = (*fakeConfigurationRepo)(nil)

func (r *fakeConfigurationRepo) Create(tx *gorm.DB, config *model.Configuration) error {
	r.configs = append(r.configs, *config)
	return nil
}

func (r *fakeConfigurationRepo) Save(tx *gorm.DB, config *model.Configuration) error {
	for i := range r.configs {
		if r.configs[i].ID == config.ID {
			r.configs[i] = *config
		}
	}
	return nil
}

func (r *fakeConfigurationRepo) CreateItem(tx *gorm.DB, item *model.ConfigurationItem) error {
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeConfigurationRepo) FindByID(id uuid.UUID) (*model.Configuration, error) {
	for i := range r.configs {
		if r.configs[i].ID == id {
			return &r.configs[i], nil
		}
	}
	return nil, nil
}

func (r *fakeConfigurationRepo) FindByRequirement(requirementID uuid.UUID) ([]model.Configuration, error) {
	var out []model.Configuration
	for _, c := range r.configs {
		if c.RequirementID == requirementID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConfigurationRepo) Items(configurationID uuid.UUID) ([]model.ConfigurationItem, error) {
	var out []model.ConfigurationItem
	for _, item := range r.items {
		if item.ConfigurationID == configurationID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeConfigurationRepo) FindItemByID(itemID uuid.UUID) (*model.ConfigurationItem, error) {
	for i := range r.items {
		if r.items[i].ID == itemID {
			return &r.items[i], nil
		}
	}
	return nil, nil
}

func (r *fakeConfigurationRepo) DeleteItem(tx *gorm.DB, itemID uuid.UUID) error {
	kept := r.items[:0]
	for _, item := range r.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *fakeConfigurationRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	kept := r.configs[:0]
	for _, c := range r.configs {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	r.configs = kept
	return nil
}

func (r *fakeConfigurationRepo) DeleteItemsByConfigurationIDs(tx *gorm.DB, configurationIDs []uuid.UUID) (int64, error) {
	ids := make(map[uuid.UUID]bool, len(configurationIDs))
	for _, id := range configurationIDs {
		ids[id] = true
	}
	var removed int64
	kept := r.items[:0]
	for _, item := range r.items {
		if ids[item.ConfigurationID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	return removed, nil
}

func (r *fakeConfigurationRepo) DeleteByRequirement(tx *gorm.DB, requirementID uuid.UUID) (int64, error) {
	var removed int64
	kept := r.configs[:0]
	for _, c := range r.configs {
		if c.RequirementID == requirementID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.configs = kept
	return removed, nil
}

type fakeOrderRepo struct {
	orders      []model.EPSOrder
	items       []model.EPSOrderItem
	allocations []model.BudgetAllocation
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) Create(tx *gorm.DB, order *model.EPSOrder) error {
	r.orders = append(r.orders, *order)
	return nil
}

func (r *fakeOrderRepo) Save(tx *gorm.DB, order *model.EPSOrder) error {
	for i := range r.orders {
		if r.orders[i].ID == order.ID {
			r.orders[i] = *order
		}
	}
	return nil
}

func (r *fakeOrderRepo) CreateItem(tx *gorm.DB, item *model.EPSOrderItem) error {
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeOrderRepo) CreateAllocation(tx *gorm.DB, alloc *model.BudgetAllocation) error {
	r.allocations = append(r.allocations, *alloc)
	return nil
}

func (r *fakeOrderRepo) FindByID(id uuid.UUID) (*model.EPSOrder, error) {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return &r.orders[i], nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByCode(code string) (*model.EPSOrder, error) {
	for i := range r.orders {
		if r.orders[i].OrderCode == code {
			return &r.orders[i], nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) FindByRequirement(requirementID uuid.UUID) ([]model.EPSOrder, error) {
	var out []model.EPSOrder
	for _, o := range r.orders {
		if o.RequirementID == requirementID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) CountByRequirement(requirementID uuid.UUID) (int64, error) {
	orders, _ := r.FindByRequirement(requirementID)
	return int64(len(orders)), nil
}

func (r *fakeOrderRepo) FindByBudgetCode(budgetCode string) ([]model.EPSOrder, error) {
	seen := make(map[uuid.UUID]bool)
	for _, alloc := range r.allocations {
		if alloc.BudgetCode == budgetCode {
			seen[alloc.OrderID] = true
		}
	}
	var out []model.EPSOrder
	for _, o := range r.orders {
		if seen[o.ID] {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAllWithFilters(filters repository.OrderFilters, page, perPage int) ([]model.EPSOrder, int64, error) {
	return r.orders, int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) Items(orderID uuid.UUID) ([]model.EPSOrderItem, error) {
	var out []model.EPSOrderItem
	for _, item := range r.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) Allocations(orderID uuid.UUID) ([]model.BudgetAllocation, error) {
	var out []model.BudgetAllocation
	for _, alloc := range r.allocations {
		if alloc.OrderID == orderID {
			out = append(out, alloc)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) SumAmountByBudgetCode(budgetCode string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, alloc := range r.allocations {
		if alloc.BudgetCode == budgetCode {
			total = total.Add(alloc.Amount)
		}
	}
	return total, nil
}

func (r *fakeOrderRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	kept := r.orders[:0]
	for _, o := range r.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	r.orders = kept
	return nil
}

func (r *fakeOrderRepo) DeleteAllocationsByOrder(tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	return r.DeleteAllocationsByOrderIDs(tx, []uuid.UUID{orderID})
}

func (r *fakeOrderRepo) DeleteItemsByOrderIDs(tx *gorm.DB, orderIDs []uuid.UUID) (int64, error) {
	ids := make(map[uuid.UUID]bool, len(orderIDs))
	for _, id := range orderIDs {
		ids[id] = true
	}
	var removed int64
	kept := r.items[:0]
	for _, item := range r.items {
		if ids[item.OrderID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	return removed, nil
}

func (r *fakeOrderRepo) DeleteAllocationsByOrderIDs(tx *gorm.DB, orderIDs []uuid.UUID) (int64, error) {
	ids := make(map[uuid.UUID]bool, len(orderIDs))
	for _, id := range orderIDs {
		ids[id] = true
	}
	var removed int64
	kept := r.allocations[:0]
	for _, alloc := range r.allocations {
		if ids[alloc.OrderID] {
			removed++
			continue
		}
		kept = append(kept, alloc)
	}
	r.allocations = kept
	return removed, nil
}

func (r *fakeOrderRepo) DeleteByRequirement(tx *gorm.DB, requirementID uuid.UUID) (int64, error) {
	var removed int64
	kept := r.orders[:0]
	for _, o := range r.orders {
		if o.RequirementID == requirementID {
			removed++
			continue
		}
		kept = append(kept, o)
	}
	r.orders = kept
	return removed, nil
}
