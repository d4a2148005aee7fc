package service

import (
	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRequirementRequest struct {
	RequirementCode string `json:"requirement_code" validate:"required,max=50"`
	JiraCase        string `json:"jira_case" validate:"required,max=50"`
	Description     string `json:"description"`
	Status          string `json:"status" validate:"max=20"`
}

// UpdateRequirementRequest carries partial updates; nil fields are
// untouched.
type UpdateRequirementRequest struct {
	RequirementCode *string `json:"requirement_code" validate:"omitempty,max=50"`
	JiraCase        *string `json:"jira_case" validate:"omitempty,max=50"`
	Description     *string `json:"description"`
	Status          *string `json:"status" validate:"omitempty,max=20"`
}

type CreateConfigurationRequest struct {
	ConfigName string            `json:"config_name" validate:"required,max=100"`
	Items      []ConfigItemInput `json:"items" validate:"required,min=1,dive"`
}

type RequirementService interface {
	CreateRequirement(req *CreateRequirementRequest) (*model.Requirement, error)
	UpdateRequirement(id uuid.UUID, req *UpdateRequirementRequest) (*model.Requirement, error)
	GetRequirement(id uuid.UUID) (*model.Requirement, error)
	GetRequirementByCode(code string) (*model.Requirement, error)
	FindByJiraCase(jiraCase string) ([]model.Requirement, error)
	ListRequirements(filters repository.RequirementFilters) ([]model.Requirement, error)
	DeleteRequirement(id uuid.UUID) error

	CreateConfiguration(requirementID uuid.UUID, req *CreateConfigurationRequest) (*model.Configuration, error)
	ListConfigurations(requirementID uuid.UUID) ([]model.Configuration, error)
	GetConfiguration(id uuid.UUID) (*model.Configuration, error)
	AddConfigurationItem(configurationID uuid.UUID, item ConfigItemInput) (*model.ConfigurationItem, error)
	RemoveConfigurationItem(itemID uuid.UUID) error
}

type requirementService struct {
	requirementRepo repository.RequirementRepository
	configRepo      repository.ConfigurationRepository
	orderRepo       repository.OrderRepository
	skuRepo         repository.SKURepository
	db              *gorm.DB
}

func NewRequirementService(
	requirementRepo repository.RequirementRepository,
	configRepo repository.ConfigurationRepository,
	orderRepo repository.OrderRepository,
	skuRepo repository.SKURepository,
	db *gorm.DB,
) RequirementService {
	return &requirementService{
		requirementRepo: requirementRepo,
		configRepo:      configRepo,
		orderRepo:       orderRepo,
		skuRepo:         skuRepo,
		db:              db,
	}
}

func (s *requirementService) CreateRequirement(req *CreateRequirementRequest) (*model.Requirement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.requirementRepo.FindByCode(req.RequirementCode)
	if err != nil {
		return nil, apperr.Internal(err, "failed to look up requirement code %s", req.RequirementCode)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("requirement_code", req.RequirementCode)
	}

	status := req.Status
	if status == "" {
		status = model.RequirementStatusDraft
	}

	requirement := &model.Requirement{
		RequirementCode: req.RequirementCode,
		JiraCase:        req.JiraCase,
		Description:     req.Description,
		Status:          status,
	}

	if err := s.requirementRepo.Create(s.db, requirement); err != nil {
		return nil, translateCreateErr(err, "requirement_code", req.RequirementCode)
	}

	return requirement, nil
}

func (s *requirementService) UpdateRequirement(id uuid.UUID, req *UpdateRequirementRequest) (*model.Requirement, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	requirement, err := s.requirementRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", id)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", id.String())
	}

	if req.RequirementCode != nil && *req.RequirementCode != requirement.RequirementCode {
		existing, err := s.requirementRepo.FindByCode(*req.RequirementCode)
		if err != nil {
			return nil, apperr.Internal(err, "failed to look up requirement code %s", *req.RequirementCode)
		}
		if existing != nil {
			return nil, apperr.AlreadyExists("requirement_code", *req.RequirementCode)
		}
		requirement.RequirementCode = *req.RequirementCode
	}
	if req.JiraCase != nil {
		requirement.JiraCase = *req.JiraCase
	}
	if req.Description != nil {
		requirement.Description = *req.Description
	}
	if req.Status != nil {
		requirement.Status = *req.Status
	}

	if err := s.requirementRepo.Save(s.db, requirement); err != nil {
		return nil, apperr.Internal(err, "failed to save requirement %s", requirement.RequirementCode)
	}

	return requirement, nil
}

func (s *requirementService) GetRequirement(id uuid.UUID) (*model.Requirement, error) {
	requirement, err := s.requirementRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", id)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", id.String())
	}
	return requirement, nil
}

func (s *requirementService) GetRequirementByCode(code string) (*model.Requirement, error) {
	requirement, err := s.requirementRepo.FindByCode(code)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", code)
	}
	if requirement == nil {
		return nil, apperr.NotFound("requirement", code)
	}
	return requirement, nil
}

func (s *requirementService) FindByJiraCase(jiraCase string) ([]model.Requirement, error) {
	reqs, err := s.requirementRepo.FindByJiraCase(jiraCase)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirements for Jira case %s", jiraCase)
	}
	return reqs, nil
}

func (s *requirementService) ListRequirements(filters repository.RequirementFilters) ([]model.Requirement, error) {
	reqs, err := s.requirementRepo.FindAllWithFilters(filters)
	if err != nil {
		return nil, apperr.Internal(err, "requirement listing failed")
	}
	return reqs, nil
}

// DeleteRequirement removes a requirement and its owned configurations.
// It is blocked when dependent orders exist; use the cascade delete on the
// integrity service to remove the full subtree.
func (s *requirementService) DeleteRequirement(id uuid.UUID) error {
	requirement, err := s.requirementRepo.FindByID(id)
	if err != nil {
		return apperr.Internal(err, "failed to load requirement %s", id)
	}
	if requirement == nil {
		return apperr.NotFound("requirement", id.String())
	}

	orderCount, err := s.orderRepo.CountByRequirement(id)
	if err != nil {
		return apperr.Internal(err, "failed to count dependent orders")
	}
	if orderCount > 0 {
		return apperr.ReferentialIntegrity("requirement", id.String(), int(orderCount),
			"requirement %s has %d dependent order(s) and cannot be deleted", requirement.RequirementCode, orderCount)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		configs, err := s.configRepo.FindByRequirement(id)
		if err != nil {
			return apperr.Internal(err, "failed to load configurations for requirement %s", id)
		}
		configIDs := make([]uuid.UUID, 0, len(configs))
		for _, c := range configs {
			configIDs = append(configIDs, c.ID)
		}
		if _, err := s.configRepo.DeleteItemsByConfigurationIDs(tx, configIDs); err != nil {
			return apperr.Internal(err, "failed to delete configuration items")
		}
		if _, err := s.configRepo.DeleteByRequirement(tx, id); err != nil {
			return apperr.Internal(err, "failed to delete configurations")
		}
		if err := s.requirementRepo.Delete(tx, id); err != nil {
			return apperr.Internal(err, "failed to delete requirement %s", requirement.RequirementCode)
		}
		return nil
	})
}

// CreateConfiguration prices the given lines at current SKU prices and
// persists the configuration with its items atomically. Snapshot prices
// are fixed at this point.
func (s *requirementService) CreateConfiguration(requirementID uuid.UUID, req *CreateConfigurationRequest) (*model.Configuration, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	requirement, err := s.requirementRepo.FindByID(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load requirement %s", requirementID)
	}
	if requirement == nil {
		return nil, apperr.ForeignKey("requirement_id", requirementID.String(), "requirement %s does not exist", requirementID)
	}

	// Resolve live prices up front so validation failures happen before
	// any write
	type pricedItem struct {
		skuID     uuid.UUID
		quantity  int
		unitPrice decimal.Decimal
		subtotal  decimal.Decimal
	}
	priced := make([]pricedItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		sku, err := s.skuRepo.FindByID(item.SKUID)
		if err != nil {
			return nil, apperr.Internal(err, "failed to load SKU %s", item.SKUID)
		}
		if sku == nil {
			return nil, apperr.ForeignKey("sku_id", item.SKUID.String(), "SKU %s does not exist", item.SKUID)
		}
		subtotal := itemSubtotal(sku.UnitPrice, item.Quantity)
		priced = append(priced, pricedItem{
			skuID:     item.SKUID,
			quantity:  item.Quantity,
			unitPrice: sku.UnitPrice,
			subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	config := &model.Configuration{
		RequirementID: requirementID,
		ConfigName:    req.ConfigName,
		TotalPrice:    total,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.configRepo.Create(tx, config); err != nil {
			return apperr.Internal(err, "failed to create configuration %s", req.ConfigName)
		}
		for _, p := range priced {
			item := &model.ConfigurationItem{
				ConfigurationID: config.ID,
				SKUID:           p.skuID,
				Quantity:        p.quantity,
				UnitPrice:       p.unitPrice,
				Subtotal:        p.subtotal,
			}
			if err := s.configRepo.CreateItem(tx, item); err != nil {
				return apperr.Internal(err, "failed to create configuration item")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (s *requirementService) ListConfigurations(requirementID uuid.UUID) ([]model.Configuration, error) {
	configs, err := s.configRepo.FindByRequirement(requirementID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configurations for requirement %s", requirementID)
	}
	return configs, nil
}

func (s *requirementService) GetConfiguration(id uuid.UUID) (*model.Configuration, error) {
	config, err := s.configRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configuration %s", id)
	}
	if config == nil {
		return nil, apperr.NotFound("configuration", id.String())
	}
	items, err := s.configRepo.Items(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configuration items")
	}
	config.Items = items
	return config, nil
}

// AddConfigurationItem appends a line at the current SKU price and keeps
// the denormalized total in step, in one transaction.
func (s *requirementService) AddConfigurationItem(configurationID uuid.UUID, input ConfigItemInput) (*model.ConfigurationItem, error) {
	if err := validateRequest(&input); err != nil {
		return nil, err
	}

	config, err := s.configRepo.FindByID(configurationID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load configuration %s", configurationID)
	}
	if config == nil {
		return nil, apperr.ForeignKey("configuration_id", configurationID.String(), "configuration %s does not exist", configurationID)
	}

	sku, err := s.skuRepo.FindByID(input.SKUID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load SKU %s", input.SKUID)
	}
	if sku == nil {
		return nil, apperr.ForeignKey("sku_id", input.SKUID.String(), "SKU %s does not exist", input.SKUID)
	}

	item := &model.ConfigurationItem{
		ConfigurationID: configurationID,
		SKUID:           input.SKUID,
		Quantity:        input.Quantity,
		UnitPrice:       sku.UnitPrice,
		Subtotal:        itemSubtotal(sku.UnitPrice, input.Quantity),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.configRepo.CreateItem(tx, item); err != nil {
			return apperr.Internal(err, "failed to create configuration item")
		}
		config.TotalPrice = config.TotalPrice.Add(item.Subtotal)
		if err := s.configRepo.Save(tx, config); err != nil {
			return apperr.Internal(err, "failed to update configuration total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *requirementService) RemoveConfigurationItem(itemID uuid.UUID) error {
	item, err := s.configRepo.FindItemByID(itemID)
	if err != nil {
		return apperr.Internal(err, "failed to load configuration item %s", itemID)
	}
	if item == nil {
		return apperr.NotFound("configuration_item", itemID.String())
	}

	config, err := s.configRepo.FindByID(item.ConfigurationID)
	if err != nil {
		return apperr.Internal(err, "failed to load configuration %s", item.ConfigurationID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.configRepo.DeleteItem(tx, itemID); err != nil {
			return apperr.Internal(err, "failed to delete configuration item %s", itemID)
		}
		if config != nil {
			config.TotalPrice = config.TotalPrice.Sub(item.Subtotal)
			if err := s.configRepo.Save(tx, config); err != nil {
				return apperr.Internal(err, "failed to update configuration total")
			}
		}
		return nil
	})
}
