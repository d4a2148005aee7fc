package service

import (
	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"
	"eps-procurement/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var maxUnitPrice = decimal.RequireFromString("999999.99")

type CreateSKURequest struct {
	SKUCode   string          `json:"sku_code" validate:"required,max=50"`
	Name      string          `json:"name" validate:"required,max=200"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"dec_gt_zero"`
	Supplier  string          `json:"supplier" validate:"required,max=100"`
	Category  string          `json:"category" validate:"max=50"`
}

// UpdateSKURequest carries partial updates; nil fields are untouched.
type UpdateSKURequest struct {
	SKUCode   *string          `json:"sku_code" validate:"omitempty,max=50"`
	Name      *string          `json:"name" validate:"omitempty,max=200"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Supplier  *string          `json:"supplier" validate:"omitempty,max=100"`
	Category  *string          `json:"category" validate:"omitempty,max=50"`
}

type SKUService interface {
	CreateSKU(req *CreateSKURequest) (*model.SKU, error)
	UpdateSKU(id uuid.UUID, req *UpdateSKURequest, changedBy string) (*model.SKU, error)
	GetSKU(id uuid.UUID) (*model.SKU, error)
	GetSKUByCode(code string) (*model.SKU, error)
	SearchSKUs(keyword, supplier string) ([]model.SKU, error)
	DeleteSKU(id uuid.UUID) error
	GetPriceHistory(skuID uuid.UUID) ([]model.PriceHistory, error)
}

type skuService struct {
	skuRepo repository.SKURepository
	db      *gorm.DB
	wsHub   *ws.Hub
}

func NewSKUService(skuRepo repository.SKURepository, db *gorm.DB, hub *ws.Hub) SKUService {
	return &skuService{
		skuRepo: skuRepo,
		db:      db,
		wsHub:   hub,
	}
}

func (s *skuService) CreateSKU(req *CreateSKURequest) (*model.SKU, error) {
	// 1. Validate input
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.UnitPrice.GreaterThan(maxUnitPrice) {
		return nil, apperr.Validation("unit_price", "unit price must not exceed %s", maxUnitPrice)
	}

	// 2. Check duplicate code before inserting; the unique index is the
	// backstop for races
	existing, err := s.skuRepo.FindByCode(req.SKUCode)
	if err != nil {
		return nil, apperr.Internal(err, "failed to look up SKU code %s", req.SKUCode)
	}
	if existing != nil {
		return nil, apperr.AlreadyExists("sku_code", req.SKUCode)
	}

	sku := &model.SKU{
		SKUCode:   req.SKUCode,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Supplier:  req.Supplier,
		Category:  req.Category,
	}

	if err := s.skuRepo.Create(s.db, sku); err != nil {
		return nil, translateCreateErr(err, "sku_code", req.SKUCode)
	}

	return sku, nil
}

// UpdateSKU applies a partial update. A price change appends exactly one
// PriceHistory row in the same transaction; writing the same price again
// appends none.
func (s *skuService) UpdateSKU(id uuid.UUID, req *UpdateSKURequest, changedBy string) (*model.SKU, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated *model.SKU
	var priceChanged bool
	var oldPrice decimal.Decimal

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sku model.SKU
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sku, "id = ?", id).Error; err != nil {
			return translateFirstErr(err, "sku", id.String())
		}

		if req.SKUCode != nil && *req.SKUCode != sku.SKUCode {
			existing, err := s.skuRepo.FindByCode(*req.SKUCode)
			if err != nil {
				return apperr.Internal(err, "failed to look up SKU code %s", *req.SKUCode)
			}
			if existing != nil {
				return apperr.AlreadyExists("sku_code", *req.SKUCode)
			}
			sku.SKUCode = *req.SKUCode
		}

		if req.UnitPrice != nil {
			if !req.UnitPrice.IsPositive() {
				return apperr.Validation("unit_price", "unit price must be greater than 0")
			}
			if req.UnitPrice.GreaterThan(maxUnitPrice) {
				return apperr.Validation("unit_price", "unit price must not exceed %s", maxUnitPrice)
			}
			if history := priceChangeRecord(&sku, *req.UnitPrice, changedBy); history != nil {
				if err := s.skuRepo.CreatePriceHistory(tx, history); err != nil {
					return apperr.Internal(err, "failed to record price history for SKU %s", sku.SKUCode)
				}
				priceChanged = true
				oldPrice = sku.UnitPrice
				sku.UnitPrice = *req.UnitPrice
			}
		}

		if req.Name != nil {
			sku.Name = *req.Name
		}
		if req.Supplier != nil {
			sku.Supplier = *req.Supplier
		}
		if req.Category != nil {
			sku.Category = *req.Category
		}

		if err := s.skuRepo.Save(tx, &sku); err != nil {
			return apperr.Internal(err, "failed to save SKU %s", sku.SKUCode)
		}

		updated = &sku
		return nil
	})
	if err != nil {
		return nil, err
	}

	if priceChanged && s.wsHub != nil {
		s.wsHub.BroadcastEvent("price_changed", map[string]interface{}{
			"sku_id":     updated.ID,
			"sku_code":   updated.SKUCode,
			"old_price":  oldPrice.String(),
			"new_price":  updated.UnitPrice.String(),
			"changed_by": changedBy,
		})
	}

	return updated, nil
}

// priceChangeRecord builds the history row for a price update. Writing
// the same price again yields nil: no row is appended.
func priceChangeRecord(sku *model.SKU, newPrice decimal.Decimal, changedBy string) *model.PriceHistory {
	if newPrice.Equal(sku.UnitPrice) {
		return nil
	}
	return &model.PriceHistory{
		SKUID:     sku.ID,
		OldPrice:  sku.UnitPrice,
		NewPrice:  newPrice,
		ChangedBy: changedBy,
	}
}

func (s *skuService) GetSKU(id uuid.UUID) (*model.SKU, error) {
	sku, err := s.skuRepo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load SKU %s", id)
	}
	if sku == nil {
		return nil, apperr.NotFound("sku", id.String())
	}
	return sku, nil
}

func (s *skuService) GetSKUByCode(code string) (*model.SKU, error) {
	sku, err := s.skuRepo.FindByCode(code)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load SKU %s", code)
	}
	if sku == nil {
		return nil, apperr.NotFound("sku", code)
	}
	return sku, nil
}

func (s *skuService) SearchSKUs(keyword, supplier string) ([]model.SKU, error) {
	skus, err := s.skuRepo.Search(keyword, supplier)
	if err != nil {
		return nil, apperr.Internal(err, "SKU search failed")
	}
	return skus, nil
}

// DeleteSKU refuses to remove a SKU that is still referenced by any
// configuration or order item.
func (s *skuService) DeleteSKU(id uuid.UUID) error {
	sku, err := s.skuRepo.FindByID(id)
	if err != nil {
		return apperr.Internal(err, "failed to load SKU %s", id)
	}
	if sku == nil {
		return apperr.NotFound("sku", id.String())
	}

	var refs int64
	if err := s.db.Model(&model.ConfigurationItem{}).Where("sku_id = ?", id).Count(&refs).Error; err != nil {
		return apperr.Internal(err, "failed to count SKU references")
	}
	var orderRefs int64
	if err := s.db.Model(&model.EPSOrderItem{}).Where("sku_id = ?", id).Count(&orderRefs).Error; err != nil {
		return apperr.Internal(err, "failed to count SKU references")
	}
	refs += orderRefs
	if refs > 0 {
		return apperr.ReferentialIntegrity("sku", id.String(), int(refs),
			"SKU %s is referenced by %d item(s) and cannot be deleted", sku.SKUCode, refs)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Price history goes with the SKU
		if err := tx.Where("sku_id = ?", id).Delete(&model.PriceHistory{}).Error; err != nil {
			return apperr.Internal(err, "failed to delete price history for SKU %s", sku.SKUCode)
		}
		if err := s.skuRepo.Delete(tx, id); err != nil {
			return apperr.Internal(err, "failed to delete SKU %s", sku.SKUCode)
		}
		return nil
	})
}

func (s *skuService) GetPriceHistory(skuID uuid.UUID) ([]model.PriceHistory, error) {
	sku, err := s.skuRepo.FindByID(skuID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load SKU %s", skuID)
	}
	if sku == nil {
		return nil, apperr.NotFound("sku", skuID.String())
	}
	return s.skuRepo.PriceHistoryBySKU(skuID)
}
