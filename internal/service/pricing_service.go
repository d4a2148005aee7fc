package service

import (
	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfigItemInput is one SKU x quantity line used when pricing a
// configuration from live SKU prices.
type ConfigItemInput struct {
	SKUID    uuid.UUID `json:"sku_id" validate:"uuid_required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// PricingService does the exact money arithmetic. Live SKU prices are only
// consulted when building a configuration from scratch; persisted items
// keep their snapshot price.
type PricingService interface {
	ItemSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal
	CurrentSKUPrice(skuID uuid.UUID) (decimal.Decimal, error)
	ConfigurationPrice(items []ConfigItemInput) (decimal.Decimal, error)
	RecalculateConfigurationTotal(items []model.ConfigurationItem) decimal.Decimal
	ValidateConfigurationPrice(config *model.Configuration, items []model.ConfigurationItem) bool
}

type pricingService struct {
	skuRepo repository.SKURepository
}

func NewPricingService(skuRepo repository.SKURepository) PricingService {
	return &pricingService{skuRepo: skuRepo}
}

func (s *pricingService) ItemSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return itemSubtotal(unitPrice, quantity)
}

// itemSubtotal is unit price times quantity, exact decimal all the way.
func itemSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func (s *pricingService) CurrentSKUPrice(skuID uuid.UUID) (decimal.Decimal, error) {
	sku, err := s.skuRepo.FindByID(skuID)
	if err != nil {
		return decimal.Zero, apperr.Internal(err, "failed to load SKU %s", skuID)
	}
	if sku == nil {
		return decimal.Zero, apperr.NotFound("sku", skuID.String())
	}
	return sku.UnitPrice, nil
}

// ConfigurationPrice totals the given lines at current SKU prices. Fails
// with a not-found error when a referenced SKU is missing.
func (s *pricingService) ConfigurationPrice(items []ConfigItemInput) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		unitPrice, err := s.CurrentSKUPrice(item.SKUID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(itemSubtotal(unitPrice, item.Quantity))
	}
	return total, nil
}

func (s *pricingService) RecalculateConfigurationTotal(items []model.ConfigurationItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// ValidateConfigurationPrice reports whether the denormalized total still
// matches the items, within a cent.
func (s *pricingService) ValidateConfigurationPrice(config *model.Configuration, items []model.ConfigurationItem) bool {
	calculated := s.RecalculateConfigurationTotal(items)
	return calculated.Sub(config.TotalPrice).Abs().LessThan(decimal.NewFromFloat(0.01))
}
