package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKU is a catalog item with its current unit price and supplier.
// Price changes go through the SKU service so every change leaves a
// PriceHistory row behind.
type SKU struct {
	BaseModel
	SKUCode   string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku_code"`
	Name      string          `gorm:"type:varchar(200);not null" json:"name"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Supplier  string          `gorm:"type:varchar(100);not null;index" json:"supplier"`
	Category  string          `gorm:"type:varchar(50)" json:"category"`

	// Relations
	PriceHistory []PriceHistory `gorm:"foreignKey:SKUID" json:"price_history,omitempty"`
}

// PriceHistory is an append-only log of SKU price changes.
// Rows are never updated or deleted outside a SKU cascade.
type PriceHistory struct {
	BaseModel
	SKUID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sku_id"`
	OldPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"old_price"`
	NewPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"new_price"`
	ChangedBy string          `gorm:"type:varchar(50)" json:"changed_by"`
}
