package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Default status labels. Free-form, callers may write anything.
const (
	OrderStatusPending     = "pending"
	RequirementStatusDraft = "draft"
)

// EPSOrder is a supplier-specific purchase order derived from a
// requirement's configurations. TotalAmount must always equal the sum of
// its items' subtotals.
type EPSOrder struct {
	BaseModel
	OrderCode     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_code"`
	RequirementID uuid.UUID       `gorm:"type:uuid;not null;index" json:"requirement_id"`
	Supplier      string          `gorm:"type:varchar(100);not null;index" json:"supplier"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status        string          `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Relations
	Items             []EPSOrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	BudgetAllocations []BudgetAllocation `gorm:"foreignKey:OrderID" json:"budget_allocations,omitempty"`
}

// EPSOrderItem is one line of an order. Quantity, UnitPrice and Subtotal
// are copied from the originating configuration item, never re-read from
// the live SKU.
type EPSOrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	SKUID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"sku_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`

	SKU *SKU `gorm:"foreignKey:SKUID" json:"sku,omitempty"`
}

// BudgetAllocation splits an order's cost across budget codes. For one
// order the percentages sum to 100 (+/- 0.01) and the amounts sum exactly
// to the order's TotalAmount.
type BudgetAllocation struct {
	BaseModel
	OrderID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	BudgetCode           string          `gorm:"type:varchar(50);not null;index" json:"budget_code"`
	AllocationPercentage decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"allocation_percentage"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
}
