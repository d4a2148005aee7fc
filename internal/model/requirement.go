package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Requirement is a demand record tied to an external Jira case.
// Status is a free-form label (draft, confirmed, ...), no transition
// graph is enforced.
type Requirement struct {
	BaseModel
	RequirementCode string `gorm:"type:varchar(50);uniqueIndex;not null" json:"requirement_code"`
	JiraCase        string `gorm:"type:varchar(50);not null;index" json:"jira_case"`
	Description     string `gorm:"type:text" json:"description"`
	Status          string `gorm:"type:varchar(20);default:'draft'" json:"status"`

	// Relations
	Configurations []Configuration `gorm:"foreignKey:RequirementID" json:"configurations,omitempty"`
	Orders         []EPSOrder      `gorm:"foreignKey:RequirementID" json:"orders,omitempty"`
}

// Configuration is a priced bill-of-materials proposal under a requirement.
// TotalPrice is denormalized and must always equal the sum of its items'
// subtotals.
type Configuration struct {
	BaseModel
	RequirementID uuid.UUID       `gorm:"type:uuid;not null;index" json:"requirement_id"`
	ConfigName    string          `gorm:"type:varchar(100);not null" json:"config_name"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`

	// Relations
	Items []ConfigurationItem `gorm:"foreignKey:ConfigurationID" json:"items,omitempty"`
}

// ConfigurationItem is one SKU x quantity line of a configuration.
// UnitPrice and Subtotal are snapshots taken at configuration time and do
// not follow later SKU price changes.
type ConfigurationItem struct {
	BaseModel
	ConfigurationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"configuration_id"`
	SKUID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"sku_id"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`

	SKU *SKU `gorm:"foreignKey:SKUID" json:"sku,omitempty"`
}
