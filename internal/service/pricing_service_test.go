package service

import (
	"testing"

	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"
	"eps-procurement/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fakeSKURepo serves SKUs from memory so pricing logic runs without a
// database.
type fakeSKURepo struct {
	skus map[uuid.UUID]*model.SKU
}

var _ repository.SKURepository = (*fakeSKURepo)(nil)

func newFakeSKURepo(skus ...*model.SKU) *fakeSKURepo {
	r := &fakeSKURepo{skus: make(map[uuid.UUID]*model.SKU)}
	for _, sku := range skus {
		r.skus[sku.ID] = sku
	}
	return r
}

func (r *fakeSKURepo) Create(tx *gorm.DB, sku *model.SKU) error {
	r.skus[sku.ID] = sku
	return nil
}

func (r *fakeSKURepo) Save(tx *gorm.DB, sku *model.SKU) error {
	r.skus[sku.ID] = sku
	return nil
}

func (r *fakeSKURepo) FindByID(id uuid.UUID) (*model.SKU, error) {
	return r.skus[id], nil
}

func (r *fakeSKURepo) FindByCode(code string) (*model.SKU, error) {
	for _, sku := range r.skus {
		if sku.SKUCode == code {
			return sku, nil
		}
	}
	return nil, nil
}

func (r *fakeSKURepo) FindAll() ([]model.SKU, error) {
	var out []model.SKU
	for _, sku := range r.skus {
		out = append(out, *sku)
	}
	return out, nil
}

func (r *fakeSKURepo) Search(keyword, supplier string) ([]model.SKU, error) {
	return r.FindAll()
}

func (r *fakeSKURepo) Exists(id uuid.UUID) (bool, error) {
	_, ok := r.skus[id]
	return ok, nil
}

func (r *fakeSKURepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	delete(r.skus, id)
	return nil
}

func (r *fakeSKURepo) CreatePriceHistory(tx *gorm.DB, ph *model.PriceHistory) error {
	return nil
}

func (r *fakeSKURepo) PriceHistoryBySKU(skuID uuid.UUID) ([]model.PriceHistory, error) {
	return nil, nil
}

func newSKU(code, price string) *model.SKU {
	return &model.SKU{
		BaseModel: model.BaseModel{ID: uuid.New()},
		SKUCode:   code,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func TestItemSubtotalExact(t *testing.T) {
	tests := []struct {
		price    string
		quantity int
		want     string
	}{
		{"10.00", 3, "30"},
		{"0.01", 100, "1"},
		{"350.50", 7, "2453.5"},
		{"999999.99", 1, "999999.99"},
		// 0.1 * 3 is 0.30000000000000004 in binary floats
		{"0.1", 3, "0.3"},
	}
	for _, tt := range tests {
		got := itemSubtotal(decimal.RequireFromString(tt.price), tt.quantity)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("itemSubtotal(%s, %d) = %s, want %s", tt.price, tt.quantity, got, tt.want)
		}
	}
}

func TestCurrentSKUPrice(t *testing.T) {
	sku := newSKU("DELL-LAT-5440", "1200.00")
	svc := NewPricingService(newFakeSKURepo(sku))

	price, err := svc.CurrentSKUPrice(sku.ID)
	if err != nil {
		t.Fatalf("CurrentSKUPrice() error = %v", err)
	}
	if !price.Equal(sku.UnitPrice) {
		t.Errorf("CurrentSKUPrice() = %s, want %s", price, sku.UnitPrice)
	}

	_, err = svc.CurrentSKUPrice(uuid.New())
	if !apperr.IsNotFound(err) {
		t.Errorf("CurrentSKUPrice(unknown) error = %v, want not_found", err)
	}
}

func TestConfigurationPrice(t *testing.T) {
	laptop := newSKU("DELL-LAT-5440", "1200.00")
	dock := newSKU("DELL-WD22", "289.99")
	svc := NewPricingService(newFakeSKURepo(laptop, dock))

	total, err := svc.ConfigurationPrice([]ConfigItemInput{
		{SKUID: laptop.ID, Quantity: 2},
		{SKUID: dock.ID, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("ConfigurationPrice() error = %v", err)
	}
	if want := decimal.RequireFromString("3269.97"); !total.Equal(want) {
		t.Errorf("ConfigurationPrice() = %s, want %s", total, want)
	}

	_, err = svc.ConfigurationPrice([]ConfigItemInput{{SKUID: uuid.New(), Quantity: 1}})
	if !apperr.IsNotFound(err) {
		t.Errorf("ConfigurationPrice(unknown SKU) error = %v, want not_found", err)
	}
}

func TestValidateConfigurationPrice(t *testing.T) {
	svc := NewPricingService(newFakeSKURepo())

	items := []model.ConfigurationItem{
		{Subtotal: decimal.RequireFromString("100.00")},
		{Subtotal: decimal.RequireFromString("49.99")},
	}

	consistent := &model.Configuration{TotalPrice: decimal.RequireFromString("149.99")}
	if !svc.ValidateConfigurationPrice(consistent, items) {
		t.Error("matching total reported inconsistent")
	}

	drifted := &model.Configuration{TotalPrice: decimal.RequireFromString("150.09")}
	if svc.ValidateConfigurationPrice(drifted, items) {
		t.Error("drifted total reported consistent")
	}
}
