package repository

import (
	"errors"

	"eps-procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SKURepository. Find methods return (nil, nil) when no row matches so the
// service layer decides which error kind to raise.
type SKURepository interface {
	Create(tx *gorm.DB, sku *model.SKU) error
	Save(tx *gorm.DB, sku *model.SKU) error
	FindByID(id uuid.UUID) (*model.SKU, error)
	FindByCode(code string) (*model.SKU, error)
	FindAll() ([]model.SKU, error)
	Search(keyword, supplier string) ([]model.SKU, error)
	Exists(id uuid.UUID) (bool, error)
	Delete(tx *gorm.DB, id uuid.UUID) error
	CreatePriceHistory(tx *gorm.DB, ph *model.PriceHistory) error
	PriceHistoryBySKU(skuID uuid.UUID) ([]model.PriceHistory, error)
}

type skuRepo struct {
	db *gorm.DB
}

func NewSKURepo(db *gorm.DB) SKURepository {
	return &skuRepo{db}
}

func (r *skuRepo) Create(tx *gorm.DB, sku *model.SKU) error {
	return tx.Create(sku).Error
}

func (r *skuRepo) Save(tx *gorm.DB, sku *model.SKU) error {
	return tx.Save(sku).Error
}

func (r *skuRepo) FindByID(id uuid.UUID) (*model.SKU, error) {
	var sku model.SKU
	err := r.db.First(&sku, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *skuRepo) FindByCode(code string) (*model.SKU, error) {
	var sku model.SKU
	err := r.db.First(&sku, "sku_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *skuRepo) FindAll() ([]model.SKU, error) {
	var skus []model.SKU
	err := r.db.Order("sku_code").Find(&skus).Error
	return skus, err
}

// Search matches keyword against code or name, optionally narrowed by
// supplier. Empty arguments mean no filter.
func (r *skuRepo) Search(keyword, supplier string) ([]model.SKU, error) {
	query := r.db.Model(&model.SKU{})

	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("sku_code ILIKE ? OR name ILIKE ?", like, like)
	}
	if supplier != "" {
		query = query.Where("supplier ILIKE ?", "%"+supplier+"%")
	}

	var skus []model.SKU
	err := query.Order("sku_code").Find(&skus).Error
	return skus, err
}

func (r *skuRepo) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.SKU{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *skuRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.SKU{}, "id = ?", id).Error
}

func (r *skuRepo) CreatePriceHistory(tx *gorm.DB, ph *model.PriceHistory) error {
	return tx.Create(ph).Error
}

func (r *skuRepo) PriceHistoryBySKU(skuID uuid.UUID) ([]model.PriceHistory, error) {
	var history []model.PriceHistory
	err := r.db.Where("sku_id = ?", skuID).Order("created_at DESC").Find(&history).Error
	return history, err
}
