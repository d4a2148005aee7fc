package repository

import (
	"errors"

	"eps-procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfigurationRepository interface {
	Create(tx *gorm.DB, config *model.Configuration) error
	Save(tx *gorm.DB, config *model.Configuration) error
	CreateItem(tx *gorm.DB, item *model.ConfigurationItem) error
	FindByID(id uuid.UUID) (*model.Configuration, error)
	FindByRequirement(requirementID uuid.UUID) ([]model.Configuration, error)
	Items(configurationID uuid.UUID) ([]model.ConfigurationItem, error)
	FindItemByID(itemID uuid.UUID) (*model.ConfigurationItem, error)
	DeleteItem(tx *gorm.DB, itemID uuid.UUID) error
	Delete(tx *gorm.DB, id uuid.UUID) error

	// Batch deletes for the cascade path. Both return rows affected.
	DeleteItemsByConfigurationIDs(tx *gorm.DB, configurationIDs []uuid.UUID) (int64, error)
	DeleteByRequirement(tx *gorm.DB, requirementID uuid.UUID) (int64, error)
}

type configurationRepo struct {
	db *gorm.DB
}

func NewConfigurationRepo(db *gorm.DB) ConfigurationRepository {
	return &configurationRepo{db}
}

func (r *configurationRepo) Create(tx *gorm.DB, config *model.Configuration) error {
	return tx.Create(config).Error
}

func (r *configurationRepo) Save(tx *gorm.DB, config *model.Configuration) error {
	return tx.Save(config).Error
}

func (r *configurationRepo) CreateItem(tx *gorm.DB, item *model.ConfigurationItem) error {
	return tx.Create(item).Error
}

func (r *configurationRepo) FindByID(id uuid.UUID) (*model.Configuration, error) {
	var config model.Configuration
	err := r.db.First(&config, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *configurationRepo) FindByRequirement(requirementID uuid.UUID) ([]model.Configuration, error) {
	var configs []model.Configuration
	err := r.db.Where("requirement_id = ?", requirementID).Order("created_at").Find(&configs).Error
	return configs, err
}

func (r *configurationRepo) Items(configurationID uuid.UUID) ([]model.ConfigurationItem, error) {
	var items []model.ConfigurationItem
	err := r.db.Where("configuration_id = ?", configurationID).Order("created_at").Find(&items).Error
	return items, err
}

func (r *configurationRepo) FindItemByID(itemID uuid.UUID) (*model.ConfigurationItem, error) {
	var item model.ConfigurationItem
	err := r.db.First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *configurationRepo) DeleteItem(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.ConfigurationItem{}, "id = ?", itemID).Error
}

func (r *configurationRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Configuration{}, "id = ?", id).Error
}

func (r *configurationRepo) DeleteItemsByConfigurationIDs(tx *gorm.DB, configurationIDs []uuid.UUID) (int64, error) {
	if len(configurationIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("configuration_id IN ?", configurationIDs).Delete(&model.ConfigurationItem{})
	return res.RowsAffected, res.Error
}

func (r *configurationRepo) DeleteByRequirement(tx *gorm.DB, requirementID uuid.UUID) (int64, error) {
	res := tx.Where("requirement_id = ?", requirementID).Delete(&model.Configuration{})
	return res.RowsAffected, res.Error
}
