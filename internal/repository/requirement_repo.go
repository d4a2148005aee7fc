package repository

import (
	"errors"

	"eps-procurement/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequirementFilters narrows the requirement listing. Empty fields are
// ignored.
type RequirementFilters struct {
	RequirementCode string
	JiraCase        string
	Status          string
}

type RequirementRepository interface {
	Create(tx *gorm.DB, req *model.Requirement) error
	Save(tx *gorm.DB, req *model.Requirement) error
	FindByID(id uuid.UUID) (*model.Requirement, error)
	FindByCode(code string) (*model.Requirement, error)
	FindByJiraCase(jiraCase string) ([]model.Requirement, error)
	FindAllWithFilters(filters RequirementFilters) ([]model.Requirement, error)
	Exists(id uuid.UUID) (bool, error)
	Delete(tx *gorm.DB, id uuid.UUID) error
}

type requirementRepo struct {
	db *gorm.DB
}

func NewRequirementRepo(db *gorm.DB) RequirementRepository {
	return &requirementRepo{db}
}

func (r *requirementRepo) Create(tx *gorm.DB, req *model.Requirement) error {
	return tx.Create(req).Error
}

func (r *requirementRepo) Save(tx *gorm.DB, req *model.Requirement) error {
	return tx.Save(req).Error
}

func (r *requirementRepo) FindByID(id uuid.UUID) (*model.Requirement, error) {
	var req model.Requirement
	err := r.db.First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepo) FindByCode(code string) (*model.Requirement, error) {
	var req model.Requirement
	err := r.db.First(&req, "requirement_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepo) FindByJiraCase(jiraCase string) ([]model.Requirement, error) {
	var reqs []model.Requirement
	err := r.db.Where("jira_case = ?", jiraCase).Find(&reqs).Error
	return reqs, err
}

func (r *requirementRepo) FindAllWithFilters(filters RequirementFilters) ([]model.Requirement, error) {
	query := r.db.Model(&model.Requirement{})

	if filters.RequirementCode != "" {
		query = query.Where("requirement_code ILIKE ?", "%"+filters.RequirementCode+"%")
	}
	if filters.JiraCase != "" {
		query = query.Where("jira_case ILIKE ?", "%"+filters.JiraCase+"%")
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var reqs []model.Requirement
	err := query.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *requirementRepo) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Requirement{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *requirementRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Requirement{}, "id = ?", id).Error
}
