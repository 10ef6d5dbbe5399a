package repository

import (
	"errors"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// RequirementRepository 需求数据访问接口
type RequirementRepository interface {
	Create(requirement *models.Requirement) error
	Update(requirement *models.Requirement) error
	Delete(requirementID string) error
	FindByID(requirementID string) (*models.Requirement, error)
	FindAll(limit, offset int) ([]models.Requirement, int64, error)
}

// requirementRepo 实现
type requirementRepo struct {
	db *gorm.DB
}

// NewRequirementRepository 创建Repository实例
func NewRequirementRepository(db *gorm.DB) RequirementRepository {
	return &requirementRepo{db: db}
}

func (r *requirementRepo) Create(requirement *models.Requirement) error {
	return r.db.Create(requirement).Error
}

func (r *requirementRepo) Update(requirement *models.Requirement) error {
	return r.db.Save(requirement).Error
}

func (r *requirementRepo) Delete(requirementID string) error {
	return r.db.Where("requirement_id = ?", requirementID).Delete(&models.Requirement{}).Error
}

func (r *requirementRepo) FindByID(requirementID string) (*models.Requirement, error) {
	var requirement models.Requirement
	err := r.db.Where("requirement_id = ?", requirementID).First(&requirement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &requirement, nil
}

func (r *requirementRepo) FindAll(limit, offset int) ([]models.Requirement, int64, error) {
	var requirements []models.Requirement
	var total int64

	if err := r.db.Model(&models.Requirement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Find(&requirements).Error
	return requirements, total, err
}
