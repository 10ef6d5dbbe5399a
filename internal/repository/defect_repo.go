package repository

import (
	"errors"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// DefectRepository 缺陷数据访问接口
type DefectRepository interface {
	Create(defect *models.Defect) error
	Update(defect *models.Defect) error
	Delete(defectID string) error
	FindByID(defectID string) (*models.Defect, error)
	FindByCaseID(caseID string) ([]models.Defect, error)
	FindAll(limit, offset int) ([]models.Defect, int64, error)
}

// defectRepo 实现
type defectRepo struct {
	db *gorm.DB
}

// NewDefectRepository 创建Repository实例
func NewDefectRepository(db *gorm.DB) DefectRepository {
	return &defectRepo{db: db}
}

func (r *defectRepo) Create(defect *models.Defect) error {
	return r.db.Create(defect).Error
}

func (r *defectRepo) Update(defect *models.Defect) error {
	return r.db.Save(defect).Error
}

func (r *defectRepo) Delete(defectID string) error {
	return r.db.Where("defect_id = ?", defectID).Delete(&models.Defect{}).Error
}

func (r *defectRepo) FindByID(defectID string) (*models.Defect, error) {
	var defect models.Defect
	err := r.db.Where("defect_id = ?", defectID).First(&defect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &defect, nil
}

func (r *defectRepo) FindByCaseID(caseID string) ([]models.Defect, error) {
	var defects []models.Defect
	err := r.db.Where("test_case_id = ?", caseID).Order("created_at desc").Find(&defects).Error
	return defects, err
}

func (r *defectRepo) FindAll(limit, offset int) ([]models.Defect, int64, error) {
	var defects []models.Defect
	var total int64

	if err := r.db.Model(&models.Defect{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("created_at desc").Limit(limit).Offset(offset).Find(&defects).Error
	return defects, total, err
}
