package repository

import (
	"errors"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// TestScenarioRepository 测试场景数据访问接口
type TestScenarioRepository interface {
	Create(scenario *models.TestScenario) error
	Update(scenario *models.TestScenario) error
	Delete(scenarioID string) error
	FindByID(scenarioID string) (*models.TestScenario, error)
	FindByRequirementID(requirementID string) ([]models.TestScenario, error)
	FindAll(limit, offset int) ([]models.TestScenario, int64, error)
}

// testScenarioRepo 实现
type testScenarioRepo struct {
	db *gorm.DB
}

// NewTestScenarioRepository 创建Repository实例
func NewTestScenarioRepository(db *gorm.DB) TestScenarioRepository {
	return &testScenarioRepo{db: db}
}

func (r *testScenarioRepo) Create(scenario *models.TestScenario) error {
	return r.db.Create(scenario).Error
}

func (r *testScenarioRepo) Update(scenario *models.TestScenario) error {
	return r.db.Save(scenario).Error
}

func (r *testScenarioRepo) Delete(scenarioID string) error {
	return r.db.Where("scenario_id = ?", scenarioID).Delete(&models.TestScenario{}).Error
}

func (r *testScenarioRepo) FindByID(scenarioID string) (*models.TestScenario, error) {
	var scenario models.TestScenario
	err := r.db.Where("scenario_id = ?", scenarioID).First(&scenario).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scenario, nil
}

func (r *testScenarioRepo) FindByRequirementID(requirementID string) ([]models.TestScenario, error) {
	var scenarios []models.TestScenario
	err := r.db.Where("requirement_id = ?", requirementID).Find(&scenarios).Error
	return scenarios, err
}

func (r *testScenarioRepo) FindAll(limit, offset int) ([]models.TestScenario, int64, error) {
	var scenarios []models.TestScenario
	var total int64

	if err := r.db.Model(&models.TestScenario{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Find(&scenarios).Error
	return scenarios, total, err
}
