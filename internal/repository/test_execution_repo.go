package repository

import (
	"errors"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// TestExecutionRepository 执行记录数据访问接口
type TestExecutionRepository interface {
	Create(execution *models.TestExecution) error
	Update(execution *models.TestExecution) error
	Delete(executionID string) error
	FindByID(executionID string) (*models.TestExecution, error)
	FindByCaseID(caseID string) ([]models.TestExecution, error)
	FindByRunID(runID string) ([]models.TestExecution, error)
	FindAll(limit, offset int) ([]models.TestExecution, int64, error)
}

// testExecutionRepo 实现
type testExecutionRepo struct {
	db *gorm.DB
}

// NewTestExecutionRepository 创建Repository实例
func NewTestExecutionRepository(db *gorm.DB) TestExecutionRepository {
	return &testExecutionRepo{db: db}
}

func (r *testExecutionRepo) Create(execution *models.TestExecution) error {
	return r.db.Create(execution).Error
}

func (r *testExecutionRepo) Update(execution *models.TestExecution) error {
	return r.db.Save(execution).Error
}

func (r *testExecutionRepo) Delete(executionID string) error {
	return r.db.Where("execution_id = ?", executionID).Delete(&models.TestExecution{}).Error
}

func (r *testExecutionRepo) FindByID(executionID string) (*models.TestExecution, error) {
	var execution models.TestExecution
	err := r.db.Where("execution_id = ?", executionID).First(&execution).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &execution, nil
}

func (r *testExecutionRepo) FindByCaseID(caseID string) ([]models.TestExecution, error) {
	var executions []models.TestExecution
	err := r.db.Where("test_case_id = ?", caseID).Order("created_at desc").Find(&executions).Error
	return executions, err
}

func (r *testExecutionRepo) FindByRunID(runID string) ([]models.TestExecution, error) {
	var executions []models.TestExecution
	err := r.db.Where("run_id = ?", runID).Find(&executions).Error
	return executions, err
}

func (r *testExecutionRepo) FindAll(limit, offset int) ([]models.TestExecution, int64, error) {
	var executions []models.TestExecution
	var total int64

	if err := r.db.Model(&models.TestExecution{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Find(&executions).Error
	return executions, total, err
}
