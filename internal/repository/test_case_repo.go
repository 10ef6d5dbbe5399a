package repository

import (
	"errors"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// TestCaseRepository 测试案例数据访问接口
type TestCaseRepository interface {
	Create(testCase *models.TestCase) error
	Update(testCase *models.TestCase) error
	Delete(caseID string) error
	FindByID(caseID string) (*models.TestCase, error)
	FindBySuiteID(suiteID string) ([]models.TestCase, error)
	FindByScenarioID(scenarioID string) ([]models.TestCase, error)
	FindAll(limit, offset int) ([]models.TestCase, int64, error)
	Search(query string) ([]models.TestCase, error)

	// UpdateStatus sets the derived execution status and stamps lastRun.
	// A non-nil duration is copied from the terminal run.
	UpdateStatus(caseID string, status models.CaseStatus, duration *int) error
	CountByStatus() (map[models.CaseStatus]int64, error)
}

// testCaseRepo 实现
type testCaseRepo struct {
	db *gorm.DB
}

// NewTestCaseRepository 创建Repository实例
func NewTestCaseRepository(db *gorm.DB) TestCaseRepository {
	return &testCaseRepo{db: db}
}

func (r *testCaseRepo) Create(testCase *models.TestCase) error {
	return r.db.Create(testCase).Error
}

func (r *testCaseRepo) Update(testCase *models.TestCase) error {
	return r.db.Save(testCase).Error
}

func (r *testCaseRepo) Delete(caseID string) error {
	return r.db.Where("case_id = ?", caseID).Delete(&models.TestCase{}).Error
}

func (r *testCaseRepo) FindByID(caseID string) (*models.TestCase, error) {
	var testCase models.TestCase
	err := r.db.Where("case_id = ?", caseID).First(&testCase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &testCase, nil
}

func (r *testCaseRepo) FindBySuiteID(suiteID string) ([]models.TestCase, error) {
	var testCases []models.TestCase
	err := r.db.Where("suite_id = ?", suiteID).Find(&testCases).Error
	return testCases, err
}

func (r *testCaseRepo) FindByScenarioID(scenarioID string) ([]models.TestCase, error) {
	var testCases []models.TestCase
	err := r.db.Where("scenario_id = ?", scenarioID).Find(&testCases).Error
	return testCases, err
}

func (r *testCaseRepo) FindAll(limit, offset int) ([]models.TestCase, int64, error) {
	var testCases []models.TestCase
	var total int64

	if err := r.db.Model(&models.TestCase{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Limit(limit).Offset(offset).Find(&testCases).Error
	return testCases, total, err
}

func (r *testCaseRepo) Search(query string) ([]models.TestCase, error) {
	var testCases []models.TestCase
	err := r.db.Where("title LIKE ? OR expected_result LIKE ?", "%"+query+"%", "%"+query+"%").
		Find(&testCases).Error
	return testCases, err
}

func (r *testCaseRepo) UpdateStatus(caseID string, status models.CaseStatus, duration *int) error {
	updates := map[string]interface{}{
		"status":   status,
		"last_run": time.Now(),
	}
	if duration != nil {
		updates["duration"] = *duration
	}
	return r.db.Model(&models.TestCase{}).Where("case_id = ?", caseID).Updates(updates).Error
}

func (r *testCaseRepo) CountByStatus() (map[models.CaseStatus]int64, error) {
	var rows []struct {
		Status models.CaseStatus
		Count  int64
	}
	err := r.db.Model(&models.TestCase{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.CaseStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
