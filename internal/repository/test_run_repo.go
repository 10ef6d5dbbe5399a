package repository

import (
	"errors"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// TestRunRepository 测试批次数据访问接口
type TestRunRepository interface {
	Create(run *models.TestRun) error
	Update(run *models.TestRun) error
	FindByRunID(runID string) (*models.TestRun, error)
	FindByCaseID(caseID string) ([]models.TestRun, error)
	FindInProgressByCase(caseID string) (*models.TestRun, error)
	FindRecent(limit int) ([]models.TestRun, error)
	FindOverdue(now time.Time) ([]models.TestRun, error)
	FindAll(limit, offset int) ([]models.TestRun, int64, error)

	// TransitionStatus performs an atomic conditional update: the run moves
	// from `from` to `to` (with any extra column updates) only if it is still
	// in `from`. Reports whether a row was changed, so a completion callback
	// racing a concurrent stop can tell it lost.
	TransitionStatus(runID string, from, to models.RunStatus, extra map[string]interface{}) (bool, error)
}

// testRunRepo 实现
type testRunRepo struct {
	db *gorm.DB
}

// NewTestRunRepository 创建Repository实例
func NewTestRunRepository(db *gorm.DB) TestRunRepository {
	return &testRunRepo{db: db}
}

func (r *testRunRepo) Create(run *models.TestRun) error {
	return r.db.Create(run).Error
}

func (r *testRunRepo) Update(run *models.TestRun) error {
	return r.db.Save(run).Error
}

func (r *testRunRepo) FindByRunID(runID string) (*models.TestRun, error) {
	var run models.TestRun
	err := r.db.Where("run_id = ?", runID).First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *testRunRepo) FindByCaseID(caseID string) ([]models.TestRun, error) {
	var runs []models.TestRun
	err := r.db.Where("test_case_id = ?", caseID).Order("start_time desc").Find(&runs).Error
	return runs, err
}

func (r *testRunRepo) FindInProgressByCase(caseID string) (*models.TestRun, error) {
	var run models.TestRun
	err := r.db.Where("test_case_id = ? AND status = ?", caseID, models.RunInProgress).
		Order("start_time desc").First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

func (r *testRunRepo) FindRecent(limit int) ([]models.TestRun, error) {
	var runs []models.TestRun
	err := r.db.Order("start_time desc").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *testRunRepo) FindOverdue(now time.Time) ([]models.TestRun, error) {
	var runs []models.TestRun
	err := r.db.Where("status = ? AND deadline IS NOT NULL AND deadline < ?", models.RunInProgress, now).
		Find(&runs).Error
	return runs, err
}

func (r *testRunRepo) FindAll(limit, offset int) ([]models.TestRun, int64, error) {
	var runs []models.TestRun
	var total int64

	if err := r.db.Model(&models.TestRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("start_time desc").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

func (r *testRunRepo) TransitionStatus(runID string, from, to models.RunStatus, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.db.Model(&models.TestRun{}).
		Where("run_id = ? AND status = ?", runID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
