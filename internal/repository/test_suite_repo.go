package repository

import (
	"errors"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"gorm.io/gorm"
)

// TestSuiteRepository 测试套件数据访问接口
type TestSuiteRepository interface {
	Create(suite *models.TestSuite) error
	Update(suite *models.TestSuite) error
	Delete(suiteID string) error
	FindByID(suiteID string) (*models.TestSuite, error)
	FindAll() ([]models.TestSuite, error)
}

// testSuiteRepo 实现
type testSuiteRepo struct {
	db *gorm.DB
}

// NewTestSuiteRepository 创建Repository实例
func NewTestSuiteRepository(db *gorm.DB) TestSuiteRepository {
	return &testSuiteRepo{db: db}
}

func (r *testSuiteRepo) Create(suite *models.TestSuite) error {
	return r.db.Create(suite).Error
}

func (r *testSuiteRepo) Update(suite *models.TestSuite) error {
	return r.db.Save(suite).Error
}

func (r *testSuiteRepo) Delete(suiteID string) error {
	return r.db.Where("suite_id = ?", suiteID).Delete(&models.TestSuite{}).Error
}

func (r *testSuiteRepo) FindByID(suiteID string) (*models.TestSuite, error) {
	var suite models.TestSuite
	err := r.db.Where("suite_id = ?", suiteID).First(&suite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &suite, nil
}

func (r *testSuiteRepo) FindAll() ([]models.TestSuite, error) {
	var suites []models.TestSuite
	err := r.db.Order("created_at asc").Find(&suites).Error
	return suites, err
}
