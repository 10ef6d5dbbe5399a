package models

import (
	"time"

	"gorm.io/gorm"
)

// TestSuite 测试套件模型，按套件分组测试案例
type TestSuite struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	SuiteID     string      `gorm:"uniqueIndex;size:255;not null" json:"suiteId"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Status      SuiteStatus `gorm:"size:50;default:'active';index" json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	TestCases []TestCase `gorm:"foreignKey:SuiteID;references:SuiteID" json:"testCases,omitempty"`
}

// TableName 指定表名
func (TestSuite) TableName() string {
	return "test_suites"
}
