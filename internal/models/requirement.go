package models

import (
	"time"

	"gorm.io/gorm"
)

// Requirement 需求模型，作为场景和缺陷的上游链接目标
type Requirement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RequirementID string    `gorm:"uniqueIndex;size:255;not null" json:"requirementId"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	Priority      Priority  `gorm:"size:10;default:'medium';index" json:"priority"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Scenarios []TestScenario `gorm:"foreignKey:RequirementID;references:RequirementID" json:"-"`
}

// TableName 指定表名
func (Requirement) TableName() string {
	return "requirements"
}

// TestScenario 测试场景模型，可由AI从需求文本生成
type TestScenario struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ScenarioID    string `gorm:"uniqueIndex;size:255;not null" json:"scenarioId"`
	RequirementID string `gorm:"size:255;index" json:"requirementId,omitempty"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Description   string `gorm:"type:text" json:"description,omitempty"`

	// GenerationMeta records how an AI-generated scenario was produced.
	GenerationMeta JSONB `gorm:"type:text;column:generation_meta" json:"generationMeta,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Requirement *Requirement `gorm:"foreignKey:RequirementID;references:RequirementID" json:"-"`
	TestCases   []TestCase   `gorm:"foreignKey:ScenarioID;references:ScenarioID" json:"-"`
}

// TableName 指定表名
func (TestScenario) TableName() string {
	return "test_scenarios"
}
