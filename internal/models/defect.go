package models

import (
	"time"

	"gorm.io/gorm"
)

// Defect 缺陷模型，可由失败的执行记录自动创建
type Defect struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	DefectID         string       `gorm:"uniqueIndex;size:255;not null" json:"defectId"`
	Title            string       `gorm:"size:255;not null" json:"title"`
	Description      string       `gorm:"type:text" json:"description,omitempty"`
	StepsToReproduce string       `gorm:"type:text" json:"stepsToReproduce,omitempty"`
	ExpectedResult   string       `gorm:"type:text" json:"expectedResult,omitempty"`
	ActualResult     string       `gorm:"type:text" json:"actualResult,omitempty"`
	Severity         Severity     `gorm:"size:20;default:'medium';index" json:"severity"`
	Priority         Priority     `gorm:"size:10;default:'medium';index" json:"priority"`
	Status           DefectStatus `gorm:"size:50;default:'new';index" json:"status"`
	TestCaseID       string       `gorm:"size:255;index" json:"testCaseId,omitempty"`
	RequirementID    string       `gorm:"size:255;index" json:"requirementId,omitempty"`
	ReportedBy       string       `gorm:"size:255" json:"reportedBy"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	TestCase    *TestCase    `gorm:"foreignKey:TestCaseID;references:CaseID" json:"-"`
	Requirement *Requirement `gorm:"foreignKey:RequirementID;references:RequirementID" json:"-"`
}

// TableName 指定表名
func (Defect) TableName() string {
	return "defects"
}
