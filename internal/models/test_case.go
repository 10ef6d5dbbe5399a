package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TestCase 测试案例模型
type TestCase struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CaseID     string     `gorm:"uniqueIndex;size:255;not null" json:"caseId"`
	SuiteID    string     `gorm:"size:255;index" json:"suiteId,omitempty"`
	ScenarioID string     `gorm:"size:255;index" json:"scenarioId,omitempty"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Priority   Priority   `gorm:"size:10;index;default:'medium'" json:"priority"`
	Status     CaseStatus `gorm:"size:50;default:'pending';index" json:"status"`

	// JSON字段 - 使用自定义类型自动序列化
	Steps          JSONArray `gorm:"type:text" json:"steps,omitempty"`
	ExpectedResult string    `gorm:"type:text" json:"expectedResult,omitempty"`

	LastRun  *time.Time `json:"lastRun,omitempty"`
	Duration *int       `json:"duration,omitempty"` // milliseconds, from the most recent terminal run

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Suite      *TestSuite    `gorm:"foreignKey:SuiteID;references:SuiteID" json:"-"`
	Scenario   *TestScenario `gorm:"foreignKey:ScenarioID;references:ScenarioID" json:"-"`
	Runs       []TestRun     `gorm:"foreignKey:TestCaseID;references:CaseID" json:"-"`
	Executions []TestExecution `gorm:"foreignKey:TestCaseID;references:CaseID" json:"-"`
}

// TableName 指定表名
func (TestCase) TableName() string {
	return "test_cases"
}

// TestRun 一次模拟或人工触发的测试执行批次
type TestRun struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RunID        string     `gorm:"uniqueIndex;size:255;not null" json:"runId"`
	TestCaseID   string     `gorm:"size:255;index" json:"testCaseId,omitempty"`
	Status       RunStatus  `gorm:"size:50;default:'in_progress';index" json:"status"`
	StartTime    time.Time  `gorm:"not null;index" json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Duration     *int       `json:"duration,omitempty"` // milliseconds, EndTime - StartTime
	ErrorMessage string     `gorm:"type:text" json:"errorMessage,omitempty"`

	// Deadline is StartTime plus the maximum simulated delay with margin.
	// Runs still in progress past it are reconciled by the sweeper.
	Deadline *time.Time `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 关联
	TestCase *TestCase `gorm:"foreignKey:TestCaseID;references:CaseID" json:"-"`
}

// TableName 指定表名
func (TestRun) TableName() string {
	return "test_runs"
}

// TestExecution 人工记录的执行结果，独立于模拟执行的 TestRun
type TestExecution struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ExecutionID     string          `gorm:"uniqueIndex;size:255;not null" json:"executionId"`
	RunID           string          `gorm:"size:255;index" json:"runId"`
	TestCaseID      string          `gorm:"size:255;not null;index" json:"testCaseId"`
	ExecutionStatus ExecutionStatus `gorm:"size:50;default:'not_executed';index" json:"executionStatus"`
	ActualResult    string          `gorm:"type:text" json:"actualResult,omitempty"`
	EvidenceURL     string          `gorm:"size:512" json:"evidenceUrl,omitempty"`
	ExecutedAt      *time.Time      `json:"executedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// 关联
	TestCase *TestCase `gorm:"foreignKey:TestCaseID;references:CaseID" json:"-"`
	Run      *TestRun  `gorm:"foreignKey:RunID;references:RunID" json:"-"`
}

// TableName 指定表名
func (TestExecution) TableName() string {
	return "test_executions"
}

// ===== 自定义JSON类型 =====

// JSONArray 自定义JSON数组类型
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONArray value: unsupported type %T", value)
	}

	if len(bytes) == 0 || string(bytes) == "[]" {
		*j = JSONArray{}
		return nil
	}

	if err := json.Unmarshal(bytes, j); err != nil {
		return fmt.Errorf("failed to unmarshal JSONArray value: %w (input: %s)", err, string(bytes))
	}
	return nil
}

// JSONB 自定义JSON类型（用于对象）
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, j)
}
