package service

import (
	"testing"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/propagation"
	"github.com/kdkapsikar/TestSphere/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db         *gorm.DB
	cases      repository.TestCaseRepository
	runs       repository.TestRunRepository
	executions repository.TestExecutionRepository
	defects    repository.DefectRepository
	scenarios  repository.TestScenarioRepository
	svc        ExecutionService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.TestSuite{},
		&models.TestCase{},
		&models.TestRun{},
		&models.TestExecution{},
		&models.Defect{},
		&models.Requirement{},
		&models.TestScenario{},
	))

	f := &serviceFixture{
		db:         db,
		cases:      repository.NewTestCaseRepository(db),
		runs:       repository.NewTestRunRepository(db),
		executions: repository.NewTestExecutionRepository(db),
		defects:    repository.NewDefectRepository(db),
		scenarios:  repository.NewTestScenarioRepository(db),
	}
	f.svc = NewExecutionService(f.cases, f.runs, f.executions, f.defects, f.scenarios, nil)
	return f
}

func (f *serviceFixture) seedCase(t *testing.T, caseID string) {
	require.NoError(t, f.cases.Create(&models.TestCase{
		CaseID:         caseID,
		Title:          "password reset email",
		Priority:       models.PriorityHigh,
		Status:         models.CasePending,
		ExpectedResult: "reset email arrives within a minute",
	}))
}

func (f *serviceFixture) seedRun(t *testing.T, runID, caseID string, status models.RunStatus) {
	require.NoError(t, f.runs.Create(&models.TestRun{
		RunID:      runID,
		TestCaseID: caseID,
		Status:     status,
		StartTime:  time.Now().Add(-time.Minute),
	}))
}

func (f *serviceFixture) seedExecution(t *testing.T, executionID, caseID string) {
	require.NoError(t, f.executions.Create(&models.TestExecution{
		ExecutionID:     executionID,
		TestCaseID:      caseID,
		ExecutionStatus: models.ExecutionNotExecuted,
	}))
}

// ===== UpdateRunStatus =====

func TestUpdateRunStatusInvalidValue(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedRun(t, "run-1", "case-1", models.RunInProgress)

	_, err := f.svc.UpdateRunStatus("run-1", &UpdateRunRequest{Status: "finished"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// The run stays untouched.
	run, err := f.runs.FindByRunID("run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunInProgress, run.Status)
}

func TestUpdateRunStatusNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.UpdateRunStatus("missing", &UpdateRunRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRunStatusTerminalRunIsImmutable(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedRun(t, "run-1", "case-1", models.RunCompleted)

	_, err := f.svc.UpdateRunStatus("run-1", &UpdateRunRequest{Status: "in_progress"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateRunStatusLegacyPassedCascades(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedRun(t, "run-1", "case-1", models.RunInProgress)

	run, err := f.svc.UpdateRunStatus("run-1", &UpdateRunRequest{Status: "passed"})
	require.NoError(t, err)

	assert.Equal(t, models.RunCompleted, run.Status)
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.Duration)

	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CasePassed, tc.Status)
	assert.NotNil(t, tc.LastRun)
}

func TestUpdateRunStatusFailureMessageImpliesFailedCase(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedRun(t, "run-1", "case-1", models.RunInProgress)

	run, err := f.svc.UpdateRunStatus("run-1", &UpdateRunRequest{
		Status:       "completed",
		ErrorMessage: "timeout waiting for email",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, run.Status)
	assert.Equal(t, "timeout waiting for email", run.ErrorMessage)

	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CaseFailed, tc.Status)
}

func TestUpdateRunStatusAbortResetsCase(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedRun(t, "run-1", "case-1", models.RunInProgress)

	run, err := f.svc.UpdateRunStatus("run-1", &UpdateRunRequest{Status: "aborted"})
	require.NoError(t, err)
	assert.Equal(t, models.RunAborted, run.Status)

	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CasePending, tc.Status)
}

// ===== RecordExecution =====

func TestRecordExecutionInvalidStatusLeavesNoTrace(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedExecution(t, "exec-1", "case-1")

	_, _, err := f.svc.RecordExecution("exec-1", &RecordExecutionRequest{
		ExecutionStatus: "passed", // legacy case vocabulary, not an execution status
		ActualResult:    "looked fine",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	execution, err := f.executions.FindByID("exec-1")
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionNotExecuted, execution.ExecutionStatus)
	assert.Empty(t, execution.ActualResult)
	assert.Nil(t, execution.ExecutedAt)
}

func TestRecordExecutionNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, _, err := f.svc.RecordExecution("missing", &RecordExecutionRequest{ExecutionStatus: "pass"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordExecutionPassUpdatesCase(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedExecution(t, "exec-1", "case-1")

	execution, defect, err := f.svc.RecordExecution("exec-1", &RecordExecutionRequest{
		ExecutionStatus: "pass",
		ActualResult:    "email arrived in 20s",
	})
	require.NoError(t, err)
	assert.Nil(t, defect)
	assert.Equal(t, models.ExecutionPass, execution.ExecutionStatus)
	require.NotNil(t, execution.ExecutedAt)

	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CasePassed, tc.Status)
}

func TestRecordExecutionFailCreatesLinkedDefect(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedExecution(t, "exec-1", "case-1")

	// Trace links: case -> scenario -> requirement.
	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	tc.ScenarioID = "scenario-1"
	require.NoError(t, f.cases.Update(tc))
	require.NoError(t, f.scenarios.Create(&models.TestScenario{
		ScenarioID:    "scenario-1",
		RequirementID: "req-1",
		Title:         "account recovery",
	}))

	execution, defect, err := f.svc.RecordExecution("exec-1", &RecordExecutionRequest{
		ExecutionStatus: "fail",
		ActualResult:    "no email after five minutes",
	})
	require.NoError(t, err)
	require.NotNil(t, defect)
	assert.Equal(t, models.ExecutionFail, execution.ExecutionStatus)

	assert.Equal(t, "Test failure: password reset email", defect.Title)
	assert.Equal(t, "case-1", defect.TestCaseID)
	assert.Equal(t, "req-1", defect.RequirementID)
	assert.Equal(t, propagation.SystemReporter, defect.ReportedBy)
	assert.Equal(t, models.PriorityHigh, defect.Priority)

	stored, err := f.defects.FindByID(defect.DefectID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	all, total, err := f.defects.FindAll(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, all, 1)

	tc, err = f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CaseFailed, tc.Status)
}

func TestRecordExecutionBlockedCreatesNoDefect(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedExecution(t, "exec-1", "case-1")

	_, defect, err := f.svc.RecordExecution("exec-1", &RecordExecutionRequest{
		ExecutionStatus: "blocked",
		ActualResult:    "test environment down",
	})
	require.NoError(t, err)
	assert.Nil(t, defect)

	_, total, err := f.defects.FindAll(10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CaseBlocked, tc.Status)
}

func TestRecordExecutionSkipLeavesCaseUntouched(t *testing.T) {
	f := newServiceFixture(t)
	f.seedCase(t, "case-1")
	f.seedExecution(t, "exec-1", "case-1")

	_, defect, err := f.svc.RecordExecution("exec-1", &RecordExecutionRequest{
		ExecutionStatus: "skip",
	})
	require.NoError(t, err)
	assert.Nil(t, defect)

	tc, err := f.cases.FindByID("case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CasePending, tc.Status)
}
