package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/propagation"
	"github.com/kdkapsikar/TestSphere/internal/repository"
)

// ExecutionService 执行结果记录服务接口
//
// Two entry points feed the propagation protocol outside the scheduler: a
// manual run status transition and a human-recorded execution outcome.
type ExecutionService interface {
	UpdateRunStatus(runID string, req *UpdateRunRequest) (*models.TestRun, error)
	RecordExecution(executionID string, req *RecordExecutionRequest) (*models.TestExecution, *models.Defect, error)

	GetRun(runID string) (*models.TestRun, error)
	ListRuns(limit, offset int) ([]models.TestRun, int64, error)
	ListRunsByCase(caseID string) ([]models.TestRun, error)
}

type executionService struct {
	cases      repository.TestCaseRepository
	runs       repository.TestRunRepository
	executions repository.TestExecutionRepository
	defects    repository.DefectRepository
	scenarios  repository.TestScenarioRepository
	logger     *slog.Logger
}

// NewExecutionService creates a new execution service
func NewExecutionService(
	cases repository.TestCaseRepository,
	runs repository.TestRunRepository,
	executions repository.TestExecutionRepository,
	defects repository.DefectRepository,
	scenarios repository.TestScenarioRepository,
	logger *slog.Logger,
) ExecutionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &executionService{
		cases:      cases,
		runs:       runs,
		executions: executions,
		defects:    defects,
		scenarios:  scenarios,
		logger:     logger,
	}
}

// ===== Request DTOs =====

type UpdateRunRequest struct {
	Status       string `json:"status" binding:"required"`
	ErrorMessage string `json:"errorMessage"`
}

type RecordExecutionRequest struct {
	ActualResult    string `json:"actualResult"`
	ExecutionStatus string `json:"executionStatus" binding:"required"`
	EvidenceURL     string `json:"evidenceUrl"`
}

// ===== Run transitions =====

// UpdateRunStatus applies a manual status transition to a run and cascades
// the implied test case update. Both legacy (running/passed/failed) and
// canonical status values are accepted; terminal runs are immutable.
func (s *executionService) UpdateRunStatus(runID string, req *UpdateRunRequest) (*models.TestRun, error) {
	target, outcome, ok := models.TranslateLegacyRunStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized run status %q", ErrInvalidStatus, req.Status)
	}

	run, err := s.runs.FindByRunID(runID)
	if err != nil {
		return nil, fmt.Errorf("find test run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: test run %s", ErrNotFound, runID)
	}
	if run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: run %s is already %s", ErrInvalidStatus, runID, run.Status)
	}

	updates := map[string]interface{}{}
	if req.ErrorMessage != "" {
		updates["error_message"] = req.ErrorMessage
	}

	var duration *int
	if target.IsTerminal() && run.EndTime == nil {
		end := time.Now()
		d := int(end.Sub(run.StartTime).Milliseconds())
		updates["end_time"] = end
		updates["duration"] = d
		duration = &d
	}

	changed, err := s.runs.TransitionStatus(runID, run.Status, target, updates)
	if err != nil {
		return nil, fmt.Errorf("update test run: %w", err)
	}
	if !changed {
		return nil, fmt.Errorf("%w: run %s changed concurrently", ErrInvalidStatus, runID)
	}

	if run.TestCaseID != "" {
		// Plain "completed" does not encode pass/fail; a run completed
		// without an error message counts as a pass.
		passed := req.ErrorMessage == ""
		if outcome != nil {
			passed = *outcome
		}
		caseStatus := propagation.CaseStatusForRun(target, passed)
		if err := s.cases.UpdateStatus(run.TestCaseID, caseStatus, duration); err != nil {
			s.logger.Error("run case propagation failed",
				"run_id", runID, "case_id", run.TestCaseID, "err", err)
		}
	}

	return s.runs.FindByRunID(runID)
}

func (s *executionService) GetRun(runID string) (*models.TestRun, error) {
	return s.runs.FindByRunID(runID)
}

func (s *executionService) ListRuns(limit, offset int) ([]models.TestRun, int64, error) {
	return s.runs.FindAll(limit, offset)
}

func (s *executionService) ListRunsByCase(caseID string) ([]models.TestRun, error) {
	return s.runs.FindByCaseID(caseID)
}

// ===== Manual execution recording =====

// RecordExecution records a human outcome on an execution. The execution
// update is the primary, authoritative write: a failed outcome additionally
// synthesizes a defect, but defect creation failure is logged and never rolls
// back or fails the recording.
func (s *executionService) RecordExecution(executionID string, req *RecordExecutionRequest) (*models.TestExecution, *models.Defect, error) {
	status, ok := models.ParseExecutionStatus(req.ExecutionStatus)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unrecognized execution status %q", ErrInvalidStatus, req.ExecutionStatus)
	}

	execution, err := s.executions.FindByID(executionID)
	if err != nil {
		return nil, nil, fmt.Errorf("find test execution: %w", err)
	}
	if execution == nil {
		return nil, nil, fmt.Errorf("%w: test execution %s", ErrNotFound, executionID)
	}

	now := time.Now()
	execution.ActualResult = req.ActualResult
	execution.ExecutionStatus = status
	if req.EvidenceURL != "" {
		execution.EvidenceURL = req.EvidenceURL
	}
	execution.ExecutedAt = &now

	if err := s.executions.Update(execution); err != nil {
		return nil, nil, fmt.Errorf("update test execution: %w", err)
	}

	testCase, err := s.cases.FindByID(execution.TestCaseID)
	if err != nil {
		s.logger.Error("load case for propagation failed",
			"execution_id", executionID, "case_id", execution.TestCaseID, "err", err)
	}

	if caseStatus, ok := propagation.CaseStatusForExecution(status); ok && testCase != nil {
		if err := s.cases.UpdateStatus(testCase.CaseID, caseStatus, nil); err != nil {
			s.logger.Error("execution case propagation failed",
				"execution_id", executionID, "case_id", testCase.CaseID, "err", err)
		}
	}

	var defect *models.Defect
	if propagation.ShouldCreateDefect(status) {
		defect = propagation.BuildDefect(execution, testCase, s.requirementForCase(testCase))
		if err := s.defects.Create(defect); err != nil {
			// Partial propagation is tolerated: the execution record stands.
			s.logger.Error("auto defect creation failed",
				"execution_id", executionID, "case_id", execution.TestCaseID, "err", err)
			defect = nil
		}
	}

	return execution, defect, nil
}

// requirementForCase resolves the requirement a case traces back to through
// its scenario, when both links exist.
func (s *executionService) requirementForCase(testCase *models.TestCase) string {
	if testCase == nil || testCase.ScenarioID == "" {
		return ""
	}
	scenario, err := s.scenarios.FindByID(testCase.ScenarioID)
	if err != nil || scenario == nil {
		return ""
	}
	return scenario.RequirementID
}
