// Package propagation holds the pure decision logic that translates a
// terminal run or execution outcome into the writes required on the linked
// test case and, for failures, a new defect. It performs no I/O itself.
package propagation

import (
	"encoding/json"
	"fmt"

	"github.com/kdkapsikar/TestSphere/internal/models"

	"github.com/google/uuid"
)

// SystemReporter identifies defects filed automatically by the service.
const SystemReporter = "system-auto-triage"

// CaseStatusForRun maps a run status onto the case status it implies.
// A completed run does not encode pass/fail on its own; the caller supplies
// the outcome. Aborts reset the case, they are not test failures.
func CaseStatusForRun(status models.RunStatus, passed bool) models.CaseStatus {
	switch status {
	case models.RunInProgress:
		return models.CaseRunning
	case models.RunCompleted:
		if passed {
			return models.CasePassed
		}
		return models.CaseFailed
	case models.RunAborted, models.RunPlanned:
		return models.CasePending
	default:
		return models.CasePending
	}
}

// CaseStatusForExecution maps a recorded execution outcome onto the case
// status it implies. Skip leaves the case untouched (ok is false).
func CaseStatusForExecution(status models.ExecutionStatus) (models.CaseStatus, bool) {
	switch status {
	case models.ExecutionPass:
		return models.CasePassed, true
	case models.ExecutionFail:
		return models.CaseFailed, true
	case models.ExecutionBlocked:
		return models.CaseBlocked, true
	case models.ExecutionNotExecuted:
		return models.CasePending, true
	default:
		return "", false
	}
}

// ShouldCreateDefect reports whether a recorded outcome warrants a defect.
// Only fail does; blocked and skip never do.
func ShouldCreateDefect(status models.ExecutionStatus) bool {
	return status == models.ExecutionFail
}

// BuildDefect synthesizes a defect from a failed execution. The test case
// and requirement links may be absent; placeholders are used instead of
// failing the synthesis.
func BuildDefect(execution *models.TestExecution, testCase *models.TestCase, requirementID string) *models.Defect {
	defect := &models.Defect{
		DefectID:   uuid.New().String(),
		Title:      "Test failure: untitled test case",
		Severity:   models.SeverityMedium,
		Priority:   models.PriorityMedium,
		Status:     models.DefectNew,
		ReportedBy: SystemReporter,
	}

	if execution != nil {
		defect.TestCaseID = execution.TestCaseID
		defect.ActualResult = execution.ActualResult
		if execution.ActualResult != "" {
			defect.Description = execution.ActualResult
		} else {
			defect.Description = "Automatically created from a failed test execution."
		}
	}

	if testCase != nil {
		defect.Title = fmt.Sprintf("Test failure: %s", testCase.Title)
		defect.TestCaseID = testCase.CaseID
		defect.ExpectedResult = testCase.ExpectedResult
		defect.StepsToReproduce = serializeSteps(testCase.Steps)
		if testCase.Priority != "" {
			defect.Priority = testCase.Priority
		}
	}

	defect.RequirementID = requirementID
	return defect
}

// serializeSteps flattens structured test steps into reproducible text.
func serializeSteps(steps models.JSONArray) string {
	if len(steps) == 0 {
		return ""
	}

	out := ""
	for i, step := range steps {
		var line string
		if s, ok := step.(string); ok {
			line = s
		} else {
			data, err := json.Marshal(step)
			if err != nil {
				continue
			}
			line = string(data)
		}
		if i > 0 {
			out += "\n"
		}
		out += fmt.Sprintf("%d. %s", i+1, line)
	}
	return out
}
