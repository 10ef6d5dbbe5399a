package models

// CaseStatus 测试案例执行状态
type CaseStatus string

const (
	CasePending CaseStatus = "pending"
	CaseRunning CaseStatus = "running"
	CasePassed  CaseStatus = "passed"
	CaseFailed  CaseStatus = "failed"
	CaseBlocked CaseStatus = "blocked"
)

// TranslateLegacyCaseStatus maps both the legacy vocabulary
// (not_executed/pass/fail/blocked) and the canonical one onto the canonical
// enum. The mapping is total: anything unrecognized resets to pending.
func TranslateLegacyCaseStatus(s string) CaseStatus {
	switch s {
	case "pending", "not_executed":
		return CasePending
	case "running":
		return CaseRunning
	case "passed", "pass":
		return CasePassed
	case "failed", "fail":
		return CaseFailed
	case "blocked":
		return CaseBlocked
	default:
		return CasePending
	}
}

// RunStatus 测试批次执行状态
type RunStatus string

const (
	RunPlanned    RunStatus = "planned"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunAborted    RunStatus = "aborted"
)

// IsTerminal returns true once no further automatic transition can occur.
func (s RunStatus) IsTerminal() bool {
	return s == RunCompleted || s == RunAborted
}

// TranslateLegacyRunStatus maps legacy run statuses (running/passed/failed)
// and canonical ones onto the canonical enum. Legacy passed/failed encode an
// outcome that plain "completed" does not; when present it is returned as a
// non-nil passed flag. ok is false for unrecognized values.
func TranslateLegacyRunStatus(s string) (status RunStatus, passed *bool, ok bool) {
	t := true
	f := false
	switch s {
	case "planned":
		return RunPlanned, nil, true
	case "in_progress", "running":
		return RunInProgress, nil, true
	case "completed":
		return RunCompleted, nil, true
	case "passed":
		return RunCompleted, &t, true
	case "failed":
		return RunCompleted, &f, true
	case "aborted":
		return RunAborted, nil, true
	default:
		return "", nil, false
	}
}

// ExecutionStatus 人工记录的执行结果状态
type ExecutionStatus string

const (
	ExecutionPass        ExecutionStatus = "pass"
	ExecutionFail        ExecutionStatus = "fail"
	ExecutionBlocked     ExecutionStatus = "blocked"
	ExecutionNotExecuted ExecutionStatus = "not_executed"
	ExecutionSkip        ExecutionStatus = "skip"
)

// ParseExecutionStatus validates a caller-supplied execution status.
func ParseExecutionStatus(s string) (ExecutionStatus, bool) {
	switch ExecutionStatus(s) {
	case ExecutionPass, ExecutionFail, ExecutionBlocked, ExecutionNotExecuted, ExecutionSkip:
		return ExecutionStatus(s), true
	default:
		return "", false
	}
}

// DefectStatus 缺陷状态
type DefectStatus string

const (
	DefectNew        DefectStatus = "new"
	DefectAssigned   DefectStatus = "assigned"
	DefectInProgress DefectStatus = "in_progress"
	DefectResolved   DefectStatus = "resolved"
	DefectClosed     DefectStatus = "closed"
	DefectReopened   DefectStatus = "reopened"
)

// Severity 缺陷严重程度
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Priority 优先级
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SuiteStatus 测试套件状态
type SuiteStatus string

const (
	SuiteActive   SuiteStatus = "active"
	SuiteInactive SuiteStatus = "inactive"
	SuiteArchived SuiteStatus = "archived"
)
