package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateLegacyCaseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want CaseStatus
	}{
		{"pending", CasePending},
		{"not_executed", CasePending},
		{"running", CaseRunning},
		{"passed", CasePassed},
		{"pass", CasePassed},
		{"failed", CaseFailed},
		{"fail", CaseFailed},
		{"blocked", CaseBlocked},
		// Unrecognized values reset instead of erroring.
		{"", CasePending},
		{"exploded", CasePending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TranslateLegacyCaseStatus(tt.in), tt.in)
	}
}

func TestTranslateLegacyRunStatus(t *testing.T) {
	tests := []struct {
		in         string
		want       RunStatus
		wantPassed *bool
		ok         bool
	}{
		{"planned", RunPlanned, nil, true},
		{"in_progress", RunInProgress, nil, true},
		{"running", RunInProgress, nil, true},
		{"completed", RunCompleted, nil, true},
		{"passed", RunCompleted, boolPtr(true), true},
		{"failed", RunCompleted, boolPtr(false), true},
		{"aborted", RunAborted, nil, true},
		{"", "", nil, false},
		{"finished", "", nil, false},
	}

	for _, tt := range tests {
		got, passed, ok := TranslateLegacyRunStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if tt.wantPassed == nil {
			assert.Nil(t, passed, tt.in)
		} else {
			require.NotNil(t, passed, tt.in)
			assert.Equal(t, *tt.wantPassed, *passed, tt.in)
		}
	}
}

func TestParseExecutionStatus(t *testing.T) {
	for _, valid := range []string{"pass", "fail", "blocked", "not_executed", "skip"} {
		got, ok := ParseExecutionStatus(valid)
		assert.True(t, ok, valid)
		assert.Equal(t, ExecutionStatus(valid), got)
	}

	for _, invalid := range []string{"", "passed", "PASS", "unknown"} {
		_, ok := ParseExecutionStatus(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestRunStatusIsTerminal(t *testing.T) {
	assert.False(t, RunPlanned.IsTerminal())
	assert.False(t, RunInProgress.IsTerminal())
	assert.True(t, RunCompleted.IsTerminal())
	assert.True(t, RunAborted.IsTerminal())
}

func boolPtr(b bool) *bool { return &b }
