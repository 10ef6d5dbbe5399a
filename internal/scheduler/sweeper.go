package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"

	"github.com/robfig/cron/v3"
)

// Sweeper reconciles runs whose process died mid-flight. In-process timers do
// not survive a restart, so any run still in progress past its persisted
// deadline is aborted and its case reset to pending.
type Sweeper struct {
	cases  repository.TestCaseRepository
	runs   repository.TestRunRepository
	logger *slog.Logger

	cron *cron.Cron
	now  func() time.Time
}

// NewSweeper constructs a sweeper with the given dependencies.
func NewSweeper(
	cases repository.TestCaseRepository,
	runs repository.TestRunRepository,
	logger *slog.Logger,
) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cases:  cases,
		runs:   runs,
		logger: logger,
		cron:   cron.New(),
		now:    time.Now,
	}
}

// Start runs one immediate sweep (startup reconciliation) and then schedules
// periodic sweeps with the given cron spec.
func (s *Sweeper) Start(spec string) error {
	if err := s.Sweep(); err != nil {
		s.logger.Error("startup sweep failed", "err", err)
	}

	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Sweep(); err != nil {
			s.logger.Error("sweep failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the periodic sweeps.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep aborts every in-progress run whose deadline has passed.
func (s *Sweeper) Sweep() error {
	overdue, err := s.runs.FindOverdue(s.now())
	if err != nil {
		return fmt.Errorf("find overdue runs: %w", err)
	}

	for _, run := range overdue {
		end := s.now()
		duration := int(end.Sub(run.StartTime).Milliseconds())
		ok, err := s.runs.TransitionStatus(run.RunID, models.RunInProgress, models.RunAborted,
			map[string]interface{}{
				"end_time":      end,
				"duration":      duration,
				"error_message": timeoutDiagnostic,
			})
		if err != nil {
			s.logger.Error("sweep transition failed", "run_id", run.RunID, "err", err)
			continue
		}
		if !ok {
			continue
		}

		if run.TestCaseID != "" {
			if err := s.cases.UpdateStatus(run.TestCaseID, models.CasePending, nil); err != nil {
				s.logger.Error("sweep case reset failed",
					"run_id", run.RunID, "case_id", run.TestCaseID, "err", err)
			}
		}
		s.logger.Warn("aborted orphaned run", "run_id", run.RunID, "case_id", run.TestCaseID)
	}

	return nil
}
