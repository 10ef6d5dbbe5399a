package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/propagation"
	"github.com/kdkapsikar/TestSphere/internal/repository"
	"github.com/kdkapsikar/TestSphere/internal/websocket"

	"github.com/google/uuid"
)

// ErrCaseNotFound is returned when the referenced test case id does not resolve.
var ErrCaseNotFound = errors.New("test case not found")

const (
	// failureDiagnostic is the fixed error recorded on a simulated failure.
	failureDiagnostic = "assertion failed: response did not match expected result"

	// timeoutDiagnostic is recorded by the crash-safety fallback and the sweeper.
	timeoutDiagnostic = "execution timed out before a result was recorded"

	// deadlineMargin pads the run deadline beyond the maximum simulated delay
	// so the sweeper never races a healthy completion callback.
	deadlineMargin = 30 * time.Second
)

// TimerHandle is a cancelable pending callback.
type TimerHandle interface {
	// Stop cancels the callback. It is a no-op (returning false) when the
	// timer already fired or was already stopped.
	Stop() bool
}

// Options tunes the simulated execution engine.
type Options struct {
	MinDelay time.Duration // lower bound of the simulated run delay
	MaxDelay time.Duration // upper bound (exclusive)
	PassRate float64       // probability a simulated run passes
}

// Scheduler manages in-flight simulated test case executions. It owns the
// table of cancelable timers keyed by run id; cancellation that races a
// firing callback is resolved by the store-level conditional status
// transition, never by trusting the timer alone.
type Scheduler struct {
	cases  repository.TestCaseRepository
	runs   repository.TestRunRepository
	hub    *websocket.Hub // optional
	logger *slog.Logger
	opts   Options

	mu     sync.Mutex
	timers map[string]TimerHandle // runID -> pending completion

	// Injected for tests; default to time.AfterFunc, time.Now and math/rand.
	afterFunc func(d time.Duration, f func()) TimerHandle
	now       func() time.Time
	randFloat func() float64
}

// NewScheduler constructs a scheduler with the given dependencies.
func NewScheduler(
	cases repository.TestCaseRepository,
	runs repository.TestRunRepository,
	hub *websocket.Hub,
	logger *slog.Logger,
	opts Options,
) *Scheduler {
	if opts.MinDelay <= 0 {
		opts.MinDelay = 2 * time.Second
	}
	if opts.MaxDelay <= opts.MinDelay {
		opts.MaxDelay = 10 * time.Second
	}
	if opts.PassRate <= 0 || opts.PassRate > 1 {
		opts.PassRate = 0.8
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cases:  cases,
		runs:   runs,
		hub:    hub,
		logger: logger,
		opts:   opts,
		timers: make(map[string]TimerHandle),
		afterFunc: func(d time.Duration, f func()) TimerHandle {
			return time.AfterFunc(d, f)
		},
		now:       time.Now,
		randFloat: rand.Float64,
	}
}

// Start begins a simulated execution of the test case: it creates an
// in-progress run, marks the case running and schedules the completion
// callback after a randomized delay. A prior in-flight run on the same case
// is stopped first, so at most one run per case is ever in flight.
func (s *Scheduler) Start(testCaseID string) (*models.TestRun, error) {
	tc, err := s.cases.FindByID(testCaseID)
	if err != nil {
		return nil, fmt.Errorf("find test case: %w", err)
	}
	if tc == nil {
		return nil, ErrCaseNotFound
	}

	if prior, err := s.runs.FindInProgressByCase(tc.CaseID); err != nil {
		return nil, fmt.Errorf("find in-flight run: %w", err)
	} else if prior != nil {
		s.abortRun(prior)
	}

	now := s.now()
	deadline := now.Add(s.opts.MaxDelay + deadlineMargin)
	run := &models.TestRun{
		RunID:      uuid.New().String(),
		TestCaseID: tc.CaseID,
		Status:     models.RunInProgress,
		StartTime:  now,
		Deadline:   &deadline,
	}
	if err := s.runs.Create(run); err != nil {
		return nil, fmt.Errorf("create test run: %w", err)
	}

	if err := s.cases.UpdateStatus(tc.CaseID, models.CaseRunning, nil); err != nil {
		return nil, fmt.Errorf("update test case status: %w", err)
	}

	delay := s.opts.MinDelay +
		time.Duration(s.randFloat()*float64(s.opts.MaxDelay-s.opts.MinDelay))
	runID := run.RunID
	handle := s.afterFunc(delay, func() { s.complete(runID) })

	s.mu.Lock()
	s.timers[runID] = handle
	s.mu.Unlock()

	s.broadcast(runID, "run_started", run)
	s.logger.Info("execution started",
		"case_id", tc.CaseID, "run_id", runID, "delay_ms", delay.Milliseconds())

	return run, nil
}

// Stop cancels the in-flight run of the test case, if any, and resets the
// case to pending. It never fails because nothing was in flight: the reset
// is tolerant and idempotent.
func (s *Scheduler) Stop(testCaseID string) error {
	tc, err := s.cases.FindByID(testCaseID)
	if err != nil {
		return fmt.Errorf("find test case: %w", err)
	}
	if tc == nil {
		return ErrCaseNotFound
	}

	run, err := s.runs.FindInProgressByCase(tc.CaseID)
	if err != nil {
		return fmt.Errorf("find in-flight run: %w", err)
	}
	if run != nil {
		s.abortRun(run)
	}

	if err := s.cases.UpdateStatus(tc.CaseID, models.CasePending, nil); err != nil {
		return fmt.Errorf("reset test case status: %w", err)
	}
	return nil
}

// InFlight reports whether a completion callback is still registered for the
// run.
func (s *Scheduler) InFlight(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[runID]
	return ok
}

// abortRun cancels the run's timer and conditionally transitions it to
// aborted. If the completion callback already won the race the transition
// changes no rows and the abort becomes a no-op.
func (s *Scheduler) abortRun(run *models.TestRun) {
	s.cancelTimer(run.RunID)

	end := s.now()
	duration := int(end.Sub(run.StartTime).Milliseconds())
	ok, err := s.runs.TransitionStatus(run.RunID, models.RunInProgress, models.RunAborted,
		map[string]interface{}{
			"end_time": end,
			"duration": duration,
		})
	if err != nil {
		s.logger.Error("abort run", "run_id", run.RunID, "err", err)
		return
	}
	if ok {
		s.broadcast(run.RunID, "run_aborted", map[string]interface{}{
			"runId":    run.RunID,
			"duration": duration,
		})
		s.logger.Info("execution aborted", "run_id", run.RunID)
	}
}

// complete is the timer callback. The conditional in_progress -> completed
// transition is the sole write gate: if the run was stopped concurrently the
// transition changes no rows and the callback backs off without touching
// anything.
func (s *Scheduler) complete(runID string) {
	s.cancelTimer(runID)

	run, err := s.runs.FindByRunID(runID)
	if err != nil {
		s.logger.Error("completion read failed", "run_id", runID, "err", err)
		s.forceFail(runID)
		return
	}
	if run == nil || run.Status != models.RunInProgress {
		// Stopped (or swept) before the timer fired.
		return
	}

	passed := s.randFloat() < s.opts.PassRate
	end := s.now()
	duration := int(end.Sub(run.StartTime).Milliseconds())
	updates := map[string]interface{}{
		"end_time": end,
		"duration": duration,
	}
	if !passed {
		updates["error_message"] = failureDiagnostic
	}

	ok, err := s.runs.TransitionStatus(runID, models.RunInProgress, models.RunCompleted, updates)
	if err != nil {
		s.logger.Error("completion transition failed", "run_id", runID, "err", err)
		s.forceFail(runID)
		return
	}
	if !ok {
		return
	}

	caseStatus := propagation.CaseStatusForRun(models.RunCompleted, passed)
	if err := s.cases.UpdateStatus(run.TestCaseID, caseStatus, &duration); err != nil {
		s.logger.Error("case propagation failed",
			"run_id", runID, "case_id", run.TestCaseID, "err", err)
	}

	s.broadcast(runID, "run_completed", map[string]interface{}{
		"runId":    runID,
		"passed":   passed,
		"duration": duration,
	})
	s.logger.Info("execution completed", "run_id", runID, "passed", passed, "duration_ms", duration)
}

// forceFail is the crash-safety fallback for an unexpected error inside the
// completion sequence: the run is forced to completed/failed with a
// timeout-style message, guarded by the same conditional transition so an
// already-stopped run stays untouched.
func (s *Scheduler) forceFail(runID string) {
	run, err := s.runs.FindByRunID(runID)
	if err != nil || run == nil {
		s.logger.Error("force-fail could not load run", "run_id", runID, "err", err)
		return
	}

	end := s.now()
	duration := int(end.Sub(run.StartTime).Milliseconds())
	ok, err := s.runs.TransitionStatus(runID, models.RunInProgress, models.RunCompleted,
		map[string]interface{}{
			"end_time":      end,
			"duration":      duration,
			"error_message": timeoutDiagnostic,
		})
	if err != nil {
		s.logger.Error("force-fail transition failed", "run_id", runID, "err", err)
		return
	}
	if !ok {
		return
	}

	if err := s.cases.UpdateStatus(run.TestCaseID, models.CaseFailed, &duration); err != nil {
		s.logger.Error("force-fail case propagation failed",
			"run_id", runID, "case_id", run.TestCaseID, "err", err)
	}
}

// cancelTimer stops and removes the run's timer. Safe to call when the timer
// already fired or was never registered.
func (s *Scheduler) cancelTimer(runID string) {
	s.mu.Lock()
	handle, ok := s.timers[runID]
	if ok {
		delete(s.timers, runID)
	}
	s.mu.Unlock()

	if ok {
		handle.Stop()
	}
}

func (s *Scheduler) broadcast(runID, event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(runID, event, payload)
}
