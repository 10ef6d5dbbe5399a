package service

import (
	"fmt"
	"math"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"
)

// activityLimit bounds the recent-activity feed.
const activityLimit = 20

// StatsService 聚合统计服务接口
//
// Every call re-scans the store; nothing is cached or invalidated.
type StatsService interface {
	DashboardStats() (*DashboardStats, error)
	SuiteStats(suiteID string) (*SuiteWithStats, error)
	AllSuiteStats() ([]SuiteWithStats, error)
	RecentActivity() ([]ActivityEntry, error)
}

type statsService struct {
	suites repository.TestSuiteRepository
	cases  repository.TestCaseRepository
	runs   repository.TestRunRepository
}

// NewStatsService creates a new stats service
func NewStatsService(
	suites repository.TestSuiteRepository,
	cases repository.TestCaseRepository,
	runs repository.TestRunRepository,
) StatsService {
	return &statsService{
		suites: suites,
		cases:  cases,
		runs:   runs,
	}
}

// ===== Response DTOs =====

type DashboardStats struct {
	TotalTests   int64 `json:"totalTests"`
	PassedTests  int64 `json:"passedTests"`
	FailedTests  int64 `json:"failedTests"`
	RunningTests int64 `json:"runningTests"`
	PendingTests int64 `json:"pendingTests"`
}

type SuiteWithStats struct {
	models.TestSuite
	TotalTests   int `json:"totalTests"`
	PassedTests  int `json:"passedTests"`
	FailedTests  int `json:"failedTests"`
	RunningTests int `json:"runningTests"`
	PassRate     int `json:"passRate"`
}

type ActivityEntry struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"` // test_passed, test_failed, test_started
	TestCaseName string    `json:"testCaseName"`
	SuiteName    string    `json:"suiteName,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Message      string    `json:"message"`
}

// ===== Aggregations =====

func (s *statsService) DashboardStats() (*DashboardStats, error) {
	counts, err := s.cases.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("count test cases: %w", err)
	}

	stats := &DashboardStats{
		PassedTests:  counts[models.CasePassed],
		FailedTests:  counts[models.CaseFailed],
		RunningTests: counts[models.CaseRunning],
		// Blocked cases count toward the pending bucket.
		PendingTests: counts[models.CasePending] + counts[models.CaseBlocked],
	}
	for _, n := range counts {
		stats.TotalTests += n
	}
	return stats, nil
}

func (s *statsService) SuiteStats(suiteID string) (*SuiteWithStats, error) {
	suite, err := s.suites.FindByID(suiteID)
	if err != nil {
		return nil, fmt.Errorf("find test suite: %w", err)
	}
	if suite == nil {
		return nil, fmt.Errorf("%w: test suite %s", ErrNotFound, suiteID)
	}
	return s.computeSuiteStats(suite)
}

func (s *statsService) AllSuiteStats() ([]SuiteWithStats, error) {
	suites, err := s.suites.FindAll()
	if err != nil {
		return nil, fmt.Errorf("list test suites: %w", err)
	}

	stats := make([]SuiteWithStats, 0, len(suites))
	for i := range suites {
		suiteStats, err := s.computeSuiteStats(&suites[i])
		if err != nil {
			return nil, err
		}
		stats = append(stats, *suiteStats)
	}
	return stats, nil
}

func (s *statsService) computeSuiteStats(suite *models.TestSuite) (*SuiteWithStats, error) {
	testCases, err := s.cases.FindBySuiteID(suite.SuiteID)
	if err != nil {
		return nil, fmt.Errorf("find suite test cases: %w", err)
	}

	stats := &SuiteWithStats{TestSuite: *suite, TotalTests: len(testCases)}
	stats.TestCases = nil
	for _, tc := range testCases {
		switch tc.Status {
		case models.CasePassed:
			stats.PassedTests++
		case models.CaseFailed:
			stats.FailedTests++
		case models.CaseRunning:
			stats.RunningTests++
		}
	}

	// An empty suite has a 0% pass rate rather than a division error.
	if stats.TotalTests > 0 {
		stats.PassRate = int(math.Round(float64(stats.PassedTests) / float64(stats.TotalTests) * 100))
	}
	return stats, nil
}

// RecentActivity reconstructs a human-readable feed from the most recent
// runs on every call; it is not an append-only log.
func (s *statsService) RecentActivity() ([]ActivityEntry, error) {
	runs, err := s.runs.FindRecent(activityLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}

	entries := make([]ActivityEntry, 0, len(runs))
	for _, run := range runs {
		entry := ActivityEntry{
			ID:           run.RunID,
			TestCaseName: "unknown test case",
			Timestamp:    run.StartTime,
		}

		if run.TestCaseID != "" {
			if tc, err := s.cases.FindByID(run.TestCaseID); err == nil && tc != nil {
				entry.TestCaseName = tc.Title
				if tc.SuiteID != "" {
					if suite, err := s.suites.FindByID(tc.SuiteID); err == nil && suite != nil {
						entry.SuiteName = suite.Name
					}
				}
			}
		}

		switch {
		case run.Status == models.RunCompleted && run.ErrorMessage == "":
			entry.Type = "test_passed"
			entry.Message = fmt.Sprintf("%s passed", entry.TestCaseName)
		case run.Status == models.RunCompleted:
			entry.Type = "test_failed"
			entry.Message = fmt.Sprintf("%s failed: %s", entry.TestCaseName, run.ErrorMessage)
		default:
			// in_progress, planned, aborted and anything unrecognized all
			// classify as started.
			entry.Type = "test_started"
			entry.Message = fmt.Sprintf("%s started", entry.TestCaseName)
		}

		entries = append(entries, entry)
	}
	return entries, nil
}
