package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type statsFixture struct {
	suites repository.TestSuiteRepository
	cases  repository.TestCaseRepository
	runs   repository.TestRunRepository
	svc    StatsService
}

func newStatsFixture(t *testing.T) *statsFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.TestSuite{},
		&models.TestCase{},
		&models.TestRun{},
	))

	f := &statsFixture{
		suites: repository.NewTestSuiteRepository(db),
		cases:  repository.NewTestCaseRepository(db),
		runs:   repository.NewTestRunRepository(db),
	}
	f.svc = NewStatsService(f.suites, f.cases, f.runs)
	return f
}

func (f *statsFixture) seedCases(t *testing.T, suiteID string, statuses ...models.CaseStatus) {
	for i, status := range statuses {
		require.NoError(t, f.cases.Create(&models.TestCase{
			CaseID:  fmt.Sprintf("%s-case-%d", suiteID, i),
			SuiteID: suiteID,
			Title:   fmt.Sprintf("case %d", i),
			Status:  status,
		}))
	}
}

func TestDashboardStatsBuckets(t *testing.T) {
	f := newStatsFixture(t)
	f.seedCases(t, "s1",
		models.CasePassed, models.CasePassed, models.CaseFailed,
		models.CaseRunning, models.CasePending, models.CaseBlocked,
	)

	stats, err := f.svc.DashboardStats()
	require.NoError(t, err)

	assert.Equal(t, int64(6), stats.TotalTests)
	assert.Equal(t, int64(2), stats.PassedTests)
	assert.Equal(t, int64(1), stats.FailedTests)
	assert.Equal(t, int64(1), stats.RunningTests)
	// Blocked cases land in the pending bucket.
	assert.Equal(t, int64(2), stats.PendingTests)
}

func TestDashboardStatsEmpty(t *testing.T) {
	f := newStatsFixture(t)

	stats, err := f.svc.DashboardStats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTests)
}

func TestSuiteStatsPassRateRounds(t *testing.T) {
	f := newStatsFixture(t)
	require.NoError(t, f.suites.Create(&models.TestSuite{
		SuiteID: "s1",
		Name:    "checkout",
		Status:  models.SuiteActive,
	}))
	f.seedCases(t, "s1",
		models.CasePassed, models.CasePassed, models.CasePassed, models.CaseFailed,
	)

	stats, err := f.svc.SuiteStats("s1")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalTests)
	assert.Equal(t, 3, stats.PassedTests)
	assert.Equal(t, 1, stats.FailedTests)
	assert.Equal(t, 75, stats.PassRate)
}

func TestSuiteStatsEmptySuite(t *testing.T) {
	f := newStatsFixture(t)
	require.NoError(t, f.suites.Create(&models.TestSuite{
		SuiteID: "s1",
		Name:    "empty",
		Status:  models.SuiteActive,
	}))

	stats, err := f.svc.SuiteStats("s1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTests)
	assert.Zero(t, stats.PassRate)
}

func TestSuiteStatsNotFound(t *testing.T) {
	f := newStatsFixture(t)

	_, err := f.svc.SuiteStats("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllSuiteStats(t *testing.T) {
	f := newStatsFixture(t)
	require.NoError(t, f.suites.Create(&models.TestSuite{SuiteID: "s1", Name: "auth", Status: models.SuiteActive}))
	require.NoError(t, f.suites.Create(&models.TestSuite{SuiteID: "s2", Name: "billing", Status: models.SuiteActive}))
	f.seedCases(t, "s1", models.CasePassed, models.CaseFailed)
	f.seedCases(t, "s2", models.CasePassed)

	stats, err := f.svc.AllSuiteStats()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byID := map[string]SuiteWithStats{}
	for _, s := range stats {
		byID[s.SuiteID] = s
	}
	assert.Equal(t, 50, byID["s1"].PassRate)
	assert.Equal(t, 100, byID["s2"].PassRate)
}

func TestRecentActivityClassification(t *testing.T) {
	f := newStatsFixture(t)
	require.NoError(t, f.suites.Create(&models.TestSuite{SuiteID: "s1", Name: "auth", Status: models.SuiteActive}))
	require.NoError(t, f.cases.Create(&models.TestCase{
		CaseID:  "case-1",
		SuiteID: "s1",
		Title:   "login with valid credentials",
		Status:  models.CasePassed,
	}))

	base := time.Now().Add(-time.Hour)
	seedRun := func(runID string, status models.RunStatus, errMsg string, offset time.Duration) {
		require.NoError(t, f.runs.Create(&models.TestRun{
			RunID:        runID,
			TestCaseID:   "case-1",
			Status:       status,
			StartTime:    base.Add(offset),
			ErrorMessage: errMsg,
		}))
	}
	seedRun("run-pass", models.RunCompleted, "", 1*time.Minute)
	seedRun("run-fail", models.RunCompleted, "assertion failed", 2*time.Minute)
	seedRun("run-live", models.RunInProgress, "", 3*time.Minute)

	entries, err := f.svc.RecentActivity()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "run-live", entries[0].ID)
	assert.Equal(t, "test_started", entries[0].Type)

	assert.Equal(t, "run-fail", entries[1].ID)
	assert.Equal(t, "test_failed", entries[1].Type)
	assert.Contains(t, entries[1].Message, "assertion failed")

	assert.Equal(t, "run-pass", entries[2].ID)
	assert.Equal(t, "test_passed", entries[2].Type)

	for _, e := range entries {
		assert.Equal(t, "login with valid credentials", e.TestCaseName)
		assert.Equal(t, "auth", e.SuiteName)
	}
}

func TestRecentActivityBounded(t *testing.T) {
	f := newStatsFixture(t)
	require.NoError(t, f.cases.Create(&models.TestCase{
		CaseID: "case-1",
		Title:  "bulk case",
		Status: models.CasePassed,
	}))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < activityLimit+5; i++ {
		require.NoError(t, f.runs.Create(&models.TestRun{
			RunID:      fmt.Sprintf("run-%02d", i),
			TestCaseID: "case-1",
			Status:     models.RunCompleted,
			StartTime:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := f.svc.RecentActivity()
	require.NoError(t, err)
	assert.Len(t, entries, activityLimit)
}
