package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/handler"
	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"
	"github.com/kdkapsikar/TestSphere/internal/scheduler"
	"github.com/kdkapsikar/TestSphere/internal/service"
	"github.com/kdkapsikar/TestSphere/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestEnvironment wires a full HTTP stack against an in-memory database.
// The simulated delays are compressed so completions land within the test.
func setupTestEnvironment(t *testing.T, opts scheduler.Options) (*gin.Engine, *gorm.DB) {
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

	suiteRepo := repository.NewTestSuiteRepository(db)
	caseRepo := repository.NewTestCaseRepository(db)
	runRepo := repository.NewTestRunRepository(db)
	executionRepo := repository.NewTestExecutionRepository(db)
	defectRepo := repository.NewDefectRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	scenarioRepo := repository.NewTestScenarioRepository(db)

	hub := websocket.NewHub()
	go hub.Run()

	sched := scheduler.NewScheduler(caseRepo, runRepo, hub, nil, opts)
	execService := service.NewExecutionService(caseRepo, runRepo, executionRepo, defectRepo, scenarioRepo, nil)
	statsService := service.NewStatsService(suiteRepo, caseRepo, runRepo)
	catalogService := service.NewCatalogService(suiteRepo, caseRepo, requirementRepo, scenarioRepo, defectRepo, executionRepo)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.NewExecutionHandler(sched, execService).RegisterRoutes(r)
	handler.NewDashboardHandler(statsService).RegisterRoutes(r)
	handler.NewCatalogHandler(catalogService).RegisterRoutes(r)
	handler.NewWebSocketHandler(hub).RegisterRoutes(r)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestSimulatedRunLifecycle(t *testing.T) {
	r, _ := setupTestEnvironment(t, scheduler.Options{
		MinDelay: 10 * time.Millisecond,
		MaxDelay: 30 * time.Millisecond,
		PassRate: 1.0, // deterministic pass
	})

	// Create a suite and a case.
	w := doJSON(t, r, http.MethodPost, "/api/v1/testsuites", map[string]string{
		"suiteId": "s1",
		"name":    "smoke",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/testcases", map[string]interface{}{
		"caseId":  "case-1",
		"suiteId": "s1",
		"title":   "homepage loads",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Start a run.
	w = doJSON(t, r, http.MethodPost, "/api/v1/testcases/case-1/run", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var run models.TestRun
	decode(t, w, &run)
	assert.Equal(t, models.RunInProgress, run.Status)
	assert.NotEmpty(t, run.RunID)

	// While in flight the case reads as running.
	w = doJSON(t, r, http.MethodGet, "/api/v1/testcases/case-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tc models.TestCase
	decode(t, w, &tc)
	assert.Equal(t, models.CaseRunning, tc.Status)

	// Completion arrives after the simulated delay.
	require.Eventually(t, func() bool {
		w := doJSON(t, r, http.MethodGet, "/api/v1/runs/"+run.RunID, nil)
		if w.Code != http.StatusOK {
			return false
		}
		var got models.TestRun
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			return false
		}
		return got.Status == models.RunCompleted
	}, 2*time.Second, 10*time.Millisecond)

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+run.RunID, nil)
	var done models.TestRun
	decode(t, w, &done)
	assert.Empty(t, done.ErrorMessage)
	require.NotNil(t, done.EndTime)
	require.NotNil(t, done.Duration)

	// The case reflects the outcome, and the dashboard counts it.
	w = doJSON(t, r, http.MethodGet, "/api/v1/testcases/case-1", nil)
	decode(t, w, &tc)
	assert.Equal(t, models.CasePassed, tc.Status)

	w = doJSON(t, r, http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.DashboardStats
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalTests)
	assert.Equal(t, int64(1), stats.PassedTests)

	w = doJSON(t, r, http.MethodGet, "/api/v1/testsuites/s1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var suiteStats service.SuiteWithStats
	decode(t, w, &suiteStats)
	assert.Equal(t, 100, suiteStats.PassRate)

	// Activity feed records the completed run.
	w = doJSON(t, r, http.MethodGet, "/api/v1/dashboard/activity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var activity struct {
		Data []service.ActivityEntry `json:"data"`
	}
	decode(t, w, &activity)
	require.Len(t, activity.Data, 1)
	assert.Equal(t, "test_passed", activity.Data[0].Type)
	assert.Equal(t, "homepage loads", activity.Data[0].TestCaseName)
}

func TestStopCancelsInFlightRun(t *testing.T) {
	r, _ := setupTestEnvironment(t, scheduler.Options{
		MinDelay: 10 * time.Second, // far beyond the test horizon
		MaxDelay: 20 * time.Second,
		PassRate: 1.0,
	})

	w := doJSON(t, r, http.MethodPost, "/api/v1/testcases", map[string]interface{}{
		"caseId": "case-1",
		"title":  "long running check",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/testcases/case-1/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var run models.TestRun
	decode(t, w, &run)

	w = doJSON(t, r, http.MethodPost, "/api/v1/testcases/case-1/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+run.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.TestRun
	decode(t, w, &got)
	assert.Equal(t, models.RunAborted, got.Status)

	w = doJSON(t, r, http.MethodGet, "/api/v1/testcases/case-1", nil)
	var tc models.TestCase
	decode(t, w, &tc)
	assert.Equal(t, models.CasePending, tc.Status)

	// Stopping again is harmless.
	w = doJSON(t, r, http.MethodPost, "/api/v1/testcases/case-1/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunUnknownCaseReturns404(t *testing.T) {
	r, _ := setupTestEnvironment(t, scheduler.Options{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/testcases/missing/run", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/testcases/missing/stop", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManualExecutionFailureCreatesDefect(t *testing.T) {
	r, _ := setupTestEnvironment(t, scheduler.Options{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/testcases", map[string]interface{}{
		"caseId":         "case-1",
		"title":          "export as CSV",
		"priority":       "high",
		"expectedResult": "a CSV file downloads",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/executions", map[string]string{
		"testCaseId": "case-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var execution models.TestExecution
	decode(t, w, &execution)

	w = doJSON(t, r, http.MethodPut, "/api/v1/executions/"+execution.ExecutionID, map[string]string{
		"executionStatus": "fail",
		"actualResult":    "download never starts",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Execution models.TestExecution `json:"execution"`
		Defect    *models.Defect       `json:"defect"`
	}
	decode(t, w, &resp)
	assert.Equal(t, models.ExecutionFail, resp.Execution.ExecutionStatus)
	require.NotNil(t, resp.Defect)
	assert.Equal(t, "Test failure: export as CSV", resp.Defect.Title)
	assert.Equal(t, models.PriorityHigh, resp.Defect.Priority)

	// The case now reads as failed and the defect is listed.
	w = doJSON(t, r, http.MethodGet, "/api/v1/testcases/case-1", nil)
	var tc models.TestCase
	decode(t, w, &tc)
	assert.Equal(t, models.CaseFailed, tc.Status)

	w = doJSON(t, r, http.MethodGet, "/api/v1/defects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var defects struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &defects)
	assert.Equal(t, int64(1), defects.Total)
}

func TestManualRunStatusUpdateValidation(t *testing.T) {
	r, db := setupTestEnvironment(t, scheduler.Options{})

	require.NoError(t, db.Create(&models.TestCase{
		CaseID: "case-1",
		Title:  "manual run case",
		Status: models.CasePending,
	}).Error)
	require.NoError(t, db.Create(&models.TestRun{
		RunID:      "run-1",
		TestCaseID: "case-1",
		Status:     models.RunInProgress,
		StartTime:  time.Now(),
	}).Error)

	// Unrecognized vocabulary is rejected.
	w := doJSON(t, r, http.MethodPut, "/api/v1/runs/run-1", map[string]string{"status": "finished"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Legacy "failed" completes the run and fails the case.
	w = doJSON(t, r, http.MethodPut, "/api/v1/runs/run-1", map[string]string{"status": "failed"})
	require.Equal(t, http.StatusOK, w.Code)
	var run models.TestRun
	decode(t, w, &run)
	assert.Equal(t, models.RunCompleted, run.Status)

	var tc models.TestCase
	require.NoError(t, db.Where("case_id = ?", "case-1").First(&tc).Error)
	assert.Equal(t, models.CaseFailed, tc.Status)

	// Terminal runs are immutable.
	w = doJSON(t, r, http.MethodPut, "/api/v1/runs/run-1", map[string]string{"status": "in_progress"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown run id.
	w = doJSON(t, r, http.MethodPut, "/api/v1/runs/missing", map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuitesWithStatsEndpoint(t *testing.T) {
	r, db := setupTestEnvironment(t, scheduler.Options{})

	require.NoError(t, db.Create(&models.TestSuite{SuiteID: "s1", Name: "auth", Status: models.SuiteActive}).Error)
	for i, status := range []models.CaseStatus{models.CasePassed, models.CasePassed, models.CaseFailed} {
		require.NoError(t, db.Create(&models.TestCase{
			CaseID:  fmt.Sprintf("case-%d", i),
			SuiteID: "s1",
			Title:   fmt.Sprintf("case %d", i),
			Status:  status,
		}).Error)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/testsuites/with-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []service.SuiteWithStats `json:"data"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 3, resp.Data[0].TotalTests)
	assert.Equal(t, 67, resp.Data[0].PassRate)
}
