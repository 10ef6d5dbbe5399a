package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kdkapsikar/TestSphere/internal/scheduler"
	"github.com/kdkapsikar/TestSphere/internal/service"

	"github.com/gin-gonic/gin"
)

// ExecutionHandler handles HTTP requests for run lifecycle and execution recording
type ExecutionHandler struct {
	sched       *scheduler.Scheduler
	execService service.ExecutionService
}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(sched *scheduler.Scheduler, execService service.ExecutionService) *ExecutionHandler {
	return &ExecutionHandler{
		sched:       sched,
		execService: execService,
	}
}

// RegisterRoutes registers all execution-related routes
func (h *ExecutionHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Simulated execution lifecycle
		api.POST("/testcases/:id/run", h.StartRun)
		api.POST("/testcases/:id/stop", h.StopRun)

		// Run reads and manual transitions
		api.GET("/runs", h.ListRuns)
		api.GET("/runs/:id", h.GetRun)
		api.PUT("/runs/:id", h.UpdateRunStatus)
		api.GET("/testcases/:id/runs", h.ListRunsByCase)

		// Manual execution recording
		api.PUT("/executions/:id", h.RecordExecution)
	}
}

// StartRun starts a simulated execution of a test case
// POST /api/v1/testcases/:id/run
func (h *ExecutionHandler) StartRun(c *gin.Context) {
	caseID := c.Param("id")

	run, err := h.sched.Start(caseID)
	if err != nil {
		if errors.Is(err, scheduler.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "test case not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// StopRun cancels the in-flight execution of a test case, if any
// POST /api/v1/testcases/:id/stop
func (h *ExecutionHandler) StopRun(c *gin.Context) {
	caseID := c.Param("id")

	if err := h.sched.Stop(caseID); err != nil {
		if errors.Is(err, scheduler.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "test case not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "execution stopped"})
}

// ListRuns lists runs with pagination
// GET /api/v1/runs?limit=20&offset=0
func (h *ExecutionHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	runs, total, err := h.execService.ListRuns(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   runs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetRun retrieves a specific run by ID
// GET /api/v1/runs/:id
func (h *ExecutionHandler) GetRun(c *gin.Context) {
	runID := c.Param("id")

	run, err := h.execService.GetRun(runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// UpdateRunStatus applies a manual status transition to a run
// PUT /api/v1/runs/:id
func (h *ExecutionHandler) UpdateRunStatus(c *gin.Context) {
	runID := c.Param("id")

	var req service.UpdateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	run, err := h.execService.UpdateRunStatus(runID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListRunsByCase lists all runs of a test case
// GET /api/v1/testcases/:id/runs
func (h *ExecutionHandler) ListRunsByCase(c *gin.Context) {
	caseID := c.Param("id")

	runs, err := h.execService.ListRunsByCase(caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

// RecordExecution records a manual execution outcome
// PUT /api/v1/executions/:id
func (h *ExecutionHandler) RecordExecution(c *gin.Context) {
	executionID := c.Param("id")

	var req service.RecordExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	execution, defect, err := h.execService.RecordExecution(executionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	resp := gin.H{"execution": execution}
	if defect != nil {
		resp["defect"] = defect
	}
	c.JSON(http.StatusOK, resp)
}
