package handler

import (
	"errors"
	"net/http"

	"github.com/kdkapsikar/TestSphere/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles HTTP requests for dashboard aggregations
type DashboardHandler struct {
	statsService service.StatsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(statsService service.StatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

// RegisterRoutes registers all dashboard-related routes
func (h *DashboardHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/dashboard/stats", h.GetDashboardStats)
		api.GET("/dashboard/activity", h.GetRecentActivity)
		api.GET("/testsuites/with-stats", h.ListSuitesWithStats)
		api.GET("/testsuites/:id/stats", h.GetSuiteStats)
	}
}

// GetDashboardStats returns case counts by status bucket
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.statsService.DashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentActivity returns the recent run activity feed
// GET /api/v1/dashboard/activity
func (h *DashboardHandler) GetRecentActivity(c *gin.Context) {
	activity, err := h.statsService.RecentActivity()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activity})
}

// ListSuitesWithStats returns every suite annotated with its case counts
// GET /api/v1/testsuites/with-stats
func (h *DashboardHandler) ListSuitesWithStats(c *gin.Context) {
	suites, err := h.statsService.AllSuiteStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suites})
}

// GetSuiteStats returns one suite annotated with its case counts
// GET /api/v1/testsuites/:id/stats
func (h *DashboardHandler) GetSuiteStats(c *gin.Context) {
	suiteID := c.Param("id")

	stats, err := h.statsService.SuiteStats(suiteID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
