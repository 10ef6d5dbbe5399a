package handler

import (
	"errors"
	"net/http"

	"github.com/kdkapsikar/TestSphere/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerationHandler handles HTTP requests for AI-assisted generation
type GenerationHandler struct {
	genService service.GenerationService
}

// NewGenerationHandler creates a new generation handler
func NewGenerationHandler(genService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{genService: genService}
}

// RegisterRoutes registers all generation routes
func (h *GenerationHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/requirements/:id/generate-scenarios", h.GenerateScenarios)
		api.POST("/scenarios/:id/generate-testcases", h.GenerateTestCases)
	}
}

// GenerateScenarios generates test scenarios from a requirement
// POST /api/v1/requirements/:id/generate-scenarios
func (h *GenerationHandler) GenerateScenarios(c *gin.Context) {
	result, err := h.genService.GenerateScenarios(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}

// GenerateTestCases generates test cases from a scenario
// POST /api/v1/scenarios/:id/generate-testcases
func (h *GenerationHandler) GenerateTestCases(c *gin.Context) {
	result, err := h.genService.GenerateTestCases(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, result)
}
