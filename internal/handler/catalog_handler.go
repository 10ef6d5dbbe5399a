package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kdkapsikar/TestSphere/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler handles HTTP requests for the entity catalog
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		// Test suite CRUD
		api.POST("/testsuites", h.CreateTestSuite)
		api.GET("/testsuites", h.ListTestSuites)
		api.GET("/testsuites/:id", h.GetTestSuite)
		api.PUT("/testsuites/:id", h.UpdateTestSuite)
		api.DELETE("/testsuites/:id", h.DeleteTestSuite)

		// Test case CRUD
		api.POST("/testcases", h.CreateTestCase)
		api.GET("/testcases", h.ListTestCases)
		api.GET("/testcases/search", h.SearchTestCases)
		api.GET("/testcases/:id", h.GetTestCase)
		api.PUT("/testcases/:id", h.UpdateTestCase)
		api.DELETE("/testcases/:id", h.DeleteTestCase)
		api.GET("/testcases/:id/executions", h.ListExecutionsByCase)

		// Requirement CRUD
		api.POST("/requirements", h.CreateRequirement)
		api.GET("/requirements", h.ListRequirements)
		api.GET("/requirements/:id", h.GetRequirement)
		api.PUT("/requirements/:id", h.UpdateRequirement)
		api.DELETE("/requirements/:id", h.DeleteRequirement)

		// Test scenario CRUD
		api.POST("/scenarios", h.CreateTestScenario)
		api.GET("/scenarios", h.ListTestScenarios)
		api.GET("/scenarios/:id", h.GetTestScenario)
		api.PUT("/scenarios/:id", h.UpdateTestScenario)
		api.DELETE("/scenarios/:id", h.DeleteTestScenario)

		// Defect CRUD
		api.POST("/defects", h.CreateDefect)
		api.GET("/defects", h.ListDefects)
		api.GET("/defects/:id", h.GetDefect)
		api.PUT("/defects/:id", h.UpdateDefect)
		api.DELETE("/defects/:id", h.DeleteDefect)

		// Test execution creation and reads
		api.POST("/executions", h.CreateTestExecution)
		api.GET("/executions", h.ListTestExecutions)
		api.GET("/executions/:id", h.GetTestExecution)
		api.DELETE("/executions/:id", h.DeleteTestExecution)
	}
}

func (h *CatalogHandler) writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// ===== Test Suite Handlers =====

// CreateTestSuite creates a new test suite
// POST /api/v1/testsuites
func (h *CatalogHandler) CreateTestSuite(c *gin.Context) {
	var req service.CreateTestSuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suite, err := h.catalogService.CreateTestSuite(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, suite)
}

// ListTestSuites lists all test suites
// GET /api/v1/testsuites
func (h *CatalogHandler) ListTestSuites(c *gin.Context) {
	suites, err := h.catalogService.ListTestSuites()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suites})
}

// GetTestSuite retrieves a test suite by ID
// GET /api/v1/testsuites/:id
func (h *CatalogHandler) GetTestSuite(c *gin.Context) {
	suite, err := h.catalogService.GetTestSuite(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if suite == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test suite not found"})
		return
	}

	c.JSON(http.StatusOK, suite)
}

// UpdateTestSuite updates a test suite
// PUT /api/v1/testsuites/:id
func (h *CatalogHandler) UpdateTestSuite(c *gin.Context) {
	var req service.UpdateTestSuiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suite, err := h.catalogService.UpdateTestSuite(c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, suite)
}

// DeleteTestSuite deletes a test suite
// DELETE /api/v1/testsuites/:id
func (h *CatalogHandler) DeleteTestSuite(c *gin.Context) {
	if err := h.catalogService.DeleteTestSuite(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "test suite deleted"})
}

// ===== Test Case Handlers =====

// CreateTestCase creates a new test case
// POST /api/v1/testcases
func (h *CatalogHandler) CreateTestCase(c *gin.Context) {
	var req service.CreateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tc, err := h.catalogService.CreateTestCase(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, tc)
}

// ListTestCases lists test cases with pagination
// GET /api/v1/testcases?limit=20&offset=0
func (h *CatalogHandler) ListTestCases(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	cases, total, err := h.catalogService.ListTestCases(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   cases,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// SearchTestCases searches test cases by title
// GET /api/v1/testcases/search?q=login
func (h *CatalogHandler) SearchTestCases(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	cases, err := h.catalogService.SearchTestCases(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cases})
}

// GetTestCase retrieves a test case by ID
// GET /api/v1/testcases/:id
func (h *CatalogHandler) GetTestCase(c *gin.Context) {
	tc, err := h.catalogService.GetTestCase(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test case not found"})
		return
	}

	c.JSON(http.StatusOK, tc)
}

// UpdateTestCase updates a test case
// PUT /api/v1/testcases/:id
func (h *CatalogHandler) UpdateTestCase(c *gin.Context) {
	var req service.UpdateTestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tc, err := h.catalogService.UpdateTestCase(c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tc)
}

// DeleteTestCase deletes a test case
// DELETE /api/v1/testcases/:id
func (h *CatalogHandler) DeleteTestCase(c *gin.Context) {
	if err := h.catalogService.DeleteTestCase(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "test case deleted"})
}

// ListExecutionsByCase lists the executions of a test case
// GET /api/v1/testcases/:id/executions
func (h *CatalogHandler) ListExecutionsByCase(c *gin.Context) {
	executions, err := h.catalogService.ListExecutionsByCase(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": executions})
}

// ===== Requirement Handlers =====

// CreateRequirement creates a new requirement
// POST /api/v1/requirements
func (h *CatalogHandler) CreateRequirement(c *gin.Context) {
	var req service.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirement, err := h.catalogService.CreateRequirement(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, requirement)
}

// ListRequirements lists requirements with pagination
// GET /api/v1/requirements?limit=20&offset=0
func (h *CatalogHandler) ListRequirements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	requirements, total, err := h.catalogService.ListRequirements(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   requirements,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetRequirement retrieves a requirement by ID
// GET /api/v1/requirements/:id
func (h *CatalogHandler) GetRequirement(c *gin.Context) {
	requirement, err := h.catalogService.GetRequirement(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if requirement == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "requirement not found"})
		return
	}

	c.JSON(http.StatusOK, requirement)
}

// UpdateRequirement updates a requirement
// PUT /api/v1/requirements/:id
func (h *CatalogHandler) UpdateRequirement(c *gin.Context) {
	var req service.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirement, err := h.catalogService.UpdateRequirement(c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, requirement)
}

// DeleteRequirement deletes a requirement
// DELETE /api/v1/requirements/:id
func (h *CatalogHandler) DeleteRequirement(c *gin.Context) {
	if err := h.catalogService.DeleteRequirement(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "requirement deleted"})
}

// ===== Test Scenario Handlers =====

// CreateTestScenario creates a new test scenario
// POST /api/v1/scenarios
func (h *CatalogHandler) CreateTestScenario(c *gin.Context) {
	var req service.CreateTestScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scenario, err := h.catalogService.CreateTestScenario(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, scenario)
}

// ListTestScenarios lists scenarios with pagination
// GET /api/v1/scenarios?limit=20&offset=0
func (h *CatalogHandler) ListTestScenarios(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	scenarios, total, err := h.catalogService.ListTestScenarios(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   scenarios,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetTestScenario retrieves a scenario by ID
// GET /api/v1/scenarios/:id
func (h *CatalogHandler) GetTestScenario(c *gin.Context) {
	scenario, err := h.catalogService.GetTestScenario(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if scenario == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test scenario not found"})
		return
	}

	c.JSON(http.StatusOK, scenario)
}

// UpdateTestScenario updates a scenario
// PUT /api/v1/scenarios/:id
func (h *CatalogHandler) UpdateTestScenario(c *gin.Context) {
	var req service.UpdateTestScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scenario, err := h.catalogService.UpdateTestScenario(c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scenario)
}

// DeleteTestScenario deletes a scenario
// DELETE /api/v1/scenarios/:id
func (h *CatalogHandler) DeleteTestScenario(c *gin.Context) {
	if err := h.catalogService.DeleteTestScenario(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "test scenario deleted"})
}

// ===== Defect Handlers =====

// CreateDefect creates a new defect
// POST /api/v1/defects
func (h *CatalogHandler) CreateDefect(c *gin.Context) {
	var req service.CreateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defect, err := h.catalogService.CreateDefect(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, defect)
}

// ListDefects lists defects with pagination
// GET /api/v1/defects?limit=20&offset=0
func (h *CatalogHandler) ListDefects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	defects, total, err := h.catalogService.ListDefects(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   defects,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetDefect retrieves a defect by ID
// GET /api/v1/defects/:id
func (h *CatalogHandler) GetDefect(c *gin.Context) {
	defect, err := h.catalogService.GetDefect(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if defect == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "defect not found"})
		return
	}

	c.JSON(http.StatusOK, defect)
}

// UpdateDefect updates a defect
// PUT /api/v1/defects/:id
func (h *CatalogHandler) UpdateDefect(c *gin.Context) {
	var req service.UpdateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	defect, err := h.catalogService.UpdateDefect(c.Param("id"), &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, defect)
}

// DeleteDefect deletes a defect
// DELETE /api/v1/defects/:id
func (h *CatalogHandler) DeleteDefect(c *gin.Context) {
	if err := h.catalogService.DeleteDefect(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "defect deleted"})
}

// ===== Test Execution Handlers =====

// CreateTestExecution creates a pending execution record for a test case
// POST /api/v1/executions
func (h *CatalogHandler) CreateTestExecution(c *gin.Context) {
	var req service.CreateTestExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	execution, err := h.catalogService.CreateTestExecution(&req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, execution)
}

// ListTestExecutions lists executions with pagination
// GET /api/v1/executions?limit=20&offset=0
func (h *CatalogHandler) ListTestExecutions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	executions, total, err := h.catalogService.ListTestExecutions(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   executions,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// DeleteTestExecution deletes an execution record
// DELETE /api/v1/executions/:id
func (h *CatalogHandler) DeleteTestExecution(c *gin.Context) {
	if err := h.catalogService.DeleteTestExecution(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "test execution deleted"})
}

// GetTestExecution retrieves an execution by ID
// GET /api/v1/executions/:id
func (h *CatalogHandler) GetTestExecution(c *gin.Context) {
	execution, err := h.catalogService.GetTestExecution(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if execution == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "test execution not found"})
		return
	}

	c.JSON(http.StatusOK, execution)
}
