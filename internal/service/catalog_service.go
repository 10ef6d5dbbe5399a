package service

import (
	"fmt"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"

	"github.com/google/uuid"
)

// CatalogService 基础实体CRUD服务接口
type CatalogService interface {
	// Test suites
	CreateTestSuite(req *CreateTestSuiteRequest) (*models.TestSuite, error)
	UpdateTestSuite(suiteID string, req *UpdateTestSuiteRequest) (*models.TestSuite, error)
	DeleteTestSuite(suiteID string) error
	GetTestSuite(suiteID string) (*models.TestSuite, error)
	ListTestSuites() ([]models.TestSuite, error)

	// Test cases
	CreateTestCase(req *CreateTestCaseRequest) (*models.TestCase, error)
	UpdateTestCase(caseID string, req *UpdateTestCaseRequest) (*models.TestCase, error)
	DeleteTestCase(caseID string) error
	GetTestCase(caseID string) (*models.TestCase, error)
	ListTestCases(limit, offset int) ([]models.TestCase, int64, error)
	SearchTestCases(query string) ([]models.TestCase, error)

	// Requirements
	CreateRequirement(req *CreateRequirementRequest) (*models.Requirement, error)
	UpdateRequirement(requirementID string, req *UpdateRequirementRequest) (*models.Requirement, error)
	DeleteRequirement(requirementID string) error
	GetRequirement(requirementID string) (*models.Requirement, error)
	ListRequirements(limit, offset int) ([]models.Requirement, int64, error)

	// Test scenarios
	CreateTestScenario(req *CreateTestScenarioRequest) (*models.TestScenario, error)
	UpdateTestScenario(scenarioID string, req *UpdateTestScenarioRequest) (*models.TestScenario, error)
	DeleteTestScenario(scenarioID string) error
	GetTestScenario(scenarioID string) (*models.TestScenario, error)
	ListTestScenarios(limit, offset int) ([]models.TestScenario, int64, error)

	// Defects
	CreateDefect(req *CreateDefectRequest) (*models.Defect, error)
	UpdateDefect(defectID string, req *UpdateDefectRequest) (*models.Defect, error)
	DeleteDefect(defectID string) error
	GetDefect(defectID string) (*models.Defect, error)
	ListDefects(limit, offset int) ([]models.Defect, int64, error)

	// Test executions (creation, deletion and reads; recording goes through
	// ExecutionService)
	CreateTestExecution(req *CreateTestExecutionRequest) (*models.TestExecution, error)
	DeleteTestExecution(executionID string) error
	GetTestExecution(executionID string) (*models.TestExecution, error)
	ListTestExecutions(limit, offset int) ([]models.TestExecution, int64, error)
	ListExecutionsByCase(caseID string) ([]models.TestExecution, error)
}

type catalogService struct {
	suites       repository.TestSuiteRepository
	cases        repository.TestCaseRepository
	requirements repository.RequirementRepository
	scenarios    repository.TestScenarioRepository
	defects      repository.DefectRepository
	executions   repository.TestExecutionRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	suites repository.TestSuiteRepository,
	cases repository.TestCaseRepository,
	requirements repository.RequirementRepository,
	scenarios repository.TestScenarioRepository,
	defects repository.DefectRepository,
	executions repository.TestExecutionRepository,
) CatalogService {
	return &catalogService{
		suites:       suites,
		cases:        cases,
		requirements: requirements,
		scenarios:    scenarios,
		defects:      defects,
		executions:   executions,
	}
}

// ===== Request DTOs =====

type CreateTestSuiteRequest struct {
	SuiteID     string `json:"suiteId"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type UpdateTestSuiteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type CreateTestCaseRequest struct {
	CaseID         string        `json:"caseId"`
	SuiteID        string        `json:"suiteId"`
	ScenarioID     string        `json:"scenarioId"`
	Title          string        `json:"title" binding:"required"`
	Priority       string        `json:"priority"`
	Steps          []interface{} `json:"steps"`
	ExpectedResult string        `json:"expectedResult"`
}

type UpdateTestCaseRequest struct {
	SuiteID        string        `json:"suiteId"`
	ScenarioID     string        `json:"scenarioId"`
	Title          string        `json:"title"`
	Priority       string        `json:"priority"`
	Steps          []interface{} `json:"steps"`
	ExpectedResult string        `json:"expectedResult"`
}

type CreateRequirementRequest struct {
	RequirementID string `json:"requirementId"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
}

type UpdateRequirementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type CreateTestScenarioRequest struct {
	ScenarioID    string `json:"scenarioId"`
	RequirementID string `json:"requirementId"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
}

type UpdateTestScenarioRequest struct {
	RequirementID string `json:"requirementId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

type CreateDefectRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Severity      string `json:"severity"`
	Priority      string `json:"priority"`
	TestCaseID    string `json:"testCaseId"`
	RequirementID string `json:"requirementId"`
	ReportedBy    string `json:"reportedBy"`
}

type UpdateDefectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

type CreateTestExecutionRequest struct {
	TestCaseID string `json:"testCaseId" binding:"required"`
	RunID      string `json:"runId"`
}

// ===== Test Suite Operations =====

func (s *catalogService) CreateTestSuite(req *CreateTestSuiteRequest) (*models.TestSuite, error) {
	suite := &models.TestSuite{
		SuiteID:     req.SuiteID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.SuiteActive,
	}
	if suite.SuiteID == "" {
		suite.SuiteID = uuid.New().String()
	}
	if req.Status != "" {
		suite.Status = models.SuiteStatus(req.Status)
	}

	if err := s.suites.Create(suite); err != nil {
		return nil, fmt.Errorf("failed to create test suite: %w", err)
	}
	return suite, nil
}

func (s *catalogService) UpdateTestSuite(suiteID string, req *UpdateTestSuiteRequest) (*models.TestSuite, error) {
	suite, err := s.suites.FindByID(suiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to find test suite: %w", err)
	}
	if suite == nil {
		return nil, fmt.Errorf("%w: test suite %s", ErrNotFound, suiteID)
	}

	if req.Name != "" {
		suite.Name = req.Name
	}
	if req.Description != "" {
		suite.Description = req.Description
	}
	if req.Status != "" {
		suite.Status = models.SuiteStatus(req.Status)
	}

	if err := s.suites.Update(suite); err != nil {
		return nil, fmt.Errorf("failed to update test suite: %w", err)
	}
	return suite, nil
}

func (s *catalogService) DeleteTestSuite(suiteID string) error {
	return s.suites.Delete(suiteID)
}

func (s *catalogService) GetTestSuite(suiteID string) (*models.TestSuite, error) {
	return s.suites.FindByID(suiteID)
}

func (s *catalogService) ListTestSuites() ([]models.TestSuite, error) {
	return s.suites.FindAll()
}

// ===== Test Case Operations =====

func (s *catalogService) CreateTestCase(req *CreateTestCaseRequest) (*models.TestCase, error) {
	tc := &models.TestCase{
		CaseID:         req.CaseID,
		SuiteID:        req.SuiteID,
		ScenarioID:     req.ScenarioID,
		Title:          req.Title,
		Priority:       models.PriorityMedium,
		Status:         models.CasePending,
		ExpectedResult: req.ExpectedResult,
	}
	if tc.CaseID == "" {
		tc.CaseID = uuid.New().String()
	}
	if req.Priority != "" {
		tc.Priority = models.Priority(req.Priority)
	}
	if req.Steps != nil {
		tc.Steps = req.Steps
	}

	if err := s.cases.Create(tc); err != nil {
		return nil, fmt.Errorf("failed to create test case: %w", err)
	}
	return tc, nil
}

func (s *catalogService) UpdateTestCase(caseID string, req *UpdateTestCaseRequest) (*models.TestCase, error) {
	tc, err := s.cases.FindByID(caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find test case: %w", err)
	}
	if tc == nil {
		return nil, fmt.Errorf("%w: test case %s", ErrNotFound, caseID)
	}

	if req.SuiteID != "" {
		tc.SuiteID = req.SuiteID
	}
	if req.ScenarioID != "" {
		tc.ScenarioID = req.ScenarioID
	}
	if req.Title != "" {
		tc.Title = req.Title
	}
	if req.Priority != "" {
		tc.Priority = models.Priority(req.Priority)
	}
	if req.Steps != nil {
		tc.Steps = req.Steps
	}
	if req.ExpectedResult != "" {
		tc.ExpectedResult = req.ExpectedResult
	}

	if err := s.cases.Update(tc); err != nil {
		return nil, fmt.Errorf("failed to update test case: %w", err)
	}
	return tc, nil
}

func (s *catalogService) DeleteTestCase(caseID string) error {
	return s.cases.Delete(caseID)
}

func (s *catalogService) GetTestCase(caseID string) (*models.TestCase, error) {
	return s.cases.FindByID(caseID)
}

func (s *catalogService) ListTestCases(limit, offset int) ([]models.TestCase, int64, error) {
	return s.cases.FindAll(limit, offset)
}

func (s *catalogService) SearchTestCases(query string) ([]models.TestCase, error) {
	return s.cases.Search(query)
}

// ===== Requirement Operations =====

func (s *catalogService) CreateRequirement(req *CreateRequirementRequest) (*models.Requirement, error) {
	requirement := &models.Requirement{
		RequirementID: req.RequirementID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      models.PriorityMedium,
	}
	if requirement.RequirementID == "" {
		requirement.RequirementID = uuid.New().String()
	}
	if req.Priority != "" {
		requirement.Priority = models.Priority(req.Priority)
	}

	if err := s.requirements.Create(requirement); err != nil {
		return nil, fmt.Errorf("failed to create requirement: %w", err)
	}
	return requirement, nil
}

func (s *catalogService) UpdateRequirement(requirementID string, req *UpdateRequirementRequest) (*models.Requirement, error) {
	requirement, err := s.requirements.FindByID(requirementID)
	if err != nil {
		return nil, fmt.Errorf("failed to find requirement: %w", err)
	}
	if requirement == nil {
		return nil, fmt.Errorf("%w: requirement %s", ErrNotFound, requirementID)
	}

	if req.Title != "" {
		requirement.Title = req.Title
	}
	if req.Description != "" {
		requirement.Description = req.Description
	}
	if req.Priority != "" {
		requirement.Priority = models.Priority(req.Priority)
	}

	if err := s.requirements.Update(requirement); err != nil {
		return nil, fmt.Errorf("failed to update requirement: %w", err)
	}
	return requirement, nil
}

func (s *catalogService) DeleteRequirement(requirementID string) error {
	return s.requirements.Delete(requirementID)
}

func (s *catalogService) GetRequirement(requirementID string) (*models.Requirement, error) {
	return s.requirements.FindByID(requirementID)
}

func (s *catalogService) ListRequirements(limit, offset int) ([]models.Requirement, int64, error) {
	return s.requirements.FindAll(limit, offset)
}

// ===== Test Scenario Operations =====

func (s *catalogService) CreateTestScenario(req *CreateTestScenarioRequest) (*models.TestScenario, error) {
	scenario := &models.TestScenario{
		ScenarioID:    req.ScenarioID,
		RequirementID: req.RequirementID,
		Title:         req.Title,
		Description:   req.Description,
	}
	if scenario.ScenarioID == "" {
		scenario.ScenarioID = uuid.New().String()
	}

	if err := s.scenarios.Create(scenario); err != nil {
		return nil, fmt.Errorf("failed to create test scenario: %w", err)
	}
	return scenario, nil
}

func (s *catalogService) UpdateTestScenario(scenarioID string, req *UpdateTestScenarioRequest) (*models.TestScenario, error) {
	scenario, err := s.scenarios.FindByID(scenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to find test scenario: %w", err)
	}
	if scenario == nil {
		return nil, fmt.Errorf("%w: test scenario %s", ErrNotFound, scenarioID)
	}

	if req.RequirementID != "" {
		scenario.RequirementID = req.RequirementID
	}
	if req.Title != "" {
		scenario.Title = req.Title
	}
	if req.Description != "" {
		scenario.Description = req.Description
	}

	if err := s.scenarios.Update(scenario); err != nil {
		return nil, fmt.Errorf("failed to update test scenario: %w", err)
	}
	return scenario, nil
}

func (s *catalogService) DeleteTestScenario(scenarioID string) error {
	return s.scenarios.Delete(scenarioID)
}

func (s *catalogService) GetTestScenario(scenarioID string) (*models.TestScenario, error) {
	return s.scenarios.FindByID(scenarioID)
}

func (s *catalogService) ListTestScenarios(limit, offset int) ([]models.TestScenario, int64, error) {
	return s.scenarios.FindAll(limit, offset)
}

// ===== Defect Operations =====

func (s *catalogService) CreateDefect(req *CreateDefectRequest) (*models.Defect, error) {
	defect := &models.Defect{
		DefectID:      uuid.New().String(),
		Title:         req.Title,
		Description:   req.Description,
		Severity:      models.SeverityMedium,
		Priority:      models.PriorityMedium,
		Status:        models.DefectNew,
		TestCaseID:    req.TestCaseID,
		RequirementID: req.RequirementID,
		ReportedBy:    req.ReportedBy,
	}
	if req.Severity != "" {
		defect.Severity = models.Severity(req.Severity)
	}
	if req.Priority != "" {
		defect.Priority = models.Priority(req.Priority)
	}

	if err := s.defects.Create(defect); err != nil {
		return nil, fmt.Errorf("failed to create defect: %w", err)
	}
	return defect, nil
}

func (s *catalogService) UpdateDefect(defectID string, req *UpdateDefectRequest) (*models.Defect, error) {
	defect, err := s.defects.FindByID(defectID)
	if err != nil {
		return nil, fmt.Errorf("failed to find defect: %w", err)
	}
	if defect == nil {
		return nil, fmt.Errorf("%w: defect %s", ErrNotFound, defectID)
	}

	if req.Title != "" {
		defect.Title = req.Title
	}
	if req.Description != "" {
		defect.Description = req.Description
	}
	if req.Severity != "" {
		defect.Severity = models.Severity(req.Severity)
	}
	if req.Priority != "" {
		defect.Priority = models.Priority(req.Priority)
	}
	if req.Status != "" {
		defect.Status = models.DefectStatus(req.Status)
	}

	if err := s.defects.Update(defect); err != nil {
		return nil, fmt.Errorf("failed to update defect: %w", err)
	}
	return defect, nil
}

func (s *catalogService) DeleteDefect(defectID string) error {
	return s.defects.Delete(defectID)
}

func (s *catalogService) GetDefect(defectID string) (*models.Defect, error) {
	return s.defects.FindByID(defectID)
}

func (s *catalogService) ListDefects(limit, offset int) ([]models.Defect, int64, error) {
	return s.defects.FindAll(limit, offset)
}

// ===== Test Execution Operations =====

func (s *catalogService) CreateTestExecution(req *CreateTestExecutionRequest) (*models.TestExecution, error) {
	tc, err := s.cases.FindByID(req.TestCaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find test case: %w", err)
	}
	if tc == nil {
		return nil, fmt.Errorf("%w: test case %s", ErrNotFound, req.TestCaseID)
	}

	execution := &models.TestExecution{
		ExecutionID:     uuid.New().String(),
		TestCaseID:      req.TestCaseID,
		RunID:           req.RunID,
		ExecutionStatus: models.ExecutionNotExecuted,
	}

	if err := s.executions.Create(execution); err != nil {
		return nil, fmt.Errorf("failed to create test execution: %w", err)
	}
	return execution, nil
}

func (s *catalogService) DeleteTestExecution(executionID string) error {
	return s.executions.Delete(executionID)
}

func (s *catalogService) GetTestExecution(executionID string) (*models.TestExecution, error) {
	return s.executions.FindByID(executionID)
}

func (s *catalogService) ListTestExecutions(limit, offset int) ([]models.TestExecution, int64, error) {
	return s.executions.FindAll(limit, offset)
}

func (s *catalogService) ListExecutionsByCase(caseID string) ([]models.TestExecution, error) {
	return s.executions.FindByCaseID(caseID)
}
