package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"

	"github.com/google/uuid"
)

// Completer produces a text completion for a prompt. Satisfied by the ai
// package client; tests substitute a canned implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerationService AI生成服务接口，从需求生成场景、从场景生成用例
type GenerationService interface {
	GenerateScenarios(ctx context.Context, requirementID string) (*GenerationResult, error)
	GenerateTestCases(ctx context.Context, scenarioID string) (*GenerationResult, error)
}

// GenerationResult reports per-item outcomes of a bulk generation. A partial
// failure keeps the successfully persisted items.
type GenerationResult struct {
	Created []GeneratedItem `json:"created"`
	Failed  []FailedItem    `json:"failed,omitempty"`
}

type GeneratedItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type FailedItem struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

type generationService struct {
	completer    Completer
	model        string
	requirements repository.RequirementRepository
	scenarios    repository.TestScenarioRepository
	cases        repository.TestCaseRepository
	logger       *slog.Logger
}

// NewGenerationService creates a new generation service. The model name is
// recorded in generation metadata only.
func NewGenerationService(
	completer Completer,
	model string,
	requirements repository.RequirementRepository,
	scenarios repository.TestScenarioRepository,
	cases repository.TestCaseRepository,
	logger *slog.Logger,
) GenerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &generationService{
		completer:    completer,
		model:        model,
		requirements: requirements,
		scenarios:    scenarios,
		cases:        cases,
		logger:       logger,
	}
}

const scenarioPromptTemplate = `You are a QA engineer. Given the software requirement below, produce a list of distinct test scenarios covering it, including negative and edge cases.

Requirement: %s
%s

Respond with one scenario per line, numbered like "1. <scenario title>". No other text.`

const casePromptTemplate = `You are a QA engineer. Given the test scenario below, produce a list of concrete test cases for it.

Scenario: %s
%s

Respond with one test case per line, numbered like "1. <test case title>". No other text.`

// GenerateScenarios asks the model for scenarios covering a requirement and
// persists each parsed line as a scenario linked to the requirement.
func (s *generationService) GenerateScenarios(ctx context.Context, requirementID string) (*GenerationResult, error) {
	requirement, err := s.requirements.FindByID(requirementID)
	if err != nil {
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	if requirement == nil {
		return nil, fmt.Errorf("%w: requirement %s", ErrNotFound, requirementID)
	}

	detail := ""
	if requirement.Description != "" {
		detail = "Details: " + requirement.Description
	}
	prompt := fmt.Sprintf(scenarioPromptTemplate, requirement.Title, detail)

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate scenarios: %w", err)
	}

	titles := parseNumberedLines(reply)
	if len(titles) == 0 {
		return nil, fmt.Errorf("generate scenarios: no usable lines in model output")
	}

	result := &GenerationResult{}
	for _, title := range titles {
		scenario := &models.TestScenario{
			ScenarioID:    uuid.New().String(),
			RequirementID: requirement.RequirementID,
			Title:         title,
			GenerationMeta: models.JSONB{
				"source":      "ai",
				"model":       s.model,
				"generatedAt": time.Now().UTC().Format(time.RFC3339),
			},
		}
		if err := s.scenarios.Create(scenario); err != nil {
			s.logger.Error("persist generated scenario failed",
				"requirement_id", requirementID, "title", title, "err", err)
			result.Failed = append(result.Failed, FailedItem{Title: title, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, GeneratedItem{ID: scenario.ScenarioID, Title: title})
	}
	return result, nil
}

// GenerateTestCases asks the model for test cases covering a scenario and
// persists each parsed line as a pending test case linked to the scenario.
func (s *generationService) GenerateTestCases(ctx context.Context, scenarioID string) (*GenerationResult, error) {
	scenario, err := s.scenarios.FindByID(scenarioID)
	if err != nil {
		return nil, fmt.Errorf("find test scenario: %w", err)
	}
	if scenario == nil {
		return nil, fmt.Errorf("%w: test scenario %s", ErrNotFound, scenarioID)
	}

	detail := ""
	if scenario.Description != "" {
		detail = "Details: " + scenario.Description
	}
	prompt := fmt.Sprintf(casePromptTemplate, scenario.Title, detail)

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate test cases: %w", err)
	}

	titles := parseNumberedLines(reply)
	if len(titles) == 0 {
		return nil, fmt.Errorf("generate test cases: no usable lines in model output")
	}

	result := &GenerationResult{}
	for _, title := range titles {
		tc := &models.TestCase{
			CaseID:     uuid.New().String(),
			ScenarioID: scenario.ScenarioID,
			Title:      title,
			Priority:   models.PriorityMedium,
			Status:     models.CasePending,
		}
		if err := s.cases.Create(tc); err != nil {
			s.logger.Error("persist generated test case failed",
				"scenario_id", scenarioID, "title", title, "err", err)
			result.Failed = append(result.Failed, FailedItem{Title: title, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, GeneratedItem{ID: tc.CaseID, Title: title})
	}
	return result, nil
}

// parseNumberedLines extracts titles from "1. title" / "2) title" style model
// output, tolerating blank lines, markdown bullets and surrounding chatter.
func parseNumberedLines(reply string) []string {
	var titles []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		if line == "" {
			continue
		}

		// Strip a leading "12." or "12)" numbering prefix.
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		if i == 0 || i >= len(line) || (line[i] != '.' && line[i] != ')') {
			continue
		}
		title := strings.TrimSpace(line[i+1:])
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
