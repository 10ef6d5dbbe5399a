package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kdkapsikar/TestSphere/internal/config"
	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SuiteData represents a test suite from JSON
type SuiteData struct {
	SuiteID     string `json:"suiteId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TestCaseData represents a test case from JSON
type TestCaseData struct {
	CaseID         string        `json:"caseId"`
	SuiteID        string        `json:"suiteId"`
	Title          string        `json:"title"`
	Priority       string        `json:"priority"`
	Steps          []interface{} `json:"steps"`
	ExpectedResult string        `json:"expectedResult"`
}

func main() {
	configPath := flag.String("config", "config.toml", "Path to config file")
	dataPath := flag.String("data", "examples/sample-suites.json", "Path to suite data JSON file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.TestSuite{},
		&models.TestCase{},
		&models.TestRun{},
		&models.TestExecution{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories
	suiteRepo := repository.NewTestSuiteRepository(db)
	caseRepo := repository.NewTestCaseRepository(db)

	// Read suite data
	data, err := os.ReadFile(*dataPath)
	if err != nil {
		log.Fatalf("Failed to read data file: %v", err)
	}

	var suiteData struct {
		Suites []SuiteData    `json:"suites"`
		Cases  []TestCaseData `json:"cases"`
	}

	if err := json.Unmarshal(data, &suiteData); err != nil {
		log.Fatalf("Failed to parse JSON: %v", err)
	}

	// Import suites
	fmt.Println("Importing test suites...")
	for _, s := range suiteData.Suites {
		suite := &models.TestSuite{
			SuiteID:     s.SuiteID,
			Name:        s.Name,
			Description: s.Description,
			Status:      models.SuiteActive,
		}

		// Check if exists
		existing, _ := suiteRepo.FindByID(s.SuiteID)
		if existing != nil {
			fmt.Printf("  ⏭  Suite '%s' already exists, skipping\n", s.Name)
			continue
		}

		if err := suiteRepo.Create(suite); err != nil {
			log.Printf("  ❌ Failed to create suite '%s': %v\n", s.Name, err)
		} else {
			fmt.Printf("  ✓ Created suite: %s\n", s.Name)
		}
	}

	// Import cases
	fmt.Println("\nImporting test cases...")
	for _, t := range suiteData.Cases {
		testCase := &models.TestCase{
			CaseID:         t.CaseID,
			SuiteID:        t.SuiteID,
			Title:          t.Title,
			Priority:       models.PriorityMedium,
			Status:         models.CasePending,
			ExpectedResult: t.ExpectedResult,
		}

		if t.Priority != "" {
			testCase.Priority = models.Priority(t.Priority)
		}
		if t.Steps != nil {
			testCase.Steps = t.Steps
		}

		// Check if exists
		existing, _ := caseRepo.FindByID(t.CaseID)
		if existing != nil {
			fmt.Printf("  ⏭  Case '%s' already exists, skipping\n", t.Title)
			continue
		}

		if err := caseRepo.Create(testCase); err != nil {
			log.Printf("  ❌ Failed to create case '%s': %v\n", t.Title, err)
		} else {
			fmt.Printf("  ✓ Created case: %s\n", t.Title)
		}
	}

	fmt.Println("\nImport complete.")
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}
