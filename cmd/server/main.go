package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kdkapsikar/TestSphere/internal/ai"
	"github.com/kdkapsikar/TestSphere/internal/config"
	"github.com/kdkapsikar/TestSphere/internal/handler"
	"github.com/kdkapsikar/TestSphere/internal/logging"
	"github.com/kdkapsikar/TestSphere/internal/models"
	"github.com/kdkapsikar/TestSphere/internal/repository"
	"github.com/kdkapsikar/TestSphere/internal/scheduler"
	"github.com/kdkapsikar/TestSphere/internal/service"
	"github.com/kdkapsikar/TestSphere/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.toml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	// Initialize database
	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Auto migrate models
	if err := db.AutoMigrate(
		&models.TestSuite{},
		&models.TestCase{},
		&models.TestRun{},
		&models.TestExecution{},
		&models.Defect{},
		&models.Requirement{},
		&models.TestScenario{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize repositories
	suiteRepo := repository.NewTestSuiteRepository(db)
	caseRepo := repository.NewTestCaseRepository(db)
	runRepo := repository.NewTestRunRepository(db)
	executionRepo := repository.NewTestExecutionRepository(db)
	defectRepo := repository.NewDefectRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	scenarioRepo := repository.NewTestScenarioRepository(db)

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize scheduler and orphaned-run sweeper
	sched := scheduler.NewScheduler(caseRepo, runRepo, hub, logger, scheduler.Options{
		MinDelay: time.Duration(cfg.Scheduler.MinDelayMs) * time.Millisecond,
		MaxDelay: time.Duration(cfg.Scheduler.MaxDelayMs) * time.Millisecond,
		PassRate: cfg.Scheduler.PassRate,
	})
	sweeper := scheduler.NewSweeper(caseRepo, runRepo, logger)
	if err := sweeper.Start(cfg.Scheduler.SweepSpec); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Initialize services
	execService := service.NewExecutionService(caseRepo, runRepo, executionRepo, defectRepo, scenarioRepo, logger)
	statsService := service.NewStatsService(suiteRepo, caseRepo, runRepo)
	catalogService := service.NewCatalogService(suiteRepo, caseRepo, requirementRepo, scenarioRepo, defectRepo, executionRepo)
	genService := service.NewGenerationService(ai.NewClient(cfg.AI), cfg.AI.Model, requirementRepo, scenarioRepo, caseRepo, logger)

	// Initialize handlers
	executionHandler := handler.NewExecutionHandler(sched, execService)
	dashboardHandler := handler.NewDashboardHandler(statsService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	generationHandler := handler.NewGenerationHandler(genService)
	wsHandler := handler.NewWebSocketHandler(hub)

	// Setup Gin router
	r := gin.Default()

	// Enable CORS
	r.Use(corsMiddleware())

	// Register routes
	executionHandler.RegisterRoutes(r)
	dashboardHandler.RegisterRoutes(r)
	catalogHandler.RegisterRoutes(r)
	generationHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "testsphere",
		})
	})

	// Start server
	addr := cfg.Server.GetAddr()
	logger.Info("starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Type {
	case "sqlite":
		// Ensure data directory exists
		dbPath := cfg.Database.DSN
		dbDir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
