package main

import (
	"fmt"
	"os"

	"academy/internal/config"
	"academy/internal/database"
	"academy/internal/logger"
	"academy/internal/router"
)

// @title           Academy Finance API
// @version         1.0
// @description     Ledger, book sales, teacher payroll and financial reports for the academy back office.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.SchedulerAPIKey == "" {
		log.Warn("SCHEDULER_API_KEY is not set, scheduler endpoints will answer 503")
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	engine := router.New(dbManager.DB(), appConfig)

	log.Infow("Starting academy finance server",
		"port", appConfig.Port,
		"default_currency", appConfig.DefaultCurrency,
		"report_timezone", appConfig.ReportLocation.String(),
	)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return engine.Run(":" + appConfig.Port)
}
