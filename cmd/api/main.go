package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/idara-sms/schoolbooks-api/internal/ai"
	"github.com/idara-sms/schoolbooks-api/internal/backup"
	"github.com/idara-sms/schoolbooks-api/internal/config"
	"github.com/idara-sms/schoolbooks-api/internal/handlers"
	"github.com/idara-sms/schoolbooks-api/internal/heads"
	"github.com/idara-sms/schoolbooks-api/internal/ledger"
	"github.com/idara-sms/schoolbooks-api/internal/logger"
	"github.com/idara-sms/schoolbooks-api/internal/middleware"
	"github.com/idara-sms/schoolbooks-api/internal/store/postgres"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg.Environment)

	// Connect to the document store
	ctx := context.Background()
	docs, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer docs.Close()
	logg.Info().Msg("connected to database")

	// Core services
	ledgerService := ledger.NewService(docs, logg)
	headRegistry := heads.NewRegistry(docs, logg)
	backupService := backup.NewService(docs, logg)
	uploadValidator := backup.NewUploadValidator(cfg.MaxRestoreBytes)

	// Off-site archive storage is optional; without a bucket the endpoint
	// reports itself unavailable.
	var archiveStore *backup.ArchiveStore
	if cfg.S3Bucket != "" {
		archiveStore, err = backup.NewArchiveStore(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			logg.Fatal().Err(err).Msg("failed to initialize archive storage")
		}
		logg.Info().Str("bucket", cfg.S3Bucket).Msg("archive storage initialized")
	}

	// AI assistant, sharing one cached data snapshot
	contextProvider := ai.NewContextProvider(ledgerService, docs, logg)
	var assistant *ai.Assistant
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logg.Fatal().Err(err).Msg("failed to initialize gemini client")
		}
		assistant = ai.NewAssistant(geminiClient, contextProvider, logg)
		logg.Info().Str("model", cfg.GeminiModel).Msg("assistant initialized")
	}

	// Handlers
	usersHandler := handlers.NewUsersHandler(docs, logg)
	financeHandler := handlers.NewFinanceHandler(ledgerService, docs, logg)
	feesHandler := handlers.NewFeesHandler(docs, logg)
	headsHandler := handlers.NewHeadsHandler(headRegistry, logg)
	exportHandler := handlers.NewExportHandler(ledgerService, docs, logg)
	backupHandler := handlers.NewBackupHandler(backupService, uploadValidator, archiveStore, logg)

	app := fiber.New(fiber.Config{
		AppName: "schoolbooks API v1.0",
	})

	// Apply global middleware
	app.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoint (public)
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "schoolbooks-api",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Internal routes (webhook callbacks - should be secured with webhook secret in production)
	internal := v1.Group("/internal")
	internal.Post("/users/sync", usersHandler.SyncUser)

	// Protected routes (require authentication)
	protected := v1.Group("", middleware.ClerkAuth(cfg.ClerkSecretKey))

	protected.Get("/users/me", usersHandler.GetMe)

	// Finance ledger routes
	protected.Get("/finance/summary", financeHandler.GetSummary)
	protected.Get("/finance/:side", financeHandler.GetDashboard)
	protected.Post("/finance/:side", financeHandler.CreateTransaction)
	protected.Put("/finance/:side/:id", financeHandler.UpdateTransaction)
	protected.Delete("/finance/:side/:id", financeHandler.DeleteTransaction)

	// Fee payment routes
	protected.Get("/fees", feesHandler.GetFees)
	protected.Post("/fees", feesHandler.CreateFee)
	protected.Put("/fees/:id", feesHandler.UpdateFee)
	protected.Delete("/fees/:id", feesHandler.DeleteFee)

	// Category head routes
	protected.Get("/heads", headsHandler.GetHeads)
	protected.Post("/heads", headsHandler.CreateHead)
	protected.Delete("/heads/:id", headsHandler.DeleteHead)

	// Export routes
	protected.Get("/export/finance/csv", exportHandler.ExportFinanceCSV)
	protected.Get("/export/finance/xlsx", exportHandler.ExportFinanceXLSX)
	protected.Get("/export/fees/csv", exportHandler.ExportFeesCSV)
	protected.Get("/export/:side/csv", exportHandler.ExportSideCSV)

	// Backup and restore routes
	protected.Get("/backup", backupHandler.Download)
	protected.Post("/backup/offsite", backupHandler.Offsite)
	protected.Get("/backup/collections/:collection/csv", backupHandler.DownloadCollectionCSV)
	protected.Post("/restore", backupHandler.Restore)

	// AI assistant routes, only wired when a Gemini key is configured
	if assistant != nil {
		aiHandler := handlers.NewAIHandler(assistant, contextProvider, logg)
		protected.Post("/ai/chat", aiHandler.Chat)
		protected.Post("/ai/report", aiHandler.GenerateReport)
		protected.Post("/ai/extract", aiHandler.ExtractEntry)
		protected.Post("/ai/context/refresh", aiHandler.RefreshContext)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logg.Info().Str("addr", addr).Msg("schoolbooks API is running")
	if err := app.Listen(addr); err != nil {
		logg.Fatal().Err(err).Msg("server stopped")
	}
}
