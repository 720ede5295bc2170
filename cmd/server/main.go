package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/smartreview/internal/handlers"
	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/repositories"
	"github.com/alimgiray/smartreview/internal/services"
	"github.com/alimgiray/smartreview/internal/workers"
	"github.com/alimgiray/smartreview/pkg/config"
	"github.com/alimgiray/smartreview/pkg/database"
	"github.com/alimgiray/smartreview/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	gin.SetMode(config.AppConfig.Server.Mode)
	logger.Init()

	// Initialize database
	if err := database.Init(config.AppConfig.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Repositories
	queueRepo := repositories.NewQueueRepository(database.DB)
	projectRepo := repositories.NewProjectRepository(database.DB)
	reviewRepo := repositories.NewReviewRepository(database.DB)
	findingRepo := repositories.NewFindingRepository(database.DB)
	fileAnalysisRepo := repositories.NewFileAnalysisRepository(database.DB)

	// Services
	queueService := services.NewQueueService(queueRepo)
	webhookService := services.NewWebhookService()
	projectService := services.NewProjectService(projectRepo)
	reviewService := services.NewReviewService(database.DB, reviewRepo, findingRepo, fileAnalysisRepo)
	exportService := services.NewExportService()
	aiService := services.NewAnthropicService(config.AppConfig.Anthropic.APIKey, config.AppConfig.Anthropic.Model)

	// Source-control clients
	githubService := services.NewGitHubService(config.AppConfig.GitHub.Token)
	gitlabService, err := services.NewGitLabService(config.AppConfig.GitLab.Token, config.AppConfig.GitLab.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize GitLab client: %v", err)
	}
	sourceClients := map[models.WebhookSource]services.SourceControlClient{
		models.SourceGitHub: githubService,
		models.SourceGitLab: gitlabService,
	}

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(queueService, reviewService, projectService, sourceClients, aiService)

	// Initialize router
	router := gin.Default()
	setupRoutes(router, webhookService, queueService, reviewService, exportService)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	log.Println("Server stopped")
}

func setupRoutes(router *gin.Engine, webhookService *services.WebhookService, queueService *services.QueueService, reviewService *services.ReviewService, exportService *services.ExportService) {
	webhookHandler := handlers.NewWebhookHandler(webhookService, queueService)
	reviewHandler := handlers.NewReviewHandler(reviewService, exportService)
	healthHandler := handlers.NewHealthHandler()

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	{
		api.POST("/webhooks/github", webhookHandler.HandleGitHub)
		api.POST("/webhooks/gitlab", webhookHandler.HandleGitLab)
		api.GET("/webhooks/queue/status", webhookHandler.QueueStatus)

		api.GET("/reviews", reviewHandler.ListReviews)
		api.GET("/reviews/:id", reviewHandler.GetReview)
		api.GET("/reviews/:id/export", reviewHandler.ExportReview)
	}
}
