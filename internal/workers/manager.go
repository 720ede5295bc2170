package workers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/services"
	"github.com/alimgiray/smartreview/pkg/config"
)

// WorkerManager manages the review workers
type WorkerManager struct {
	workers        []Worker
	queueService   *services.QueueService
	reviewService  *services.ReviewService
	projectService *services.ProjectService
	sourceClients  map[models.WebhookSource]services.SourceControlClient
	aiService      services.AIAnalyzer
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(
	queueService *services.QueueService,
	reviewService *services.ReviewService,
	projectService *services.ProjectService,
	sourceClients map[models.WebhookSource]services.SourceControlClient,
	aiService services.AIAnalyzer,
) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:        make([]Worker, 0),
		queueService:   queueService,
		reviewService:  reviewService,
		projectService: projectService,
		sourceClients:  sourceClients,
		aiService:      aiService,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// StartAll starts all workers based on configuration
func (wm *WorkerManager) StartAll() error {
	if !config.AppConfig.Worker.Enabled {
		log.Println("Review workers disabled by configuration")
		return nil
	}

	reviewWorkers := wm.getWorkerCount("REVIEW_WORKERS", 1)
	pollInterval := time.Duration(config.AppConfig.Worker.PollIntervalSeconds) * time.Second

	log.Printf("Starting %d review worker(s), poll interval %s", reviewWorkers, pollInterval)

	for i := 0; i < reviewWorkers; i++ {
		worker := NewReviewWorker(
			fmt.Sprintf("review-%d", i+1),
			wm.queueService,
			wm.reviewService,
			wm.projectService,
			wm.sourceClients,
			wm.aiService,
			pollInterval,
		)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	return nil
}

// StopAll gracefully stops all workers. An in-flight pipeline run
// always completes before its worker exits.
func (wm *WorkerManager) StopAll() error {
	log.Println("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			log.Printf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	wm.wg.Wait()

	log.Println("All workers stopped")
	return nil
}

// getWorkerCount reads worker count from environment variable with fallback
func (wm *WorkerManager) getWorkerCount(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return count
		}
		log.Printf("Invalid value for %s, using default: %d", envVar, defaultValue)
	}
	return defaultValue
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			log.Printf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}
