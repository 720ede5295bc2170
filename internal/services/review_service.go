package services

import (
	"database/sql"
	"fmt"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/repositories"
	"github.com/alimgiray/smartreview/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ReviewService owns the lifecycle of review records and their
// findings and file analyses
type ReviewService struct {
	db               *sql.DB
	reviewRepo       *repositories.ReviewRepository
	findingRepo      *repositories.FindingRepository
	fileAnalysisRepo *repositories.FileAnalysisRepository
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	db *sql.DB,
	reviewRepo *repositories.ReviewRepository,
	findingRepo *repositories.FindingRepository,
	fileAnalysisRepo *repositories.FileAnalysisRepository,
) *ReviewService {
	return &ReviewService{
		db:               db,
		reviewRepo:       reviewRepo,
		findingRepo:      findingRepo,
		fileAnalysisRepo: fileAnalysisRepo,
	}
}

// Create persists a new pending review
func (s *ReviewService) Create(review *models.Review) error {
	if err := s.reviewRepo.Create(review); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"review_id": review.ID,
		"pr_number": review.PullRequestNumber,
	}).Info("Review created")

	return nil
}

// GetByID retrieves a review by ID
func (s *ReviewService) GetByID(id string) (*models.Review, error) {
	return s.reviewRepo.GetByID(id)
}

// GetAll retrieves reviews, optionally filtered by status
func (s *ReviewService) GetAll(status *models.ReviewStatus) ([]*models.Review, error) {
	return s.reviewRepo.GetAll(status)
}

// GetFindings retrieves the findings of a review
func (s *ReviewService) GetFindings(reviewID string) ([]*models.Finding, error) {
	return s.findingRepo.GetByReviewID(reviewID)
}

// GetFileAnalyses retrieves the file analyses of a review
func (s *ReviewService) GetFileAnalyses(reviewID string) ([]*models.FileAnalysis, error) {
	return s.fileAnalysisRepo.GetByReviewID(reviewID)
}

// UpdateStatus transitions a review to a new status. Transitions out
// of a terminal state are refused. Processing stamps the analysis
// start time, Completed and Failed stamp the end time.
func (s *ReviewService) UpdateStatus(id string, status models.ReviewStatus, errorMessage *string) error {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("failed to load review %s: %w", id, err)
	}

	if review.Status.IsTerminal() {
		return fmt.Errorf("review %s is already %s", id, review.Status)
	}

	if err := s.reviewRepo.UpdateStatus(id, status, errorMessage); err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"review_id": id,
		"status":    status,
	}).Info("Review status updated")

	return nil
}

// SaveAnalysisResults persists the findings and file analyses of a
// review run together with the review's severity counters in one
// transaction
func (s *ReviewService) SaveAnalysisResults(reviewID string, findings []*models.Finding, fileAnalyses []*models.FileAnalysis) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return fmt.Errorf("failed to load review %s: %w", reviewID, err)
	}

	for _, finding := range findings {
		finding.ReviewID = reviewID
	}
	for _, analysis := range fileAnalyses {
		analysis.ReviewID = reviewID
	}

	review.TotalIssuesCount = len(findings)
	review.CriticalIssuesCount = 0
	review.HighIssuesCount = 0
	review.MediumIssuesCount = 0
	review.LowIssuesCount = 0
	for _, finding := range findings {
		switch finding.Severity {
		case models.SeverityCritical:
			review.CriticalIssuesCount++
		case models.SeverityHigh:
			review.HighIssuesCount++
		case models.SeverityMedium:
			review.MediumIssuesCount++
		case models.SeverityLow:
			review.LowIssuesCount++
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.findingRepo.CreateBatch(tx, findings); err != nil {
		return fmt.Errorf("failed to save findings: %w", err)
	}
	if err := s.fileAnalysisRepo.CreateBatch(tx, fileAnalyses); err != nil {
		return fmt.Errorf("failed to save file analyses: %w", err)
	}
	if err := s.reviewRepo.UpdateCounters(tx, review); err != nil {
		return fmt.Errorf("failed to update review counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"review_id": reviewID,
		"findings":  len(findings),
		"files":     len(fileAnalyses),
	}).Info("Analysis results saved")

	return nil
}

// CalculateQualityScore computes and persists the quality score of a
// review from its severity counters
func (s *ReviewService) CalculateQualityScore(reviewID string) (int, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return 0, fmt.Errorf("failed to load review %s: %w", reviewID, err)
	}

	score := review.CalculateQualityScore()
	if err := s.reviewRepo.UpdateQualityScore(reviewID, score); err != nil {
		return 0, fmt.Errorf("failed to save quality score: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"review_id": reviewID,
		"score":     score,
	}).Info("Quality score calculated")

	return score, nil
}
