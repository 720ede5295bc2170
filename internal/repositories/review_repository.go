package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/smartreview/internal/models"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, project_id, pull_request_number, title, description, pull_request_url, branch_name,
		status, quality_score, total_issues_count, critical_issues_count, high_issues_count,
		medium_issues_count, low_issues_count, analysis_start_time, analysis_end_time, error_message,
		created_at, updated_at`

// Create creates a new review
func (r *ReviewRepository) Create(review *models.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		review.ID,
		review.ProjectID,
		review.PullRequestNumber,
		review.Title,
		review.Description,
		review.PullRequestURL,
		review.BranchName,
		review.Status,
		review.QualityScore,
		review.TotalIssuesCount,
		review.CriticalIssuesCount,
		review.HighIssuesCount,
		review.MediumIssuesCount,
		review.LowIssuesCount,
		review.AnalysisStartTime,
		review.AnalysisEndTime,
		review.ErrorMessage,
		review.CreatedAt,
		review.UpdatedAt,
	)
	return err
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(id string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = ?`

	review := &models.Review{}
	err := r.scan(r.db.QueryRow(query, id), review)
	if err != nil {
		return nil, err
	}

	return review, nil
}

// GetAll retrieves reviews ordered by creation time, optionally
// filtered by status
func (r *ReviewRepository) GetAll(status *models.ReviewStatus) ([]*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews`
	args := []interface{}{}

	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		review := &models.Review{}
		if err := r.scan(rows, review); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// UpdateStatus updates a review's status, stamping analysis start/end
// times on the matching transitions and recording an error message if
// one is given
func (r *ReviewRepository) UpdateStatus(id string, status models.ReviewStatus, errorMessage *string) error {
	now := time.Now().UTC()

	query := `UPDATE reviews SET status = ?, updated_at = ?`
	args := []interface{}{status, now}

	switch status {
	case models.ReviewStatusProcessing:
		query += `, analysis_start_time = ?`
		args = append(args, now)
	case models.ReviewStatusCompleted, models.ReviewStatusFailed:
		query += `, analysis_end_time = ?`
		args = append(args, now)
	}

	if errorMessage != nil && *errorMessage != "" {
		query += `, error_message = ?`
		args = append(args, *errorMessage)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateCounters updates the severity bucket counters of a review
func (r *ReviewRepository) UpdateCounters(tx *sql.Tx, review *models.Review) error {
	query := `
		UPDATE reviews
		SET total_issues_count = ?, critical_issues_count = ?, high_issues_count = ?,
		    medium_issues_count = ?, low_issues_count = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := tx.Exec(query,
		review.TotalIssuesCount,
		review.CriticalIssuesCount,
		review.HighIssuesCount,
		review.MediumIssuesCount,
		review.LowIssuesCount,
		review.ID,
	)
	return err
}

// UpdateQualityScore persists a computed quality score
func (r *ReviewRepository) UpdateQualityScore(id string, score int) error {
	query := `UPDATE reviews SET quality_score = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.db.Exec(query, score, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ReviewRepository) scan(row rowScanner, review *models.Review) error {
	return row.Scan(
		&review.ID,
		&review.ProjectID,
		&review.PullRequestNumber,
		&review.Title,
		&review.Description,
		&review.PullRequestURL,
		&review.BranchName,
		&review.Status,
		&review.QualityScore,
		&review.TotalIssuesCount,
		&review.CriticalIssuesCount,
		&review.HighIssuesCount,
		&review.MediumIssuesCount,
		&review.LowIssuesCount,
		&review.AnalysisStartTime,
		&review.AnalysisEndTime,
		&review.ErrorMessage,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
}
