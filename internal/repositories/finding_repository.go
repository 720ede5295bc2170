package repositories

import (
	"database/sql"

	"github.com/alimgiray/smartreview/internal/models"
)

// FindingRepository handles database operations for findings
type FindingRepository struct {
	db *sql.DB
}

// NewFindingRepository creates a new FindingRepository
func NewFindingRepository(db *sql.DB) *FindingRepository {
	return &FindingRepository{db: db}
}

// CreateBatch inserts findings inside the given transaction
func (r *FindingRepository) CreateBatch(tx *sql.Tx, findings []*models.Finding) error {
	query := `
		INSERT INTO findings (id, review_id, title, description, category, severity, file_path, line_number, code_snippet, suggestion, is_ai_generated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, finding := range findings {
		_, err := tx.Exec(query,
			finding.ID,
			finding.ReviewID,
			finding.Title,
			finding.Description,
			finding.Category,
			finding.Severity,
			finding.FilePath,
			finding.LineNumber,
			finding.CodeSnippet,
			finding.Suggestion,
			finding.IsAIGenerated,
			finding.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByReviewID retrieves all findings for a review
func (r *FindingRepository) GetByReviewID(reviewID string) ([]*models.Finding, error) {
	query := `
		SELECT id, review_id, title, description, category, severity, file_path, line_number, code_snippet, suggestion, is_ai_generated, created_at
		FROM findings
		WHERE review_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []*models.Finding
	for rows.Next() {
		finding := &models.Finding{}
		err := rows.Scan(
			&finding.ID,
			&finding.ReviewID,
			&finding.Title,
			&finding.Description,
			&finding.Category,
			&finding.Severity,
			&finding.FilePath,
			&finding.LineNumber,
			&finding.CodeSnippet,
			&finding.Suggestion,
			&finding.IsAIGenerated,
			&finding.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		findings = append(findings, finding)
	}

	return findings, rows.Err()
}
