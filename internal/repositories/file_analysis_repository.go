package repositories

import (
	"database/sql"

	"github.com/alimgiray/smartreview/internal/models"
)

// FileAnalysisRepository handles database operations for file analyses
type FileAnalysisRepository struct {
	db *sql.DB
}

// NewFileAnalysisRepository creates a new FileAnalysisRepository
func NewFileAnalysisRepository(db *sql.DB) *FileAnalysisRepository {
	return &FileAnalysisRepository{db: db}
}

// CreateBatch inserts file analyses inside the given transaction
func (r *FileAnalysisRepository) CreateBatch(tx *sql.Tx, analyses []*models.FileAnalysis) error {
	query := `
		INSERT INTO file_analyses (id, review_id, file_path, file_name, language, added_lines, deleted_lines, total_changes, issues_count, diff_content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, analysis := range analyses {
		_, err := tx.Exec(query,
			analysis.ID,
			analysis.ReviewID,
			analysis.FilePath,
			analysis.FileName,
			analysis.Language,
			analysis.AddedLines,
			analysis.DeletedLines,
			analysis.TotalChanges,
			analysis.IssuesCount,
			analysis.DiffContent,
			analysis.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByReviewID retrieves all file analyses for a review
func (r *FileAnalysisRepository) GetByReviewID(reviewID string) ([]*models.FileAnalysis, error) {
	query := `
		SELECT id, review_id, file_path, file_name, language, added_lines, deleted_lines, total_changes, issues_count, diff_content, created_at
		FROM file_analyses
		WHERE review_id = ?
		ORDER BY file_path ASC
	`

	rows, err := r.db.Query(query, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*models.FileAnalysis
	for rows.Next() {
		analysis := &models.FileAnalysis{}
		err := rows.Scan(
			&analysis.ID,
			&analysis.ReviewID,
			&analysis.FilePath,
			&analysis.FileName,
			&analysis.Language,
			&analysis.AddedLines,
			&analysis.DeletedLines,
			&analysis.TotalChanges,
			&analysis.IssuesCount,
			&analysis.DiffContent,
			&analysis.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	return analyses, rows.Err()
}
