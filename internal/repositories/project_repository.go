package repositories

import (
	"database/sql"

	"github.com/alimgiray/smartreview/internal/models"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{
		db: db,
	}
}

// Create creates a new project
func (r *ProjectRepository) Create(project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, full_name, description, repository_url, user_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		project.ID,
		project.Name,
		project.FullName,
		project.Description,
		project.RepositoryURL,
		project.UserID,
		project.IsActive,
		project.CreatedAt,
		project.UpdatedAt,
	)

	return err
}

// GetByID retrieves a project by ID (excluding soft deleted)
func (r *ProjectRepository) GetByID(id string) (*models.Project, error) {
	query := `
		SELECT id, name, full_name, description, repository_url, user_id, is_active, created_at, updated_at, deleted_at
		FROM projects
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanProject(r.db.QueryRow(query, id))
}

// GetByFullName retrieves a project by its owner/repo full name
func (r *ProjectRepository) GetByFullName(fullName string) (*models.Project, error) {
	query := `
		SELECT id, name, full_name, description, repository_url, user_id, is_active, created_at, updated_at, deleted_at
		FROM projects
		WHERE full_name = ? AND deleted_at IS NULL
	`

	return r.scanProject(r.db.QueryRow(query, fullName))
}

// Update updates a project's mutable fields
func (r *ProjectRepository) Update(project *models.Project) error {
	query := `
		UPDATE projects
		SET name = ?, description = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		project.Name,
		project.Description,
		project.IsActive,
		project.ID,
	)
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

func (r *ProjectRepository) scanProject(row *sql.Row) (*models.Project, error) {
	project := &models.Project{}
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.FullName,
		&project.Description,
		&project.RepositoryURL,
		&project.UserID,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return project, nil
}
