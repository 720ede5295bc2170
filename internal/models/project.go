package models

import (
	"time"

	"github.com/google/uuid"
)

// SystemUserID owns projects that are auto-created from webhook
// traffic before any real user claims them.
const SystemUserID = "00000000-0000-0000-0000-000000000000"

// Project represents a tracked GitHub/GitLab repository
type Project struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	FullName      string     `json:"full_name"`
	Description   *string    `json:"description"`
	RepositoryURL string     `json:"repository_url"`
	UserID        string     `json:"user_id"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// NewProject creates a project owned by the given user
func NewProject(name, fullName, repositoryURL, userID string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:            uuid.New().String(),
		Name:          name,
		FullName:      fullName,
		RepositoryURL: repositoryURL,
		UserID:        userID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks required project fields
func (p *Project) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "Project name is required"}
	}
	if p.FullName == "" {
		return &ValidationError{Field: "full_name", Message: "Project full name is required"}
	}
	return nil
}

// ValidationError describes an invalid model field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
