package services

import (
	"database/sql"
	"fmt"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/repositories"
	"github.com/alimgiray/smartreview/pkg/logger"
)

// ProjectService manages project records
type ProjectService struct {
	projectRepo *repositories.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo *repositories.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(id string) (*models.Project, error) {
	return s.projectRepo.GetByID(id)
}

// GetOrCreateByFullName looks a project up by its owner/repo full name
// and creates it when absent. Auto-created projects are attributed to
// the system user until a real owner claims them.
func (s *ProjectService) GetOrCreateByFullName(source models.WebhookSource, owner, repo string) (*models.Project, error) {
	fullName := owner + "/" + repo

	project, err := s.projectRepo.GetByFullName(fullName)
	if err == nil {
		return project, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up project %s: %w", fullName, err)
	}

	project = models.NewProject(repo, fullName, repositoryURL(source, fullName), models.SystemUserID)
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project %s: %w", fullName, err)
	}

	logger.Infof("Created project %s from webhook traffic", fullName)
	return project, nil
}

func repositoryURL(source models.WebhookSource, fullName string) string {
	if source == models.SourceGitLab {
		return "https://gitlab.com/" + fullName
	}
	return "https://github.com/" + fullName
}
