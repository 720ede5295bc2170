package services

import (
	"context"
	"errors"

	"github.com/alimgiray/smartreview/internal/models"
)

// ErrPullRequestNotFound is returned when the platform reports the
// requested pull/merge request does not exist
var ErrPullRequestNotFound = errors.New("pull request not found")

// SourceControlClient abstracts the source-control platform operations
// the review pipeline depends on
type SourceControlClient interface {
	// GetPullRequestInfo fetches pull request metadata
	GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*models.PullRequestInfo, error)

	// GetChangedFiles fetches the changed files of a pull request with their diffs
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]*models.FileChange, error)

	// PostComment posts a comment on a pull request. Path and line are
	// optional and attach the comment to a file location when supported.
	PostComment(ctx context.Context, owner, repo string, number int, body string, path *string, line *int) error
}
