package services

import (
	"context"
	"net/http"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubService implements SourceControlClient for GitHub
type GitHubService struct {
	client *github.Client
}

// NewGitHubService creates a GitHub client, authenticated when a token
// is configured
func NewGitHubService(token string) *GitHubService {
	client := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	return &GitHubService{client: client}
}

// GetPullRequestInfo fetches pull request metadata
func (s *GitHubService) GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*models.PullRequestInfo, error) {
	pr, resp, err := s.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrPullRequestNotFound
		}
		return nil, err
	}

	info := &models.PullRequestInfo{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		Body:       pr.GetBody(),
		HeadBranch: pr.GetHead().GetRef(),
		BaseBranch: pr.GetBase().GetRef(),
		HeadSHA:    pr.GetHead().GetSHA(),
		BaseSHA:    pr.GetBase().GetSHA(),
		HTMLURL:    pr.GetHTMLURL(),
		State:      pr.GetState(),
	}
	if created := pr.GetCreatedAt(); !created.IsZero() {
		t := created.Time
		info.CreatedAt = &t
	}
	if updated := pr.GetUpdatedAt(); !updated.IsZero() {
		t := updated.Time
		info.UpdatedAt = &t
	}

	return info, nil
}

// GetChangedFiles fetches the changed files of a pull request
func (s *GitHubService) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]*models.FileChange, error) {
	opts := &github.ListOptions{PerPage: 100}

	var changes []*models.FileChange
	for {
		files, resp, err := s.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			changes = append(changes, &models.FileChange{
				FileName:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Changes:   f.GetChanges(),
				Patch:     f.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return changes, nil
}

// PostComment posts a comment on the pull request conversation.
// GitHub review comments on a specific line require a commit id, so
// file-scoped findings are posted as regular issue comments too.
func (s *GitHubService) PostComment(ctx context.Context, owner, repo string, number int, body string, path *string, line *int) error {
	comment := &github.IssueComment{Body: github.String(body)}

	_, _, err := s.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	return err
}
