package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/alimgiray/smartreview/internal/models"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabService implements SourceControlClient for GitLab, cloud or
// self-hosted. Merge request iids map onto the pull request number of
// the canonical queue message.
type GitLabService struct {
	client *gitlab.Client
}

// NewGitLabService creates a GitLab client. baseURL is only needed for
// self-hosted instances.
func NewGitLabService(token, baseURL string) (*GitLabService, error) {
	opts := []gitlab.ClientOptionFunc{}
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}

	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, err
	}

	return &GitLabService{client: client}, nil
}

// GetPullRequestInfo fetches merge request metadata
func (s *GitLabService) GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*models.PullRequestInfo, error) {
	pid := owner + "/" + repo

	mr, resp, err := s.client.MergeRequests.GetMergeRequest(pid, int64(number), nil, gitlab.WithContext(ctx))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrPullRequestNotFound
		}
		return nil, err
	}

	info := &models.PullRequestInfo{
		Number:     number,
		Title:      mr.Title,
		Body:       mr.Description,
		HeadBranch: mr.SourceBranch,
		BaseBranch: mr.TargetBranch,
		HeadSHA:    mr.SHA,
		HTMLURL:    mr.WebURL,
		State:      mr.State,
		CreatedAt:  mr.CreatedAt,
		UpdatedAt:  mr.UpdatedAt,
	}
	if mr.DiffRefs != (gitlab.MergeRequestDiffRefs{}) {
		info.BaseSHA = mr.DiffRefs.BaseSha
		info.HeadSHA = mr.DiffRefs.HeadSha
	}

	return info, nil
}

// GetChangedFiles fetches the changed files of a merge request.
// GitLab diffs do not carry addition/deletion counters, so they are
// derived from the patch text.
func (s *GitLabService) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]*models.FileChange, error) {
	pid := owner + "/" + repo
	opts := &gitlab.ListMergeRequestDiffsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}

	var changes []*models.FileChange
	for {
		diffs, resp, err := s.client.MergeRequests.ListMergeRequestDiffs(pid, int64(number), opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, err
		}

		for _, d := range diffs {
			additions, deletions := countDiffLines(d.Diff)
			changes = append(changes, &models.FileChange{
				FileName:  d.NewPath,
				Status:    diffStatus(d),
				Additions: additions,
				Deletions: deletions,
				Changes:   additions + deletions,
				Patch:     d.Diff,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = int64(resp.NextPage)
	}

	return changes, nil
}

// PostComment posts a note on the merge request
func (s *GitLabService) PostComment(ctx context.Context, owner, repo string, number int, body string, path *string, line *int) error {
	pid := owner + "/" + repo

	_, _, err := s.client.Notes.CreateMergeRequestNote(pid, int64(number), &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.Ptr(body),
	}, gitlab.WithContext(ctx))
	return err
}

func diffStatus(d *gitlab.MergeRequestDiff) string {
	switch {
	case d.NewFile:
		return "added"
	case d.DeletedFile:
		return "removed"
	case d.RenamedFile:
		return "renamed"
	default:
		return "modified"
	}
}

func countDiffLines(patch string) (additions, deletions int) {
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			additions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}
	return additions, deletions
}
