package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus represents the lifecycle state of a code review
type ReviewStatus string

const (
	ReviewStatusPending    ReviewStatus = "pending"
	ReviewStatusProcessing ReviewStatus = "processing"
	ReviewStatusCompleted  ReviewStatus = "completed"
	ReviewStatusFailed     ReviewStatus = "failed"
	ReviewStatusCancelled  ReviewStatus = "cancelled"
)

// IsTerminal reports whether the status can never change again
func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewStatusCompleted || s == ReviewStatusFailed || s == ReviewStatusCancelled
}

// Review represents one AI review run over a pull request
type Review struct {
	ID                  string       `json:"id"`
	ProjectID           string       `json:"project_id"`
	PullRequestNumber   int          `json:"pull_request_number"`
	Title               string       `json:"title"`
	Description         *string      `json:"description"`
	PullRequestURL      string       `json:"pull_request_url"`
	BranchName          string       `json:"branch_name"`
	Status              ReviewStatus `json:"status"`
	QualityScore        *int         `json:"quality_score"`
	TotalIssuesCount    int          `json:"total_issues_count"`
	CriticalIssuesCount int          `json:"critical_issues_count"`
	HighIssuesCount     int          `json:"high_issues_count"`
	MediumIssuesCount   int          `json:"medium_issues_count"`
	LowIssuesCount      int          `json:"low_issues_count"`
	AnalysisStartTime   *time.Time   `json:"analysis_start_time"`
	AnalysisEndTime     *time.Time   `json:"analysis_end_time"`
	ErrorMessage        *string      `json:"error_message"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// NewReview creates a pending review for a project pull request
func NewReview(projectID string, prNumber int, title, url, branch string) *Review {
	now := time.Now().UTC()
	return &Review{
		ID:                uuid.New().String(),
		ProjectID:         projectID,
		PullRequestNumber: prNumber,
		Title:             title,
		PullRequestURL:    url,
		BranchName:        branch,
		Status:            ReviewStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// CalculateQualityScore computes the 0-100 score from the severity
// counters: 100 minus 20 per critical, 10 per high, 5 per medium and
// 2 per low issue, clamped to the 0-100 range.
func (r *Review) CalculateQualityScore() int {
	score := 100 -
		r.CriticalIssuesCount*20 -
		r.HighIssuesCount*10 -
		r.MediumIssuesCount*5 -
		r.LowIssuesCount*2

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
