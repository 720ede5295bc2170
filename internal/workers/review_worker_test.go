package workers

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/repositories"
	"github.com/alimgiray/smartreview/internal/services"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	entries, err := os.ReadDir("../../migrations")
	require.NoError(t, err)

	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		script, err := os.ReadFile(filepath.Join("../../migrations", entry.Name()))
		require.NoError(t, err)
		_, err = db.Exec(string(script))
		require.NoError(t, err)
	}

	return db
}

type postedComment struct {
	body     string
	path     *string
	line     *int
	postedAt time.Time
}

// fakeSourceClient records every posted comment and serves canned
// pull request data
type fakeSourceClient struct {
	prInfo    *models.PullRequestInfo
	prInfoErr error
	files     []*models.FileChange
	filesErr  error
	postErr   error
	comments  []postedComment
}

func (f *fakeSourceClient) GetPullRequestInfo(ctx context.Context, owner, repo string, number int) (*models.PullRequestInfo, error) {
	if f.prInfoErr != nil {
		return nil, f.prInfoErr
	}
	return f.prInfo, nil
}

func (f *fakeSourceClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]*models.FileChange, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files, nil
}

func (f *fakeSourceClient) PostComment(ctx context.Context, owner, repo string, number int, body string, path *string, line *int) error {
	f.comments = append(f.comments, postedComment{body: body, path: path, line: line, postedAt: time.Now()})
	return f.postErr
}

// findingComments returns only the per-finding comments, which carry a
// file path, in posting order
func (f *fakeSourceClient) findingComments() []postedComment {
	var result []postedComment
	for _, comment := range f.comments {
		if comment.path != nil {
			result = append(result, comment)
		}
	}
	return result
}

type fakeAIAnalyzer struct {
	findingsByFile map[string][]*models.Finding
	err            error
}

func (f *fakeAIAnalyzer) AnalyzeDiff(ctx context.Context, diff, fileName string, language models.Language) ([]*models.Finding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.findingsByFile[fileName], nil
}

func testPRInfo() *models.PullRequestInfo {
	return &models.PullRequestInfo{
		Number:     7,
		Title:      "Harden input validation",
		Body:       "Adds validation to the import endpoint.",
		HeadBranch: "fix/validation",
		BaseBranch: "main",
		HTMLURL:    "https://github.com/acme/api/pull/7",
		State:      "open",
	}
}

func testFinding(title string, severity models.Severity) *models.Finding {
	finding := models.NewFinding(title, "description of "+title, "handler.go")
	finding.Severity = severity
	finding.Category = models.CategoryBug
	return finding
}

func newTestWorker(t *testing.T, client *fakeSourceClient, ai services.AIAnalyzer) (*ReviewWorker, *services.ReviewService) {
	t.Helper()
	db := setupTestDB(t)

	reviewService := services.NewReviewService(
		db,
		repositories.NewReviewRepository(db),
		repositories.NewFindingRepository(db),
		repositories.NewFileAnalysisRepository(db),
	)
	projectService := services.NewProjectService(repositories.NewProjectRepository(db))
	queueService := services.NewQueueService(repositories.NewQueueRepository(db))

	worker := NewReviewWorker(
		"review-worker-test",
		queueService,
		reviewService,
		projectService,
		map[models.WebhookSource]services.SourceControlClient{models.SourceGitHub: client},
		ai,
		time.Second,
	)
	worker.commentDelay = time.Millisecond
	return worker, reviewService
}

func TestProcessMessageHappyPath(t *testing.T) {
	client := &fakeSourceClient{
		prInfo: testPRInfo(),
		files: []*models.FileChange{
			{FileName: "handler.go", Status: "modified", Additions: 10, Deletions: 2, Changes: 12, Patch: "@@ -1 +1 @@"},
			{FileName: "README.md", Status: "modified", Additions: 1, Deletions: 0, Changes: 1},
		},
	}
	ai := &fakeAIAnalyzer{findingsByFile: map[string][]*models.Finding{
		"handler.go": {
			testFinding("unchecked error", models.SeverityHigh),
			testFinding("magic number", models.SeverityLow),
		},
	}}
	worker, reviewService := newTestWorker(t, client, ai)

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	review := reviews[0]
	assert.Equal(t, models.ReviewStatusCompleted, review.Status)
	assert.Equal(t, 7, review.PullRequestNumber)
	assert.Equal(t, "Harden input validation", review.Title)
	assert.Equal(t, 2, review.TotalIssuesCount)
	assert.Equal(t, 1, review.HighIssuesCount)
	assert.Equal(t, 1, review.LowIssuesCount)
	require.NotNil(t, review.QualityScore)
	// 100 - 10 - 2 = 88
	assert.Equal(t, 88, *review.QualityScore)
	assert.NotNil(t, review.AnalysisStartTime)
	assert.NotNil(t, review.AnalysisEndTime)

	findings, err := reviewService.GetFindings(review.ID)
	require.NoError(t, err)
	assert.Len(t, findings, 2)

	// The file without a patch is skipped entirely
	files, err := reviewService.GetFileAnalyses(review.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "handler.go", files[0].FileName)
	assert.Equal(t, 2, files[0].IssuesCount)

	// Summary comment plus one comment for the High finding; Low stays
	// below the commenting threshold
	require.Len(t, client.comments, 2)
	assert.Contains(t, client.comments[0].body, "AI Code Review Results")
	assert.Contains(t, client.comments[0].body, "**Total Issues:** 2")
	assert.Contains(t, client.comments[1].body, "unchecked error")
}

func TestProcessMessageZeroFindings(t *testing.T) {
	client := &fakeSourceClient{
		prInfo: testPRInfo(),
		files: []*models.FileChange{
			{FileName: "handler.go", Status: "modified", Additions: 3, Deletions: 1, Changes: 4, Patch: "@@ -1 +1 @@"},
		},
	}
	worker, reviewService := newTestWorker(t, client, &fakeAIAnalyzer{})

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, models.ReviewStatusCompleted, reviews[0].Status)
	require.NotNil(t, reviews[0].QualityScore)
	assert.Equal(t, 100, *reviews[0].QualityScore)

	require.Len(t, client.comments, 1)
	assert.Contains(t, client.comments[0].body, "No issues found")
}

func TestProcessMessageChangedFilesFailure(t *testing.T) {
	client := &fakeSourceClient{
		prInfo:   testPRInfo(),
		filesErr: errors.New("diff too large"),
	}
	worker, reviewService := newTestWorker(t, client, &fakeAIAnalyzer{})

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	review := reviews[0]
	assert.Equal(t, models.ReviewStatusFailed, review.Status)
	require.NotNil(t, review.ErrorMessage)
	assert.Contains(t, *review.ErrorMessage, "diff too large")

	findings, err := reviewService.GetFindings(review.ID)
	require.NoError(t, err)
	assert.Empty(t, findings)

	files, err := reviewService.GetFileAnalyses(review.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	assert.Empty(t, client.comments)
}

func TestProcessMessagePRInfoFailureAbandonsMessage(t *testing.T) {
	client := &fakeSourceClient{prInfoErr: services.ErrPullRequestNotFound}
	worker, reviewService := newTestWorker(t, client, &fakeAIAnalyzer{})

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Empty(t, client.comments)
}

func TestProcessMessageUnknownSourceAbandonsMessage(t *testing.T) {
	client := &fakeSourceClient{prInfo: testPRInfo()}
	worker, reviewService := newTestWorker(t, client, &fakeAIAnalyzer{})

	message := models.NewQueueMessage(models.WebhookSource("Gitea"), "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestProcessMessageAnalysisFailureCountsAsZeroFindings(t *testing.T) {
	client := &fakeSourceClient{
		prInfo: testPRInfo(),
		files: []*models.FileChange{
			{FileName: "handler.go", Status: "modified", Additions: 5, Deletions: 0, Changes: 5, Patch: "@@ -1 +1 @@"},
		},
	}
	worker, reviewService := newTestWorker(t, client, &fakeAIAnalyzer{err: errors.New("model overloaded")})

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, models.ReviewStatusCompleted, reviews[0].Status)
	assert.Equal(t, 0, reviews[0].TotalIssuesCount)

	files, err := reviewService.GetFileAnalyses(reviews[0].ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, 0, files[0].IssuesCount)
}

func TestProcessMessageCommentFailureDoesNotFailReview(t *testing.T) {
	client := &fakeSourceClient{
		prInfo:  testPRInfo(),
		postErr: errors.New("rate limited"),
		files: []*models.FileChange{
			{FileName: "handler.go", Status: "modified", Additions: 1, Deletions: 0, Changes: 1, Patch: "@@ -1 +1 @@"},
		},
	}
	ai := &fakeAIAnalyzer{findingsByFile: map[string][]*models.Finding{
		"handler.go": {testFinding("nil dereference", models.SeverityCritical)},
	}}
	worker, reviewService := newTestWorker(t, client, ai)

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, models.ReviewStatusCompleted, reviews[0].Status)
}

// Re-delivering a webhook produces a second, independent review record
func TestProcessMessageRedeliveryCreatesNewReview(t *testing.T) {
	client := &fakeSourceClient{prInfo: testPRInfo()}
	worker, reviewService := newTestWorker(t, client, &fakeAIAnalyzer{})

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	reviews, err := reviewService.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.NotEqual(t, reviews[0].ID, reviews[1].ID)
	assert.Equal(t, reviews[0].PullRequestNumber, reviews[1].PullRequestNumber)
}

func TestFindingCommentsAreRateLimited(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping rate limit timing test in short mode")
	}

	client := &fakeSourceClient{
		prInfo: testPRInfo(),
		files: []*models.FileChange{
			{FileName: "handler.go", Status: "modified", Additions: 1, Deletions: 0, Changes: 1, Patch: "@@ -1 +1 @@"},
		},
	}
	ai := &fakeAIAnalyzer{findingsByFile: map[string][]*models.Finding{
		"handler.go": {
			testFinding("first", models.SeverityMedium),
			testFinding("second", models.SeverityMedium),
			testFinding("third", models.SeverityMedium),
		},
	}}
	worker, _ := newTestWorker(t, client, ai)
	worker.commentDelay = commentPostDelay

	message := models.NewQueueMessage(models.SourceGitHub, "acme", "api", 7)
	require.NoError(t, worker.ProcessMessage(context.Background(), message))

	posted := client.findingComments()
	require.Len(t, posted, 3)
	for i := 1; i < len(posted); i++ {
		gap := posted[i].postedAt.Sub(posted[i-1].postedAt)
		assert.GreaterOrEqual(t, gap, commentPostDelay, "comments %d and %d posted too close together", i-1, i)
	}
}

func TestSelectTopFindings(t *testing.T) {
	var findings []*models.Finding
	// 12 medium findings, then higher severities interleaved at the end
	for i := 0; i < 12; i++ {
		findings = append(findings, testFinding("medium", models.SeverityMedium))
	}
	critical := testFinding("critical", models.SeverityCritical)
	high := testFinding("high", models.SeverityHigh)
	low := testFinding("low", models.SeverityLow)
	info := testFinding("info", models.SeverityInfo)
	findings = append(findings, low, critical, info, high)

	top := selectTopFindings(findings, maxFindingComments)

	require.Len(t, top, maxFindingComments)
	assert.Equal(t, models.SeverityCritical, top[0].Severity)
	assert.Equal(t, models.SeverityHigh, top[1].Severity)
	for _, finding := range top {
		assert.GreaterOrEqual(t, finding.Severity.Rank(), models.SeverityMedium.Rank())
	}

	// Equal severities keep their original relative order
	for i := 2; i < len(top); i++ {
		assert.Equal(t, models.SeverityMedium, top[i].Severity)
		assert.Same(t, findings[i-2], top[i])
	}
}

func TestSelectTopFindingsExcludesLowAndInfo(t *testing.T) {
	findings := []*models.Finding{
		testFinding("low", models.SeverityLow),
		testFinding("info", models.SeverityInfo),
	}

	assert.Empty(t, selectTopFindings(findings, maxFindingComments))
}

func TestBuildSummaryComment(t *testing.T) {
	findings := []*models.Finding{
		testFinding("a", models.SeverityCritical),
		testFinding("b", models.SeverityMedium),
		testFinding("c", models.SeverityMedium),
	}

	summary := buildSummaryComment(findings, 4)

	assert.True(t, strings.HasPrefix(summary, "## 🤖 AI Code Review Results"))
	assert.Contains(t, summary, "**Total Issues:** 3")
	assert.Contains(t, summary, "🔴 Critical: 1")
	assert.Contains(t, summary, "🟡 Medium: 2")
	assert.Contains(t, summary, "**Files Reviewed:** 4")
	assert.NotContains(t, summary, "No issues found")
}

func TestBuildFindingComment(t *testing.T) {
	finding := testFinding("unchecked error", models.SeverityHigh)
	suggestion := "Handle the error."
	finding.Suggestion = &suggestion

	comment := buildFindingComment(finding)
	assert.Contains(t, comment, "🟠 unchecked error")
	assert.Contains(t, comment, "**Suggestion:** Handle the error.")

	finding.Suggestion = nil
	assert.Contains(t, buildFindingComment(finding), "**Suggestion:** N/A")
}
