package workers

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/services"
)

const (
	defaultPollInterval = 5 * time.Second
	errorBackoff        = 10 * time.Second

	// Pause between successive comment posts to respect platform
	// rate limits.
	commentPostDelay = 500 * time.Millisecond

	// At most this many per-finding comments are posted per review.
	maxFindingComments = 10
)

// ReviewWorker is the single consumer driving the review pipeline: it
// pops webhook messages off the queue and runs each one through
// metadata fetch, project resolution, per-file AI analysis, scoring
// and comment write-back. One message is in flight at a time;
// cancellation is only observed between pipeline runs, never
// mid-pipeline.
type ReviewWorker struct {
	*BaseWorker
	queueService   *services.QueueService
	reviewService  *services.ReviewService
	projectService *services.ProjectService
	sourceClients  map[models.WebhookSource]services.SourceControlClient
	aiService      services.AIAnalyzer
	pollInterval   time.Duration
	commentDelay   time.Duration
}

// NewReviewWorker creates a new review worker
func NewReviewWorker(
	workerID string,
	queueService *services.QueueService,
	reviewService *services.ReviewService,
	projectService *services.ProjectService,
	sourceClients map[models.WebhookSource]services.SourceControlClient,
	aiService services.AIAnalyzer,
	pollInterval time.Duration,
) *ReviewWorker {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &ReviewWorker{
		BaseWorker:     NewBaseWorker(workerID),
		queueService:   queueService,
		reviewService:  reviewService,
		projectService: projectService,
		sourceClients:  sourceClients,
		aiService:      aiService,
		pollInterval:   pollInterval,
		commentDelay:   commentPostDelay,
	}
}

// Start begins the review worker process
func (w *ReviewWorker) Start(ctx context.Context) error {
	w.Running = true
	log.Printf("Review worker %s started", w.WorkerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Review worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			log.Printf("Review worker %s stopping", w.WorkerID)
			return nil
		default:
			message := w.queueService.Dequeue()
			if message == nil {
				// No messages available, sleep and try again
				time.Sleep(w.pollInterval)
				continue
			}

			if err := w.ProcessMessage(ctx, message); err != nil {
				log.Printf("Review worker %s error processing %s/%s#%d: %v",
					w.WorkerID, message.Owner, message.Repository, message.PullRequestNumber, err)
				time.Sleep(errorBackoff)
			}
		}
	}
}

// ProcessMessage drives one queue message through the full review
// pipeline. Failures before the review record exists abandon the
// message silently; a failed file fetch marks the review Failed; a
// failed analysis of a single file is treated as zero findings for
// that file.
func (w *ReviewWorker) ProcessMessage(ctx context.Context, message *models.QueueMessage) error {
	log.Printf("Processing webhook: %s - %s#%d", message.Source, message.FullName(), message.PullRequestNumber)

	client, ok := w.sourceClients[message.Source]
	if !ok {
		log.Printf("No source-control client for %s, abandoning message %s", message.Source, message.ID)
		return nil
	}

	// 1. Fetch pull request metadata
	prInfo, err := client.GetPullRequestInfo(ctx, message.Owner, message.Repository, message.PullRequestNumber)
	if err != nil {
		log.Printf("Failed to fetch PR info for %s#%d: %v", message.FullName(), message.PullRequestNumber, err)
		return nil
	}

	// 2. Find or create the owning project
	project, err := w.projectService.GetOrCreateByFullName(message.Source, message.Owner, message.Repository)
	if err != nil {
		log.Printf("Failed to resolve project %s: %v", message.FullName(), err)
		return nil
	}

	// 3. Create the review record
	review := models.NewReview(project.ID, prInfo.Number, prInfo.Title, prInfo.HTMLURL, prInfo.HeadBranch)
	if prInfo.Body != "" {
		review.Description = &prInfo.Body
	}
	if err := w.reviewService.Create(review); err != nil {
		log.Printf("Failed to create review for %s#%d: %v", message.FullName(), prInfo.Number, err)
		return nil
	}

	// 4. Analysis begins
	if err := w.reviewService.UpdateStatus(review.ID, models.ReviewStatusProcessing, nil); err != nil {
		return err
	}

	// 5. Fetch changed files
	files, err := client.GetChangedFiles(ctx, message.Owner, message.Repository, message.PullRequestNumber)
	if err != nil {
		errMsg := fmt.Sprintf("failed to fetch changed files: %v", err)
		if statusErr := w.reviewService.UpdateStatus(review.ID, models.ReviewStatusFailed, &errMsg); statusErr != nil {
			return statusErr
		}
		return nil
	}

	log.Printf("Review %s: %d changed files", review.ID, len(files))

	// 6. Analyze each file sequentially to bound load on the AI backend
	var allFindings []*models.Finding
	var allFileAnalyses []*models.FileAnalysis

	for _, file := range files {
		if file.Patch == "" {
			continue
		}

		language := models.DetectLanguage(file.FileName)
		findings, err := w.aiService.AnalyzeDiff(ctx, file.Patch, file.FileName, language)
		if err != nil {
			// A failed analysis counts as zero findings for this file
			log.Printf("AI analysis failed for %s: %v", file.FileName, err)
			findings = nil
		}
		allFindings = append(allFindings, findings...)

		analysis := models.NewFileAnalysis(file.FileName)
		analysis.AddedLines = file.Additions
		analysis.DeletedLines = file.Deletions
		analysis.TotalChanges = file.Changes
		analysis.IssuesCount = len(findings)
		patch := file.Patch
		analysis.DiffContent = &patch
		allFileAnalyses = append(allFileAnalyses, analysis)
	}

	// 7. Persist findings, file records and severity counters together
	if len(allFindings) > 0 || len(allFileAnalyses) > 0 {
		if err := w.reviewService.SaveAnalysisResults(review.ID, allFindings, allFileAnalyses); err != nil {
			return err
		}
	}

	// 8. Compute the quality score
	if _, err := w.reviewService.CalculateQualityScore(review.ID); err != nil {
		return err
	}

	// 9. Post the summary comment
	summary := buildSummaryComment(allFindings, len(allFileAnalyses))
	if err := client.PostComment(ctx, message.Owner, message.Repository, message.PullRequestNumber, summary, nil, nil); err != nil {
		log.Printf("Failed to post summary comment on %s#%d: %v", message.FullName(), message.PullRequestNumber, err)
	}

	// 10. Post per-finding comments for the worst offenders
	for _, finding := range selectTopFindings(allFindings, maxFindingComments) {
		comment := buildFindingComment(finding)
		if err := client.PostComment(ctx, message.Owner, message.Repository, message.PullRequestNumber, comment, &finding.FilePath, finding.LineNumber); err != nil {
			log.Printf("Failed to post finding comment on %s#%d: %v", message.FullName(), message.PullRequestNumber, err)
		}

		time.Sleep(w.commentDelay)
	}

	// 11. Done
	if err := w.reviewService.UpdateStatus(review.ID, models.ReviewStatusCompleted, nil); err != nil {
		return err
	}

	log.Printf("Review %s completed: %d findings in %d files", review.ID, len(allFindings), len(allFileAnalyses))
	return nil
}

// selectTopFindings returns up to limit findings at or above Medium
// severity, worst first. Ties keep their original order.
func selectTopFindings(findings []*models.Finding, limit int) []*models.Finding {
	var eligible []*models.Finding
	for _, finding := range findings {
		if finding.Severity.Rank() >= models.SeverityMedium.Rank() {
			eligible = append(eligible, finding)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Severity.Rank() > eligible[j].Severity.Rank()
	})

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

func buildSummaryComment(findings []*models.Finding, fileCount int) string {
	counts := map[models.Severity]int{}
	for _, finding := range findings {
		counts[finding.Severity]++
	}

	closing := "✅ No issues found!"
	if len(findings) > 0 {
		closing = "See the comments below for details on the most important findings."
	}

	var sb strings.Builder
	sb.WriteString("## 🤖 AI Code Review Results\n\n")
	fmt.Fprintf(&sb, "**Total Issues:** %d\n", len(findings))
	fmt.Fprintf(&sb, "- 🔴 Critical: %d\n", counts[models.SeverityCritical])
	fmt.Fprintf(&sb, "- 🟠 High: %d\n", counts[models.SeverityHigh])
	fmt.Fprintf(&sb, "- 🟡 Medium: %d\n", counts[models.SeverityMedium])
	fmt.Fprintf(&sb, "- 🔵 Low: %d\n\n", counts[models.SeverityLow])
	fmt.Fprintf(&sb, "**Files Reviewed:** %d\n\n", fileCount)
	sb.WriteString(closing)

	return sb.String()
}

func buildFindingComment(finding *models.Finding) string {
	suggestion := "N/A"
	if finding.Suggestion != nil && *finding.Suggestion != "" {
		suggestion = *finding.Suggestion
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s %s**\n\n", severityGlyph(finding.Severity), finding.Title)
	sb.WriteString(finding.Description)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Category:** %s\n", finding.Category)
	fmt.Fprintf(&sb, "**Suggestion:** %s", suggestion)

	return sb.String()
}

func severityGlyph(severity models.Severity) string {
	switch severity {
	case models.SeverityCritical:
		return "🔴"
	case models.SeverityHigh:
		return "🟠"
	case models.SeverityMedium:
		return "🟡"
	case models.SeverityLow:
		return "🔵"
	default:
		return "ℹ️"
	}
}
