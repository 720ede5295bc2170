package services

import (
	"testing"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportFindings(t *testing.T) {
	review := models.NewReview("project-id", 42, "Harden validation", "https://github.com/acme/api/pull/42", "fix/validation")
	review.Status = models.ReviewStatusCompleted
	score := 85
	review.QualityScore = &score
	review.TotalIssuesCount = 2

	line := 10
	suggestion := "Check the error."
	first := models.NewFinding("unchecked error", "the error is dropped", "handler.go")
	first.Severity = models.SeverityHigh
	first.Category = models.CategoryBug
	first.LineNumber = &line
	first.Suggestion = &suggestion

	second := models.NewFinding("magic number", "unexplained constant", "config.go")
	second.Severity = models.SeverityLow
	second.Category = models.CategoryCodeQuality

	buf, err := NewExportService().ExportFindings(review, []*models.Finding{first, second})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Findings")
	require.NoError(t, err)

	assert.Equal(t, "Pull Request", rows[0][0])
	assert.Equal(t, "#42 Harden validation", rows[0][1])
	assert.Equal(t, "85", rows[2][1])

	// Header row plus one row per finding
	require.GreaterOrEqual(t, len(rows), 8)
	assert.Equal(t, findingHeaders, rows[5][:len(findingHeaders)])
	assert.Equal(t, "high", rows[6][0])
	assert.Equal(t, "unchecked error", rows[6][2])
	assert.Equal(t, "10", rows[6][5])
	assert.Equal(t, "Check the error.", rows[6][6])
	assert.Equal(t, "low", rows[7][0])
	assert.Equal(t, "config.go", rows[7][4])
}

func TestExportFindingsEmpty(t *testing.T) {
	review := models.NewReview("project-id", 7, "Docs only", "https://github.com/acme/api/pull/7", "docs/readme")

	buf, err := NewExportService().ExportFindings(review, nil)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}
