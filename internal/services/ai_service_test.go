package services

import (
	"testing"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFindings(t *testing.T) {
	response := `Here is my analysis:
{
  "issues": [
    {
      "title": "SQL injection risk",
      "description": "The query concatenates user input.",
      "category": "Security",
      "severity": "Critical",
      "lineNumber": 12,
      "suggestion": "Use parameterized queries."
    },
    {
      "title": "Unused variable",
      "description": "The result is never read.",
      "category": "SomethingNew",
      "severity": "bananas"
    }
  ]
}`

	findings, err := parseFindings(response, "db/query.go")
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, "SQL injection risk", findings[0].Title)
	assert.Equal(t, models.CategorySecurity, findings[0].Category)
	assert.Equal(t, models.SeverityCritical, findings[0].Severity)
	assert.Equal(t, "db/query.go", findings[0].FilePath)
	require.NotNil(t, findings[0].LineNumber)
	assert.Equal(t, 12, *findings[0].LineNumber)
	require.NotNil(t, findings[0].Suggestion)
	assert.True(t, findings[0].IsAIGenerated)

	// Unknown tags map to the explicit fallback variants
	assert.Equal(t, models.CategoryUnclassified, findings[1].Category)
	assert.Equal(t, models.SeverityInfo, findings[1].Severity)
	assert.Nil(t, findings[1].LineNumber)
}

func TestParseFindingsEmptyIssues(t *testing.T) {
	findings, err := parseFindings(`{"issues": []}`, "main.go")

	assert.NoError(t, err)
	assert.Empty(t, findings)
}

func TestParseFindingsRejectsNonJSON(t *testing.T) {
	_, err := parseFindings("the change looks fine to me", "main.go")
	assert.Error(t, err)
}

func TestParseFindingsSkipsUntitledIssues(t *testing.T) {
	findings, err := parseFindings(`{"issues": [{"description": "no title here"}]}`, "main.go")

	assert.NoError(t, err)
	assert.Empty(t, findings)
}
