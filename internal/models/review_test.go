package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateQualityScore(t *testing.T) {
	testCases := []struct {
		name     string
		critical int
		high     int
		medium   int
		low      int
		expected int
	}{
		{
			name:     "No issues gives a perfect score",
			expected: 100,
		},
		{
			name:     "Mixed severities",
			critical: 1,
			high:     2,
			medium:   0,
			low:      3,
			expected: 54, // 100 - 20 - 20 - 0 - 6
		},
		{
			name:     "Score is clamped at zero",
			critical: 10,
			high:     5,
			expected: 0,
		},
		{
			name:     "Only low severity issues",
			low:      4,
			expected: 92,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			review := &Review{
				CriticalIssuesCount: tc.critical,
				HighIssuesCount:     tc.high,
				MediumIssuesCount:   tc.medium,
				LowIssuesCount:      tc.low,
			}

			assert.Equal(t, tc.expected, review.CalculateQualityScore())
		})
	}
}

func TestReviewStatusIsTerminal(t *testing.T) {
	assert.False(t, ReviewStatusPending.IsTerminal())
	assert.False(t, ReviewStatusProcessing.IsTerminal())
	assert.True(t, ReviewStatusCompleted.IsTerminal())
	assert.True(t, ReviewStatusFailed.IsTerminal())
	assert.True(t, ReviewStatusCancelled.IsTerminal())
}

func TestNewReviewDefaults(t *testing.T) {
	review := NewReview("project-1", 42, "Fix race condition", "https://github.com/acme/repo/pull/42", "fix/race")

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, ReviewStatusPending, review.Status)
	assert.Equal(t, 42, review.PullRequestNumber)
	assert.Nil(t, review.QualityScore)
	assert.Nil(t, review.AnalysisStartTime)
	assert.Nil(t, review.AnalysisEndTime)
}
