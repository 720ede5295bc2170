package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IssueCategory classifies what kind of problem a finding describes
type IssueCategory string

const (
	CategorySecurity      IssueCategory = "security"
	CategoryPerformance   IssueCategory = "performance"
	CategoryCodeQuality   IssueCategory = "code_quality"
	CategoryBestPractices IssueCategory = "best_practices"
	CategoryBug           IssueCategory = "bug"
	CategoryStyle         IssueCategory = "style"
	CategoryUnclassified  IssueCategory = "unclassified"
)

// Severity represents how serious a finding is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a numeric weight for ordering findings by severity
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseCategory maps an AI-reported category tag to the closed enum.
// Unknown tags become CategoryUnclassified instead of a guessed default.
func ParseCategory(s string) IssueCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "security":
		return CategorySecurity
	case "performance":
		return CategoryPerformance
	case "codequality", "code_quality":
		return CategoryCodeQuality
	case "bestpractices", "best_practices":
		return CategoryBestPractices
	case "bug":
		return CategoryBug
	case "style":
		return CategoryStyle
	default:
		return CategoryUnclassified
	}
}

// ParseSeverity maps an AI-reported severity tag to the closed enum.
// Unknown tags become SeverityInfo, which carries no score weight.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// Finding is one detected issue. Findings are write-once: created
// during aggregation, never updated.
type Finding struct {
	ID            string        `json:"id"`
	ReviewID      string        `json:"review_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      IssueCategory `json:"category"`
	Severity      Severity      `json:"severity"`
	FilePath      string        `json:"file_path"`
	LineNumber    *int          `json:"line_number"`
	CodeSnippet   *string       `json:"code_snippet"`
	Suggestion    *string       `json:"suggestion"`
	IsAIGenerated bool          `json:"is_ai_generated"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewFinding creates an AI-generated finding for a file
func NewFinding(title, description, filePath string) *Finding {
	return &Finding{
		ID:            uuid.New().String(),
		Title:         title,
		Description:   description,
		FilePath:      filePath,
		Category:      CategoryUnclassified,
		Severity:      SeverityInfo,
		IsAIGenerated: true,
		CreatedAt:     time.Now().UTC(),
	}
}
