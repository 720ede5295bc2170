package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Language is the programming language detected from a file extension
type Language string

const (
	LanguageCSharp     Language = "CSharp"
	LanguageJavaScript Language = "JavaScript"
	LanguageTypeScript Language = "TypeScript"
	LanguagePython     Language = "Python"
	LanguageJava       Language = "Java"
	LanguageGo         Language = "Go"
	LanguageRust       Language = "Rust"
	LanguagePHP        Language = "PHP"
	LanguageRuby       Language = "Ruby"
	LanguageOther      Language = "Other"
)

// DetectLanguage infers the language from a file name's extension
func DetectLanguage(fileName string) Language {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".cs":
		return LanguageCSharp
	case ".js":
		return LanguageJavaScript
	case ".ts":
		return LanguageTypeScript
	case ".py":
		return LanguagePython
	case ".java":
		return LanguageJava
	case ".go":
		return LanguageGo
	case ".rs":
		return LanguageRust
	case ".php":
		return LanguagePHP
	case ".rb":
		return LanguageRuby
	default:
		return LanguageOther
	}
}

// FileAnalysis records the per-file outcome of a review run, one row
// per changed file. Write-once like Finding.
type FileAnalysis struct {
	ID           string    `json:"id"`
	ReviewID     string    `json:"review_id"`
	FilePath     string    `json:"file_path"`
	FileName     string    `json:"file_name"`
	Language     Language  `json:"language"`
	AddedLines   int       `json:"added_lines"`
	DeletedLines int       `json:"deleted_lines"`
	TotalChanges int       `json:"total_changes"`
	IssuesCount  int       `json:"issues_count"`
	DiffContent  *string   `json:"diff_content"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewFileAnalysis creates a file analysis record for a changed file
func NewFileAnalysis(filePath string) *FileAnalysis {
	return &FileAnalysis{
		ID:        uuid.New().String(),
		FilePath:  filePath,
		FileName:  filepath.Base(filePath),
		Language:  DetectLanguage(filePath),
		CreatedAt: time.Now().UTC(),
	}
}
