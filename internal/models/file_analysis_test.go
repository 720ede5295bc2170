package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	testCases := []struct {
		fileName string
		expected Language
	}{
		{"Program.cs", LanguageCSharp},
		{"app.js", LanguageJavaScript},
		{"index.ts", LanguageTypeScript},
		{"script.py", LanguagePython},
		{"Main.java", LanguageJava},
		{"main.go", LanguageGo},
		{"lib.rs", LanguageRust},
		{"index.php", LanguagePHP},
		{"app.rb", LanguageRuby},
		{"src/deep/nested/file.GO", LanguageGo},
		{"README.md", LanguageOther},
		{"Makefile", LanguageOther},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, DetectLanguage(tc.fileName), "file %q", tc.fileName)
	}
}

func TestNewFileAnalysis(t *testing.T) {
	analysis := NewFileAnalysis("internal/server/handler.go")

	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, "internal/server/handler.go", analysis.FilePath)
	assert.Equal(t, "handler.go", analysis.FileName)
	assert.Equal(t, LanguageGo, analysis.Language)
}
