package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AIAnalyzer turns a diff plus file identity into a list of findings
type AIAnalyzer interface {
	AnalyzeDiff(ctx context.Context, diff, fileName string, language models.Language) ([]*models.Finding, error)
}

// AnthropicService implements AIAnalyzer on the Anthropic Messages API
type AnthropicService struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewAnthropicService creates an AI analysis client
func NewAnthropicService(apiKey, model string) *AnthropicService {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicService{
		api:   &client,
		model: anthropic.Model(model),
	}
}

const analysisSystemPrompt = `You are a code review expert. Analyze the provided code changes and report the problems you find.

Check these categories:
1. Security vulnerabilities (Security)
2. Performance problems (Performance)
3. Code quality (CodeQuality)
4. Best practices (BestPractices)
5. Potential bugs (Bug)

Return ONLY a JSON document in this exact shape, no markdown fencing or explanation:
{
  "issues": [
    {
      "title": "Issue title",
      "description": "Detailed explanation",
      "category": "Security|Performance|CodeQuality|BestPractices|Bug|Style",
      "severity": "Critical|High|Medium|Low|Info",
      "lineNumber": 10,
      "suggestion": "Suggested fix"
    }
  ]
}
Return {"issues": []} when the change looks fine.`

type aiIssue struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Severity    string  `json:"severity"`
	LineNumber  *int    `json:"lineNumber"`
	Suggestion  *string `json:"suggestion"`
}

type aiResponse struct {
	Issues []aiIssue `json:"issues"`
}

// AnalyzeDiff sends a file diff to the model and returns the findings
// it reports, mapped onto the closed category/severity enums
func (s *AnthropicService) AnalyzeDiff(ctx context.Context, diff, fileName string, language models.Language) ([]*models.Finding, error) {
	userPrompt := fmt.Sprintf("File: %s\nLanguage: %s\n\nCode changes:\n```\n%s\n```", fileName, language, diff)

	msg, err := s.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: analysisSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return parseFindings(text, fileName)
}

// parseFindings extracts the issues document from the model output.
// The model occasionally wraps JSON in prose or fencing, so the parser
// takes the outermost braces.
func parseFindings(text, filePath string) ([]*models.Finding, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON document in AI response")
	}

	var response aiResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &response); err != nil {
		return nil, fmt.Errorf("parse AI response: %w", err)
	}

	findings := make([]*models.Finding, 0, len(response.Issues))
	for _, issue := range response.Issues {
		if issue.Title == "" {
			continue
		}

		finding := models.NewFinding(issue.Title, issue.Description, filePath)
		finding.Category = models.ParseCategory(issue.Category)
		finding.Severity = models.ParseSeverity(issue.Severity)
		finding.LineNumber = issue.LineNumber
		finding.Suggestion = issue.Suggestion
		findings = append(findings, finding)
	}

	return findings, nil
}
