package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alimgiray/smartreview/internal/models"
)

// WebhookService normalizes platform-specific webhook payloads into
// canonical queue messages. Malformed payloads fail normalization and
// must not be enqueued.
type WebhookService struct{}

// NewWebhookService creates a new WebhookService
func NewWebhookService() *WebhookService {
	return &WebhookService{}
}

type githubWebhookPayload struct {
	Action     string `json:"action"`
	Number     int    `json:"number"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repository"`
	PullRequest struct {
		Head struct {
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
}

type gitlabWebhookPayload struct {
	ObjectAttributes struct {
		State        string `json:"state"`
		IID          int    `json:"iid"`
		SourceBranch string `json:"source_branch"`
	} `json:"object_attributes"`
	Project struct {
		PathWithNamespace string `json:"path_with_namespace"`
	} `json:"project"`
}

// Normalize maps a raw webhook payload from the given source into a
// QueueMessage, retaining the payload verbatim for audit and replay
func (s *WebhookService) Normalize(source models.WebhookSource, payload []byte) (*models.QueueMessage, error) {
	switch source {
	case models.SourceGitHub:
		return s.normalizeGitHub(payload)
	case models.SourceGitLab:
		return s.normalizeGitLab(payload)
	default:
		return nil, fmt.Errorf("unknown webhook source: %s", source)
	}
}

func (s *WebhookService) normalizeGitHub(payload []byte) (*models.QueueMessage, error) {
	var event githubWebhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid GitHub payload: %w", err)
	}

	if event.Repository.Owner.Login == "" || event.Repository.Name == "" {
		return nil, fmt.Errorf("GitHub payload missing repository identity")
	}
	if event.Number <= 0 {
		return nil, fmt.Errorf("GitHub payload missing pull request number")
	}

	message := models.NewQueueMessage(
		models.SourceGitHub,
		event.Repository.Owner.Login,
		event.Repository.Name,
		event.Number,
	)
	message.Action = event.Action
	message.BranchName = event.PullRequest.Head.Ref
	message.Payload = json.RawMessage(payload)

	return message, nil
}

func (s *WebhookService) normalizeGitLab(payload []byte) (*models.QueueMessage, error) {
	var event gitlabWebhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid GitLab payload: %w", err)
	}

	parts := strings.SplitN(event.Project.PathWithNamespace, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("GitLab payload missing project path")
	}
	if event.ObjectAttributes.IID <= 0 {
		return nil, fmt.Errorf("GitLab payload missing merge request iid")
	}

	message := models.NewQueueMessage(
		models.SourceGitLab,
		parts[0],
		parts[1],
		event.ObjectAttributes.IID,
	)
	message.Action = event.ObjectAttributes.State
	message.BranchName = event.ObjectAttributes.SourceBranch
	message.Payload = json.RawMessage(payload)

	return message, nil
}
