package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebhookSource identifies the platform that sent a webhook
type WebhookSource string

const (
	SourceGitHub WebhookSource = "GitHub"
	SourceGitLab WebhookSource = "GitLab"
)

// QueueMessage is the canonical unit of work produced by webhook
// normalization. Once enqueued a message is immutable; the worker only
// derives new records from it.
type QueueMessage struct {
	ID                string          `json:"id"`
	Source            WebhookSource   `json:"source"`
	Owner             string          `json:"owner"`
	Repository        string          `json:"repository"`
	PullRequestNumber int             `json:"pull_request_number"`
	Action            string          `json:"action"`
	BranchName        string          `json:"branch_name"`
	EnqueuedAt        time.Time       `json:"enqueued_at"`
	Payload           json.RawMessage `json:"payload"`
}

// NewQueueMessage creates a new QueueMessage with a generated UUID
func NewQueueMessage(source WebhookSource, owner, repository string, prNumber int) *QueueMessage {
	return &QueueMessage{
		ID:                uuid.New().String(),
		Source:            source,
		Owner:             owner,
		Repository:        repository,
		PullRequestNumber: prNumber,
		EnqueuedAt:        time.Now().UTC(),
	}
}

// FullName returns the owner/repository identifier of the remote repo
func (m *QueueMessage) FullName() string {
	return m.Owner + "/" + m.Repository
}
