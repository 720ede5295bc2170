package services

import (
	"encoding/json"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/repositories"
	"github.com/alimgiray/smartreview/pkg/logger"
	"github.com/sirupsen/logrus"
)

// WebhookQueueName is the single queue all webhook producers publish to
const WebhookQueueName = "webhook:queue"

// QueueService is the durable FIFO queue for webhook messages.
// Failures on enqueue/dequeue are logged and reported as bool/nil
// results, never returned as errors; callers decide whether to retry.
type QueueService struct {
	queueRepo *repositories.QueueRepository
}

// NewQueueService creates a new QueueService
func NewQueueService(queueRepo *repositories.QueueRepository) *QueueService {
	return &QueueService{queueRepo: queueRepo}
}

// Enqueue pushes a message to the tail of the queue
func (s *QueueService) Enqueue(message *models.QueueMessage) bool {
	data, err := json.Marshal(message)
	if err != nil {
		logger.WithError(err).Error("Failed to serialize queue message")
		return false
	}

	if err := s.queueRepo.Push(WebhookQueueName, string(data)); err != nil {
		logger.WithError(err).Error("Failed to enqueue webhook message")
		return false
	}

	logger.WithFields(logrus.Fields{
		"source": message.Source,
		"repo":   message.FullName(),
		"number": message.PullRequestNumber,
	}).Info("Webhook message enqueued")

	return true
}

// Dequeue pops the head message from the queue. Returns nil when the
// queue is empty or the pop fails.
func (s *QueueService) Dequeue() *models.QueueMessage {
	data, ok, err := s.queueRepo.Pop(WebhookQueueName)
	if err != nil {
		logger.WithError(err).Error("Failed to dequeue webhook message")
		return nil
	}
	if !ok {
		return nil
	}

	message := &models.QueueMessage{}
	if err := json.Unmarshal([]byte(data), message); err != nil {
		logger.WithError(err).Error("Failed to deserialize queue message")
		return nil
	}

	logger.WithFields(logrus.Fields{
		"source": message.Source,
		"repo":   message.FullName(),
		"number": message.PullRequestNumber,
	}).Info("Webhook message dequeued")

	return message
}

// Length returns the current number of queued messages
func (s *QueueService) Length() int64 {
	count, err := s.queueRepo.Length(WebhookQueueName)
	if err != nil {
		logger.WithError(err).Error("Failed to read queue length")
		return 0
	}
	return count
}

// Clear removes all queued messages
func (s *QueueService) Clear() bool {
	if err := s.queueRepo.Clear(WebhookQueueName); err != nil {
		logger.WithError(err).Error("Failed to clear webhook queue")
		return false
	}

	logger.Warnf("Webhook queue cleared")
	return true
}
