package handlers

import (
	"io"
	"net/http"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/services"
	"github.com/alimgiray/smartreview/pkg/logger"
	"github.com/gin-gonic/gin"
)

// WebhookHandler accepts source-control webhooks and queues them
type WebhookHandler struct {
	webhookService *services.WebhookService
	queueService   *services.QueueService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookService *services.WebhookService, queueService *services.QueueService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		queueService:   queueService,
	}
}

// HandleGitHub handles POST /api/webhooks/github
func (h *WebhookHandler) HandleGitHub(c *gin.Context) {
	h.handle(c, models.SourceGitHub)
}

// HandleGitLab handles POST /api/webhooks/gitlab
func (h *WebhookHandler) HandleGitLab(c *gin.Context) {
	h.handle(c, models.SourceGitLab)
}

func (h *WebhookHandler) handle(c *gin.Context, source models.WebhookSource) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	message, err := h.webhookService.Normalize(source, payload)
	if err != nil {
		logger.WithError(err).Warnf("Rejected malformed %s webhook", source)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.queueService.Enqueue(message) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook accepted", "id": message.ID})
}

// QueueStatus handles GET /api/webhooks/queue/status
func (h *WebhookHandler) QueueStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"length": h.queueService.Length()})
}
