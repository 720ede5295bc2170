package handlers

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/alimgiray/smartreview/internal/models"
	"github.com/alimgiray/smartreview/internal/services"
	"github.com/gin-gonic/gin"
)

// ReviewHandler exposes read access to reviews and their results
type ReviewHandler struct {
	reviewService *services.ReviewService
	exportService *services.ExportService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *services.ReviewService, exportService *services.ExportService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		exportService: exportService,
	}
}

// ListReviews handles GET /api/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var status *models.ReviewStatus
	if s := c.Query("status"); s != "" {
		st := models.ReviewStatus(s)
		status = &st
	}

	reviews, err := h.reviewService.GetAll(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// GetReview handles GET /api/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id := c.Param("id")

	review, err := h.reviewService.GetByID(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review"})
		return
	}

	findings, err := h.reviewService.GetFindings(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load findings"})
		return
	}

	fileAnalyses, err := h.reviewService.GetFileAnalyses(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review":        review,
		"findings":      findings,
		"file_analyses": fileAnalyses,
	})
}

// ExportReview handles GET /api/reviews/:id/export
func (h *ReviewHandler) ExportReview(c *gin.Context) {
	id := c.Param("id")

	review, err := h.reviewService.GetByID(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review"})
		return
	}

	findings, err := h.reviewService.GetFindings(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load findings"})
		return
	}

	buf, err := h.exportService.ExportFindings(review, findings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export review"})
		return
	}

	fileName := fmt.Sprintf("review-%d-findings.xlsx", review.PullRequestNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
