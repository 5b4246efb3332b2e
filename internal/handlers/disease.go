package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrisense/api/internal/middleware"
	"agrisense/api/internal/service"
)

type createReportRequest struct {
	ImageKey string `json:"imageKey" binding:"required"`
}

func (h HandlerSet) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.disease.CreateReport(c.Request.Context(), middleware.UserID(c), req.ImageKey)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "imageKey is required"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"reportId": report.ID,
		"status":   report.Status,
	})
}

func (h HandlerSet) GetReport(c *gin.Context) {
	report, err := h.disease.GetReport(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": gin.H{
		"id":         report.ID,
		"imageKey":   report.ImageKey,
		"status":     report.Status,
		"label":      report.Label,
		"confidence": report.Confidence,
		"modelVer":   report.ModelVer,
		"createdAt":  report.CreatedAt,
		"updatedAt":  report.UpdatedAt,
	}})
}
