package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agrisense/api/internal/middleware"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
	"agrisense/api/internal/service"
)

type readingRequest struct {
	C1     *float64 `json:"c1" binding:"required"`
	HP1    *float64 `json:"hp1" binding:"required"`
	K1     *float64 `json:"k1" binding:"required"`
	M1     *float64 `json:"m1" binding:"required"`
	N1     *float64 `json:"n1" binding:"required"`
	P1     *float64 `json:"p1" binding:"required"`
	T1     *float64 `json:"t1" binding:"required"`
	Source string   `json:"source"`
}

type readingResponse struct {
	ID     string    `json:"id"`
	C1     float64   `json:"c1"`
	HP1    float64   `json:"hp1"`
	K1     float64   `json:"k1"`
	M1     float64   `json:"m1"`
	N1     float64   `json:"n1"`
	P1     float64   `json:"p1"`
	T1     float64   `json:"t1"`
	Source string    `json:"source"`
	ReadAt time.Time `json:"readAt"`
}

func toReadingResponse(r models.NpkReading) readingResponse {
	return readingResponse{
		ID:     r.ID,
		C1:     r.C1,
		HP1:    r.HP1,
		K1:     r.K1,
		M1:     r.M1,
		N1:     r.N1,
		P1:     r.P1,
		T1:     r.T1,
		Source: r.Source,
		ReadAt: r.ReadAt,
	}
}

func (h HandlerSet) CreateReading(c *gin.Context) {
	var req readingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading, err := h.npk.CreateReading(c.Request.Context(), middleware.UserID(c), service.ReadingInput{
		C1:     *req.C1,
		HP1:    *req.HP1,
		K1:     *req.K1,
		M1:     *req.M1,
		N1:     *req.N1,
		P1:     *req.P1,
		T1:     *req.T1,
		Source: req.Source,
	})
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reading": toReadingResponse(reading)})
}

type listReadingsQuery struct {
	From     *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page     int        `form:"page,default=1"`
	PageSize int        `form:"pageSize,default=20"`
}

func (h HandlerSet) ListReadings(c *gin.Context) {
	var q listReadingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.npk.ListReadings(c.Request.Context(), middleware.UserID(c), repository.ReadingWindow{
		From:     q.From,
		To:       q.To,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.serverError(c, err)
		return
	}

	items := make([]readingResponse, 0, len(page.Items))
	for _, r := range page.Items {
		items = append(items, toReadingResponse(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

func (h HandlerSet) Predict(c *gin.Context) {
	result, err := h.npk.PredictFromLatest(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no readings yet"})
			return
		}
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reading": toReadingResponse(result.Reading),
		"prediction": gin.H{
			"id":           result.Prediction.ID,
			"recommendedN": result.Prediction.RecommendedN,
			"recommendedP": result.Prediction.RecommendedP,
			"recommendedK": result.Prediction.RecommendedK,
			"modelVer":     result.Prediction.ModelVer,
		},
	})
}
