package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrisense/api/internal/middleware"
)

// Presign hands the client a short-lived PUT URL so image bytes never pass
// through the API.
func (h HandlerSet) Presign(c *gin.Context) {
	upload, err := h.store.PresignUpload(
		c.Request.Context(),
		middleware.UserID(c),
		c.Query("ext"),
		c.Query("contentType"),
	)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":         upload.URL,
		"key":         upload.Key,
		"contentType": upload.ContentType,
	})
}
