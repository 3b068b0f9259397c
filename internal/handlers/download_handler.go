package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"settlement-service/internal/services"
)

type DownloadHandler struct {
	Downloads *services.DownloadService
}

func NewDownloadHandler(downloads *services.DownloadService) *DownloadHandler {
	return &DownloadHandler{Downloads: downloads}
}

// Redeem consumes a click on a download token and returns the deliverable.
// Unauthenticated; the token itself is the credential.
func (h *DownloadHandler) Redeem(c *gin.Context) {
	deliverable, err := h.Downloads.Redeem(c.Param("token"), c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Download not found"})
		case errors.Is(err, services.ErrTokenExpired):
			c.JSON(http.StatusGone, gin.H{"success": false, "message": "Download link has expired"})
		case errors.Is(err, services.ErrTokenLimitReached):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Download limit reached"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Unable to process download"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": deliverable})
}
