package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"settlement-service/internal/services"
)

type AuditHandler struct {
	Validator *services.ValidationService
}

func NewAuditHandler(validator *services.ValidationService) *AuditHandler {
	return &AuditHandler{Validator: validator}
}

// ListValidationLogs pages the audit trail for dispute investigation.
func (h *AuditHandler) ListValidationLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	res, err := h.Validator.ListLogs(services.ListLogsDTO{
		SessionID: c.Query("sessionId"),
		Outcome:   c.Query("outcome"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Unable to fetch validation logs"})
		return
	}

	c.JSON(http.StatusOK, res)
}
