package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"settlement-service/internal/services"
)

type InvoiceHandler struct {
	Invoices *services.InvoiceService
}

func NewInvoiceHandler(invoices *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices}
}

// Show returns an issued invoice by its opaque access token. Expired or
// unknown tokens are indistinguishable to the caller.
func (h *InvoiceHandler) Show(c *gin.Context) {
	invoice, err := h.Invoices.GetByToken(c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Invoice not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Unable to fetch invoice"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": invoice})
}
