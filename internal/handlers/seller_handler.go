package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"settlement-service/internal/services"
)

type SellerHandler struct {
	Sellers *services.SellerService
}

func NewSellerHandler(sellers *services.SellerService) *SellerHandler {
	return &SellerHandler{Sellers: sellers}
}

func (h *SellerHandler) LevelSummary(c *gin.Context) {
	sellerID, err := strconv.Atoi(c.Param("id"))
	if err != nil || sellerID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid seller id"})
		return
	}

	res, err := h.Sellers.GetLevelSummary(sellerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Seller not found"})
		return
	}

	c.JSON(http.StatusOK, res)
}
