package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"settlement-service/internal/services"
	"settlement-service/pkg/common"
)

type AffiliateHandler struct {
	Service *services.AffiliateService
}

func NewAffiliateHandler(service *services.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{Service: service}
}

// TrackClick records one visit through an affiliate code and returns the
// referral target so the storefront can redirect.
func (h *AffiliateHandler) TrackClick(c *gin.Context) {
	link, err := h.Service.TrackClick(c.Param("code"))
	if err != nil {
		if errors.Is(err, services.ErrAffiliateLinkNotFound) {
			c.JSON(http.StatusNotFound, common.NewErrorResponse("Affiliate link not found", nil, http.StatusNotFound))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse("Unable to track click", nil, http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"productId":   link.ProductID,
		"affiliateId": link.UserID,
	}, "Click tracked"))
}
