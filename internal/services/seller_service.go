package services

import (
	"gorm.io/gorm"

	"settlement-service/internal/models"
	"settlement-service/pkg/common"
)

type SellerService struct {
	DB *gorm.DB
}

func NewSellerService(db *gorm.DB) *SellerService {
	return &SellerService{DB: db}
}

// GetLevelSummary returns a seller's current tier and progress toward the
// next one, for the dashboard read path.
func (s *SellerService) GetLevelSummary(sellerID int) (common.SuccessResponse, error) {
	var seller models.User
	if err := s.DB.First(&seller, sellerID).Error; err != nil {
		return common.SuccessResponse{}, err
	}

	tier := TierFor(seller.TotalEarnings)
	percent, remaining := ProgressToNext(seller.TotalEarnings, seller.Level)

	return common.NewSuccessResponse(map[string]interface{}{
		"sellerId":       seller.ID,
		"level":          seller.Level,
		"tierName":       tier.Name,
		"feePercent":     tier.FeePercent,
		"totalEarnings":  seller.TotalEarnings,
		"progressToNext": percent,
		"remaining":      remaining,
	}, "Level summary fetched"), nil
}
