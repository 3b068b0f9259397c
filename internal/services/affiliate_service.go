package services

import (
	"errors"

	"gorm.io/gorm"

	"settlement-service/internal/models"
)

var ErrAffiliateLinkNotFound = errors.New("affiliate link not found")

type AffiliateService struct {
	DB *gorm.DB
}

func NewAffiliateService(db *gorm.DB) *AffiliateService {
	return &AffiliateService{DB: db}
}

// TrackClick counts one visit through an affiliate link and resolves the
// product it points at. The counter is a relative update, never
// read-modify-write.
func (s *AffiliateService) TrackClick(code string) (*models.AffiliateLink, error) {
	var link models.AffiliateLink
	if err := s.DB.Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffiliateLinkNotFound
		}
		return nil, err
	}

	if err := s.DB.Model(&models.AffiliateLink{}).
		Where("id = ?", link.ID).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error; err != nil {
		return nil, err
	}
	link.Clicks++

	return &link, nil
}
