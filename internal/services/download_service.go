package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"settlement-service/internal/models"
	"settlement-service/pkg/common"
)

var (
	ErrTokenNotFound     = errors.New("download token not found")
	ErrTokenExpired      = errors.New("download token expired")
	ErrTokenLimitReached = errors.New("download limit reached")
)

const (
	downloadMaxClicks = 3
	downloadTTLDays   = 30
)

type DownloadService struct {
	DB *gorm.DB
}

func NewDownloadService(db *gorm.DB) *DownloadService {
	return &DownloadService{DB: db}
}

// Deliverable is what a successful redemption hands back, shaped by the
// module's content type.
type Deliverable struct {
	ModuleID    int    `json:"moduleId"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	FilePath    string `json:"filePath,omitempty"`
	URL         string `json:"url,omitempty"`
	Body        string `json:"body,omitempty"`
	EmbedCode   string `json:"embedCode,omitempty"`
}

// Issue mints one single-buyer access token for a deliverable module.
// buyerID is nil for guest checkouts.
func (s *DownloadService) Issue(transactionID, moduleID int, buyerID *int) (*models.DownloadToken, error) {
	token := models.DownloadToken{
		Token:         common.GenerateSecureToken(32),
		TransactionID: transactionID,
		ModuleID:      moduleID,
		BuyerID:       buyerID,
		ClickCount:    0,
		MaxClicks:     downloadMaxClicks,
		ExpiresAt:     time.Now().Add(downloadTTLDays * 24 * time.Hour),
	}
	if err := s.DB.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Redeem consumes one click and returns the module's deliverable. The
// increment-and-check is a single conditional update so two concurrent
// redemptions at the cap cannot both succeed.
func (s *DownloadService) Redeem(tokenStr, requestIP string) (*Deliverable, error) {
	var token models.DownloadToken
	if err := s.DB.Where("token = ?", tokenStr).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if time.Now().After(token.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	res := s.DB.Model(&models.DownloadToken{}).
		Where("id = ? AND click_count < max_clicks", token.ID).
		Updates(map[string]interface{}{
			"click_count": gorm.Expr("click_count + ?", 1),
			"last_ip":     requestIP,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenLimitReached
	}

	var module models.ProductModule
	if err := s.DB.First(&module, token.ModuleID).Error; err != nil {
		return nil, err
	}

	deliverable := &Deliverable{
		ModuleID:    module.ID,
		Title:       module.Title,
		ContentType: module.ContentType,
	}
	switch module.ContentType {
	case models.ModuleContentFile:
		deliverable.FilePath = module.FilePath
	case models.ModuleContentLink:
		deliverable.URL = module.ExternalURL
	case models.ModuleContentText:
		deliverable.Body = module.BodyText
	case models.ModuleContentEmbed:
		deliverable.EmbedCode = module.EmbedCode
	default:
		return nil, fmt.Errorf("unknown module content type %q", module.ContentType)
	}
	return deliverable, nil
}

// PurgeExpired removes tokens past their expiry.
func (s *DownloadService) PurgeExpired() (int64, error) {
	res := s.DB.Where("expires_at < ?", time.Now()).Delete(&models.DownloadToken{})
	return res.RowsAffected, res.Error
}

// StartScheduler initializes the cron job for the nightly token purge.
func (s *DownloadService) StartScheduler() {
	c := cron.New()
	_, err := c.AddFunc("0 2 * * *", func() {
		n, err := s.PurgeExpired()
		if err != nil {
			log.Printf("Error purging expired download tokens: %v", err)
			return
		}
		log.Printf("Purged %d expired download tokens", n)
	})
	if err != nil {
		log.Printf("Error scheduling token purge: %v", err)
		return
	}
	c.Start()
	log.Println("Download token purge scheduler started (Daily at 02:00)")
}
