package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"settlement-service/internal/models"
)

func TestTrackClickIncrementsCounter(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	db := testDB
	db.Create(&models.AffiliateLink{UserID: 601, ProductID: 71, Code: "ref-abc123"})

	svc := NewAffiliateService(db)
	for i := 1; i <= 3; i++ {
		link, err := svc.TrackClick("ref-abc123")
		if err != nil {
			t.Fatalf("TrackClick %d failed: %v", i, err)
		}
		assert.Equal(t, 71, link.ProductID)
	}

	var stored models.AffiliateLink
	db.Where("code = ?", "ref-abc123").First(&stored)
	assert.Equal(t, int64(3), stored.Clicks)
}

func TestTrackClickUnknownCode(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewAffiliateService(testDB)
	_, err := svc.TrackClick("ref-missing")
	assert.ErrorIs(t, err, ErrAffiliateLinkNotFound)
}
