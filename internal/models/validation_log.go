package models

import (
	"time"
)

// ValidationLog is an append-only audit row written for every inbound
// payment-completion payload regardless of outcome.
type ValidationLog struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"column:session_id;size:191;not null;index" json:"session_id"`
	Payload   string    `gorm:"column:payload;type:longtext" json:"payload"`
	Errors    string    `gorm:"column:errors;type:longtext" json:"errors"`
	Warnings  string    `gorm:"column:warnings;type:longtext" json:"warnings"`
	Breakdown string    `gorm:"column:breakdown;type:longtext" json:"breakdown"`
	Valid     bool      `gorm:"column:valid;default:false" json:"valid"`
	Outcome   string    `gorm:"column:outcome;size:50" json:"outcome"` // validated, rejected, duplicate
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ValidationLog) TableName() string {
	return "validation_logs"
}
