package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"settlement-service/internal/models"
)

// ErrDuplicateSession is returned when the storage-level uniqueness guard
// rejects a second transaction for the same checkout session.
var ErrDuplicateSession = errors.New("session already settled")

// CommissionClearingDays is the hold window before an affiliate commission
// moves from pending to available balance.
const CommissionClearingDays = 14

// Task types for the post-commit side effects. The worker mux registers
// its handlers under these same names.
const (
	TypeIssueTokens       = "settlement:issue-download-tokens"
	TypeGenerateInvoice   = "settlement:generate-invoice"
	TypeSendConfirmation  = "settlement:send-confirmation"
	TypeReleaseCommission = "settlement:release-commission"
)

// SideEffectPayload is the task payload for all post-commit side effects.
type SideEffectPayload struct {
	TransactionID int    `json:"transactionId"`
	SessionID     string `json:"sessionId"`
}

type SettlementService struct {
	DB     *gorm.DB
	Client *asynq.Client
}

func NewSettlementService(db *gorm.DB, client *asynq.Client) *SettlementService {
	return &SettlementService{DB: db, Client: client}
}

// Settle commits a validated breakdown: ledger row, seller balance and tier,
// affiliate commission hold, then the decoupled side effects. Steps 1-3 are
// the financial commit; the caller may acknowledge once Settle returns.
func (s *SettlementService) Settle(b *Breakdown) (*models.LedgerTransaction, error) {
	trx := models.LedgerTransaction{
		Reference:           uuid.NewString(),
		SessionID:           b.SessionID,
		ProductID:           b.ProductID,
		BuyerID:             b.BuyerID,
		SellerID:            b.SellerID,
		AffiliateID:         b.AffiliateID,
		TotalAmount:         b.TotalAmount,
		PlatformFee:         b.PlatformFee,
		SellerAmount:        b.SellerAmount,
		AffiliateCommission: b.AffiliateCommission,
		Status:              1,
	}
	if b.AffiliateID > 0 && b.AffiliateCommission > 0 {
		clearsAt := time.Now().Add(CommissionClearingDays * 24 * time.Hour)
		trx.CommissionClearsAt = &clearsAt
	}

	// Ledger row, balances, tier bump, and commission hold commit or roll
	// back together. A ledger row without its credits would make every
	// redelivery a duplicate while the seller stays unpaid.
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		// Atomic relative update; never read-modify-write, so concurrent
		// settlements for the same seller cannot lose earnings.
		if err := tx.Model(&models.User{}).
			Where("id = ?", b.SellerID).
			UpdateColumns(map[string]interface{}{
				"total_earnings":    gorm.Expr("total_earnings + ?", b.SellerAmount),
				"available_balance": gorm.Expr("available_balance + ?", b.SellerAmount),
			}).Error; err != nil {
			return err
		}

		// Recompute the tier from the post-update earnings. The level guard
		// in the WHERE clause keeps the level monotonic under races.
		var seller models.User
		if err := tx.First(&seller, b.SellerID).Error; err != nil {
			return err
		}
		tier := TierFor(seller.TotalEarnings)
		if tier.Level > seller.Level {
			if err := tx.Model(&models.User{}).
				Where("id = ? AND level < ?", b.SellerID, tier.Level).
				UpdateColumn("level", tier.Level).Error; err != nil {
				return err
			}
		}

		// Commission goes to the affiliate's pending balance; the clearing
		// sweep releases it after the hold window.
		if trx.AffiliateID > 0 && trx.AffiliateCommission > 0 {
			if err := tx.Model(&models.User{}).
				Where("id = ?", trx.AffiliateID).
				UpdateColumn("pending_balance", gorm.Expr("pending_balance + ?", trx.AffiliateCommission)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent delivery won the race; nothing to do.
			return nil, ErrDuplicateSession
		}
		return nil, err
	}

	s.scheduleSideEffects(&trx, b.SellerIsBusiness)

	return &trx, nil
}

// scheduleSideEffects enqueues the decoupled deliveries. Failures here are
// logged only: the financial commit stands, and the recovery sweeps cover
// the commission release.
func (s *SettlementService) scheduleSideEffects(trx *models.LedgerTransaction, sellerIsBusiness bool) {
	if s.Client == nil {
		log.Printf("No task client configured, skipping side effects for %s", trx.Reference)
		return
	}

	payload := SideEffectPayload{TransactionID: trx.ID, SessionID: trx.SessionID}

	s.enqueue(TypeIssueTokens, payload, asynq.TaskID("tokens:"+trx.SessionID), asynq.Queue("critical"))

	if sellerIsBusiness {
		s.enqueue(TypeGenerateInvoice, payload, asynq.TaskID("invoice:"+trx.SessionID))
	}

	// Delayed so the confirmation can include the links issued above.
	s.enqueue(TypeSendConfirmation, payload, asynq.TaskID("confirm:"+trx.SessionID), asynq.ProcessIn(10*time.Second))

	if trx.CommissionClearsAt != nil {
		s.enqueue(TypeReleaseCommission, payload,
			asynq.TaskID("release:"+trx.SessionID),
			asynq.ProcessAt(*trx.CommissionClearsAt),
			asynq.Queue("low"))
	}
}

func (s *SettlementService) enqueue(taskType string, payload SideEffectPayload, opts ...asynq.Option) {
	task, err := newSideEffectTask(taskType, payload)
	if err != nil {
		log.Printf("Failed to build %s task for %s: %v", taskType, payload.SessionID, err)
		return
	}
	if _, err := s.Client.Enqueue(task, opts...); err != nil {
		log.Printf("Failed to enqueue %s for %s: %v", taskType, payload.SessionID, err)
	}
}

func newSideEffectTask(taskType string, payload SideEffectPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}
