package consumers

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"settlement-service/internal/models"
	"settlement-service/internal/services"
)

// SettlementProcessor executes the side effects scheduled after a financial
// commit. Each task is retried independently by asynq; a failure here never
// touches the committed ledger state.
type SettlementProcessor struct {
	DB          *gorm.DB
	Downloads   *services.DownloadService
	Invoices    *services.InvoiceService
	Commissions *services.CommissionService
	Mailer      *services.MailerClient
}

func NewSettlementProcessor(db *gorm.DB, downloads *services.DownloadService, invoices *services.InvoiceService, commissions *services.CommissionService, mailer *services.MailerClient) *SettlementProcessor {
	return &SettlementProcessor{
		DB:          db,
		Downloads:   downloads,
		Invoices:    invoices,
		Commissions: commissions,
		Mailer:      mailer,
	}
}

// SideEffectDTO mirrors services.SideEffectPayload for task decoding.
type SideEffectDTO struct {
	TransactionID int    `json:"transactionId"`
	SessionID     string `json:"sessionId"`
}

// ProcessIssueTokens issues one download token per deliverable module of the
// purchased product. Idempotent per (transaction, module), so a retried
// task tops up missing tokens without duplicating existing ones.
func (p *SettlementProcessor) ProcessIssueTokens(dto SideEffectDTO) error {
	var trx models.LedgerTransaction
	if err := p.DB.First(&trx, dto.TransactionID).Error; err != nil {
		return err
	}

	var modules []models.ProductModule
	if err := p.DB.Where("product_id = ?", trx.ProductID).Order("position ASC").Find(&modules).Error; err != nil {
		return err
	}

	var buyerID *int
	if trx.BuyerID > 0 {
		id := trx.BuyerID
		buyerID = &id
	}

	issued := 0
	for _, module := range modules {
		var existing models.DownloadToken
		err := p.DB.Where("transaction_id = ? AND module_id = ?", trx.ID, module.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if _, err := p.Downloads.Issue(trx.ID, module.ID, buyerID); err != nil {
			return fmt.Errorf("issuing token for module %d: %w", module.ID, err)
		}
		issued++
	}

	log.Printf("Issued %d download tokens for transaction %s", issued, trx.Reference)
	return nil
}

func (p *SettlementProcessor) ProcessGenerateInvoice(dto SideEffectDTO) error {
	_, err := p.Invoices.GenerateForTransaction(dto.TransactionID)
	return err
}

// ProcessSendConfirmation mails the buyer their download links and, when
// one exists, the public invoice link. Returns an error while tokens are
// still pending so asynq retries once issuance has caught up.
func (p *SettlementProcessor) ProcessSendConfirmation(dto SideEffectDTO) error {
	var trx models.LedgerTransaction
	if err := p.DB.First(&trx, dto.TransactionID).Error; err != nil {
		return err
	}

	var buyer models.User
	if err := p.DB.First(&buyer, trx.BuyerID).Error; err != nil {
		return err
	}

	var product models.Product
	if err := p.DB.First(&product, trx.ProductID).Error; err != nil {
		return err
	}

	var moduleCount int64
	if err := p.DB.Model(&models.ProductModule{}).Where("product_id = ?", trx.ProductID).Count(&moduleCount).Error; err != nil {
		return err
	}

	var tokens []models.DownloadToken
	if err := p.DB.Where("transaction_id = ?", trx.ID).Find(&tokens).Error; err != nil {
		return err
	}
	if int64(len(tokens)) < moduleCount {
		return fmt.Errorf("download tokens not yet issued for transaction %s", trx.Reference)
	}

	baseURL := os.Getenv("BASE_URL")
	links := make([]string, 0, len(tokens))
	for _, t := range tokens {
		links = append(links, fmt.Sprintf("%s/downloads/%s", baseURL, t.Token))
	}

	confirmation := services.PurchaseConfirmation{
		To:           buyer.Email,
		ProductTitle: product.Title,
		Reference:    trx.Reference,
		DownloadURLs: links,
	}

	var invoice models.Invoice
	if err := p.DB.Where("transaction_id = ?", trx.ID).First(&invoice).Error; err == nil {
		confirmation.InvoiceURL = fmt.Sprintf("%s/invoices/%s", baseURL, invoice.AccessToken)
	}

	return p.Mailer.SendPurchaseConfirmation(confirmation)
}

func (p *SettlementProcessor) ProcessReleaseCommission(dto SideEffectDTO) error {
	return p.Commissions.ReleaseCommission(dto.TransactionID)
}
