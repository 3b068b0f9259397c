package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"settlement-service/internal/models"
	"settlement-service/pkg/common"
)

// TaxRate is the fixed value-added tax rate applied to standard-taxed
// business sellers. Small-business-regime sellers itemize no tax at all.
const TaxRate = 0.19

const invoiceTokenTTLDays = 365

var ErrInvoiceNotFound = errors.New("invoice not found or expired")

type InvoiceService struct {
	DB *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{DB: db}
}

// ComputeTaxSplit derives the net and tax portions of a gross amount.
// Under the small-business regime the gross carries no itemized tax.
func ComputeTaxSplit(gross float64, smallBusiness bool) (net, tax float64) {
	if smallBusiness {
		return gross, 0
	}
	net = round2(gross / (1 + TaxRate))
	tax = round2(gross - net)
	return net, tax
}

// GenerateForTransaction issues the invoice for one settled sale. Only
// business sellers receive invoices. Idempotent: an existing invoice for
// the transaction is returned, never duplicated.
func (s *InvoiceService) GenerateForTransaction(transactionID int) (*models.Invoice, error) {
	var existing models.Invoice
	err := s.DB.Where("transaction_id = ?", transactionID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var trx models.LedgerTransaction
	if err := s.DB.First(&trx, transactionID).Error; err != nil {
		return nil, err
	}
	var seller models.User
	if err := s.DB.First(&seller, trx.SellerID).Error; err != nil {
		return nil, err
	}
	if !seller.IsBusiness {
		log.Printf("Seller %d is not a business, no invoice for transaction %s", seller.ID, trx.Reference)
		return nil, nil
	}

	net, tax := ComputeTaxSplit(trx.TotalAmount, seller.SmallBusiness)
	rate := TaxRate
	if seller.SmallBusiness {
		rate = 0
	}

	invoice := models.Invoice{
		TransactionID:  trx.ID,
		SellerID:       seller.ID,
		AccessToken:    common.GenerateSecureToken(32),
		TokenExpiresAt: time.Now().Add(invoiceTokenTTLDays * 24 * time.Hour),
		GrossAmount:    trx.TotalAmount,
		NetAmount:      net,
		TaxAmount:      tax,
		TaxRate:        rate,
		SellerName:     seller.BusinessName,
		SellerAddress:  seller.BusinessAddress,
		SellerTaxID:    seller.TaxID,
		SmallBusiness:  seller.SmallBusiness,
	}

	// Number assignment and the invoice row commit together; the counter
	// row is locked so numbers are strictly increasing with no gaps from
	// racing issuers.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var counter models.InvoiceCounter
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			FirstOrCreate(&counter, models.InvoiceCounter{ID: 1}).Error; err != nil {
			return err
		}
		counter.LastNumber++
		if err := tx.Model(&models.InvoiceCounter{}).
			Where("id = ?", counter.ID).
			UpdateColumn("last_number", counter.LastNumber).Error; err != nil {
			return err
		}

		invoice.Number = counter.LastNumber
		invoice.InvoiceNo = fmt.Sprintf("INV-%d-%06d", time.Now().Year(), counter.LastNumber)
		return tx.Create(&invoice).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent worker issued it first; hand back theirs.
			if ferr := s.DB.Where("transaction_id = ?", transactionID).First(&existing).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, err
	}

	log.Printf("Issued invoice %s for transaction %s", invoice.InvoiceNo, trx.Reference)
	return &invoice, nil
}

// GetByToken resolves an invoice from its opaque public access token.
// Access rests entirely on token unguessability plus expiry.
func (s *InvoiceService) GetByToken(token string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.Where("access_token = ?", token).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if time.Now().After(invoice.TokenExpiresAt) {
		return nil, ErrInvoiceNotFound
	}
	return &invoice, nil
}
