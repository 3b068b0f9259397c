package services

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"strconv"

	"gorm.io/gorm"

	"settlement-service/internal/models"
	"settlement-service/pkg/common"
)

type ValidationService struct {
	DB *gorm.DB
}

func NewValidationService(db *gorm.DB) *ValidationService {
	return &ValidationService{DB: db}
}

// CheckoutSessionPayload is the payment-completion payload for one checkout
// session, as delivered by the processor. Metadata values were fixed at
// checkout time and arrive as strings.
type CheckoutSessionPayload struct {
	SessionID     string            `json:"id"`
	AmountTotal   float64           `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Breakdown is the validated three-way split for one sale.
type Breakdown struct {
	SessionID           string  `json:"sessionId"`
	ProductID           int     `json:"productId"`
	BuyerID             int     `json:"buyerId"`
	SellerID            int     `json:"sellerId"`
	AffiliateID         int     `json:"affiliateId"`
	TotalAmount         float64 `json:"totalAmount"`
	PlatformFee         float64 `json:"platformFee"`
	AffiliateCommission float64 `json:"affiliateCommission"`
	SellerAmount        float64 `json:"sellerAmount"`
	SellerIsBusiness    bool    `json:"sellerIsBusiness"`
}

type ValidationResult struct {
	Valid     bool         `json:"valid"`
	Duplicate bool         `json:"duplicate"`
	Breakdown *Breakdown   `json:"breakdown,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// amountDeviation classification thresholds. A deviation within one cent is
// processor rounding; within 10% of the expected price the charged amount
// wins with a warning; beyond that the payload is rejected.
const (
	centTolerance      = 0.01
	deviationTolerance = 0.10
)

type deviationClass int

const (
	deviationIgnore deviationClass = iota
	deviationWarn
	deviationError
)

func classifyAmountDeviation(charged, expected float64) deviationClass {
	diff := math.Abs(charged - expected)
	switch {
	case diff <= centTolerance:
		return deviationIgnore
	case expected > 0 && diff <= deviationTolerance*expected:
		return deviationWarn
	default:
		return deviationError
	}
}

// parsedMetadata holds the identifiers and checkout-time amounts pulled out
// of the session metadata.
type parsedMetadata struct {
	ProductID           int
	BuyerID             int
	SellerID            int
	AffiliateID         int
	PlatformFee         float64
	AffiliateCommission float64
}

func parseSessionMetadata(meta map[string]string) (parsedMetadata, []FieldError, []string) {
	var (
		out      parsedMetadata
		errs     []FieldError
		warnings []string
	)

	required := []struct {
		field string
		dst   *int
	}{
		{"productId", &out.ProductID},
		{"buyerId", &out.BuyerID},
		{"sellerId", &out.SellerID},
	}
	for _, r := range required {
		raw, ok := meta[r.field]
		if !ok || raw == "" {
			errs = append(errs, FieldError{Field: r.field, Message: "required identifier is missing"})
			continue
		}
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			errs = append(errs, FieldError{Field: r.field, Message: "identifier must be a positive integer"})
			continue
		}
		*r.dst = id
	}

	if raw, ok := meta["affiliateId"]; ok && raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			warnings = append(warnings, "affiliate identifier is not a positive integer, commission skipped")
		} else {
			out.AffiliateID = id
		}
	}

	for _, f := range []struct {
		field string
		dst   *float64
	}{
		{"platformFee", &out.PlatformFee},
		{"affiliateCommission", &out.AffiliateCommission},
	} {
		raw, ok := meta[f.field]
		if !ok || raw == "" {
			continue
		}
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil || amount < 0 {
			errs = append(errs, FieldError{Field: f.field, Message: "amount must be a non-negative number"})
			continue
		}
		*f.dst = amount
	}

	return out, errs, warnings
}

// ValidateSession cross-checks one payment-completion payload against stored
// entities and produces a validated breakdown or an accumulated error list.
// Every invocation writes a validation-log row, whatever the outcome.
func (s *ValidationService) ValidateSession(payload CheckoutSessionPayload) (*ValidationResult, error) {
	meta, errs, warnings := parseSessionMetadata(payload.Metadata)

	// A payload without a session identifier can never be deduplicated, so
	// it is rejected outright rather than settled under an empty key.
	if payload.SessionID == "" {
		errs = append(errs, FieldError{Field: "sessionId", Message: "session identifier is missing"})
	} else {
		// Idempotency check. The storage-level unique index on session_id
		// is the real guard; this lookup just short-circuits the common
		// retry.
		var existing models.LedgerTransaction
		err := s.DB.Where("session_id = ?", payload.SessionID).First(&existing).Error
		if err == nil {
			log.Printf("ALERT: duplicate completion event for session %s (transaction %s)", payload.SessionID, existing.Reference)
			result := &ValidationResult{Valid: false, Duplicate: true}
			s.logValidation(payload, result, "duplicate")
			return result, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var (
		product models.Product
		seller  models.User
	)
	breakdown := &Breakdown{
		SessionID:           payload.SessionID,
		ProductID:           meta.ProductID,
		BuyerID:             meta.BuyerID,
		SellerID:            meta.SellerID,
		TotalAmount:         payload.AmountTotal,
		PlatformFee:         meta.PlatformFee,
		AffiliateCommission: meta.AffiliateCommission,
	}

	if meta.ProductID > 0 {
		if err := s.DB.First(&product, meta.ProductID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			errs = append(errs, FieldError{Field: "product", Message: "product not found"})
		}
	}
	if meta.BuyerID > 0 {
		var buyer models.User
		if err := s.DB.First(&buyer, meta.BuyerID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			errs = append(errs, FieldError{Field: "buyer", Message: "buyer not found"})
		}
	}
	if meta.SellerID > 0 {
		if err := s.DB.First(&seller, meta.SellerID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			errs = append(errs, FieldError{Field: "seller", Message: "seller not found"})
		} else {
			breakdown.SellerIsBusiness = seller.IsBusiness
		}
	}

	// The metadata-declared seller must own the product it claims to sell.
	if product.ID != 0 && meta.SellerID > 0 && product.SellerID != meta.SellerID {
		errs = append(errs, FieldError{Field: "seller", Message: "seller does not own this product"})
	}

	// An unresolvable affiliate skips the commission but never blocks the sale.
	if meta.AffiliateID > 0 {
		var affiliate models.User
		if err := s.DB.First(&affiliate, meta.AffiliateID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			warnings = append(warnings, "affiliate not found, commission skipped")
			breakdown.AffiliateID = 0
			breakdown.AffiliateCommission = 0
		} else {
			breakdown.AffiliateID = meta.AffiliateID
		}
	}

	// Price consistency against the product's current price. The charged
	// amount wins inside the tolerance band.
	if product.ID != 0 {
		switch classifyAmountDeviation(payload.AmountTotal, product.Price) {
		case deviationWarn:
			warnings = append(warnings, "charged amount deviates from product price, using charged amount")
		case deviationError:
			errs = append(errs, FieldError{Field: "amount", Message: "charged amount deviates more than 10% from product price"})
		}
	}

	// Three-way split from the checkout-time amounts. A sale must never
	// settle at a loss to the seller.
	breakdown.SellerAmount = round2(breakdown.TotalAmount - breakdown.PlatformFee - breakdown.AffiliateCommission)
	if breakdown.SellerAmount < 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "fees exceed the charged total, seller amount would be negative"})
	}

	result := &ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
	outcome := "rejected"
	if result.Valid {
		result.Breakdown = breakdown
		outcome = "validated"
	}

	s.logValidation(payload, result, outcome)
	return result, nil
}

func (s *ValidationService) logValidation(payload CheckoutSessionPayload, result *ValidationResult, outcome string) {
	payloadJSON, _ := json.Marshal(payload)
	errsJSON, _ := json.Marshal(result.Errors)
	warningsJSON, _ := json.Marshal(result.Warnings)
	breakdownJSON, _ := json.Marshal(result.Breakdown)

	row := models.ValidationLog{
		SessionID: payload.SessionID,
		Payload:   string(payloadJSON),
		Errors:    string(errsJSON),
		Warnings:  string(warningsJSON),
		Breakdown: string(breakdownJSON),
		Valid:     result.Valid,
		Outcome:   outcome,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		log.Printf("Failed to write validation log for session %s: %v", payload.SessionID, err)
	}
}

type ListLogsDTO struct {
	SessionID string
	Outcome   string
	Page      int
	Limit     int
}

// ListLogs pages through the validation audit trail, newest first.
func (s *ValidationService) ListLogs(data ListLogsDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 50
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.ValidationLog{})
	if data.SessionID != "" {
		query = query.Where("session_id = ?", data.SessionID)
	}
	if data.Outcome != "" {
		query = query.Where("outcome = ?", data.Outcome)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var logs []models.ValidationLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(logs, total, page, limit, "Validation logs fetched"), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
