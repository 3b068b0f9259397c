package services

import (
	"fmt"
	"log"
	"os"

	"settlement-service/pkg/common"
)

// MailerClient is the outbound email port. The settlement flow only posts
// purchase confirmations through it; delivery itself is an external
// collaborator's concern.
type MailerClient struct {
	BaseURL string
	APIKey  string
}

func NewMailerClient() *MailerClient {
	return &MailerClient{
		BaseURL: os.Getenv("MAILER_URL"),
		APIKey:  os.Getenv("MAILER_API_KEY"),
	}
}

type PurchaseConfirmation struct {
	To           string   `json:"to"`
	ProductTitle string   `json:"productTitle"`
	Reference    string   `json:"reference"`
	DownloadURLs []string `json:"downloadUrls"`
	InvoiceURL   string   `json:"invoiceUrl,omitempty"`
}

func (m *MailerClient) SendPurchaseConfirmation(data PurchaseConfirmation) error {
	if m.BaseURL == "" {
		log.Printf("Mailer not configured, skipping confirmation for %s", data.Reference)
		return nil
	}

	headers := map[string]string{
		"x-api-key": m.APIKey,
	}
	payload := map[string]interface{}{
		"to":       data.To,
		"template": "purchase-confirmation",
		"data":     data,
	}

	resp, err := common.Post(fmt.Sprintf("%s/messages", m.BaseURL), payload, headers)
	if err != nil {
		return fmt.Errorf("mailer request failed: %w", err)
	}
	log.Printf("Purchase confirmation sent for %s: %v", data.Reference, resp)
	return nil
}
