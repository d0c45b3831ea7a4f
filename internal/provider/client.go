// Package provider holds the HTTP client for the external payment provider.
// The ledger core only needs invoice creation; payment confirmation arrives
// later as a top-up webhook carrying the provider transaction id.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

// Invoice is the subset of the provider's response the service needs.
type Invoice struct {
	ID  string `json:"id"`
	URL string `json:"invoice_url"`
}

type invoiceRequest struct {
	PriceAmount      int64  `json:"price_amount"`
	PriceCurrency    string `json:"price_currency"`
	OrderID          string `json:"order_id"`
	OrderDescription string `json:"order_description"`
	IPNCallbackURL   string `json:"ipn_callback_url,omitempty"`
}

func NewClient(baseURL, apiKey, callbackURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// CreateInvoice asks the provider for a payment page for the given coin
// amount. The order id ties the eventual confirmation back to the user while
// staying unique per invoice.
func (c *Client) CreateInvoice(ctx context.Context, userID, amount int64) (Invoice, error) {
	if c == nil || c.baseURL == "" {
		return Invoice{}, fmt.Errorf("provider client not configured")
	}

	payload := invoiceRequest{
		PriceAmount:      amount,
		PriceCurrency:    "eur",
		OrderID:          fmt.Sprintf("%d-%s", userID, uuid.NewString()),
		OrderDescription: "coin top-up",
		IPNCallbackURL:   c.callbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Invoice{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/invoice", bytes.NewReader(body))
	if err != nil {
		return Invoice{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Invoice{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Invoice{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var inv Invoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return Invoice{}, fmt.Errorf("decode response: %w", err)
	}

	if inv.URL == "" {
		return Invoice{}, fmt.Errorf("provider returned no invoice url")
	}

	return inv, nil
}
