package scanpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client for the Scanpay API. Authentication is HTTP basic with the full
// "merchantid:key" API key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// CreatePaymentLink creates a payment and returns the hosted payment URL.
// cardholderIP is forwarded for Scanpay's risk scoring.
func (c *Client) CreatePaymentLink(ctx context.Context, p PaymentParams, cardholderIP string) (string, error) {
	reqData := newPaymentRequest{
		OrderID:     p.OrderID,
		Items:       []paymentItem{{Total: formatTotal(p.Amount, p.Currency)}},
		SuccessURL:  p.SuccessURL,
		AutoCapture: true,
	}

	bodyBytes, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("scanpay: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/new", bytes.NewBuffer(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("scanpay: failed to create request: %w", err)
	}

	req.SetBasicAuth("", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cardholderIP != "" {
		req.Header.Set("X-Cardholder-IP", cardholderIP)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("scanpay: failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("scanpay: unexpected status code %d, body: %s", resp.StatusCode, string(respBody))
	}

	var payment newPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return "", fmt.Errorf("scanpay: failed to decode response: %w", err)
	}
	if payment.URL == "" {
		return "", fmt.Errorf("scanpay: response contains no payment url")
	}
	return payment.URL, nil
}

// formatTotal renders an amount in minor units as the "123.45 DKK" form
// Scanpay expects.
func formatTotal(amount int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", amount/100, amount%100, currency)
}
