package quickpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client for the Quickpay v10 API. Authentication is HTTP basic with an
// empty user and the API key as password.
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

// CreatePaymentLink creates a payment for the order and returns the hosted
// payment-window URL the payer should be redirected to.
func (c *Client) CreatePaymentLink(ctx context.Context, p PaymentParams) (string, error) {
	var payment paymentResponse
	err := c.do(ctx, "POST", "/payments", createPaymentRequest{
		OrderID:     p.OrderID,
		Currency:    p.Currency,
		Description: p.Description,
	}, http.StatusCreated, &payment)
	if err != nil {
		return "", err
	}
	return c.createLink(ctx, fmt.Sprintf("/payments/%d/link", payment.ID), p)
}

// CreateSubscriptionLink creates a recurring subscription for the order and
// returns the authorization URL. Renewals arrive later as Subscription-type
// change notifications on the callback URL.
func (c *Client) CreateSubscriptionLink(ctx context.Context, p PaymentParams) (string, error) {
	var subscription paymentResponse
	err := c.do(ctx, "POST", "/subscriptions", createPaymentRequest{
		OrderID:     p.OrderID,
		Currency:    p.Currency,
		Description: p.Description,
	}, http.StatusCreated, &subscription)
	if err != nil {
		return "", err
	}
	return c.createLink(ctx, fmt.Sprintf("/subscriptions/%d/link", subscription.ID), p)
}

func (c *Client) createLink(ctx context.Context, endpoint string, p PaymentParams) (string, error) {
	var link linkResponse
	err := c.do(ctx, "PUT", endpoint, createLinkRequest{
		Amount:      p.Amount,
		ContinueURL: p.ContinueURL,
		CancelURL:   p.CancelURL,
		CallbackURL: p.CallbackURL,
	}, http.StatusOK, &link)
	if err != nil {
		return "", err
	}
	if link.URL == "" {
		return "", fmt.Errorf("quickpay: link response contains no url")
	}
	return link.URL, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, wantStatus int, out any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("quickpay: failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("quickpay: failed to create request: %w", err)
	}

	req.SetBasicAuth("", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", "v10")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quickpay: failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("quickpay: unexpected status code %d for %s %s, body: %s", resp.StatusCode, method, endpoint, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("quickpay: failed to decode response: %w", err)
	}
	return nil
}
