package quickpay

// Request and response shapes for the Quickpay v10 API.

// PaymentParams describes one payment or recurring-subscription setup.
// Amount is in the smallest currency unit, as Quickpay expects.
type PaymentParams struct {
	OrderID     string
	Amount      int64
	Currency    string
	Description string
	ContinueURL string
	CancelURL   string
	CallbackURL string
}

type createPaymentRequest struct {
	OrderID     string `json:"order_id"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type paymentResponse struct {
	ID      int    `json:"id"`
	OrderID string `json:"order_id"`
}

type createLinkRequest struct {
	Amount      int64  `json:"amount"`
	ContinueURL string `json:"continue_url,omitempty"`
	CancelURL   string `json:"cancel_url,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type linkResponse struct {
	URL string `json:"url"`
}
