package scanpay

// Request and response shapes for the Scanpay API.

// PaymentParams describes one payment-link request. Amount is in the
// smallest currency unit; Scanpay itself takes "123.45 DKK" style totals,
// the client formats the conversion.
type PaymentParams struct {
	OrderID     string
	Amount      int64
	Currency    string
	SuccessURL  string
	CallbackURL string
}

type newPaymentRequest struct {
	OrderID     string        `json:"orderid"`
	Items       []paymentItem `json:"items"`
	SuccessURL  string        `json:"successurl,omitempty"`
	AutoCapture bool          `json:"autocapture,omitempty"`
}

type paymentItem struct {
	Total string `json:"total"`
}

type newPaymentResponse struct {
	URL string `json:"url"`
}
