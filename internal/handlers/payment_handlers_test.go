package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AsgerSP/donation-platform/internal/config"
	"github.com/AsgerSP/donation-platform/internal/db"
	"github.com/AsgerSP/donation-platform/internal/gateway/quickpay"
	"github.com/AsgerSP/donation-platform/internal/gateway/scanpay"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(gateway string) *config.Config {
	return &config.Config{
		AppEnv:  "test",
		BaseURL: "https://donations.example.org",
		Payment: config.PaymentConfig{
			Gateway:  gateway,
			Currency: "DKK",
		},
	}
}

func donationBody(t *testing.T, overrides map[string]any) *bytes.Reader {
	t.Helper()
	body := map[string]any{
		"name":      "Jens Jensen",
		"email":     "jens@example.org",
		"amount":    10000,
		"method":    "Bank transfer",
		"frequency": "once",
	}
	for k, v := range overrides {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func submitDonation(handler *PaymentHandlers, body *bytes.Reader, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/payment", body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.SubmitDonationHandler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) paymentResponse {
	t.Helper()
	var resp paymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSubmitDonationHandler_BankTransfer(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateDonation", mock.Anything, mock.AnythingOfType("db.CreateDonationParams")).
		Return(&db.DonationReceipt{DonorID: "donor-1", ChargeShortID: "abc12345"}, nil)
	qp := new(QuickpayMock)
	sp := new(ScanpayMock)
	handler := NewPaymentHandlers(testConfig("quickpay"), store, qp, sp)

	rec := submitDonation(handler, donationBody(t, nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Equal(t, "OK", resp.Message)
	require.Empty(t, resp.Redirect)
	require.NotNil(t, resp.Bank)
	require.Equal(t, "5351-0242661", resp.Bank.Account)
	require.Equal(t, "d-abc12345", resp.Bank.Message)

	store.AssertNumberOfCalls(t, "CreateDonation", 1)
	qp.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
	sp.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitDonationHandler_QuickpayCreditCard(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateDonation", mock.Anything, mock.AnythingOfType("db.CreateDonationParams")).
		Return(&db.DonationReceipt{DonorID: "donor-1", ChargeShortID: "abc12345"}, nil)
	qp := new(QuickpayMock)
	qp.On("CreatePaymentLink", mock.Anything, mock.MatchedBy(func(p quickpay.PaymentParams) bool {
		return p.OrderID == "abc12345" && p.Amount == 10000 && p.Currency == "DKK"
	})).Return("https://payment.quickpay.net/payments/123", nil)
	handler := NewPaymentHandlers(testConfig("quickpay"), store, qp, new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, map[string]any{"method": "Credit card"}), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Equal(t, "OK", resp.Message)
	require.Equal(t, "https://payment.quickpay.net/payments/123", resp.Redirect)
	require.Nil(t, resp.Bank)
	store.AssertNumberOfCalls(t, "CreateDonation", 1)
	qp.AssertExpectations(t)
}

func TestSubmitDonationHandler_QuickpayMonthlyUsesSubscription(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateDonation", mock.Anything, mock.AnythingOfType("db.CreateDonationParams")).
		Return(&db.DonationReceipt{DonorID: "donor-1", ChargeShortID: "abc12345", SubscriptionShortID: "sub99999"}, nil)
	qp := new(QuickpayMock)
	qp.On("CreateSubscriptionLink", mock.Anything, mock.MatchedBy(func(p quickpay.PaymentParams) bool {
		return p.OrderID == "sub99999"
	})).Return("https://payment.quickpay.net/subscriptions/456", nil)
	handler := NewPaymentHandlers(testConfig("quickpay"), store, qp, new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, map[string]any{
		"method":    "MobilePay",
		"frequency": "monthly",
	}), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Equal(t, "https://payment.quickpay.net/subscriptions/456", resp.Redirect)
	qp.AssertExpectations(t)
	qp.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
}

func TestSubmitDonationHandler_ScanpayForwardsClientIP(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateDonation", mock.Anything, mock.AnythingOfType("db.CreateDonationParams")).
		Return(&db.DonationReceipt{DonorID: "donor-1", ChargeShortID: "abc12345"}, nil)
	sp := new(ScanpayMock)
	sp.On("CreatePaymentLink", mock.Anything, mock.MatchedBy(func(p scanpay.PaymentParams) bool {
		return p.OrderID == "abc12345"
	}), "203.0.113.7").Return("https://betal.scanpay.dk/abc", nil)
	handler := NewPaymentHandlers(testConfig("scanpay"), store, new(QuickpayMock), sp)

	rec := submitDonation(handler, donationBody(t, map[string]any{"method": "Credit card"}),
		map[string]string{"X-Real-IP": "203.0.113.7"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Equal(t, "https://betal.scanpay.dk/abc", resp.Redirect)
	sp.AssertExpectations(t)
}

func TestSubmitDonationHandler_UnknownMethodFailsBeforePersistence(t *testing.T) {
	store := new(StoreMock)
	handler := NewPaymentHandlers(testConfig("quickpay"), store, new(QuickpayMock), new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, map[string]any{"method": "Bitcoin"}), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", decodeResponse(t, rec).Message)
	store.AssertNotCalled(t, "CreateDonation", mock.Anything, mock.Anything)
}

func TestSubmitDonationHandler_UnsupportedGateway(t *testing.T) {
	store := new(StoreMock)
	handler := NewPaymentHandlers(testConfig("stripe"), store, new(QuickpayMock), new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, map[string]any{"method": "Credit card"}), nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Unsupported payment method 'Credit card'", decodeResponse(t, rec).Message)
	store.AssertNotCalled(t, "CreateDonation", mock.Anything, mock.Anything)
}

func TestSubmitDonationHandler_ValidationFailure(t *testing.T) {
	store := new(StoreMock)
	handler := NewPaymentHandlers(testConfig("quickpay"), store, new(QuickpayMock), new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, map[string]any{"email": "not-an-email"}), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", decodeResponse(t, rec).Message)
	store.AssertNotCalled(t, "CreateDonation", mock.Anything, mock.Anything)
}

func TestSubmitDonationHandler_MalformedBody(t *testing.T) {
	handler := NewPaymentHandlers(testConfig("quickpay"), new(StoreMock), new(QuickpayMock), new(ScanpayMock))

	rec := submitDonation(handler, bytes.NewReader([]byte("{")), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", decodeResponse(t, rec).Message)
}

func TestSubmitDonationHandler_StoreFailure(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateDonation", mock.Anything, mock.AnythingOfType("db.CreateDonationParams")).
		Return(nil, errors.New("connection refused"))
	handler := NewPaymentHandlers(testConfig("quickpay"), store, new(QuickpayMock), new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, nil), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", decodeResponse(t, rec).Message)
}

func TestSubmitDonationHandler_GatewayFailure(t *testing.T) {
	store := new(StoreMock)
	store.On("CreateDonation", mock.Anything, mock.AnythingOfType("db.CreateDonationParams")).
		Return(&db.DonationReceipt{DonorID: "donor-1", ChargeShortID: "abc12345"}, nil)
	qp := new(QuickpayMock)
	qp.On("CreatePaymentLink", mock.Anything, mock.Anything).Return("", errors.New("upstream 502"))
	handler := NewPaymentHandlers(testConfig("quickpay"), store, qp, new(ScanpayMock))

	rec := submitDonation(handler, donationBody(t, map[string]any{"method": "Credit card"}), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Something went wrong", decodeResponse(t, rec).Message)
}

func TestSubmitDonationHandler_RejectsGet(t *testing.T) {
	handler := NewPaymentHandlers(testConfig("quickpay"), new(StoreMock), new(QuickpayMock), new(ScanpayMock))

	req := httptest.NewRequest(http.MethodGet, "/api/payment", nil)
	rec := httptest.NewRecorder()
	handler.SubmitDonationHandler(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
