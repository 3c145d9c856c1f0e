package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AsgerSP/donation-platform/internal/config"
	"github.com/AsgerSP/donation-platform/internal/db"
	"github.com/AsgerSP/donation-platform/internal/gateway/quickpay"
	"github.com/AsgerSP/donation-platform/internal/gateway/scanpay"
	"github.com/AsgerSP/donation-platform/internal/models"
	"github.com/AsgerSP/donation-platform/internal/validation"
)

// Account donors transfer to when paying by bank transfer; surfaced verbatim
// together with the d-<shortID> reference.
const bankTransferAccount = "5351-0242661"

type DonationStore interface {
	CreateDonation(ctx context.Context, p db.CreateDonationParams) (*db.DonationReceipt, error)
	UpdateChargeFromGateway(ctx context.Context, shortID string, status models.ChargeStatus, gatewayResponse []byte) error
	CreateInitialCharge(ctx context.Context, subscriptionShortID string) error
}

type QuickpayGateway interface {
	CreatePaymentLink(ctx context.Context, p quickpay.PaymentParams) (string, error)
	CreateSubscriptionLink(ctx context.Context, p quickpay.PaymentParams) (string, error)
}

type ScanpayGateway interface {
	CreatePaymentLink(ctx context.Context, p scanpay.PaymentParams, cardholderIP string) (string, error)
}

type PaymentHandlers struct {
	Config   *config.Config
	Store    DonationStore
	Quickpay QuickpayGateway
	Scanpay  ScanpayGateway
}

func NewPaymentHandlers(cfg *config.Config, store DonationStore, qp QuickpayGateway, sp ScanpayGateway) *PaymentHandlers {
	return &PaymentHandlers{Config: cfg, Store: store, Quickpay: qp, Scanpay: sp}
}

type paymentResponse struct {
	Message  string       `json:"message"`
	Redirect string       `json:"redirect,omitempty"`
	Bank     *bankDetails `json:"bank,omitempty"`
}

type bankDetails struct {
	Account string `json:"account"`
	Message string `json:"message"`
}

// SubmitDonationHandler validates the submitted donation form, persists the
// donor and charge, and returns bank-transfer details or a gateway redirect
// URL depending on the chosen payment method.
func (ph *PaymentHandlers) SubmitDonationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, paymentResponse{Message: "Method not allowed"})
		return
	}

	ip := ClientIP(r)

	var req models.DonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("api/payment: failed to decode request body", "ip", ip, "error", err)
		writeServerError(w)
		return
	}

	if validationErrs := validation.ValidateStruct(req); validationErrs != nil {
		slog.Error("api/payment: submission failed validation", "ip", ip, "fields", validationErrs)
		writeServerError(w)
		return
	}

	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		slog.Error("api/payment: failed to classify payment method", "ip", ip, "error", err)
		writeServerError(w)
		return
	}

	switch method {
	case models.MethodBankTransfer:
		receipt, err := ph.Store.CreateDonation(r.Context(), ph.donationParams(req, method))
		if err != nil {
			slog.Error("api/payment: failed to persist bank-transfer donation", "ip", ip, "error", err)
			writeServerError(w)
			return
		}
		writeJSON(w, http.StatusOK, paymentResponse{
			Message: "OK",
			Bank: &bankDetails{
				Account: bankTransferAccount,
				Message: fmt.Sprintf("d-%s", receipt.ChargeShortID),
			},
		})

	case models.MethodCreditCard, models.MethodMobilePay:
		switch models.PaymentGateway(ph.Config.Payment.Gateway) {
		case models.GatewayQuickpay:
			redirect, err := ph.processQuickpayDonation(r.Context(), req, method)
			if err != nil {
				slog.Error("api/payment: quickpay donation failed", "ip", ip, "error", err)
				writeServerError(w)
				return
			}
			writeJSON(w, http.StatusOK, paymentResponse{Message: "OK", Redirect: redirect})

		case models.GatewayScanpay:
			redirect, err := ph.processScanpayDonation(r.Context(), req, method, ip)
			if err != nil {
				slog.Error("api/payment: scanpay donation failed", "ip", ip, "error", err)
				writeServerError(w)
				return
			}
			writeJSON(w, http.StatusOK, paymentResponse{Message: "OK", Redirect: redirect})

		default:
			slog.Error("api/payment: configured gateway cannot process payment method",
				"gateway", ph.Config.Payment.Gateway, "method", req.Method)
			writeJSON(w, http.StatusBadRequest, paymentResponse{
				Message: fmt.Sprintf("Unsupported payment method '%s'", req.Method),
			})
		}
	}
}

func (ph *PaymentHandlers) processQuickpayDonation(ctx context.Context, req models.DonationRequest, method models.PaymentMethod) (string, error) {
	receipt, err := ph.Store.CreateDonation(ctx, ph.donationParams(req, method))
	if err != nil {
		return "", err
	}

	params := quickpay.PaymentParams{
		OrderID:     receipt.ChargeShortID,
		Amount:      req.Amount,
		Currency:    ph.Config.Payment.Currency,
		Description: "Donation",
		ContinueURL: ph.Config.BaseURL + "/donate/thanks",
		CancelURL:   ph.Config.BaseURL + "/donate",
		CallbackURL: ph.Config.BaseURL + "/api/quickpay/change",
	}
	if req.Frequency == string(models.FrequencyMonthly) {
		// Recurring setup is keyed to the subscription, not the initial
		// charge; renewals come back referencing this order id.
		params.OrderID = receipt.SubscriptionShortID
		params.Description = "Recurring donation"
		return ph.Quickpay.CreateSubscriptionLink(ctx, params)
	}
	return ph.Quickpay.CreatePaymentLink(ctx, params)
}

func (ph *PaymentHandlers) processScanpayDonation(ctx context.Context, req models.DonationRequest, method models.PaymentMethod, ip string) (string, error) {
	receipt, err := ph.Store.CreateDonation(ctx, ph.donationParams(req, method))
	if err != nil {
		return "", err
	}

	return ph.Scanpay.CreatePaymentLink(ctx, scanpay.PaymentParams{
		OrderID:    receipt.ChargeShortID,
		Amount:     req.Amount,
		Currency:   ph.Config.Payment.Currency,
		SuccessURL: ph.Config.BaseURL + "/donate/thanks",
	}, ip)
}

func (ph *PaymentHandlers) donationParams(req models.DonationRequest, method models.PaymentMethod) db.CreateDonationParams {
	return db.CreateDonationParams{
		Name:          req.Name,
		Email:         req.Email,
		TIN:           req.TIN,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		City:          req.City,
		TaxDeductible: req.TaxDeductible,
		Membership:    req.Membership,
		Amount:        req.Amount,
		Currency:      ph.Config.Payment.Currency,
		Method:        method,
		Frequency:     models.DonationFrequency(req.Frequency),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeServerError is the single outward shape for every internal failure.
// Detail stays in the server log.
func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, paymentResponse{Message: "Something went wrong"})
}
