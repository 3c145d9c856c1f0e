package models

import (
	"errors"
	"fmt"
	"time"
)

// PaymentMethod values are an external contract with the donation form UI.
// The set is fixed; new methods require a coordinated frontend change.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "Bank transfer"
	MethodCreditCard   PaymentMethod = "Credit card"
	MethodMobilePay    PaymentMethod = "MobilePay"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// ParsePaymentMethod is an exact match against the fixed method set.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case MethodBankTransfer:
		return MethodBankTransfer, nil
	case MethodCreditCard:
		return MethodCreditCard, nil
	case MethodMobilePay:
		return MethodMobilePay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, raw)
	}
}

// PaymentGateway is selected by process configuration, never by the request.
type PaymentGateway string

const (
	GatewayQuickpay PaymentGateway = "quickpay"
	GatewayScanpay  PaymentGateway = "scanpay"
)

type ChargeStatus string

const (
	ChargeStatusPending  ChargeStatus = "pending"
	ChargeStatusCharged  ChargeStatus = "charged"
	ChargeStatusRefunded ChargeStatus = "refunded"
	ChargeStatusError    ChargeStatus = "error"
)

type DonationFrequency string

const (
	FrequencyOnce    DonationFrequency = "once"
	FrequencyMonthly DonationFrequency = "monthly"
)

// DonationRequest is the submitted donation form. Amount is in the smallest
// currency unit (øre). TIN is the Danish CPR number, required only when the
// donor wants the tax deduction reported.
type DonationRequest struct {
	Name          string `json:"name" validate:"required,alpha_space,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Amount        int64  `json:"amount" validate:"required,min=100"`
	Method        string `json:"method" validate:"required"`
	Frequency     string `json:"frequency" validate:"required,oneof=once monthly"`
	TaxDeductible bool   `json:"tax_deductible"`
	TIN           string `json:"tin" validate:"required_if=TaxDeductible true,omitempty,valid_tin"`
	Membership    bool   `json:"membership"`
	Address       string `json:"address" validate:"required_if=Membership true,omitempty,max=255"`
	PostalCode    string `json:"postal_code" validate:"required_if=Membership true,omitempty,max=16"`
	City          string `json:"city" validate:"required_if=Membership true,omitempty,max=100"`
}

type Donor struct {
	ID            string
	Name          string
	Email         string
	TIN           string
	Address       string
	PostalCode    string
	City          string
	TaxDeductible bool
	CreatedAt     time.Time
}

type Charge struct {
	ID              string
	DonorID         string
	SubscriptionID  string
	ShortID         string
	Amount          int64
	Currency        string
	Method          PaymentMethod
	Status          ChargeStatus
	GatewayResponse []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Subscription struct {
	ID         string
	DonorID    string
	ShortID    string
	Amount     int64
	Currency   string
	Frequency  DonationFrequency
	Membership bool
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
