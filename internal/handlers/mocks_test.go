package handlers

import (
	"context"

	"github.com/AsgerSP/donation-platform/internal/db"
	"github.com/AsgerSP/donation-platform/internal/gateway/quickpay"
	"github.com/AsgerSP/donation-platform/internal/gateway/scanpay"
	"github.com/AsgerSP/donation-platform/internal/models"

	"github.com/stretchr/testify/mock"
)

type StoreMock struct {
	mock.Mock
	DonationStore
}

func (m *StoreMock) CreateDonation(ctx context.Context, p db.CreateDonationParams) (*db.DonationReceipt, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.DonationReceipt), args.Error(1)
}

func (m *StoreMock) UpdateChargeFromGateway(ctx context.Context, shortID string, status models.ChargeStatus, gatewayResponse []byte) error {
	args := m.Called(ctx, shortID, status, gatewayResponse)
	return args.Error(0)
}

func (m *StoreMock) CreateInitialCharge(ctx context.Context, subscriptionShortID string) error {
	args := m.Called(ctx, subscriptionShortID)
	return args.Error(0)
}

type QuickpayMock struct {
	mock.Mock
	QuickpayGateway
}

func (m *QuickpayMock) CreatePaymentLink(ctx context.Context, p quickpay.PaymentParams) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *QuickpayMock) CreateSubscriptionLink(ctx context.Context, p quickpay.PaymentParams) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

type ScanpayMock struct {
	mock.Mock
	ScanpayGateway
}

func (m *ScanpayMock) CreatePaymentLink(ctx context.Context, p scanpay.PaymentParams, cardholderIP string) (string, error) {
	args := m.Called(ctx, p, cardholderIP)
	return args.String(0), args.Error(1)
}
