package validation

import (
	"testing"

	"github.com/AsgerSP/donation-platform/internal/models"

	"github.com/stretchr/testify/require"
)

func validDonation() models.DonationRequest {
	return models.DonationRequest{
		Name:      "Jens Jensen",
		Email:     "jens@example.org",
		Amount:    10000,
		Method:    "Bank transfer",
		Frequency: "once",
	}
}

func TestValidateStruct_DonationRequest(t *testing.T) {
	var tests = []struct {
		name        string
		mutate      func(*models.DonationRequest)
		failedField string
	}{
		{name: "valid one-off donation", mutate: func(r *models.DonationRequest) {}},
		{
			name: "valid membership with address",
			mutate: func(r *models.DonationRequest) {
				r.Membership = true
				r.Address = "Nørrebrogade 1"
				r.PostalCode = "2200"
				r.City = "København"
			},
		},
		{
			name: "valid tax deductible donation",
			mutate: func(r *models.DonationRequest) {
				r.TaxDeductible = true
				r.TIN = "010190-1234"
			},
		},
		{
			name:        "missing email",
			mutate:      func(r *models.DonationRequest) { r.Email = "" },
			failedField: "email",
		},
		{
			name:        "malformed email",
			mutate:      func(r *models.DonationRequest) { r.Email = "not-an-email" },
			failedField: "email",
		},
		{
			name:        "amount below minimum",
			mutate:      func(r *models.DonationRequest) { r.Amount = 50 },
			failedField: "amount",
		},
		{
			name:        "unknown frequency",
			mutate:      func(r *models.DonationRequest) { r.Frequency = "yearly" },
			failedField: "frequency",
		},
		{
			name:        "tax deductible without tin",
			mutate:      func(r *models.DonationRequest) { r.TaxDeductible = true },
			failedField: "tin",
		},
		{
			name: "malformed tin",
			mutate: func(r *models.DonationRequest) {
				r.TaxDeductible = true
				r.TIN = "12345"
			},
			failedField: "tin",
		},
		{
			name:        "membership without address",
			mutate:      func(r *models.DonationRequest) { r.Membership = true },
			failedField: "address",
		},
		{
			name:        "name with digits",
			mutate:      func(r *models.DonationRequest) { r.Name = "R0bot" },
			failedField: "name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validDonation()
			tt.mutate(&req)
			errs := ValidateStruct(req)
			if tt.failedField == "" {
				require.Nil(t, errs)
				return
			}
			require.NotNil(t, errs)
			require.Contains(t, errs, tt.failedField)
		})
	}
}
