package quickpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/AsgerSP/donation-platform/internal/models"
)

// ChecksumHeader carries the HMAC of the callback body, signed with the
// Quickpay account's private key.
const ChecksumHeader = "Quickpay-Checksum-Sha256"

type ChangeType string

const (
	ChangeTypePayment      ChangeType = "Payment"
	ChangeTypeSubscription ChangeType = "Subscription"
)

// Operation is one attempt (capture, refund, ...) against a payment.
type Operation struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	StatusCode string `json:"qp_status_code"`
}

// Change is an asynchronous Quickpay notification about a payment or a
// subscription previously created through the gateway.
type Change struct {
	Type       ChangeType  `json:"type"`
	OrderID    string      `json:"order_id"`
	Accepted   bool        `json:"accepted"`
	TestMode   bool        `json:"test_mode"`
	Operations []Operation `json:"operations"`
}

// ChargeStatusFromOperations derives the charge status from the operation
// with the highest id; earlier operations are ignored. When two operations
// share the maximum id, the first one in payload order wins. ok is false
// when the list is empty or the latest operation is not status-changing.
func ChargeStatusFromOperations(operations []Operation) (status models.ChargeStatus, ok bool) {
	if len(operations) == 0 {
		return "", false
	}

	latest := operations[0]
	for _, op := range operations[1:] {
		if op.ID > latest.ID {
			latest = op
		}
	}

	switch latest.StatusCode {
	case "40000":
		return models.ChargeStatusError, true
	case "20000":
		switch latest.Type {
		case "capture":
			return models.ChargeStatusCharged, true
		case "refund":
			return models.ChargeStatusRefunded, true
		}
	}
	return "", false
}

// VerifyChecksum reports whether checksum matches the HMAC-SHA256 of body
// under the account private key.
func VerifyChecksum(body []byte, checksum, privateKey string) bool {
	mac := hmac.New(sha256.New, []byte(privateKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(checksum))
}
