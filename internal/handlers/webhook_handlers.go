package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/AsgerSP/donation-platform/internal/gateway/quickpay"
)

// QuickpayChangeHandler consumes asynchronous Quickpay change notifications
// and reconciles local charge state. Deliveries are at-least-once; every
// branch is idempotent per payload, and "nothing to do" is answered with 200
// so the gateway stops retrying.
func (ph *PaymentHandlers) QuickpayChangeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, paymentResponse{Message: "Method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("quickpay/change: failed to read request body", "error", err)
		writeServerError(w)
		return
	}

	if key := ph.Config.Payment.Quickpay.PrivateKey; key != "" {
		if !quickpay.VerifyChecksum(body, r.Header.Get(quickpay.ChecksumHeader), key) {
			slog.Error("quickpay/change: checksum verification failed", "ip", ClientIP(r))
			writeJSON(w, http.StatusForbidden, paymentResponse{Message: "Invalid checksum"})
			return
		}
	}

	var change quickpay.Change
	if err := json.Unmarshal(body, &change); err != nil {
		slog.Error("quickpay/change: failed to decode change payload", "error", err)
		writeJSON(w, http.StatusBadRequest, paymentResponse{Message: "Malformed change payload"})
		return
	}

	switch change.Type {
	case quickpay.ChangeTypePayment:
		err = ph.handlePaymentChange(r.Context(), change)
	case quickpay.ChangeTypeSubscription:
		err = ph.handleSubscriptionChange(r.Context(), change)
	default:
		slog.Warn("quickpay/change: ignoring change with unknown type", "type", change.Type, "order_id", change.OrderID)
	}
	if err != nil {
		slog.Error("quickpay/change: failed to process change", "type", change.Type, "order_id", change.OrderID, "error", err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, paymentResponse{Message: "OK"})
}

// handlePaymentChange stores the derived status and the raw operations list
// on the charge. No derivable status is a legitimate no-op, not an error.
func (ph *PaymentHandlers) handlePaymentChange(ctx context.Context, change quickpay.Change) error {
	status, ok := quickpay.ChargeStatusFromOperations(change.Operations)
	if !ok {
		return nil
	}

	slog.Info("Charge status changed with Quickpay", "order_id", change.OrderID, "status", status)

	gatewayResponse, err := json.Marshal(struct {
		Operations []quickpay.Operation `json:"operations"`
	}{Operations: change.Operations})
	if err != nil {
		return err
	}
	return ph.Store.UpdateChargeFromGateway(ctx, change.OrderID, status, gatewayResponse)
}

func (ph *PaymentHandlers) handleSubscriptionChange(ctx context.Context, change quickpay.Change) error {
	if !change.Accepted {
		return nil
	}

	if ph.Config.IsProduction() && change.TestMode {
		slog.Error("Quickpay subscription was paid using a test card, ignoring", "order_id", change.OrderID)
		return nil
	}

	slog.Info("Creating initial charge for Quickpay subscription", "order_id", change.OrderID)
	return ph.Store.CreateInitialCharge(ctx, change.OrderID)
}
