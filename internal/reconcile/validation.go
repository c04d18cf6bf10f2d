package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
)

// ValidationRequest is the canonical form of the provider's pre-finalization
// callback. A payload carrying an event name is a notification, not a
// validation request, and is acknowledged without any materialization.
type ValidationRequest struct {
	EventName     string `json:"EventName,omitempty"`
	OrderID       int64  `json:"OrderId,omitempty"`
	PaymentOption string `json:"PaymentOption,omitempty"`
	BillingEmail  string `json:"BillingEmail,omitempty"`
}

// ValidationResponse is the body answered to the provider. Rejection travels
// in the Valid field; the transport status is success either way.
type ValidationResponse struct {
	Valid   bool   `json:"Valid"`
	Message string `json:"Message,omitempty"`
}

// HandleValidation answers the provider's validation callback. The provider
// waits synchronously on this, so a lookup miss never blocks the payment:
// only the integrator-supplied predicate can reject.
func (c *Coordinator) HandleValidation(ctx context.Context, req ValidationRequest) ValidationResponse {
	log := c.logger.With("sveaOrderId", req.OrderID)

	if req.EventName != "" {
		log.Info("svea checkout event received", "event", req.EventName)
		return ValidationResponse{Valid: true}
	}

	if req.OrderID == 0 {
		log.Warn("validation callback without order id, allowing")
		return ValidationResponse{Valid: true, Message: "order id missing; allowed without validation"}
	}

	// only the provider order id is available at this stage
	tx, _, err := c.resolver.Resolve(ctx, Identifiers{SveaOrderID: req.OrderID})
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			log.Warn("validation callback for unknown transaction, allowing")
			return ValidationResponse{Valid: true, Message: "transaction not found; allowed without validation"}
		}
		log.Error("validation callback lookup failed, allowing", "error", err)
		return ValidationResponse{Valid: true, Message: "lookup failed; allowed without validation"}
	}

	if c.validate != nil {
		if err := c.runValidate(ctx, tx, req); err != nil {
			log.Info("custom validation rejected payment", "transactionId", tx.TransactionID, "reason", err)
			return ValidationResponse{Valid: false, Message: err.Error()}
		}
	}

	return ValidationResponse{Valid: true}
}

// runValidate guards the integrator predicate: a panic rejects the payment
// instead of escaping as a transport failure.
func (c *Coordinator) runValidate(ctx context.Context, tx *store.Transaction, req ValidationRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("custom validation panicked: %v", r)
		}
	}()
	return c.validate(ctx, tx, req)
}
