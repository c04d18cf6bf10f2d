package reconcile

import (
	"context"
	"errors"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

// WebhookOutcome describes what a webhook delivery did. The transport answer
// is success in every case.
type WebhookOutcome string

const (
	WebhookDropped      WebhookOutcome = "dropped"      // unusable payload or unknown transaction
	WebhookMaterialized WebhookOutcome = "materialized" // order created or merged
	WebhookFailedTx     WebhookOutcome = "failed"       // transaction marked failed
	WebhookNoop         WebhookOutcome = "noop"         // status carries no action
)

// HandleWebhook processes a provider push notification. It never returns an
// error and never panics outward: the provider must not be given a reason to
// keep retrying, so every internal failure is logged and acknowledged.
func (c *Coordinator) HandleWebhook(ctx context.Context, p WebhookPayload) (outcome WebhookOutcome) {
	log := c.logger.With("sveaOrderId", p.OrderID, "status", p.Status)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in webhook handling", "panic", r)
			outcome = WebhookDropped
		}
	}()

	if p.OrderID == 0 {
		log.Warn("webhook without determinable order id, dropping")
		return WebhookDropped
	}

	tx, ids, err := c.resolver.Resolve(ctx, Identifiers{SveaOrderID: p.OrderID})
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			log.Warn("webhook for unknown transaction, dropping")
		} else {
			log.Error("webhook transaction lookup failed", "error", err)
		}
		return WebhookDropped
	}

	switch p.Status {
	case svea.OrderStatusFinal:
		po, err := c.gateway.FetchOrder(ctx, ids.SveaOrderID)
		if err != nil {
			log.Error("failed to fetch svea order for webhook", "error", err)
			return WebhookDropped
		}
		if !po.Final() {
			log.Warn("webhook claimed Final but svea order is not", "liveStatus", po.Status)
			return WebhookNoop
		}

		cart := c.loadCart(ctx, tx.CartID)
		if _, err := c.materializer.Materialize(ctx, MaterializeInput{
			Transaction:   tx,
			ProviderOrder: po,
			Cart:          cart,
		}); err != nil {
			log.Error("webhook materialization failed", "error", err)
			return WebhookDropped
		}
		return WebhookMaterialized

	case svea.OrderStatusCancelled:
		if err := c.transactions.MarkFailed(ctx, tx.TransactionID); err != nil {
			log.Error("failed to mark transaction failed", "transactionId", tx.TransactionID, "error", err)
			return WebhookDropped
		}
		log.Info("transaction marked failed on cancellation", "transactionId", tx.TransactionID)
		return WebhookFailedTx

	default:
		log.Info("webhook status carries no action")
		return WebhookNoop
	}
}

// loadCart is best-effort: the materializer falls back to the transaction's
// item snapshot when the cart cannot be loaded.
func (c *Coordinator) loadCart(ctx context.Context, cartID string) *store.Cart {
	if cartID == "" {
		return nil
	}
	cart, err := c.carts.Get(ctx, cartID)
	if err != nil {
		c.logger.Warn("failed to load cart", "cartId", cartID, "error", err)
		return nil
	}
	return cart
}
