package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

// FinalizedEvent is published after a successful materialization for
// downstream fulfillment.
type FinalizedEvent struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	SveaOrderID   int64  `json:"svea_order_id"`
}

// MaterializeInput carries a resolved transaction, its verified provider
// order (status Final), and whatever surrounding context the entry point had.
type MaterializeInput struct {
	Transaction   *store.Transaction
	ProviderOrder *svea.CheckoutOrder
	Cart          *store.Cart // nil when the cart could not be loaded

	// Request-scoped fallbacks for customer/email resolution.
	RequestUserID string
	RequestEmail  string
	UserEmail     string
}

// Materializer ensures exactly one host order reflects a finalized purchase,
// then marks the cart purchased and the transaction succeeded.
type Materializer struct {
	Transactions TransactionStore
	Orders       OrderStore
	Carts        CartStore
	Publisher    Publisher     // optional
	MapAddress   AddressMapper // optional
	Logger       *slog.Logger

	NewID func() string // defaults to uuid.NewString
}

// Materialize converges on a single order id for the transaction.
//
// Re-delivery of the same finalization event must be a no-op after the first
// success: if the transaction is already succeeded and linked, the existing
// order id is returned with zero writes.
func (m *Materializer) Materialize(ctx context.Context, in MaterializeInput) (string, error) {
	tx := in.Transaction
	log := m.logger().With("transactionId", tx.TransactionID, "sveaOrderId", in.ProviderOrder.OrderID)

	// idempotency gate
	if tx.Status == store.TxSucceeded && tx.OrderID != "" {
		log.Info("transaction already finalized, returning existing order", "orderId", tx.OrderID)
		return tx.OrderID, nil
	}

	// A concurrent entry point may have created the order while our read of
	// the transaction was stale. Search the linked-transaction sets before
	// creating. The check-then-create sequence is not atomic against the
	// store, so a narrow duplicate-order window remains; closing it entirely
	// needs a store-side uniqueness constraint.
	existingID := tx.OrderID
	if existingID == "" {
		found, err := m.Orders.FindByTransactionID(ctx, tx.TransactionID)
		if err != nil {
			return "", fmt.Errorf("search existing order: %w", err)
		}
		if found != nil {
			existingID = found.OrderID
		}
	}

	items := normalizeItems(cartOrSnapshotItems(in.Cart, tx))
	shipping, billing := resolveAddresses(tx, in.ProviderOrder, m.MapAddress)
	customerID := resolveCustomer(in.Cart, tx, in.RequestUserID)
	email := resolveEmail(tx, in.ProviderOrder, in.RequestEmail, in.UserEmail)

	var orderID string
	if existingID != "" {
		ord, err := m.Orders.Get(ctx, existingID)
		if err != nil {
			return "", fmt.Errorf("fetch existing order: %w", err)
		}
		if ord != nil {
			ord.LinkTransaction(tx.TransactionID)
			if err := m.Orders.Update(ctx, *ord); err != nil {
				return "", fmt.Errorf("update existing order: %w", err)
			}
			orderID = ord.OrderID
			log.Info("merged transaction into existing order", "orderId", orderID)
		}
		// a dangling link falls through to create
	}

	if orderID == "" {
		ord := store.Order{
			OrderID:         m.newID(),
			Amount:          tx.Amount,
			Currency:        tx.Currency,
			Items:           items,
			Status:          store.OrderProcessing,
			ShippingAddress: shipping,
			BillingAddress:  billing,
			CustomerID:      customerID,
			CustomerEmail:   email,
			TransactionIDs:  []string{tx.TransactionID},
		}
		if err := m.Orders.Create(ctx, ord); err != nil {
			return "", fmt.Errorf("create order: %w", err)
		}
		orderID = ord.OrderID
		log.Info("created order", "orderId", orderID)
	}

	// best-effort: the cart reaching its terminal state must never abort a
	// finalization that already produced an order
	if tx.CartID != "" {
		if err := m.Carts.MarkPurchased(ctx, tx.CartID); err != nil {
			log.Warn("failed to mark cart purchased", "cartId", tx.CartID, "error", err)
		}
	}

	merged := tx.Svea.Merge(store.SveaDetails{
		OrderID:           in.ProviderOrder.OrderID,
		ClientOrderNumber: in.ProviderOrder.ClientOrderNumber,
		PaymentType:       in.ProviderOrder.PaymentType,
	})
	if err := m.Transactions.MarkSucceeded(ctx, tx.TransactionID, orderID, merged); err != nil {
		return "", fmt.Errorf("mark transaction succeeded: %w", err)
	}

	m.publishFinalized(ctx, log, FinalizedEvent{
		OrderID:       orderID,
		TransactionID: tx.TransactionID,
		SveaOrderID:   in.ProviderOrder.OrderID,
	})

	return orderID, nil
}

func (m *Materializer) publishFinalized(ctx context.Context, log *slog.Logger, ev FinalizedEvent) {
	if m.Publisher == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Warn("failed to marshal finalized event", "error", err)
		return
	}
	attrs := map[string]string{
		"order_id":      ev.OrderID,
		"svea_order_id": strconv.FormatInt(ev.SveaOrderID, 10),
	}
	if err := m.Publisher.Publish(ctx, string(body), attrs); err != nil {
		// fulfillment kick-off is downstream concern; the finalization stands
		log.Warn("failed to publish finalized event", "error", err)
	}
}

func (m *Materializer) newID() string {
	if m.NewID != nil {
		return m.NewID()
	}
	return uuid.NewString()
}

func (m *Materializer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func cartOrSnapshotItems(cart *store.Cart, tx *store.Transaction) []store.CartItem {
	if cart != nil && len(cart.Items) > 0 {
		return cart.Items
	}
	return tx.Items
}

// normalizeItems converts cart lines into the order's item schema, reducing
// any object-form product/variant reference down to its bare identifier.
func normalizeItems(items []store.CartItem) []store.OrderItem {
	out := make([]store.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, store.OrderItem{
			Product:  refID(it.Product),
			Variant:  refID(it.Variant),
			Quantity: it.Quantity,
		})
	}
	return out
}

// refID accepts a bare id string or an embedded document carrying an "id"
// key and returns the bare id.
func refID(v interface{}) string {
	switch ref := v.(type) {
	case string:
		return ref
	case map[string]interface{}:
		if id, ok := ref["id"].(string); ok {
			return id
		}
	}
	return ""
}

// resolveAddresses applies the precedence: the transaction's stored billing
// address wins for both shipping and billing; otherwise the provider's
// shipping address, then the provider's billing address, mapped through the
// address-translation collaborator.
func resolveAddresses(tx *store.Transaction, po *svea.CheckoutOrder, mapAddr AddressMapper) (shipping, billing *store.Address) {
	if tx.BillingAddress != nil {
		return tx.BillingAddress, tx.BillingAddress
	}
	if mapAddr == nil {
		return nil, nil
	}
	if po.ShippingAddress != nil {
		mapped := mapAddr(po.ShippingAddress)
		return mapped, mapped
	}
	if po.BillingAddress != nil {
		mapped := mapAddr(po.BillingAddress)
		return mapped, mapped
	}
	return nil, nil
}

// resolveCustomer applies the precedence: cart's customer reference, then the
// transaction's, then the authenticated request's user id.
func resolveCustomer(cart *store.Cart, tx *store.Transaction, requestUserID string) string {
	if cart != nil && cart.CustomerID != "" {
		return cart.CustomerID
	}
	if tx.CustomerID != "" {
		return tx.CustomerID
	}
	return requestUserID
}

// resolveEmail applies the precedence: transaction's stored email, then the
// request-supplied email, then the provider-reported fields, then the
// authenticated user's email.
func resolveEmail(tx *store.Transaction, po *svea.CheckoutOrder, requestEmail, userEmail string) string {
	if tx.CustomerEmail != "" {
		return tx.CustomerEmail
	}
	if requestEmail != "" {
		return requestEmail
	}
	if po.EmailAddress != "" {
		return po.EmailAddress
	}
	if po.Customer != nil && po.Customer.Email != "" {
		return po.Customer.Email
	}
	return userEmail
}
