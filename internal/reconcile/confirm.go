package reconcile

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
)

// ConfirmRequest carries the best-effort identifiers the client scraped from
// the redirect URL, plus its persisted session record as fallback.
type ConfirmRequest struct {
	Identifiers

	Session *SessionRecord `json:"session,omitempty"`

	// SessionChecked reports that the client finished reading its session
	// storage; before that, absent identifiers are not yet a failure.
	SessionChecked bool `json:"sessionChecked,omitempty"`

	// Authenticated request context, if any.
	UserID    string `json:"-"`
	UserEmail string `json:"-"`

	// Email optionally supplied with the request body.
	Email string `json:"email,omitempty"`
}

// ConfirmResult is the outcome of a successful confirmation.
type ConfirmResult struct {
	OrderID          string `json:"orderId"`
	RedirectURL      string `json:"redirectUrl,omitempty"`
	AlreadyFinalized bool   `json:"alreadyFinalized"`
}

// ConfirmOrder is the client-triggered finalization path. Unlike the webhook
// it surfaces failures to the caller; duplicate calls (page refresh) are
// answered idempotently with the existing order id.
func (c *Coordinator) ConfirmOrder(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	ids := req.Identifiers
	if ids.Empty() && req.Session.Fresh(c.sessionMaxAge, c.nowFunc()) {
		ids = req.Session.Identifiers()
	}
	if ids.Empty() {
		return nil, ErrMissingIdentifiers
	}

	tx, ids, err := c.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}
	log := c.logger.With("transactionId", tx.TransactionID, "sveaOrderId", ids.SveaOrderID)

	// idempotent read for re-confirmations
	if tx.Status == store.TxSucceeded && tx.OrderID != "" {
		log.Info("confirm for already finalized transaction", "orderId", tx.OrderID)
		return &ConfirmResult{
			OrderID:          tx.OrderID,
			RedirectURL:      c.redirectURL(tx.OrderID, tx.CustomerEmail),
			AlreadyFinalized: true,
		}, nil
	}

	if ids.SveaOrderID == 0 {
		// nothing to verify against; the transaction never recorded its
		// provider order
		return nil, ErrMissingIdentifiers
	}

	po, err := c.gateway.FetchOrder(ctx, ids.SveaOrderID)
	if err != nil {
		return nil, fmt.Errorf("verify svea order: %w", err)
	}
	if !po.Final() {
		log.Info("svea order not yet finalized", "liveStatus", po.Status)
		return nil, ErrOrderNotFinalized
	}

	cart := c.loadCart(ctx, tx.CartID)

	orderID, err := c.materializer.Materialize(ctx, MaterializeInput{
		Transaction:   tx,
		ProviderOrder: po,
		Cart:          cart,
		RequestUserID: req.UserID,
		RequestEmail:  req.Email,
		UserEmail:     req.UserEmail,
	})
	if err != nil {
		return nil, err
	}

	c.runClearCart(ctx, tx.CartID)

	email := tx.CustomerEmail
	if email == "" {
		email = resolveEmail(tx, po, req.Email, req.UserEmail)
	}
	return &ConfirmResult{
		OrderID:     orderID,
		RedirectURL: c.redirectURL(orderID, email),
	}, nil
}

// runClearCart invokes the integrator's cart-clearing hook; failures are
// swallowed, the order already stands.
func (c *Coordinator) runClearCart(ctx context.Context, cartID string) {
	if c.clearCart == nil || cartID == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("cart-clearing hook panicked", "cartId", cartID, "panic", r)
		}
	}()
	if err := c.clearCart(ctx, cartID); err != nil {
		c.logger.Warn("cart-clearing hook failed", "cartId", cartID, "error", err)
	}
}

func (c *Coordinator) redirectURL(orderID, email string) string {
	if c.confirmationURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("order", orderID)
	if email != "" {
		q.Set("email", email)
	}
	return c.confirmationURL + "?" + q.Encode()
}
