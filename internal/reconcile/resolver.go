package reconcile

import (
	"context"
	"log/slog"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
)

// Identifiers is any subset of the identifying data an entry point may carry.
type Identifiers struct {
	SveaOrderID       int64  `json:"sveaOrderId,omitempty"`
	TransactionID     string `json:"transactionId,omitempty"`
	ClientOrderNumber string `json:"clientOrderNumber,omitempty"`
}

// Empty reports whether no identifier is present.
func (ids Identifiers) Empty() bool {
	return ids.SveaOrderID == 0 && ids.TransactionID == "" && ids.ClientOrderNumber == ""
}

// Resolver maps a fragment of identifying data to a single transaction,
// trying lookup strategies in a fixed priority order.
type Resolver struct {
	Transactions TransactionStore
	Logger       *slog.Logger
}

// Resolve tries, in order: transaction id primary-key lookup, svea order id
// GSI, client order number GSI; the first hit wins. A malformed or unknown
// transaction id falls through to the next strategy rather than failing.
//
// The returned Identifiers are the effective ones for subsequent steps: if
// the caller did not supply a provider order id but the resolved transaction
// carries one, the stored value is backfilled.
func (r *Resolver) Resolve(ctx context.Context, ids Identifiers) (*store.Transaction, Identifiers, error) {
	log := r.logger()

	var tx *store.Transaction

	if ids.TransactionID != "" {
		found, err := r.Transactions.Get(ctx, ids.TransactionID)
		if err != nil {
			log.Warn("transaction id lookup failed, falling through",
				"transactionId", ids.TransactionID, "error", err)
		} else {
			tx = found
		}
	}

	if tx == nil && ids.SveaOrderID != 0 {
		found, err := r.Transactions.FindBySveaOrderID(ctx, ids.SveaOrderID)
		if err != nil {
			return nil, ids, err
		}
		tx = found
	}

	if tx == nil && ids.ClientOrderNumber != "" {
		found, err := r.Transactions.FindByClientOrderNumber(ctx, ids.ClientOrderNumber)
		if err != nil {
			return nil, ids, err
		}
		tx = found
	}

	if tx == nil {
		return nil, ids, ErrTransactionNotFound
	}

	if ids.SveaOrderID == 0 && tx.Svea.OrderID != 0 {
		ids.SveaOrderID = tx.Svea.OrderID
	}
	ids.TransactionID = tx.TransactionID

	return tx, ids, nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
