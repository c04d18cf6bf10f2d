package reconcile

import (
	"context"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
	"github.com/SanderJevnaker/payload-svea-adapter/internal/svea"
)

// TransactionStore is the slice of the persistence layer the reconciliation
// core needs for transactions.
type TransactionStore interface {
	Get(ctx context.Context, transactionID string) (*store.Transaction, error)
	FindBySveaOrderID(ctx context.Context, sveaOrderID int64) (*store.Transaction, error)
	FindByClientOrderNumber(ctx context.Context, clientOrderNumber string) (*store.Transaction, error)
	MarkSucceeded(ctx context.Context, transactionID, orderID string, svea store.SveaDetails) error
	MarkFailed(ctx context.Context, transactionID string) error
}

// OrderStore is the slice of the persistence layer for orders.
type OrderStore interface {
	Get(ctx context.Context, orderID string) (*store.Order, error)
	Create(ctx context.Context, order store.Order) error
	Update(ctx context.Context, order store.Order) error
	FindByTransactionID(ctx context.Context, transactionID string) (*store.Order, error)
}

// CartStore is the slice of the persistence layer for carts.
type CartStore interface {
	Get(ctx context.Context, cartID string) (*store.Cart, error)
	MarkPurchased(ctx context.Context, cartID string) error
}

// Gateway fetches the live provider order for status verification.
type Gateway interface {
	FetchOrder(ctx context.Context, orderID int64) (*svea.CheckoutOrder, error)
}

// Publisher emits post-finalization events. Matches awsx.Publisher.
type Publisher interface {
	Publish(ctx context.Context, messageBody string, attributes map[string]string) error
}

// AddressMapper translates a provider address into the host shape.
type AddressMapper func(*svea.Address) *store.Address
