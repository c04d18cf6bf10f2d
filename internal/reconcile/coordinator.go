package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/SanderJevnaker/payload-svea-adapter/internal/store"
)

// ValidateFunc is an integrator-supplied predicate run during the provider's
// pre-finalization validation callback. Returning an error rejects the
// payment; it is the only path that can.
type ValidateFunc func(ctx context.Context, tx *store.Transaction, req ValidationRequest) error

// ClearCartFunc is an integrator-supplied hook invoked after a successful
// confirmation. Failures are logged and swallowed.
type ClearCartFunc func(ctx context.Context, cartID string) error

// Config groups the collaborators of a Coordinator.
type Config struct {
	Transactions TransactionStore
	Orders       OrderStore
	Carts        CartStore
	Gateway      Gateway
	Publisher    Publisher     // optional
	MapAddress   AddressMapper // optional
	Logger       *slog.Logger

	// ConfirmationURL is the base the post-confirmation redirect is built
	// from; empty disables the redirect.
	ConfirmationURL string

	// SessionMaxAge bounds how old a client session record may be before its
	// identifiers are ignored. Defaults to DefaultSessionMaxAge.
	SessionMaxAge time.Duration

	Validate  ValidateFunc  // optional
	ClearCart ClearCartFunc // optional
}

// Coordinator runs the three entry-point workflows over the shared resolver
// and materializer. It holds no mutable state; all coordination state lives
// in the external store.
type Coordinator struct {
	resolver     *Resolver
	materializer *Materializer
	transactions TransactionStore
	carts        CartStore
	gateway      Gateway
	logger       *slog.Logger

	confirmationURL string
	sessionMaxAge   time.Duration
	validate        ValidateFunc
	clearCart       ClearCartFunc

	nowFunc func() time.Time
}

// NewCoordinator wires a Coordinator from its collaborators.
func NewCoordinator(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxAge := cfg.SessionMaxAge
	if maxAge == 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &Coordinator{
		resolver: &Resolver{Transactions: cfg.Transactions, Logger: logger},
		materializer: &Materializer{
			Transactions: cfg.Transactions,
			Orders:       cfg.Orders,
			Carts:        cfg.Carts,
			Publisher:    cfg.Publisher,
			MapAddress:   cfg.MapAddress,
			Logger:       logger,
		},
		transactions:    cfg.Transactions,
		carts:           cfg.Carts,
		gateway:         cfg.Gateway,
		logger:          logger,
		confirmationURL: cfg.ConfirmationURL,
		sessionMaxAge:   maxAge,
		validate:        cfg.Validate,
		clearCart:       cfg.ClearCart,
		nowFunc:         time.Now,
	}
}
