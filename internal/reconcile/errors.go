package reconcile

import "errors"

var (
	// ErrMissingIdentifiers means no usable identifier arrived with the
	// confirmation request, including via the client session record.
	ErrMissingIdentifiers = errors.New("no order id, transaction id or client order number supplied")

	// ErrTransactionNotFound means no transaction matched any supplied identifier.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrOrderNotFinalized means the provider order is not yet payable; the
	// caller may retry after the customer completes payment.
	ErrOrderNotFinalized = errors.New("svea order is not finalized")
)
