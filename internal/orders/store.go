package orders

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrStoreUnavailable wraps transport/backend failures. A caller seeing
	// this must not assume the write did not land; retry with the same
	// order id and let Create dedupe.
	ErrStoreUnavailable = errors.New("order store unavailable")
)

// Store is the persistence contract the checkout and polling paths use.
// Status advancement lives on StatusWriter; the customer path only reads it.
type Store interface {
	// Create persists the order. Idempotent on OrderID: if a previous
	// attempt already landed, the existing record is returned unchanged.
	Create(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	// QueryByCustomer returns all orders for an exact, case-sensitive
	// roll number match, in no particular order.
	QueryByCustomer(ctx context.Context, rollNumber string) ([]Order, error)
	// QueryOpen returns every order not yet completed, for the staff queue.
	QueryOpen(ctx context.Context) ([]Order, error)
}

// StatusWriter is the staff-side surface that advances an order through the
// pending -> paid -> completed machine.
type StatusWriter interface {
	GetByID(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to Status) error
}
