package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request asks for qty units of one catalog item.
type Request struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

// Shortage reports how far an item fell short of a request.
type Shortage struct {
	ItemID    string `json:"item_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

var (
	// ErrContention: the reservation kept colliding with concurrent
	// transactions and ran out of retries. Distinct from a real shortage.
	ErrContention = errors.New("stock contention, retries exhausted")

	ErrUnavailable = errors.New("stock store unavailable")
)

// OutOfStockError rejects a whole batch. No quantity was changed for any
// item in the batch, including the ones that had enough.
type OutOfStockError struct {
	Shortages []Shortage
}

func (e *OutOfStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s need %d have %d", s.ItemID, s.Requested, s.Available))
	}
	return "out of stock: " + strings.Join(parts, ", ")
}

// Ledger serializes concurrent demand against finite per-item supply.
type Ledger interface {
	// ReserveAll decrements every requested quantity atomically, or none of
	// them. Returns *OutOfStockError on shortage, ErrContention when
	// concurrent reservations kept invalidating the read.
	ReserveAll(ctx context.Context, reqs []Request) error
	// Release is the compensating increment. The ledger does not dedupe
	// release calls; idempotency is on the caller.
	Release(ctx context.Context, itemID string, qty int) error
}
