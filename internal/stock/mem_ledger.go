package stock

import (
	"context"
	"sync"
)

// MemLedger keeps quantities in memory behind a mutex. Used by tests and
// local development; the semantics match PgLedger minus durability.
type MemLedger struct {
	mu     sync.Mutex
	stocks map[string]int
}

func NewMemLedger(initial map[string]int) *MemLedger {
	stocks := make(map[string]int, len(initial))
	for id, qty := range initial {
		stocks[id] = qty
	}
	return &MemLedger{stocks: stocks}
}

func (l *MemLedger) ReserveAll(_ context.Context, reqs []Request) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// First pass: validate everything before touching anything.
	var shortages []Shortage
	for _, req := range reqs {
		available := l.stocks[req.ItemID] // missing item reads as 0
		if available < req.Qty {
			shortages = append(shortages, Shortage{
				ItemID: req.ItemID, Requested: req.Qty, Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return &OutOfStockError{Shortages: shortages}
	}

	for _, req := range reqs {
		l.stocks[req.ItemID] -= req.Qty
	}
	return nil
}

func (l *MemLedger) Release(_ context.Context, itemID string, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stocks[itemID] += qty
	return nil
}

// Available reports current quantity, for tests and the dev menu endpoint.
func (l *MemLedger) Available(itemID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stocks[itemID]
}
