package poller

import (
	"context"
	"log"
	"time"

	"github.com/crmfoods/canteen-orders/internal/orders"
)

// Poller re-reads a customer's orders on a fixed interval and hands each
// fresh snapshot, already in queue order, to OnUpdate. A failed poll keeps
// the previous snapshot on screen and tries again next tick.
type Poller struct {
	Store      orders.Store
	RollNumber string
	Interval   time.Duration
	OnUpdate   func([]orders.Order)
}

// Run polls until ctx is cancelled. It polls once immediately so the view
// is not empty for a full interval after opening.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	p.poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	res, err := p.Store.QueryByCustomer(ctx, p.RollNumber)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("poll orders: %v", err)
		}
		return
	}
	p.OnUpdate(orders.SortQueue(res))
}
