package checkout

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/crmfoods/canteen-orders/internal/kafka"
	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/stock"
)

// CartLine is an immutable snapshot of one line of the customer's cart at
// the moment they hit confirm. LineKey disambiguates the same catalog item
// added under different category tabs.
type CartLine struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineKey   string `json:"line_key,omitempty"`
}

type Request struct {
	// OrderID is the idempotency key. Leave empty and the coordinator
	// generates one; a caller retrying after a store failure must resend
	// the OrderID from the failed response to avoid a duplicate order.
	OrderID       string               `json:"order_id,omitempty"`
	RollNumber    string               `json:"roll_number"`
	PaymentMethod orders.PaymentMethod `json:"payment_method"`
	Cart          []CartLine           `json:"cart"`
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Alerter is the operator channel for the one failure this flow cannot fix
// on its own: a reservation that was taken but could not be released after
// the order insert failed.
type Alerter interface {
	CompensationFailed(ctx context.Context, orderID string, req stock.Request, cause error)
}

type Coordinator struct {
	Ledger   stock.Ledger
	Store    orders.Store
	Producer Publisher
	Alerts   Alerter
	Service  string
}

// Checkout reserves stock, then creates the order, in that order, and never
// the second without the first. On a create failure every reserved quantity
// is released again; a failed release goes to the Alerter.
func (c *Coordinator) Checkout(ctx context.Context, req Request) (*orders.Order, error) {
	if len(req.Cart) == 0 {
		return nil, ErrInvalidCart
	}
	for _, ln := range req.Cart {
		if ln.Quantity <= 0 {
			return nil, ErrInvalidCart
		}
	}
	if req.RollNumber == "" {
		return nil, ErrMissingCustomerRef
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrBadPaymentMethod
	}

	// Retry with the same order id short-circuits before reserving again.
	if req.OrderID != "" {
		if existing, err := c.Store.GetByID(ctx, req.OrderID); err == nil {
			return existing, nil
		}
	}

	reqs := aggregateByItem(req.Cart)
	if err := c.Ledger.ReserveAll(ctx, reqs); err != nil {
		return nil, err
	}

	order := c.buildOrder(req)
	persisted, err := c.Store.Create(ctx, order)
	if err != nil {
		c.compensate(ctx, order.OrderID, reqs, err)
		return nil, err
	}

	c.publishPlaced(persisted)
	return persisted, nil
}

// aggregateByItem sums duplicate lines per catalog item: the ledger is
// keyed by item, not by cart line, so the same dish added under two
// category tabs is one reservation. First-seen order is kept.
func aggregateByItem(cart []CartLine) []stock.Request {
	idx := make(map[string]int, len(cart))
	out := make([]stock.Request, 0, len(cart))
	for _, ln := range cart {
		if i, ok := idx[ln.ItemID]; ok {
			out[i].Qty += ln.Quantity
			continue
		}
		idx[ln.ItemID] = len(out)
		out = append(out, stock.Request{ItemID: ln.ItemID, Qty: ln.Quantity})
	}
	return out
}

func (c *Coordinator) buildOrder(req Request) *orders.Order {
	orderID := req.OrderID
	if orderID == "" {
		orderID = orders.NewOrderID()
	}

	lines := make([]orders.OrderLine, 0, len(req.Cart))
	total := 0
	for _, ln := range req.Cart {
		lines = append(lines, orders.OrderLine{
			ItemID: ln.ItemID, Name: ln.Name,
			UnitPrice: ln.UnitPrice, Quantity: ln.Quantity,
		})
		total += ln.UnitPrice * ln.Quantity
	}

	var txnID *string
	if req.PaymentMethod != orders.PayCashOnDelivery {
		id := orders.NewTransactionID()
		txnID = &id
	}

	return &orders.Order{
		OrderID:       orderID,
		BillID:        orders.NewBillID(),
		RollNumber:    req.RollNumber,
		Lines:         lines,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		Status:        orders.InitialStatus(req.PaymentMethod),
		TransactionID: txnID,
		QueuePosition: orders.NewQueuePosition(),
	}
}

func (c *Coordinator) compensate(ctx context.Context, orderID string, reqs []stock.Request, cause error) {
	log.Printf("order create failed, releasing reservations: order=%s: %v", orderID, cause)
	for _, r := range reqs {
		if err := c.Ledger.Release(ctx, r.ItemID, r.Qty); err != nil {
			log.Printf("compensation failed: order=%s item=%s qty=%d: %v",
				orderID, r.ItemID, r.Qty, err)
			if c.Alerts != nil {
				c.Alerts.CompensationFailed(ctx, orderID, r, err)
			}
		}
	}
}

func (c *Coordinator) publishPlaced(o *orders.Order) {
	if c.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      c.Service,
		CorrelationID: o.OrderID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:       o.OrderID,
			BillID:        o.BillID,
			RollNumber:    o.RollNumber,
			Lines:         o.Lines,
			TotalAmount:   o.TotalAmount,
			PaymentMethod: o.PaymentMethod,
			Status:        o.Status,
			QueuePosition: o.QueuePosition,
		}),
	}
	c.Producer.Publish(orders.PartitionKey(o.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
