package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/crmfoods/canteen-orders/internal/kafka"
	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/stock"
)

// OperatorAlerter publishes compensation failures to a dedicated topic so an
// operator dashboard picks them up. Inventory has drifted at this point;
// dropping the signal would hide it forever.
type OperatorAlerter struct {
	Producer Publisher
	Service  string
}

func (a *OperatorAlerter) CompensationFailed(_ context.Context, orderID string, req stock.Request, cause error) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventCompensationFailed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      a.Service,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.CompensationFailedPayload{
			OrderID: orderID,
			ItemID:  req.ItemID,
			Qty:     req.Qty,
			Cause:   cause.Error(),
		}),
	}
	a.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventCompensationFailed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
