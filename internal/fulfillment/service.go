package fulfillment

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/crmfoods/canteen-orders/internal/kafka"
	"github.com/crmfoods/canteen-orders/internal/orders"
)

// Cache is what the worker needs from Redis: event dedup and the shared
// order-status cache the API reads on its GET path.
type Cache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkSeen(ctx context.Context, eventID string) error
	SetStatus(ctx context.Context, orderID string, status orders.Status) error
}

// Service keeps the status cache warm from the event stream so every API
// instance sees a status change within one poll interval at worst.
type Service struct {
	Cache       Cache
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler for order.placed.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil // ignore
	}

	if seen, _ := s.Cache.Seen(ctx, env.EventID); seen {
		return nil
	}
	_ = s.Cache.MarkSeen(ctx, env.EventID)

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}
	return s.Cache.SetStatus(ctx, p.OrderID, p.Status)
}

// HandleStatusChanged is wired as the consumer handler for
// order.status.changed.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil
	}

	if seen, _ := s.Cache.Seen(ctx, env.EventID); seen {
		return nil
	}
	_ = s.Cache.MarkSeen(ctx, env.EventID)

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}
	return s.Cache.SetStatus(ctx, p.OrderID, p.To)
}
