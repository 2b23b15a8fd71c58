package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventCompensationFailed = "CompensationFailed"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "canteen-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       string        `json:"order_id"`
	BillID        string        `json:"bill_id"`
	RollNumber    string        `json:"roll_number"`
	Lines         []OrderLine   `json:"lines"`
	TotalAmount   int           `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        Status        `json:"status"`
	QueuePosition int64         `json:"queue_position"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

// CompensationFailedPayload marks a possible inventory drift: a reservation
// was taken, the order insert failed, and the release did not go through.
// Someone has to reconcile the quantities by hand.
type CompensationFailedPayload struct {
	OrderID string `json:"order_id"`
	ItemID  string `json:"item_id"`
	Qty     int    `json:"qty"`
	Cause   string `json:"cause"`
}
