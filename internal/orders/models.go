package orders

import "time"

type PaymentMethod string

// Wire values match what the customer app sends.
const (
	PayCashOnDelivery PaymentMethod = "Cash on Delivery"
	PayQRCode         PaymentMethod = "QR Code"
	PayUpiApp         PaymentMethod = "UPI App"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PayCashOnDelivery, PayQRCode, PayUpiApp:
		return true
	}
	return false
}

// InitialStatus: cash orders wait for payment at the counter, everything
// else is treated as paid up front.
func InitialStatus(p PaymentMethod) Status {
	if p == PayCashOnDelivery {
		return StatusPending
	}
	return StatusPaid
}

// OrderLine is a price/name snapshot frozen at checkout. Catalog edits
// after the order is placed never show through here.
type OrderLine struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	OrderID       string        `json:"order_id"`
	BillID        string        `json:"bill_id"`
	RollNumber    string        `json:"roll_number"`
	Lines         []OrderLine   `json:"lines"`
	TotalAmount   int           `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        Status        `json:"status"`
	// TransactionID is nil for cash on delivery.
	TransactionID *string   `json:"transaction_id"`
	QueuePosition int64     `json:"queue_position"`
	CreatedAt     time.Time `json:"created_at"`
}
