package orders

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const base36Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Digits[rand.Intn(len(base36Digits))]
	}
	return string(b)
}

// NewOrderID returns a 6-char uppercase base-36 token. Short enough to read
// out at the counter; collisions at human checkout rates are not a concern,
// and the store rejects duplicates anyway.
func NewOrderID() string { return randBase36(6) }

func NewBillID() string { return randBase36(6) }

// NewTransactionID is a base-36 millisecond timestamp plus a 6-char random
// suffix, all uppercase.
func NewTransactionID() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return ts + randBase36(6)
}

// NewQueuePosition is the fulfillment ordering key: milliseconds since epoch
// at creation. Distinct from CreatedAt, which the store assigns for audit.
func NewQueuePosition() int64 { return time.Now().UnixMilli() }
