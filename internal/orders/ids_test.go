package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base36Token = regexp.MustCompile(`^[0-9A-Z]+$`)

func TestNewOrderID_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewOrderID()
		assert.Len(t, id, 6)
		assert.Regexp(t, base36Token, id)
	}
}

func TestNewBillID_Format(t *testing.T) {
	id := NewBillID()
	assert.Len(t, id, 6)
	assert.Regexp(t, base36Token, id)
}

func TestNewTransactionID_Format(t *testing.T) {
	id := NewTransactionID()

	assert.Regexp(t, base36Token, id)
	// base-36 millis timestamp is 8 chars in this era, plus 6 random.
	assert.Len(t, id, 14)
}

func TestNewQueuePosition_IsCurrentMillis(t *testing.T) {
	before := time.Now().UnixMilli()
	pos := NewQueuePosition()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, pos, before)
	assert.LessOrEqual(t, pos, after)
}
