package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortQueue_PendingBeforeEverythingElse(t *testing.T) {
	in := []Order{
		{OrderID: "A", Status: StatusCompleted, QueuePosition: 2000},
		{OrderID: "B", Status: StatusPending, QueuePosition: 1000},
	}

	out := SortQueue(in)

	// Pending first despite the lower queue position.
	assert.Equal(t, "B", out[0].OrderID)
	assert.Equal(t, "A", out[1].OrderID)
}

func TestSortQueue_NewestFirstWithinPartition(t *testing.T) {
	in := []Order{
		{OrderID: "old", Status: StatusPaid, QueuePosition: 100},
		{OrderID: "new", Status: StatusPaid, QueuePosition: 300},
		{OrderID: "mid", Status: StatusPaid, QueuePosition: 200},
	}

	out := SortQueue(in)

	assert.Equal(t, []string{"new", "mid", "old"},
		[]string{out[0].OrderID, out[1].OrderID, out[2].OrderID})
}

func TestSortQueue_Deterministic(t *testing.T) {
	in := []Order{
		{OrderID: "A", Status: StatusPaid, QueuePosition: 5},
		{OrderID: "B", Status: StatusPending, QueuePosition: 1},
		{OrderID: "C", Status: StatusCompleted, QueuePosition: 9},
		{OrderID: "D", Status: StatusPending, QueuePosition: 7},
	}

	first := SortQueue(in)
	second := SortQueue(in)

	assert.Equal(t, first, second)
	for i, o := range first {
		if o.Status != StatusPending {
			// Every pending order precedes every non-pending one.
			for _, rest := range first[i:] {
				assert.NotEqual(t, StatusPending, rest.Status)
			}
			break
		}
	}
}

func TestSortQueue_DoesNotMutateInput(t *testing.T) {
	in := []Order{
		{OrderID: "A", Status: StatusPaid, QueuePosition: 1},
		{OrderID: "B", Status: StatusPending, QueuePosition: 2},
	}

	_ = SortQueue(in)

	assert.Equal(t, "A", in[0].OrderID)
}

func TestSortQueue_TiesKeepInputOrder(t *testing.T) {
	in := []Order{
		{OrderID: "first", Status: StatusPaid, QueuePosition: 42},
		{OrderID: "second", Status: StatusPaid, QueuePosition: 42},
	}

	out := SortQueue(in)

	assert.Equal(t, "first", out[0].OrderID)
	assert.Equal(t, "second", out[1].OrderID)
}
