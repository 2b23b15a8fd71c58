package orders

import "sort"

// SortQueue projects a display order over a set of orders: pending first
// (they are the ones the kitchen still owes money handling), then newest by
// queue position. Pure function; ties keep input order.
func SortQueue(in []Order) []Order {
	out := make([]Order, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		pi := out[i].Status == StatusPending
		pj := out[j].Status == StatusPending
		if pi != pj {
			return pi
		}
		return out[i].QueuePosition > out[j].QueuePosition
	})
	return out
}
