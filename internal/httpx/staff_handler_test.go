package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crmfoods/canteen-orders/internal/orders"
)

// mockStatusWriter implements orders.StatusWriter for testing
type mockStatusWriter struct {
	current *orders.Order
	updated []orders.Status
}

func (m *mockStatusWriter) GetByID(context.Context, string) (*orders.Order, error) {
	if m.current == nil {
		return nil, orders.ErrNotFound
	}
	return m.current, nil
}

func (m *mockStatusWriter) UpdateStatus(_ context.Context, _ string, from, to orders.Status) error {
	if !orders.CanTransition(from, to) {
		return orders.ErrIllegalTransition
	}
	m.updated = append(m.updated, to)
	return nil
}

func newStaffRouter(w orders.StatusWriter, store orders.Store) http.Handler {
	h := &StaffHandler{Store: store, Status: w, Service: "test"}
	r := NewRouter()
	h.Register(r)
	return r
}

func TestUpdateStatus_AdvancesPendingToPaid(t *testing.T) {
	w := &mockStatusWriter{current: &orders.Order{OrderID: "ABC123", Status: orders.StatusPending}}
	r := newStaffRouter(w, &mockStore{})

	rec := doJSON(t, r, http.MethodPatch, "/orders/ABC123/status",
		map[string]string{"status": "paid"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []orders.Status{orders.StatusPaid}, w.updated)
}

func TestUpdateStatus_RejectsIllegalTransition(t *testing.T) {
	w := &mockStatusWriter{current: &orders.Order{OrderID: "ABC123", Status: orders.StatusCompleted}}
	r := newStaffRouter(w, &mockStore{})

	rec := doJSON(t, r, http.MethodPatch, "/orders/ABC123/status",
		map[string]string{"status": "pending"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, w.updated)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	r := newStaffRouter(&mockStatusWriter{}, &mockStore{})

	rec := doJSON(t, r, http.MethodPatch, "/orders/NOPE99/status",
		map[string]string{"status": "paid"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetQueue_SortsPendingFirst(t *testing.T) {
	store := &mockStore{}
	r := newStaffRouter(&mockStatusWriter{}, store)

	rec := doJSON(t, r, http.MethodGet, "/queue", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
