package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/crmfoods/canteen-orders/internal/checkout"
	kafkax "github.com/crmfoods/canteen-orders/internal/kafka"
	"github.com/crmfoods/canteen-orders/internal/orders"
)

// StaffHandler is the fulfillment-side surface: the live queue plus status
// advancement. The customer API never writes status; this is the only place
// that does.
type StaffHandler struct {
	Store    orders.Store
	Status   orders.StatusWriter
	Producer checkout.Publisher
	Service  string
}

func (h *StaffHandler) Register(r *chi.Mux) {
	r.Get("/queue", h.getQueue)
	r.Patch("/orders/{id}/status", h.updateStatus)
}

func (h *StaffHandler) getQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Store.QueryOpen(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, orders.SortQueue(res))
}

type updateStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *StaffHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Status.GetByID(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	if err := h.Status.UpdateStatus(ctx, orderID, o.Status, req.Status); err != nil {
		if errors.Is(err, orders.ErrIllegalTransition) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": err.Error(), "from": string(o.Status), "to": string(req.Status),
			})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	h.publishStatusChanged(orderID, o.Status, req.Status)
	writeJSON(w, http.StatusOK, map[string]string{
		"order_id": orderID, "status": string(req.Status),
	})
}

func (h *StaffHandler) publishStatusChanged(orderID string, from, to orders.Status) {
	if h.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID: orderID, From: from, To: to,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
