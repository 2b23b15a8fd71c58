package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/crmfoods/canteen-orders/internal/checkout"
	"github.com/crmfoods/canteen-orders/internal/menu"
	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/redisx"
	"github.com/crmfoods/canteen-orders/internal/stock"
	"github.com/crmfoods/canteen-orders/internal/upi"
)

type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*orders.Order, error)
}

type Catalog interface {
	List(ctx context.Context) ([]menu.Item, error)
}

// OrdersHandler is the customer-facing API: menu, checkout, order lookup
// and the polled order history.
type OrdersHandler struct {
	Checkout   CheckoutService
	Store      orders.Store
	Catalog    Catalog
	Redis      *redis.Client // optional status cache; nil in tests
	UPIAddress string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/menu", h.listMenu)
	r.Post("/checkout", h.doCheckout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Get("/orders/{id}/upi-qr", h.upiQR)
}

func (h *OrdersHandler) listMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Catalog.List(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, menu.ByCategory(items))
}

type checkoutErrorResp struct {
	Error     string           `json:"error"`
	OrderID   string           `json:"order_id,omitempty"` // resend on retry
	Shortages []stock.Shortage `json:"shortages,omitempty"`
}

func (h *OrdersHandler) doCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// Assign the idempotency key here so even a failed attempt returns an
	// order id the client can resend.
	if req.OrderID == "" {
		req.OrderID = orders.NewOrderID()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Checkout.Checkout(ctx, req)
	if err != nil {
		h.writeCheckoutError(w, req.OrderID, err)
		return
	}

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderID)
		_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, o.Status), redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) writeCheckoutError(w http.ResponseWriter, orderID string, err error) {
	var oos *stock.OutOfStockError
	switch {
	case errors.Is(err, checkout.ErrInvalidCart),
		errors.Is(err, checkout.ErrMissingCustomerRef),
		errors.Is(err, checkout.ErrBadPaymentMethod):
		writeJSON(w, http.StatusBadRequest, checkoutErrorResp{Error: err.Error()})
	case errors.As(err, &oos):
		writeJSON(w, http.StatusConflict, checkoutErrorResp{
			Error: "out of stock", Shortages: oos.Shortages,
		})
	case errors.Is(err, stock.ErrContention):
		writeJSON(w, http.StatusServiceUnavailable, checkoutErrorResp{
			Error: err.Error(), OrderID: orderID,
		})
	default:
		// Store may or may not have the order; the client retries with the
		// same order id and Create dedupes.
		writeJSON(w, http.StatusServiceUnavailable, checkoutErrorResp{
			Error: err.Error(), OrderID: orderID,
		})
	}
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	roll := r.URL.Query().Get("roll_number")
	if roll == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing roll_number"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Store.QueryByCustomer(ctx, roll)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, orders.SortQueue(res))
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.GetByID(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus is the hot polled path: cache first, store on miss.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Store.GetByID(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	body := fmt.Sprintf(`{"status":%q}`, o.Status)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}

func (h *OrdersHandler) upiQR(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Store.GetByID(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	png, err := upi.QRPNG(upi.PayLink(h.UPIAddress, o.TotalAmount))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
