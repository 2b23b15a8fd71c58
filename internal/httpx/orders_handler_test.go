package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmfoods/canteen-orders/internal/checkout"
	"github.com/crmfoods/canteen-orders/internal/menu"
	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/stock"
)

// mockCheckout implements CheckoutService for testing
type mockCheckout struct {
	order *orders.Order
	err   error
	got   *checkout.Request
}

func (m *mockCheckout) Checkout(_ context.Context, req checkout.Request) (*orders.Order, error) {
	m.got = &req
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

// mockStore implements orders.Store for testing
type mockStore struct {
	byID    map[string]*orders.Order
	byRoll  map[string][]orders.Order
	failing error
}

func (m *mockStore) Create(_ context.Context, o *orders.Order) (*orders.Order, error) {
	return o, m.failing
}

func (m *mockStore) GetByID(_ context.Context, id string) (*orders.Order, error) {
	if m.failing != nil {
		return nil, m.failing
	}
	if o, ok := m.byID[id]; ok {
		return o, nil
	}
	return nil, orders.ErrNotFound
}

func (m *mockStore) QueryByCustomer(_ context.Context, roll string) ([]orders.Order, error) {
	return m.byRoll[roll], m.failing
}

func (m *mockStore) QueryOpen(context.Context) ([]orders.Order, error) {
	return nil, m.failing
}

type mockCatalog struct {
	items []menu.Item
	err   error
}

func (m *mockCatalog) List(context.Context) ([]menu.Item, error) {
	return m.items, m.err
}

func newHandler(svc CheckoutService, store orders.Store) http.Handler {
	h := &OrdersHandler{
		Checkout:   svc,
		Store:      store,
		Catalog:    &mockCatalog{},
		UPIAddress: "canteen@hdfcbank",
	}
	r := NewRouter()
	h.Register(r)
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutEndpoint_Success(t *testing.T) {
	placed := &orders.Order{OrderID: "ABC123", Status: orders.StatusPending, TotalAmount: 36}
	svc := &mockCheckout{order: placed}
	r := newHandler(svc, &mockStore{})

	rec := doJSON(t, r, http.MethodPost, "/checkout", checkout.Request{
		RollNumber:    "21BCE1234",
		PaymentMethod: orders.PayCashOnDelivery,
		Cart:          []checkout.CartLine{{ItemID: "1", Name: "Samosa", UnitPrice: 18, Quantity: 2}},
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ABC123", got.OrderID)

	// The handler must have stamped an idempotency key on the request.
	require.NotNil(t, svc.got)
	assert.Len(t, svc.got.OrderID, 6)
}

func TestCheckoutEndpoint_InvalidCart(t *testing.T) {
	svc := &mockCheckout{err: checkout.ErrInvalidCart}
	r := newHandler(svc, &mockStore{})

	rec := doJSON(t, r, http.MethodPost, "/checkout", checkout.Request{RollNumber: "x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutEndpoint_OutOfStockListsShortages(t *testing.T) {
	svc := &mockCheckout{err: &stock.OutOfStockError{
		Shortages: []stock.Shortage{{ItemID: "itemA", Requested: 2, Available: 0}},
	}}
	r := newHandler(svc, &mockStore{})

	rec := doJSON(t, r, http.MethodPost, "/checkout", checkout.Request{
		RollNumber:    "21BCE1234",
		PaymentMethod: orders.PayCashOnDelivery,
		Cart:          []checkout.CartLine{{ItemID: "itemA", Quantity: 2}},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp checkoutErrorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Shortages, 1)
	assert.Equal(t, stock.Shortage{ItemID: "itemA", Requested: 2, Available: 0}, resp.Shortages[0])
}

func TestCheckoutEndpoint_StoreFailureReturnsRetryKey(t *testing.T) {
	svc := &mockCheckout{err: orders.ErrStoreUnavailable}
	r := newHandler(svc, &mockStore{})

	rec := doJSON(t, r, http.MethodPost, "/checkout", checkout.Request{
		OrderID:       "RETRY1",
		RollNumber:    "21BCE1234",
		PaymentMethod: orders.PayCashOnDelivery,
		Cart:          []checkout.CartLine{{ItemID: "1", Quantity: 1}},
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp checkoutErrorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "RETRY1", resp.OrderID)
}

func TestGetOrder_NotFound(t *testing.T) {
	r := newHandler(&mockCheckout{}, &mockStore{})

	rec := doJSON(t, r, http.MethodGet, "/orders/NOPE99", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders_RequiresRollNumber(t *testing.T) {
	r := newHandler(&mockCheckout{}, &mockStore{})

	rec := doJSON(t, r, http.MethodGet, "/orders", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders_ReturnsQueueOrder(t *testing.T) {
	store := &mockStore{byRoll: map[string][]orders.Order{
		"21BCE1234": {
			{OrderID: "done", Status: orders.StatusCompleted, QueuePosition: 2000},
			{OrderID: "wait", Status: orders.StatusPending, QueuePosition: 1000},
		},
	}}
	r := newHandler(&mockCheckout{}, store)

	rec := doJSON(t, r, http.MethodGet, "/orders?roll_number=21BCE1234", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []orders.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "wait", got[0].OrderID)
}

func TestUpiQR_ReturnsPNG(t *testing.T) {
	store := &mockStore{byID: map[string]*orders.Order{
		"ABC123": {OrderID: "ABC123", TotalAmount: 36},
	}}
	r := newHandler(&mockCheckout{}, store)

	rec := doJSON(t, r, http.MethodGet, "/orders/ABC123/upi-qr", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
}
