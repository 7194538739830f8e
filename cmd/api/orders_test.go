package main

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"souq/internal/domain/discounts"
	"souq/internal/domain/orders"
	"souq/internal/i18n"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrders struct {
	orders.Store
	details  map[int64]*orders.Detail
	checkout func(userID int64, in orders.CheckoutInput) (*orders.Detail, error)
	lastIn   orders.CheckoutInput
}

func (f *fakeOrders) Checkout(_ context.Context, userID int64, in orders.CheckoutInput, _ time.Time) (*orders.Detail, error) {
	f.lastIn = in
	return f.checkout(userID, in)
}

func (f *fakeOrders) GetDetail(_ context.Context, id int64) (*orders.Detail, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, orders.ErrNotFound
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, status orders.Status) (*orders.Order, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	if !d.Status.CanBecome(status) {
		return nil, orders.ErrInvalidTransition
	}
	d.Status = status
	return &d.Order, nil
}

func sampleDetail(id, userID int64) *orders.Detail {
	return &orders.Detail{
		Order: orders.Order{
			ID:             id,
			OrderNumber:    "SOUQ-ABCD-1234",
			UserID:         userID,
			Status:         orders.StatusPending,
			Subtotal:       decimal.NewFromInt(100),
			DiscountAmount: decimal.NewFromInt(10),
			Total:          decimal.NewFromInt(90),
			Currency:       "SAR",
		},
		Items: []orders.Item{
			{ID: 1, Name: i18n.Text{En: "Dates", Ar: "تمر"}, UnitPrice: decimal.NewFromInt(50), Quantity: 2, LineTotal: decimal.NewFromInt(100)},
		},
		Discount: &orders.DiscountRef{ID: 5, Code: "RAMADAN10", Label: i18n.Text{En: "Ramadan offer", Ar: "عرض رمضان"}},
	}
}

func withOrders(env *testEnv) *fakeOrders {
	f := &fakeOrders{details: map[int64]*orders.Detail{}}
	env.app.store.Orders = f
	return f
}

const checkoutBody = `{"shipping":{"name":"Sara","phone":"0500000000","address":"King Fahd Rd","city":"Riyadh"},"discount_code":"ramadan10"}`

func TestCheckoutReturnsLocalizedOrder(t *testing.T) {
	env := newTestEnv(t)
	fo := withOrders(env)
	fo.checkout = func(userID int64, _ orders.CheckoutInput) (*orders.Detail, error) {
		return sampleDetail(9, userID), nil
	}

	rr := env.do(t, http.MethodPost, "/api/orders", strings.NewReader(checkoutBody), withToken(env.token(t, customerID)), withLang("ar"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	assert.Equal(t, "RAMADAN10", fo.lastIn.DiscountCode)
	assert.Equal(t, "SAR", fo.lastIn.Currency)

	body := data(t, rr)
	assert.Equal(t, "SOUQ-ABCD-1234", body["order_number"])
	assert.Equal(t, "عرض رمضان", body["discount"].(map[string]any)["label"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "تمر", item["name"])
}

func TestCheckoutErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"empty cart", orders.ErrCartEmpty, "Your cart is empty"},
		{"exhausted code", discounts.ErrExhausted, "This discount code is not valid"},
		{"unknown code", discounts.ErrNotFound, "This discount code is not valid"},
		{"small order", discounts.ErrMinOrder, "The order total does not reach the minimum for this code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			fo := withOrders(env)
			fo.checkout = func(int64, orders.CheckoutInput) (*orders.Detail, error) { return nil, tt.err }

			rr := env.do(t, http.MethodPost, "/api/orders", strings.NewReader(checkoutBody), withToken(env.token(t, customerID)))
			require.Equal(t, http.StatusBadRequest, rr.Code)
			msg, _ := errorBody(t, rr)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestCheckoutValidatesShipping(t *testing.T) {
	env := newTestEnv(t)
	withOrders(env)

	rr := env.do(t, http.MethodPost, "/api/orders", strings.NewReader(`{"shipping":{"name":"Sara"}}`), withToken(env.token(t, customerID)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetOrderIsPrivate(t *testing.T) {
	env := newTestEnv(t)
	fo := withOrders(env)
	fo.details[9] = sampleDetail(9, adminID)

	rr := env.do(t, http.MethodGet, "/api/orders/9", nil, withToken(env.token(t, customerID)))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/orders/9", nil, withToken(env.token(t, adminID)))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ramadan offer", data(t, rr)["discount"].(map[string]any)["label"])
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	fo := withOrders(env)
	fo.details[9] = sampleDetail(9, customerID)
	admin := withToken(env.token(t, adminID))

	rr := env.do(t, http.MethodPatch, "/api/orders/9/status", strings.NewReader(`{"status":"shipped"}`), admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "pending cannot jump to shipped")

	rr = env.do(t, http.MethodPatch, "/api/orders/9/status", strings.NewReader(`{"status":"teleported"}`), admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPatch, "/api/orders/9/status", strings.NewReader(`{"status":"processing"}`), admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "processing", data(t, rr)["status"])

	rr = env.do(t, http.MethodPatch, "/api/orders/9/status", strings.NewReader(`{"status":"cancelled"}`), withToken(env.token(t, customerID)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
