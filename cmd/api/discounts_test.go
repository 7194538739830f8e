package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"souq/internal/domain/carts"
	"souq/internal/domain/discounts"
	"souq/internal/i18n"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCart(env *testEnv, userID int64) {
	env.carts.views[userID] = carts.NewView([]carts.Line{
		{ProductID: 1, Name: i18n.Text{En: "Dates", Ar: "تمر"}, Quantity: 2, UnitPrice: decimal.RequireFromString("40")},
		{ProductID: 2, Name: i18n.Text{En: "Coffee", Ar: "قهوة"}, Quantity: 1, UnitPrice: decimal.RequireFromString("20")},
	})
}

func TestValidateDiscountQuotesCart(t *testing.T) {
	env := newTestEnv(t)
	seedCart(env, customerID)
	env.discounts.byCode["RAMADAN10"] = &discounts.Discount{
		ID:       5,
		Code:     "RAMADAN10",
		Label:    i18n.Text{En: "Ramadan offer", Ar: ""},
		Kind:     discounts.KindPercent,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	}

	body := strings.NewReader(`{"code":" ramadan10 "}`)
	rr := env.do(t, http.MethodPost, "/api/discounts/validate", body, withToken(env.token(t, customerID)), withLang("ar"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	quote := data(t, rr)
	assert.Equal(t, "100", quote["subtotal"])
	assert.Equal(t, "10", quote["discount_amount"])
	assert.Equal(t, "90", quote["total"])
	assert.Equal(t, "Ramadan offer", quote["discount"].(map[string]any)["label"], "empty Arabic label falls back to English")
}

func TestValidateDiscountFailures(t *testing.T) {
	env := newTestEnv(t)
	token := withToken(env.token(t, customerID))

	rr := env.do(t, http.MethodPost, "/api/discounts/validate", strings.NewReader(`{"code":"ANY"}`), token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	msg, _ := errorBody(t, rr)
	assert.Equal(t, "Your cart is empty", msg)

	seedCart(env, customerID)
	env.discounts.byCode["OLD"] = &discounts.Discount{
		Code: "OLD", Kind: discounts.KindFixed, Value: decimal.NewFromInt(5), IsActive: true,
		EndDate: ptr(testNow.Add(-time.Second)),
	}
	env.discounts.byCode["BIG"] = &discounts.Discount{
		Code: "BIG", Kind: discounts.KindFixed, Value: decimal.NewFromInt(50), IsActive: true,
		MinOrder: decimal.NewFromInt(500),
	}

	tests := []struct {
		code string
		want string
	}{
		{"NOPE", "رمز الخصم غير صالح"},
		{"OLD", "رمز الخصم غير صالح"},
	}
	for _, tt := range tests {
		rr := env.do(t, http.MethodPost, "/api/discounts/validate", strings.NewReader(`{"code":"`+tt.code+`"}`), token, withLang("ar"))
		require.Equal(t, http.StatusBadRequest, rr.Code, tt.code)
		msg, _ := errorBody(t, rr)
		assert.Equal(t, tt.want, msg, tt.code)
	}

	rr = env.do(t, http.MethodPost, "/api/discounts/validate", strings.NewReader(`{"code":"BIG"}`), token)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	msg, _ = errorBody(t, rr)
	assert.Equal(t, "The order total does not reach the minimum for this code", msg)
}

func TestCheckDiscountValue(t *testing.T) {
	assert.NoError(t, checkDiscountValue(discounts.KindPercent, decimal.NewFromInt(100)))
	assert.Error(t, checkDiscountValue(discounts.KindPercent, decimal.NewFromInt(101)))
	assert.NoError(t, checkDiscountValue(discounts.KindFixed, decimal.NewFromInt(250)))
	assert.Error(t, checkDiscountValue(discounts.KindFixed, decimal.Zero))
}
