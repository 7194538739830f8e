package main

import (
	"net/http"
	"testing"
	"time"

	"souq/internal/domain/ads"
	"souq/internal/domain/catalog"
	"souq/internal/i18n"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts(env *testEnv) {
	env.catalog.products = []catalog.Product{
		{ID: 1, Name: i18n.Text{En: "Dates", Ar: "تمر"}, Price: decimal.RequireFromString("20")},
		{ID: 2, Name: i18n.Text{En: "Coffee", Ar: ""}, Price: decimal.RequireFromString("35")},
		{ID: 3, Name: i18n.Text{En: "", Ar: "هيل"}, Price: decimal.RequireFromString("12.5")},
	}
}

func activeAd(id, productID int64, order int, created time.Time) ads.Advertisement {
	return ads.Advertisement{
		ID:           id,
		Title:        i18n.Text{En: "Offer", Ar: "عرض"},
		Type:         ads.TypeWeeklyOffer,
		IsActive:     true,
		DisplayOrder: order,
		ProductID:    ptr(productID),
		CreatedAt:    created,
	}
}

func productByID(t *testing.T, items []any, id float64) map[string]any {
	t.Helper()
	for _, it := range items {
		m := it.(map[string]any)
		if m["id"] == id {
			return m
		}
	}
	t.Fatalf("product %v not in response", id)
	return nil
}

func TestListProductsAttachesRunningAds(t *testing.T) {
	env := newTestEnv(t)
	seedProducts(env)

	older := testNow.Add(-48 * time.Hour)
	future := activeAd(30, 2, 0, older)
	future.StartDate = ptr(testNow.Add(time.Hour))
	endsNow := activeAd(40, 3, 0, older)
	endsNow.EndDate = ptr(testNow)

	env.ads.list = []ads.Advertisement{
		activeAd(10, 1, 2, older),
		activeAd(11, 1, 1, older),
		future,
		endsNow,
	}

	rr := env.do(t, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	items := data(t, rr)["items"].([]any)
	require.Len(t, items, 3)

	p1 := productByID(t, items, 1)
	require.Contains(t, p1, "advertisement")
	assert.Equal(t, float64(11), p1["advertisement"].(map[string]any)["id"])

	p2 := productByID(t, items, 2)
	assert.NotContains(t, p2, "advertisement", "ad starting in the future must not be attached")

	p3 := productByID(t, items, 3)
	require.Contains(t, p3, "advertisement", "ad ending exactly now is still running")
	assert.Equal(t, float64(40), p3["advertisement"].(map[string]any)["id"])
}

func TestListProductsTieBreakIgnoresInputOrder(t *testing.T) {
	newer := activeAd(20, 1, 0, testNow.Add(-time.Hour))
	older := activeAd(21, 1, 0, testNow.Add(-72*time.Hour))

	for _, list := range [][]ads.Advertisement{{newer, older}, {older, newer}} {
		env := newTestEnv(t)
		seedProducts(env)
		env.ads.list = list

		rr := env.do(t, http.MethodGet, "/api/products", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		p1 := productByID(t, data(t, rr)["items"].([]any), 1)
		assert.Equal(t, float64(20), p1["advertisement"].(map[string]any)["id"])
	}
}

func TestListProductsResolvesRequestLanguage(t *testing.T) {
	env := newTestEnv(t)
	seedProducts(env)

	rr := env.do(t, http.MethodGet, "/api/products", nil, withLang("ar-SA,ar;q=0.9,en;q=0.5"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ar", rr.Header().Get("Content-Language"))

	items := data(t, rr)["items"].([]any)
	assert.Equal(t, "تمر", productByID(t, items, 1)["name"])
	assert.Equal(t, "Coffee", productByID(t, items, 2)["name"], "missing Arabic falls back to English")

	rr = env.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, "en", rr.Header().Get("Content-Language"))
	assert.Equal(t, "هيل", productByID(t, data(t, rr)["items"].([]any), 3)["name"], "missing English falls back to Arabic")
}

func TestListProductsRejectsBadFilter(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/products?category=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProductAttachesPreferredAd(t *testing.T) {
	env := newTestEnv(t)
	seedProducts(env)

	expired := activeAd(50, 1, 0, testNow)
	expired.EndDate = ptr(testNow.Add(-time.Second))
	env.ads.list = []ads.Advertisement{expired, activeAd(51, 1, 3, testNow)}

	rr := env.do(t, http.MethodGet, "/api/products/1", nil, withLang("ar"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := data(t, rr)
	assert.Equal(t, "تمر", body["name"])
	ad := body["advertisement"].(map[string]any)
	assert.Equal(t, float64(51), ad["id"])
	assert.Equal(t, "عرض", ad["title"])
}

func TestGetProductNotFoundIsLocalized(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/products/99", nil, withLang("ar"))
	require.Equal(t, http.StatusNotFound, rr.Code)

	msg, status := errorBody(t, rr)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "العنصر المطلوب غير موجود", msg)
}

func TestAdminListProductsReturnsRawDocuments(t *testing.T) {
	env := newTestEnv(t)
	seedProducts(env)
	env.ads.list = []ads.Advertisement{activeAd(10, 1, 0, testNow)}

	rr := env.do(t, http.MethodGet, "/api/products/admin-list", nil, withToken(env.token(t, adminID)), withLang("ar"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	for _, it := range data(t, rr)["items"].([]any) {
		p := it.(map[string]any)
		name, ok := p["name"].(map[string]any)
		require.True(t, ok, "name should be the stored bilingual object")
		assert.Contains(t, name, "en")
		assert.Contains(t, name, "ar")
		assert.NotContains(t, p, "advertisement")
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/products/admin-list", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/products/admin-list", nil, withToken(env.token(t, customerID)), withLang("ar"))
	require.Equal(t, http.StatusForbidden, rr.Code)
	msg, _ := errorBody(t, rr)
	assert.Equal(t, "ليست لديك صلاحية لتنفيذ هذا الإجراء", msg)

	rr = env.do(t, http.MethodGet, "/api/products/admin-list", nil, withToken("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
