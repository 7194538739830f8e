package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"souq/internal/domain/ads"
	"souq/internal/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActiveAdsInDisplayOrder(t *testing.T) {
	env := newTestEnv(t)

	slide := func(id int64, order int) ads.Advertisement {
		return ads.Advertisement{
			ID:           id,
			Title:        i18n.Text{En: "Slide", Ar: "شريحة"},
			Type:         ads.TypeSlide,
			IsActive:     true,
			DisplayOrder: order,
			CreatedAt:    testNow.Add(-time.Hour),
		}
	}
	inactive := slide(3, 0)
	inactive.IsActive = false
	side := slide(4, 0)
	side.Type = ads.TypeSideOffer
	env.ads.list = []ads.Advertisement{slide(1, 5), slide(2, 1), inactive, side}

	rr := env.do(t, http.MethodGet, "/api/advertisements?type=slide", nil, withLang("ar"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	list := dataList(t, rr)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, float64(2), first["id"])
	assert.Equal(t, "شريحة", first["title"])
	assert.Equal(t, float64(1), list[1].(map[string]any)["id"])
}

func TestListActiveAdsRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/advertisements?type=banner", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTrackImpression(t *testing.T) {
	env := newTestEnv(t)
	env.ads.list = []ads.Advertisement{{ID: 7, IsActive: true}}

	rr := env.do(t, http.MethodPost, "/api/advertisements/7/impression", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Recorded", data(t, rr)["message"])
	assert.Equal(t, 1, env.ads.impressions[7])

	rr = env.do(t, http.MethodPost, "/api/advertisements/8/impression", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/advertisements/x/impression", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReorderAdsValidatesBody(t *testing.T) {
	env := newTestEnv(t)
	admin := withToken(env.token(t, adminID))

	rr := env.do(t, http.MethodPost, "/api/advertisements/reorder", strings.NewReader(`{"items":[]}`), admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/advertisements/reorder", strings.NewReader(`{"items":[{"id":0,"display_order":1}]}`), admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckAd(t *testing.T) {
	start := testNow
	before := testNow.Add(-time.Minute)
	original := ptr(mustDecimal(t, "100"))

	assert.NoError(t, checkAd(&start, &start, nil, nil))
	assert.ErrorIs(t, checkAd(&start, &before, nil, nil), errAdWindow)
	assert.NoError(t, checkAd(nil, nil, original, ptr(mustDecimal(t, "100"))))
	assert.ErrorIs(t, checkAd(nil, nil, original, ptr(mustDecimal(t, "100.01"))), errAdPrice)
}
