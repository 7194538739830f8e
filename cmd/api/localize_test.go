package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"souq/internal/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedResponse(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(i18n.NewContext(r.Context(), i18n.Arabic))
	rr := httptest.NewRecorder()

	payload := map[string]any{
		"title":    i18n.Text{En: "Sale", Ar: "تخفيضات"},
		"discount": map[string]any{"label": i18n.Text{En: "Eid"}},
	}
	require.NoError(t, env.app.localizedResponse(rr, r, http.StatusOK, payload, "discount.label"))

	got := data(t, rr)
	assert.Equal(t, "تخفيضات", got["title"])
	assert.Equal(t, "Eid", got["discount"].(map[string]any)["label"])
}

func TestLocalizedResponseEncodeErrorWritesNothing(t *testing.T) {
	env := newTestEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	err := env.app.localizedResponse(rr, r, http.StatusOK, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
	assert.Empty(t, rr.Header().Get("Content-Type"))
	assert.Zero(t, rr.Body.Len())

	env.app.internalServerError(rr, r, err)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	_, status := errorBody(t, rr)
	assert.Equal(t, http.StatusInternalServerError, status)
}
