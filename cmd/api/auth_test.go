package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginAndRefresh(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Omar","email":"Omar@Souq.test","password":"correct-horse"}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := data(t, rr)
	user := body["user"].(map[string]any)
	assert.Equal(t, "omar@souq.test", user["email"])
	assert.Equal(t, "customer", user["role"])
	assert.NotEmpty(t, body["access_token"])

	rr = env.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"omar@souq.test","password":"wrong-password"}`), withLang("ar"))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"omar@souq.test","password":"correct-horse"}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	refresh := data(t, rr)["refresh_token"].(string)

	rr = env.do(t, http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"`+refresh+`"}`))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The refresh token is single use.
	rr = env.do(t, http.MethodPost, "/api/auth/refresh", strings.NewReader(`{"refresh_token":"`+refresh+`"}`))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Sara","email":"sara@souq.test","password":"long-enough"}`))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterAdminEmailGetsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	env.app.config.auth.adminEmail = "owner@souq.test"

	rr := env.do(t, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Owner","email":"OWNER@souq.test","password":"long-enough"}`))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "admin", data(t, rr)["user"].(map[string]any)["role"])
}
