package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"souq/internal/auth"
	"souq/internal/domain/ads"
	"souq/internal/domain/carts"
	"souq/internal/domain/catalog"
	"souq/internal/domain/discounts"
	"souq/internal/domain/storage"
	"souq/internal/domain/users"
	"souq/internal/i18n"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	catalog.Store
	products   []catalog.Product
	categories []catalog.Category
}

func (f *fakeCatalog) ListProducts(_ context.Context, _ catalog.ProductFilter) ([]catalog.Product, int, error) {
	return f.products, len(f.products), nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) ListCategories(context.Context) ([]catalog.Category, error) {
	return f.categories, nil
}

// fakeAds returns every stored ad from the list queries and leaves window
// filtering to the code under test, except where the SQL would apply it.
type fakeAds struct {
	ads.Store
	list        []ads.Advertisement
	impressions map[int64]int
}

func (f *fakeAds) ListActiveForProducts(context.Context, time.Time) ([]ads.Advertisement, error) {
	return f.list, nil
}

func (f *fakeAds) FindActiveForProduct(_ context.Context, productID int64, now time.Time) (*ads.Advertisement, error) {
	var best *ads.Advertisement
	for i := range f.list {
		a := &f.list[i]
		if a.ProductID == nil || *a.ProductID != productID || !a.ActiveAt(now) {
			continue
		}
		if best == nil || ads.Prefer(a, best) {
			best = a
		}
	}
	return best, nil
}

func (f *fakeAds) ListActive(_ context.Context, now time.Time, typ ads.Type) ([]ads.Advertisement, error) {
	var out []ads.Advertisement
	for _, a := range f.list {
		if a.ActiveAt(now) && (typ == "" || a.Type == typ) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return ads.Prefer(&out[i], &out[j]) })
	return out, nil
}

func (f *fakeAds) IncrementImpressions(_ context.Context, id int64) error {
	for _, a := range f.list {
		if a.ID == id {
			if f.impressions == nil {
				f.impressions = map[int64]int{}
			}
			f.impressions[id]++
			return nil
		}
	}
	return ads.ErrNotFound
}

type fakeUsers struct {
	users.Store
	byID    map[int64]*users.User
	refresh map[int64]string
}

func (f *fakeUsers) Create(_ context.Context, u *users.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return users.ErrDuplicateEmail
		}
	}
	u.ID = int64(len(f.byID) + 100)
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

func (f *fakeUsers) SaveRefreshToken(_ context.Context, userID int64, token string) error {
	if f.refresh == nil {
		f.refresh = map[int64]string{}
	}
	f.refresh[userID] = token
	return nil
}

func (f *fakeUsers) CheckRefreshToken(_ context.Context, userID int64, token string) error {
	if f.refresh[userID] != token {
		return users.ErrInvalidRefresh
	}
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*users.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, users.ErrNotFound
}

type fakeCarts struct {
	carts.Store
	views map[int64]*carts.View
}

func (f *fakeCarts) GetView(_ context.Context, userID int64) (*carts.View, error) {
	if v, ok := f.views[userID]; ok {
		return v, nil
	}
	return carts.NewView(nil), nil
}

type fakeDiscounts struct {
	discounts.Store
	byCode map[string]*discounts.Discount
}

func (f *fakeDiscounts) GetByCode(_ context.Context, code string) (*discounts.Discount, error) {
	if d, ok := f.byCode[code]; ok {
		return d, nil
	}
	return nil, discounts.ErrNotFound
}

type testEnv struct {
	app       *application
	handler   http.Handler
	catalog   *fakeCatalog
	ads       *fakeAds
	users     *fakeUsers
	carts     *fakeCarts
	discounts *fakeDiscounts
}

const (
	adminID    int64 = 1
	customerID int64 = 2
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	messages, err := i18n.NewMessages()
	require.NoError(t, err)

	env := &testEnv{
		catalog: &fakeCatalog{},
		ads:     &fakeAds{},
		users: &fakeUsers{byID: map[int64]*users.User{
			adminID:    {ID: adminID, Name: "Admin", Email: "admin@souq.test", Role: users.RoleAdmin},
			customerID: {ID: customerID, Name: "Sara", Email: "sara@souq.test", Role: users.RoleCustomer},
		}},
		carts:     &fakeCarts{views: map[int64]*carts.View{}},
		discounts: &fakeDiscounts{byCode: map[string]*discounts.Discount{}},
	}

	env.app = &application{
		config: config{
			store: storeConfig{currency: "SAR"},
		},
		store: &storage.Container{
			Users:     env.users,
			Catalog:   env.catalog,
			Ads:       env.ads,
			Carts:     env.carts,
			Discounts: env.discounts,
		},
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh-secret", "souq-clients", "souq"),
		messages:      messages,
		now:           func() time.Time { return testNow },
	}
	env.handler = env.app.mount()
	return env
}

func (env *testEnv) token(t *testing.T, userID int64) string {
	t.Helper()
	u := env.users.byID[userID]
	access, _, err := env.app.authenticator.GenerateTokens(u.ID, string(u.Role))
	require.NoError(t, err)
	return access
}

type requestOption func(*http.Request)

func withLang(lang string) requestOption {
	return func(r *http.Request) { r.Header.Set("Accept-Language", lang) }
}

func withRemoteAddr(addr string) requestOption {
	return func(r *http.Request) { r.RemoteAddr = addr }
}

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func (env *testEnv) do(t *testing.T, method, path string, body io.Reader, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	return rr
}

// data decodes the "data" member of a success envelope.
func data(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env.Data
}

func dataList(t *testing.T, rr *httptest.ResponseRecorder) []any {
	t.Helper()
	var env struct {
		Data []any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env.Data
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) (message string, status int) {
	t.Helper()
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	require.False(t, env.Success)
	return env.Message, env.Status
}

func ptr[T any](v T) *T { return &v }
