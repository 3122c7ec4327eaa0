package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Nishantvt5/merch-app/internal/cart"
	"github.com/Nishantvt5/merch-app/internal/catalog"
	pkgAuth "github.com/Nishantvt5/merch-app/pkg/auth"
	"github.com/Nishantvt5/merch-app/pkg/auth/session"
	"github.com/Nishantvt5/merch-app/pkg/config"
	"github.com/Nishantvt5/merch-app/pkg/db/dbtest"
	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/Nishantvt5/merch-app/pkg/enums"
	"github.com/Nishantvt5/merch-app/pkg/logger"
)

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

// memoryRedis is an in-process stand-in for the redis helpers the router needs.
type memoryRedis struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, counters: map[string]int64{}}
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memoryRedis) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memoryRedis) IdempotencyKey(scope, id string) string { return "idem:" + scope + ":" + id }
func (m *memoryRedis) RateLimitKey(scope string) string       { return "rl:" + scope }
func (m *memoryRedis) Ping(context.Context) error             { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "merch", ExpirationMinutes: 10},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 2,
			LoginIPLimit:    100,
		},
	}
}

type testEnv struct {
	cfg      *config.Config
	conn     *gorm.DB
	registry *prometheus.Registry
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	conn := dbtest.Open(t)
	repo := catalog.NewRepository(conn)
	catalogSvc, err := catalog.NewService(repo)
	require.NoError(t, err)
	adminSvc, err := catalog.NewAdminService(repo, dbtest.Client(conn))
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(conn),
		Tx:       dbtest.Client(conn),
		Products: catalogSvc,
	})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	router := NewRouter(Params{
		Config:       cfg,
		Logger:       logger.Nop(),
		DB:           dbtest.Client(conn),
		Redis:        newMemoryRedis(),
		Sessions:     stubSessionManager{},
		Registry:     registry,
		Catalog:      catalogSvc,
		CatalogAdmin: adminSvc,
		Cart:         cartSvc,
	})
	return &testEnv{cfg: cfg, conn: conn, registry: registry, router: router}
}

func (e *testEnv) user(t *testing.T, role enums.Role) (uuid.UUID, string) {
	t.Helper()
	user := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
		IsCustomer:   role == enums.RoleCustomer,
		IsAdmin:      role == enums.RoleAdmin,
	}
	require.NoError(t, e.conn.Create(user).Error)
	token, err := pkgAuth.MintAccessToken(e.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return user.ID, token
}

func (e *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Slug:        catalog.Slugify(name),
		Price:       decimal.RequireFromString(price),
		Stock:       10,
		IsAvailable: true,
	}
	require.NoError(t, e.conn.Create(product).Error)
	return product
}

func (e *testEnv) do(method, path, token, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", "", "", nil).Code)
	rec := env.do(http.MethodGet, "/health/ready", "", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCartRoutesRequireJWT(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/v1/cart", "", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/v1/cart/items", "", `{}`, nil).Code)
}

func TestCatalogRoutesArePublic(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/categories", "", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/products", "", "", nil).Code)
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	_, customer := env.user(t, enums.RoleCustomer)
	_, admin := env.user(t, enums.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/admin/v1/attributes", "", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/admin/v1/attributes", customer, "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/admin/v1/attributes", admin, "", nil).Code)

	rec := env.do(http.MethodPost, "/api/admin/v1/categories", admin, `{"name":"Posters"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCartFlowThroughRouter(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, enums.RoleCustomer)
	widget := env.product(t, "Widget", "10.00")

	add := `{"product_id":"` + widget.ID.String() + `","quantity":2}`
	rec := env.do(http.MethodPost, "/api/v1/cart/items", token, add, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var added struct {
		Data struct {
			Outcome string       `json:"outcome"`
			Message string       `json:"message"`
			Item    cart.ItemDTO `json:"item"`
			Cart    cart.CartDTO `json:"cart"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&added))
	assert.Equal(t, "added", added.Data.Outcome)
	assert.Equal(t, "Widget added to your cart.", added.Data.Message)
	assert.Equal(t, "20.00", added.Data.Cart.TotalPrice)

	itemPath := "/api/v1/cart/items/" + added.Data.Item.ID.String()
	rec = env.do(http.MethodPatch, itemPath, token, `{"quantity":5}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, other := env.user(t, enums.RoleCustomer)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, itemPath, other, "", nil).Code)

	rec = env.do(http.MethodDelete, itemPath, token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget removed from your cart.")

	rec = env.do(http.MethodGet, "/api/v1/cart", token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Data cart.CartDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Empty(t, view.Data.Items)
	assert.Equal(t, "0.00", view.Data.TotalPrice)
}

func TestAddItemIdempotencyKeyReplays(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.user(t, enums.RoleCustomer)
	widget := env.product(t, "Widget", "10.00")
	body := `{"product_id":"` + widget.ID.String() + `"}`
	headers := map[string]string{"Idempotency-Key": "add-widget-1"}

	first := env.do(http.MethodPost, "/api/v1/cart/items", token, body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := env.do(http.MethodPost, "/api/v1/cart/items", token, body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))

	var line models.CartItem
	require.NoError(t, env.conn.Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).First(&line).Error)
	assert.Equal(t, 1, line.Quantity)

	third := env.do(http.MethodPost, "/api/v1/cart/items", token, body, nil)
	require.Equal(t, http.StatusCreated, third.Code)
	require.NoError(t, env.conn.First(&line, "id = ?", line.ID).Error)
	assert.Equal(t, 2, line.Quantity)
}

func TestLoginRateLimitedPerEmail(t *testing.T) {
	env := newTestEnv(t)
	body := `{"email":"ada@example.com","password":"wrong-password"}`

	for range 2 {
		rec := env.do(http.MethodPost, "/api/v1/auth/login", "", body, nil)
		assert.NotEqual(t, http.StatusTooManyRequests, rec.Code)
	}
	rec := env.do(http.MethodPost, "/api/v1/auth/login", "", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestMetricsEndpointExportsRouteLabels(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/api/v1/categories", "", "", nil)

	rec := env.do(http.MethodGet, "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/categories"`)
}
