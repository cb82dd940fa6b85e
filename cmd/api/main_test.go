// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/catalog-backend/internal/admin"
	"github.com/carterperez-dev/templates/catalog-backend/internal/auth"
	"github.com/carterperez-dev/templates/catalog-backend/internal/config"
	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
	"github.com/carterperez-dev/templates/catalog-backend/internal/health"
	"github.com/carterperez-dev/templates/catalog-backend/internal/product"
	"github.com/carterperez-dev/templates/catalog-backend/internal/seed"
	"github.com/carterperez-dev/templates/catalog-backend/internal/user"
)

type userStore struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]*user.User
}

func (s *userStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[u.Username]; ok {
		return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
	}
	s.nextID++
	u.ID = s.nextID
	stored := *u
	s.byName[u.Username] = &stored
	return nil
}

func (s *userStore) GetByUsername(_ context.Context, name string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	found := *u
	return &found, nil
}

func (s *userStore) UpdatePassword(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byName {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *userStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byName), nil
}

type productStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]product.Product
}

func (s *productStore) sorted() []product.Product {
	all := make([]product.Product, 0, len(s.rows))
	for _, p := range s.rows {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Sales != all[j].Sales {
			return all[i].Sales > all[j].Sales
		}
		return all[i].ID < all[j].ID
	})
	return all
}

func (s *productStore) List(_ context.Context, p product.ListParams) (int, []product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted()
	page := all
	if p.Offset != nil {
		page = page[min(*p.Offset, len(page)):]
	}
	if p.Limit != nil {
		page = page[:min(*p.Limit, len(page))]
	}
	return len(all), page, nil
}

func (s *productStore) CreateMany(_ context.Context, products []*product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		s.nextID++
		p.ID = s.nextID
		s.rows[p.ID] = *p
	}
	return nil
}

func (s *productStore) Update(_ context.Context, id int64, patch *product.Patch) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	patch.Apply(&p)
	s.rows[id] = p
	return &p, nil
}

func (s *productStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}
	delete(s.rows, id)
	return nil
}

func (s *productStore) DistinctCategories(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	out := []string{}
	for _, p := range s.rows {
		if p.Category != nil && !seen[*p.Category] {
			seen[*p.Category] = true
			out = append(out, *p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *productStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows), nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "development"},
		JWT: config.JWTConfig{
			SecretKey:         "end-to-end-test-secret-0123456789abcdef",
			AccessTokenExpire: time.Hour,
			Issuer:            "catalog-backend",
			Audience:          "catalog-api",
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Seed: config.SeedConfig{AdminUsername: "admin", AdminPassword: "adminpass"},
	}
}

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	issuer, err := auth.NewTokenIssuer(cfg.JWT)
	require.NoError(t, err)

	userSvc := user.NewService(&userStore{byName: map[string]*user.User{}})
	productSvc := product.NewService(&productStore{rows: map[int64]product.Product{}}, nil)

	result, err := seed.New(userSvc, productSvc, cfg.Seed, logger).Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.AdminCreated)
	require.Equal(t, 6, result.ProductsAdded)

	router := chi.NewRouter()
	mountRoutes(router, routeDeps{
		config:   cfg,
		logger:   logger,
		verifier: issuer,
		health:   health.NewHandler(nil),
		auth:     auth.NewHandler(auth.NewService(userSvc, issuer)),
		product:  product.NewHandler(productSvc),
		admin: admin.NewHandler(admin.HandlerConfig{
			CountUsers:    userSvc.Count,
			CountProducts: productSvc.Count,
		}),
	})
	return router
}

func call(
	t *testing.T,
	h http.Handler,
	method, path, body, token string,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()

	rec := call(t, h, http.MethodPost, "/api/auth/login",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func TestAPI_RegisteredUserCannotMutate(t *testing.T) {
	api := newTestAPI(t)

	rec := call(t, api, http.MethodPost, "/api/auth/register",
		`{"username":"bob","password":"pw1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	token := login(t, api, "bob", "pw1")

	rec = call(t, api, http.MethodPost, "/api/data", `{"Product":"X"}`, token)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, api, http.MethodGet, "/api/data", "", "")
	var listed product.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 6, listed.Total)
	for _, item := range listed.Items {
		assert.NotEqual(t, "X", item.Product)
	}

	rec = call(t, api, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"username":"bob","role":"user"}`, rec.Body.String())
}

func TestAPI_RegisterMultibyteUsername(t *testing.T) {
	api := newTestAPI(t)

	name := strings.Repeat("ü", 100)
	rec := call(t, api, http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"username":%q,"password":"pw1"}`, name), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, login(t, api, name, "pw1"))

	rec = call(t, api, http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"username":%q,"password":"pw1"}`, strings.Repeat("ü", 151)), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "username and password required")
}

func TestAPI_AdminInsertCoercesStrings(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "admin", "adminpass")

	rec := call(t, api, http.MethodPost, "/api/data",
		`{"Product":"Widget","Sales":"100"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created product.CreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.Items, 1)
	assert.Equal(t, int64(100), created.Items[0].Sales)

	rec = call(t, api, http.MethodGet, "/api/data", "", "")
	var listed product.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 7, listed.Total)

	var found bool
	for _, item := range listed.Items {
		if item.Product == "Widget" {
			found = true
			assert.Equal(t, int64(100), item.Sales)
		}
	}
	assert.True(t, found)
}

func TestAPI_PaginationOverSeededCatalog(t *testing.T) {
	api := newTestAPI(t)

	rec := call(t, api, http.MethodGet, "/api/data?limit=2&offset=1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page product.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pure Cooking Oil", page.Items[0].Product)
	assert.Equal(t, "Spiral Notebook", page.Items[1].Product)
}

func TestAPI_AmbientRoutes(t *testing.T) {
	api := newTestAPI(t)

	rec := call(t, api, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = call(t, api, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_http_requests_total")

	rec = call(t, api, http.MethodGet, "/api/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`["Electronics","Grocery","Household","Personal Care","Stationery"]`,
		rec.Body.String(),
	)

	token := login(t, api, "admin", "adminpass")
	rec = call(t, api, http.MethodGet, "/api/admin/stats/catalog", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"users":1,"products":6}`, rec.Body.String())
}

func TestGenSecretCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"gen-secret"})

	require.NoError(t, cmd.Execute())
	assert.Len(t, strings.TrimSpace(out.String()), 64)
}
