// AngelaMos | 2026
// service_test.go

package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
)

type memoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]Product
	failOn   string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (m *memoryRepo) List(_ context.Context, params ListParams) (int, []Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Sales != all[j].Sales {
			return all[i].Sales > all[j].Sales
		}
		return all[i].ID < all[j].ID
	})

	page := all
	if params.Offset != nil {
		page = page[min(*params.Offset, len(page)):]
	}
	if params.Limit != nil {
		page = page[:min(*params.Limit, len(page))]
	}
	return len(all), page, nil
}

func (m *memoryRepo) CreateMany(_ context.Context, products []*Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOn == "create" {
		return errors.New("connection reset")
	}

	now := time.Now()
	for _, p := range products {
		m.nextID++
		p.ID = m.nextID
		p.CreatedAt = now
		p.UpdatedAt = now
		m.products[p.ID] = *p
	}
	return nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, patch *Patch) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	patch.Apply(&p)
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return &p, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}
	delete(m.products, id)
	return nil
}

func (m *memoryRepo) DistinctCategories(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range m.products {
		if p.Category == nil || *p.Category == "" {
			continue
		}
		if _, ok := seen[*p.Category]; ok {
			continue
		}
		seen[*p.Category] = struct{}{}
		out = append(out, *p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memoryRepo) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products), nil
}

type memoryCache struct {
	mu          sync.Mutex
	value       []string
	found       bool
	gets        int
	invalidated int
	readErr     error
}

func (c *memoryCache) Get(context.Context) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	return c.value, c.found, nil
}

func (c *memoryCache) Set(_ context.Context, categories []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = categories
	c.found = true
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.found = false
	c.invalidated++
	return nil
}

func intPtr(n int) *int { return &n }

func seedRecords() []Record {
	return []Record{
		{"Product": "A", "Sales": "10", "Category": "X"},
		{"Product": "B", "Sales": "60", "Category": "Y"},
		{"Product": "C", "Sales": "30"},
		{"Product": "D", "Sales": "50", "Category": "X"},
		{"product": "E", "sales": "20"},
		{"Product": "F", "Sales": "40"},
	}
}

func TestService_CreateThenList(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil)

	created, err := svc.Create(ctx, []Record{
		{"product": "Widget", "Sales": "12", "Category": "Tools", "revenue": "3.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, "success", created.Status)
	assert.Equal(t, 1, created.Added)

	listed, err := svc.List(ctx, ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, listed.Total)

	item := listed.Items[0]
	assert.Equal(t, created.Items[0].ID, item.ID)
	assert.Equal(t, "Widget", item.Product)
	assert.Equal(t, int64(12), item.Sales)
	require.NotNil(t, item.Category)
	assert.Equal(t, "Tools", *item.Category)
	assert.InDelta(t, 3.5, item.Revenue, 1e-9)
	assert.Zero(t, item.Profit)
}

func TestService_CreateBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.Create(ctx, []Record{
		{"Product": "Good"},
		{"Sales": 5},
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Contains(t, err.Error(), "item 1")

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.Create(ctx, nil)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestService_ListPagination(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(ctx, seedRecords())
	require.NoError(t, err)

	page, err := svc.List(ctx, ListParams{Limit: intPtr(2), Offset: intPtr(1)})
	require.NoError(t, err)

	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "D", page.Items[0].Product)
	assert.Equal(t, "F", page.Items[1].Product)

	_, err = svc.List(ctx, ListParams{Limit: intPtr(-1)})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestService_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil)
	created, err := svc.Create(ctx, []Record{
		{"Product": "Widget", "Sales": 5, "Category": "Tools", "Revenue": 10, "Profit": 2},
	})
	require.NoError(t, err)
	id := created.Items[0].ID

	updated, err := svc.Update(ctx, id, Record{"Sales": "9"})
	require.NoError(t, err)

	before := created.Items[0]
	after := updated.Item
	assert.Equal(t, int64(9), after.Sales)
	assert.Equal(t, before.Product, after.Product)
	assert.Equal(t, before.Category, after.Category)
	assert.InDelta(t, before.Revenue, after.Revenue, 1e-9)
	assert.InDelta(t, before.Profit, after.Profit, 1e-9)
}

func TestService_DeleteThenMissing(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil)
	created, err := svc.Create(ctx, []Record{{"Product": "Gone"}})
	require.NoError(t, err)
	id := created.Items[0].ID

	deleted, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &DeleteResponse{Status: "deleted", ID: id}, deleted)

	_, err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Update(ctx, id, Record{"Sales": 1})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_CategoriesCache(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{}
	svc := NewService(newMemoryRepo(), cache)

	_, err := svc.Create(ctx, seedRecords())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, categories)
	assert.True(t, cache.found)

	cache.value = []string{"cached"}
	categories, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"cached"}, categories)

	_, err = svc.Create(ctx, []Record{{"Product": "New", "Category": "Z"}})
	require.NoError(t, err)

	categories, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, categories)
}

func TestService_CategoriesCacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{readErr: errors.New("redis down")}
	svc := NewService(newMemoryRepo(), cache)

	_, err := svc.Create(ctx, []Record{{"Product": "A", "Category": "Only"}})
	require.NoError(t, err)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, categories)
}

func TestService_StorageFailureSurfaces(t *testing.T) {
	repo := newMemoryRepo()
	repo.failOn = "create"
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), []Record{{"Product": "A"}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrInvalidInput)
}
