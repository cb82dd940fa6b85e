// AngelaMos | 2026
// seed_test.go

package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/catalog-backend/internal/config"
	"github.com/carterperez-dev/templates/catalog-backend/internal/product"
	"github.com/carterperez-dev/templates/catalog-backend/internal/user"
)

type fakeUsers struct {
	count   int
	created []string
	roles   []string
}

func (f *fakeUsers) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeUsers) CreateWithRole(
	_ context.Context,
	username, _, role string,
) (*user.User, error) {
	f.count++
	f.created = append(f.created, username)
	f.roles = append(f.roles, role)
	return &user.User{ID: int64(f.count), Username: username, Role: role}, nil
}

type fakeCatalog struct {
	count   int
	records []product.Record
	err     error
}

func (f *fakeCatalog) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeCatalog) Create(
	_ context.Context,
	records []product.Record,
) (*product.CreateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.records = append(f.records, records...)
	f.count += len(records)
	return &product.CreateResponse{Status: "success", Added: len(records)}, nil
}

var seedConfig = config.SeedConfig{
	OnStart:       true,
	AdminUsername: "admin",
	AdminPassword: "adminpass",
}

func TestSeeder_EmptyDatabase(t *testing.T) {
	users := &fakeUsers{}
	catalog := &fakeCatalog{}

	result, err := New(users, catalog, seedConfig, nil).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.AdminCreated)
	assert.Equal(t, 6, result.ProductsAdded)
	assert.Equal(t, []string{"admin"}, users.created)
	assert.Equal(t, []string{user.RoleAdmin}, users.roles)
	require.Len(t, catalog.records, 6)
	assert.Equal(t, "Smartphone X", catalog.records[0]["Product"])
}

func TestSeeder_IsIdempotent(t *testing.T) {
	users := &fakeUsers{count: 1}
	catalog := &fakeCatalog{count: 3}

	result, err := New(users, catalog, seedConfig, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{}, result)
	assert.Empty(t, users.created)
	assert.Empty(t, catalog.records)
}

func TestSeeder_CatalogFailure(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("insert failed")}

	_, err := New(&fakeUsers{}, catalog, seedConfig, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert sample products")
}

func TestSampleProducts_ParseCleanly(t *testing.T) {
	for _, rec := range SampleProducts() {
		p, err := product.ParseNew(rec)
		require.NoError(t, err)
		assert.NotNil(t, p.Category)
		assert.Positive(t, p.Sales)
	}

	first := SampleProducts()
	first[0]["Product"] = "mutated"
	assert.Equal(t, "Smartphone X", SampleProducts()[0]["Product"])
}
