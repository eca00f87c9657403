package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, products *mocks.MockProductStore) (*app, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("SHOP_DATABASE_URL", "postgres://unused")
	t.Setenv("SHOP_AUTH_JWTSECRET", "test-secret-key-for-testing-purposes")
	t.Setenv("SHOP_ENV_LOG_LEVEL", "error")

	var out bytes.Buffer
	a := &app{
		out: &out,
		open: func(ctx context.Context, cfg *config.Config) (*backend, error) {
			return &backend{
				products: products,
				users:    mocks.NewMockUserStore(),
				close:    func() error { return nil },
			}, nil
		},
	}
	return a, &out
}

func execute(a *app, args ...string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	return root.Execute()
}

func TestSeedCmd_BundledCatalog(t *testing.T) {
	products := mocks.NewMockProductStore(&product.Product{ID: "stale", Name: "Stale", Category: "books"})
	a, out := newTestApp(t, products)

	require.NoError(t, execute(a, "seed"))

	assert.Equal(t, 1, products.DeleteAllCalls)
	assert.Greater(t, products.Count(), 1)
	_, err := products.GetByID(context.Background(), "stale")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.Contains(t, out.String(), "seeded")
}

func TestSeedCmd_FromFile(t *testing.T) {
	products := mocks.NewMockProductStore()
	a, out := newTestApp(t, products)

	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name":"Desk Lamp","price":30,"category":"lighting","stock":4,"isActive":true},
		{"name":"Kettle","price":45,"category":"kitchen","stock":2,"isActive":true}
	]`), 0o600))

	require.NoError(t, execute(a, "seed", "--file", path))

	assert.Equal(t, 2, products.Count())
	assert.Equal(t, "seeded 2 products\n", out.String())
}

func TestSeedCmd_InvalidProductLeavesCatalog(t *testing.T) {
	products := mocks.NewMockProductStore(&product.Product{ID: "keep", Name: "Keep", Category: "books"})
	a, _ := newTestApp(t, products)

	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Bad","price":-1,"category":"books"}]`), 0o600))

	err := execute(a, "seed", "-f", path)

	assert.ErrorIs(t, err, product.ErrInvalidPrice)
	assert.Equal(t, 0, products.DeleteAllCalls)
	assert.Equal(t, 1, products.Count())
}

func TestListCmd_Table(t *testing.T) {
	products := mocks.NewMockProductStore(
		&product.Product{ID: "a", Name: "Alpha Phone", Category: "smartphones", Brand: "Acme", Price: 499, Stock: 3, IsActive: true},
		&product.Product{ID: "b", Name: "Beta Book", Category: "books", Price: 12.5, Stock: 9, IsActive: true},
	)
	a, out := newTestApp(t, products)

	require.NoError(t, execute(a, "list", "--category", "smartphones"))

	assert.Contains(t, out.String(), "Alpha Phone")
	assert.NotContains(t, out.String(), "Beta Book")
	assert.Contains(t, out.String(), "499.00")
	assert.Contains(t, out.String(), "page 1 of 1 (1 products)")
}

func TestListCmd_JSON(t *testing.T) {
	products := mocks.NewMockProductStore(
		&product.Product{ID: "a", Name: "Alpha", Category: "books", Price: 10, IsActive: true},
		&product.Product{ID: "b", Name: "Beta", Category: "books", Price: 20, IsActive: true},
	)
	a, out := newTestApp(t, products)

	require.NoError(t, execute(a, "list", "--json", "--sort", "price", "--order", "asc", "--limit", "1"))

	var page readmodel.ProductPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	require.Len(t, page.Products, 1)
	assert.Equal(t, "a", page.Products[0].ID)
	assert.Equal(t, 2, page.Pagination.TotalProducts)
	assert.True(t, page.Pagination.HasNext)
}

func TestListCmd_MissingConfig(t *testing.T) {
	a, _ := newTestApp(t, mocks.NewMockProductStore())

	err := execute(a, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "list")

	assert.Error(t, err)
}
