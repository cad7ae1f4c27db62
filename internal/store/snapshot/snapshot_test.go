package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "business-assistant/internal/common/errors"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

func writeBlob(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoad_MissingBlobsAreAbsent(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "products.json", `[
		{"id":"p-2","name":"Bolt","category":"hardware","price":0.5,"stock":500,"minStock":100},
		{"id":"p-1","name":"Anvil","category":"hardware","price":120,"stock":2,"minStock":5}
	]`)

	s, err := Load(dir, logger.NewTestLogger(t))
	require.NoError(t, err)

	assert.True(t, s.Has(models.EntityProducts))
	assert.False(t, s.Has(models.EntityCustomers))

	products, err := s.FindProducts(context.Background(), store.ProductFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Anvil", products[0].Name)

	customers, err := s.FindCustomers(context.Background(), store.CustomerFilter{}, 10)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestLoad_MalformedBlobFails(t *testing.T) {
	dir := t.TempDir()
	writeBlob(t, dir, "sales.json", `{"not":"an array"`)

	_, err := Load(dir, logger.NewTestLogger(t))
	require.Error(t, err)

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSnapshotLoadFailed, stdErr.Code)
}

func TestStore_FiltersLimitsAndRanges(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := FromData(Data{
		Customers: []models.Customer{
			{ID: "c-1", Name: "Ana", Company: "Acme", CreatedAt: base},
			{ID: "c-2", Name: "Bruno", Company: "ACME Labs", CreatedAt: base.AddDate(0, 0, 1)},
			{ID: "c-3", Name: "Carla", Company: "Globex", CreatedAt: base.AddDate(0, 0, 2)},
		},
		Expenses: []models.Expense{
			{ID: "e-1", Category: "rent", Amount: 1000, Date: base},
			{ID: "e-2", Category: "supplies", Amount: 50, Date: base.AddDate(0, 0, 1)},
			{ID: "e-3", Category: "supplies", Amount: 70, Date: base.AddDate(0, 1, 0)},
		},
	})
	ctx := context.Background()

	acme, _ := s.FindCustomers(ctx, store.CustomerFilter{Company: "acme"}, 1)
	require.Len(t, acme, 1)
	assert.Equal(t, "c-2", acme[0].ID, "newest first")

	n, _ := s.CountCustomers(ctx, store.CustomerFilter{Company: "acme"})
	assert.Equal(t, 2, n)

	may := store.DateRange{Start: base, End: base.AddDate(0, 1, 0).Add(-time.Millisecond)}
	totals, _ := s.AggregateExpenses(ctx, may)
	assert.Equal(t, []models.CategoryTotal{
		{Category: "rent", Total: 1000, Count: 1},
		{Category: "supplies", Total: 50, Count: 1},
	}, totals)
}

func TestStore_LowStockFilter(t *testing.T) {
	s := FromData(Data{Products: []models.Product{
		{ID: "p-1", Name: "A", Stock: 10, MinStock: 10},
		{ID: "p-2", Name: "B", Stock: 11, MinStock: 10},
		{ID: "p-3", Name: "C", Stock: 8},
		{ID: "p-4", Name: "D", Stock: 12},
	}})

	n, err := s.CountProducts(context.Background(), store.ProductFilter{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	low, err := s.FindProducts(context.Background(), store.ProductFilter{LowStock: true}, 0)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "p-1", low[0].ID)
	assert.Equal(t, "p-3", low[1].ID)
}
