package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/almacen/internal/model"
)

func seedItem(t *testing.T, database *sql.DB, sku string, stock int) *model.InventoryItem {
	t.Helper()
	ctx := context.Background()

	cat, err := GetCategoryByName(ctx, database, "General")
	require.NoError(t, err)
	if cat == nil {
		cat, err = CreateCategory(ctx, database, "General")
		require.NoError(t, err)
	}

	id, err := InsertItem(ctx, database, &model.InventoryItem{
		SKU: sku, Slug: model.Slugify(sku), CategoryID: cat.ID, Active: true, MinStock: 2,
	})
	require.NoError(t, err)
	require.NoError(t, SetItemStock(ctx, database, id, stock))

	item, err := GetItem(ctx, database, id)
	require.NoError(t, err)
	return item
}
