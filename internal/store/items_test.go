package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/almacen/internal/db"
	"github.com/erazemk/almacen/internal/model"
)

func TestInsertItemStartsWithZeroStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cat, err := CreateCategory(ctx, database, "Hardware")
	require.NoError(t, err)

	id, err := InsertItem(ctx, database, &model.InventoryItem{
		SKU: "BOLT-10", Slug: "bolt-10", CategoryID: cat.ID, Description: "Bolt", Stock: 50, Active: true,
	})
	require.NoError(t, err)

	item, err := GetItem(ctx, database, id)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Stock)
	assert.Equal(t, "Hardware", item.CategoryName)
}

func TestInsertItemDuplicateSKU(t *testing.T) {
	database := db.NewTestDB(t)
	seedItem(t, database, "BOLT-10", 0)

	cat, err := GetCategoryByName(context.Background(), database, "General")
	require.NoError(t, err)
	_, err = InsertItem(context.Background(), database, &model.InventoryItem{
		SKU: "BOLT-10", Slug: "bolt-10-b", CategoryID: cat.ID,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListItemsFilterAndPage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seedItem(t, database, "BOLT-10", 5)
	seedItem(t, database, "BOLT-12", 1)
	seedItem(t, database, "NUT-10", 0)

	bolts, err := ListItems(ctx, database, ItemFilter{Search: "bolt"}, Page{})
	require.NoError(t, err)
	assert.Len(t, bolts, 2)

	n, err := CountItems(ctx, database, ItemFilter{Search: "10"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := ListItems(ctx, database, ItemFilter{}, Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "NUT-10", page[0].SKU)

	// LIKE wildcards in the search term are literal.
	none, err := ListItems(ctx, database, ItemFilter{Search: "%"}, Page{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListLowStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seedItem(t, database, "A", 10)
	seedItem(t, database, "B", 2)
	seedItem(t, database, "C", 0)

	low, err := ListLowStock(ctx, database, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "C", low[0].SKU)
	assert.Equal(t, "B", low[1].SKU)
}

func TestUpdateItemKeepsStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := seedItem(t, database, "BOLT-10", 7)
	item.Description = "Hex bolt"
	item.Stock = 999
	require.NoError(t, UpdateItem(ctx, database, item))

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hex bolt", got.Description)
	assert.Equal(t, 7, got.Stock)
}

func TestLockItemMissing(t *testing.T) {
	database := db.NewTestDB(t)
	item, err := LockItem(context.Background(), database, 42)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestDeleteCategoryInUse(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seedItem(t, database, "BOLT-10", 0)
	cat, err := GetCategoryByName(ctx, database, "General")
	require.NoError(t, err)
	assert.Equal(t, 1, cat.ItemCount)

	err = DeleteCategory(ctx, database, cat.ID)
	assert.ErrorIs(t, err, ErrInUse)

	empty, err := CreateCategory(ctx, database, "Empty")
	require.NoError(t, err)
	require.NoError(t, DeleteCategory(ctx, database, empty.ID))
}
