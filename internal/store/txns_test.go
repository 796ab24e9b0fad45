package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/almacen/internal/db"
	"github.com/erazemk/almacen/internal/model"
)

func TestListTxnsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	bolt := seedItem(t, database, "BOLT-10", 0)
	nut := seedItem(t, database, "NUT-10", 0)

	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 2, 23, 59, 0, 0, time.UTC)
	day3 := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)

	price := decimal.NewNullDecimal(decimal.RequireFromString("0.5"))
	for _, tx := range []model.InventoryTxn{
		{ItemID: bolt.ID, Type: model.TxnPurchase, Qty: 10, UnitPrice: price, HappenedAt: day1},
		{ItemID: bolt.ID, Type: model.TxnIssue, Qty: -3, HappenedAt: day2},
		{ItemID: nut.ID, Type: model.TxnAdjust, Qty: 4, HappenedAt: day3, Note: "count"},
	} {
		_, err := InsertTxn(ctx, database, &tx)
		require.NoError(t, err)
	}

	all, err := ListTxns(ctx, database, TxnFilter{}, Page{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.TxnAdjust, all[0].Type, "newest first")
	assert.False(t, all[0].UnitPrice.Valid)
	assert.Equal(t, "0.5000", all[2].UnitPrice.Decimal.StringFixed(4))

	bolts, err := ListTxns(ctx, database, TxnFilter{ItemQuery: "bolt"}, Page{})
	require.NoError(t, err)
	assert.Len(t, bolts, 2)

	from := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 1)
	n, err := CountTxns(ctx, database, TxnFilter{From: &from, Until: &until})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the entry late on May 2 falls in the range")

	byItem, err := ListTxns(ctx, database, TxnFilter{ItemID: nut.ID}, Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.Equal(t, "count", byItem[0].Note)
}
