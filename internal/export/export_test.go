package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erazemk/almacen/internal/model"
)

func TestWriteInventory(t *testing.T) {
	items := []model.InventoryItem{
		{SKU: "BOLT-10", Description: "Bolt M10", CategoryName: "Hardware", Stock: 2, MinStock: 5, MaxStock: 100, Active: true},
		{SKU: "GLUE-1", Description: "Wood glue", CategoryName: "Adhesives", Stock: 40, MinStock: 1, MaxStock: 20, Active: false},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"SKU", "Description", "Category", "Stock", "Min", "Max", "Active", "Status"}, rows[0])
	assert.Equal(t, []string{"BOLT-10", "Bolt M10", "Hardware", "2", "5", "100", "yes", "low"}, rows[1])
	assert.Equal(t, []string{"GLUE-1", "Wood glue", "Adhesives", "40", "1", "20", "no", "over max"}, rows[2])
}

func TestWriteInventoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
