package web

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/erazemk/almacen/internal/inventory"
)

// MinFormLines is the number of line rows an order form always offers.
const MinFormLines = 5

// formLine is one row of an order form as the user typed it.
type formLine struct {
	Index     int
	ItemID    int64
	Qty       string
	UnitPrice string
}

// formLines rebuilds the submitted rows in index order, padded with blank
// rows up to MinFormLines.
func formLines(values url.Values) []formLine {
	parsed := inventory.ParseFormLines(values)
	indexes := make([]int, 0, len(parsed))
	for idx := range parsed {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	rows := make([]formLine, 0, max(len(indexes), MinFormLines))
	for _, idx := range indexes {
		f := parsed[idx]
		itemID, _ := strconv.ParseInt(f["item"], 10, 64)
		rows = append(rows, formLine{ItemID: itemID, Qty: f["qty"], UnitPrice: f["unit_price"]})
	}
	for len(rows) < MinFormLines {
		rows = append(rows, formLine{})
	}
	for i := range rows {
		rows[i].Index = i
	}
	return rows
}
