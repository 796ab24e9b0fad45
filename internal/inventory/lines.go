package inventory

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/almacen/internal/model"
)

var lineKey = regexp.MustCompile(`^lines\[(\d+)\]\[(\w+)\]$`)

// ParseFormLines groups keys of the form lines[<n>][<field>] by index.
// Keys that do not match are ignored; values are kept verbatim, taking the
// first value when a key repeats.
func ParseFormLines(values url.Values) map[int]map[string]string {
	lines := make(map[int]map[string]string)
	for key, vs := range values {
		m := lineKey.FindStringSubmatch(key)
		if m == nil || len(vs) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if lines[idx] == nil {
			lines[idx] = make(map[string]string)
		}
		lines[idx][m[2]] = vs[0]
	}
	return lines
}

// PurchaseLineInput is a validated purchase line. Line is the position the
// line was submitted at and is what validation errors report.
type PurchaseLineInput struct {
	Line      int
	ItemID    int64
	Qty       int
	UnitPrice decimal.Decimal
}

// RequisitionLineInput is a validated requisition line.
type RequisitionLineInput struct {
	Line   int
	ItemID int64
	Qty    int
}

// PurchaseLinesFromForm converts submitted purchase lines. Lines whose
// fields are all blank are skipped.
func PurchaseLinesFromForm(values url.Values) ([]PurchaseLineInput, error) {
	var out []PurchaseLineInput
	err := eachLine(values, []string{"item", "qty", "unit_price"}, func(idx int, f map[string]string) error {
		itemID, qty, err := itemAndQty(idx, f)
		if err != nil {
			return err
		}
		price, msg := parsePrice(f["unit_price"])
		if msg != "" {
			return &ValidationError{Line: idx, Field: "unit_price", Msg: msg}
		}
		out = append(out, PurchaseLineInput{Line: idx, ItemID: itemID, Qty: qty, UnitPrice: price})
		return nil
	})
	return out, err
}

// RequisitionLinesFromForm converts submitted requisition lines. Lines whose
// fields are all blank are skipped.
func RequisitionLinesFromForm(values url.Values) ([]RequisitionLineInput, error) {
	var out []RequisitionLineInput
	err := eachLine(values, []string{"item", "qty"}, func(idx int, f map[string]string) error {
		itemID, qty, err := itemAndQty(idx, f)
		if err != nil {
			return err
		}
		out = append(out, RequisitionLineInput{Line: idx, ItemID: itemID, Qty: qty})
		return nil
	})
	return out, err
}

// eachLine visits parsed lines in ascending index order.
func eachLine(values url.Values, fields []string, fn func(idx int, f map[string]string) error) error {
	parsed := ParseFormLines(values)
	indexes := make([]int, 0, len(parsed))
	for idx := range parsed {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}

	for _, idx := range indexes {
		f := parsed[idx]
		blank := 0
		for name, v := range f {
			if !allowed[name] {
				return &ValidationError{Line: idx, Field: name, Msg: "unknown field"}
			}
			if strings.TrimSpace(v) == "" {
				blank++
			}
		}
		if blank == len(f) {
			continue
		}
		for _, name := range fields {
			if strings.TrimSpace(f[name]) == "" {
				return &ValidationError{Line: idx, Field: name, Msg: "required"}
			}
		}
		if err := fn(idx, f); err != nil {
			return err
		}
	}
	return nil
}

func itemAndQty(idx int, f map[string]string) (int64, int, error) {
	itemID, err := strconv.ParseInt(strings.TrimSpace(f["item"]), 10, 64)
	if err != nil || itemID <= 0 {
		return 0, 0, &ValidationError{Line: idx, Field: "item", Msg: "must be a valid item"}
	}
	qty, err := strconv.Atoi(strings.TrimSpace(f["qty"]))
	if err != nil || qty <= 0 {
		return 0, 0, &ValidationError{Line: idx, Field: "qty", Msg: "must be a positive whole number"}
	}
	return itemID, qty, nil
}

// ParsePrice parses a non-negative unit price with at most four decimal
// places.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, msg := parsePrice(s)
	if msg != "" {
		return decimal.Zero, invalid("unit_price", msg)
	}
	return d, nil
}

func parsePrice(s string) (decimal.Decimal, string) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, "must be a number"
	}
	if d.IsNegative() {
		return decimal.Zero, "must not be negative"
	}
	if !d.Equal(d.Round(model.PriceScale)) {
		return decimal.Zero, "at most 4 decimal places"
	}
	return d.Round(model.PriceScale), ""
}
