package inventory

import (
	"errors"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormLines(t *testing.T) {
	values := url.Values{
		"lines[0][item]":     {"3"},
		"lines[0][qty]":      {"10", "99"},
		"lines[2][item]":     {"4"},
		"lines[2][qty]":      {""},
		"supplier":           {"1"},
		"lines[x][item]":     {"5"},
		"lines[1]item":       {"6"},
		"lines[1][it-em]":    {"7"},
		"prefix_lines[5][a]": {"8"},
	}

	got := ParseFormLines(values)
	assert.Equal(t, map[int]map[string]string{
		0: {"item": "3", "qty": "10"},
		2: {"item": "4", "qty": ""},
	}, got)
}

func TestParseFormLinesEmpty(t *testing.T) {
	assert.Empty(t, ParseFormLines(url.Values{"note": {"x"}}))
}

func TestPurchaseLinesFromForm(t *testing.T) {
	values := url.Values{
		"lines[1][item]":       {"9"},
		"lines[1][qty]":        {"2"},
		"lines[1][unit_price]": {"1.5"},
		"lines[0][item]":       {"3"},
		"lines[0][qty]":        {"10"},
		"lines[0][unit_price]": {"0.1234"},
		// An untouched template row.
		"lines[7][item]":       {""},
		"lines[7][qty]":        {""},
		"lines[7][unit_price]": {""},
	}

	lines, err := PurchaseLinesFromForm(values)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(3), lines[0].ItemID)
	assert.Equal(t, 10, lines[0].Qty)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("0.1234")))
	assert.Equal(t, int64(9), lines[1].ItemID)
	assert.Equal(t, 0, lines[0].Line)
	assert.Equal(t, 1, lines[1].Line)
}

func TestLinesKeepSubmittedIndex(t *testing.T) {
	lines, err := RequisitionLinesFromForm(url.Values{
		"lines[0][item]": {""},
		"lines[0][qty]":  {""},
		"lines[3][item]": {"5"},
		"lines[3][qty]":  {"2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []RequisitionLineInput{{Line: 3, ItemID: 5, Qty: 2}}, lines)
}

func TestPurchaseLinesFromFormErrors(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		field  string
	}{
		{"missing price", url.Values{"lines[0][item]": {"1"}, "lines[0][qty]": {"2"}}, "unit_price"},
		{"zero qty", url.Values{"lines[0][item]": {"1"}, "lines[0][qty]": {"0"}, "lines[0][unit_price]": {"1"}}, "qty"},
		{"text qty", url.Values{"lines[0][item]": {"1"}, "lines[0][qty]": {"ten"}, "lines[0][unit_price]": {"1"}}, "qty"},
		{"bad item", url.Values{"lines[0][item]": {"abc"}, "lines[0][qty]": {"1"}, "lines[0][unit_price]": {"1"}}, "item"},
		{"negative price", url.Values{"lines[0][item]": {"1"}, "lines[0][qty]": {"1"}, "lines[0][unit_price]": {"-1"}}, "unit_price"},
		{"too precise price", url.Values{"lines[0][item]": {"1"}, "lines[0][qty]": {"1"}, "lines[0][unit_price]": {"0.12345"}}, "unit_price"},
		{"unknown field", url.Values{"lines[0][item]": {"1"}, "lines[0][colour]": {"red"}}, "colour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PurchaseLinesFromForm(tt.values)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, 0, ve.Line)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestRequisitionLinesFromForm(t *testing.T) {
	lines, err := RequisitionLinesFromForm(url.Values{
		"lines[0][item]": {"5"},
		"lines[0][qty]":  {" 8 "},
	})
	require.NoError(t, err)
	assert.Equal(t, []RequisitionLineInput{{ItemID: 5, Qty: 8}}, lines)

	lines, err = RequisitionLinesFromForm(url.Values{"note": {"only a note"}})
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = RequisitionLinesFromForm(url.Values{"lines[0][item]": {"5"}, "lines[0][unit_price]": {"1"}})
	assert.True(t, IsValidation(err), "requisitions do not carry prices")
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 12.5 ")
	require.NoError(t, err)
	assert.Equal(t, "12.5000", p.StringFixed(4))

	p, err = ParsePrice("3.10000")
	require.NoError(t, err, "trailing zeros beyond four places are harmless")
	assert.Equal(t, "3.1000", p.StringFixed(4))

	_, err = ParsePrice("abc")
	assert.Error(t, err)
}
