package model

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"BOLT-10", "bolt-10"},
		{"  Screw M4 x 20 ", "screw-m4-x-20"},
		{"A__B", "a-b"},
		{"--x--", "x"},
		{"Ñandú", "and"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStockThresholds(t *testing.T) {
	item := &InventoryItem{Stock: 5, MinStock: 5, MaxStock: 10}
	if !item.LowStock() {
		t.Error("stock equal to minimum should be low")
	}
	item.Stock = 6
	if item.LowStock() {
		t.Error("stock above minimum should not be low")
	}
	item.Stock = 11
	if !item.OverMax() {
		t.Error("stock above maximum should be flagged")
	}
	item.MaxStock = 0
	if item.OverMax() {
		t.Error("zero maximum means no ceiling")
	}
}
