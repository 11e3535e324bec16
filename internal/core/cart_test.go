package core_test

import (
	"testing"

	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

func TestCartStore_AddItem(t *testing.T) {
	cart := core.NewCartStore()
	p := testProduct(1, "soda", "50.00", 3)

	cart.AddItem(p)
	cart.AddItem(p)

	items := cart.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestCartStore_AddItem_CappedAtStock(t *testing.T) {
	cart := core.NewCartStore()
	p := testProduct(1, "soda", "50.00", 2)

	for i := 0; i < 5; i++ {
		cart.AddItem(p)
	}

	if got := cart.Items()[0].Quantity; got != 2 {
		t.Errorf("expected quantity capped at 2, got %d", got)
	}
}

func TestCartStore_AddItem_ServiceIgnoresStock(t *testing.T) {
	cart := core.NewCartStore()
	p := testProduct(1, "repair", "500.00", 0)
	p.IsService = true

	for i := 0; i < 4; i++ {
		cart.AddItem(p)
	}

	if got := cart.Items()[0].Quantity; got != 4 {
		t.Errorf("expected quantity 4 for service item, got %d", got)
	}
}

func TestCartStore_AdjustQuantity(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		service  bool
		start    int
		delta    int
		expected int
	}{
		{name: "increment", stock: 10, start: 1, delta: 2, expected: 3},
		{name: "floor at one", stock: 10, start: 2, delta: -5, expected: 1},
		{name: "rejected beyond stock", stock: 3, start: 3, delta: 1, expected: 3},
		{name: "service unbounded", stock: 0, service: true, start: 1, delta: 9, expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := core.NewCartStore()
			p := testProduct(1, "soda", "50.00", tt.stock)
			p.IsService = tt.service
			cart.AddItem(p)
			cart.AdjustQuantity(1, tt.start-1)
			cart.AdjustQuantity(1, tt.delta)

			if got := cart.Items()[0].Quantity; got != tt.expected {
				t.Errorf("expected quantity %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestCartStore_RemoveItem(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))
	cart.AddItem(testProduct(2, "bread", "30.00", 5))

	cart.RemoveItem(1)

	items := cart.Items()
	if len(items) != 1 || items[0].Product.ID != 2 {
		t.Fatalf("expected only product 2 to remain, got %+v", items)
	}
}

func TestCartStore_SetPrice_Override(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))

	advisory, err := cart.SetPrice(1, dec("45.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advisory != nil {
		t.Errorf("no advisory expected above cost, got %+v", advisory)
	}

	it := cart.Items()[0]
	if !it.Override.Valid || !it.Override.Decimal.Equal(dec("45.00")) {
		t.Errorf("expected override 45.00, got %+v", it.Override)
	}
}

func TestCartStore_SetPrice_NearStandardClearsOverride(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))

	if _, err := cart.SetPrice(1, dec("40.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Within 0.01 of standard: equivalent to no override.
	if _, err := cart.SetPrice(1, dec("50.005")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cart.Items()[0].Override.Valid {
		t.Error("expected override cleared for price within 0.01 of standard")
	}
}

func TestCartStore_SetPrice_BelowCostAdvisory(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5)) // cost 25.00

	advisory, err := cart.SetPrice(1, dec("20.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advisory == nil {
		t.Fatal("expected a below-cost advisory")
	}
	// Advisory only: the override still lands.
	if !cart.Items()[0].Override.Valid {
		t.Error("below-cost price must still apply")
	}
}

func TestCartStore_SetPrice_Invalid(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))

	if _, err := cart.SetPrice(1, dec("-1.00")); err == nil {
		t.Error("expected error for negative price")
	}
	if _, err := cart.SetPrice(99, dec("10.00")); err == nil {
		t.Error("expected error for product not in cart")
	}
}

func TestCartStore_ResetPrice(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))

	if _, err := cart.SetPrice(1, dec("44.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.ResetPrice(1)
	cart.ResetPrice(1) // idempotent

	it := cart.Items()[0]
	if it.Override.Valid {
		t.Error("expected override cleared")
	}
	if !core.EffectiveUnitPrice(it).Equal(dec("50.00")) {
		t.Errorf("expected standard price restored exactly, got %s", core.EffectiveUnitPrice(it))
	}
}

func TestCartStore_RemoveSold(t *testing.T) {
	cart := core.NewCartStore()
	soda := testProduct(1, "soda", "50.00", 10)
	bread := testProduct(2, "bread", "30.00", 5)
	cart.AddItem(soda)
	cart.AddItem(bread)

	snapshot := cart.Items()

	// Quantity grown after the snapshot: only the snapshotted portion leaves.
	cart.AddItem(soda)
	cart.RemoveSold(snapshot)

	items := cart.Items()
	if len(items) != 1 || items[0].Product.ID != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected one unsold soda left, got %+v", items)
	}

	// Removing a snapshot of a since-emptied cart is a no-op.
	cart.Clear()
	cart.RemoveSold(snapshot)
	if !cart.IsEmpty() {
		t.Error("expected empty cart")
	}
}

func TestCartStore_Clear(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))
	cart.Clear()

	if !cart.IsEmpty() {
		t.Error("expected empty cart after clear")
	}
}

func TestCartStore_ItemsReturnsSnapshot(t *testing.T) {
	cart := core.NewCartStore()
	cart.AddItem(testProduct(1, "soda", "50.00", 5))

	items := cart.Items()
	items[0].Quantity = 99
	items[0].Override = decimal.NullDecimal{Decimal: dec("1.00"), Valid: true}

	if got := cart.Items()[0]; got.Quantity != 1 || got.Override.Valid {
		t.Error("mutating the snapshot must not affect the store")
	}
}
