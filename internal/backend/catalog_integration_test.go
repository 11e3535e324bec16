package backend_test

import (
	"context"
	"errors"
	"testing"

	"pos-terminal/internal/backend"
	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

func TestPgCatalog_ListProducts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := backend.NewPgCatalog(pool, testTenantID)
	products, err := catalog.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	// Ordered by name.
	if products[0].Name != "Bread Loaf" {
		t.Errorf("expected Bread Loaf first, got %s", products[0].Name)
	}
	if !products[0].SellingPrice.Equal(decimal.RequireFromString("58.00")) {
		t.Errorf("expected price 58.00, got %s", products[0].SellingPrice)
	}
}

func TestPgCatalog_LookupByCode(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := backend.NewPgCatalog(pool, testTenantID)

	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{name: "barcode match", code: "5901234123457", expected: "Soda 500ml"},
		{name: "sku fallback", code: "BREAD01", expected: "Bread Loaf"},
		{name: "sku is case-insensitive", code: "bread01", expected: "Bread Loaf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := catalog.LookupByCode(ctx, tt.code)
			if err != nil {
				t.Fatalf("LookupByCode(%q): %v", tt.code, err)
			}
			if p.Name != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, p.Name)
			}
		})
	}

	_, err := catalog.LookupByCode(ctx, "9999999")
	var nfe *core.NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("expected not-found error for unknown code, got %v", err)
	}
}

func TestPgDirectory_Search(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	directory := backend.NewPgDirectory(pool, testTenantID)

	// Empty query returns the default candidate set.
	all, err := directory.Search(ctx, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(all))
	}

	// Name and email both match.
	byName, err := directory.Search(ctx, "wanjiku")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Jane Wanjiku" {
		t.Errorf("expected Jane Wanjiku, got %+v", byName)
	}

	byEmail, err := directory.Search(ctx, "jane@")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(byEmail) != 1 {
		t.Errorf("expected email match, got %+v", byEmail)
	}

	none, err := directory.Search(ctx, "nobody")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no candidates, got %+v", none)
	}
}

func TestPgTenantConfig_Profile(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	profile, err := backend.NewPgTenantConfig(pool, testTenantID).Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.Currency != "KES" {
		t.Errorf("expected KES, got %s", profile.Currency)
	}
	if !profile.TaxRate.Equal(decimal.RequireFromString("0.16")) {
		t.Errorf("expected tax rate 0.16, got %s", profile.TaxRate)
	}

	_, err = backend.NewPgTenantConfig(pool, 999).Profile(context.Background())
	var nfe *core.NotFoundError
	if !errors.As(err, &nfe) {
		t.Errorf("expected not-found for unknown tenant, got %v", err)
	}
}
