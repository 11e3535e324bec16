package core

import "context"

// ProductCatalog is the read side of the product backend.
type ProductCatalog interface {
	// ListProducts returns all sellable products for the tenant.
	ListProducts(ctx context.Context) ([]Product, error)
	// LookupByCode resolves a scanned code: barcode match first, exact SKU
	// second. Returns *NotFoundError when neither matches.
	LookupByCode(ctx context.Context, code string) (*Product, error)
}

// CustomerDirectory searches credit customers by free text. An empty query
// returns the default candidate set.
type CustomerDirectory interface {
	Search(ctx context.Context, query string) ([]CreditCustomer, error)
}

// SaleLedger persists completed sales. Subtotal, tax and total are computed
// server-side; the terminal verifies them against its own numbers.
type SaleLedger interface {
	CreateSale(ctx context.Context, req SaleRequest) (*Sale, error)
}

// TenantConfig exposes the tenant profile (tax rate, currency).
type TenantConfig interface {
	Profile(ctx context.Context) (*TenantProfile, error)
}

// PrinterService attempts a direct print and invokes fallback (the platform
// print dialog) when the direct path is unavailable.
type PrinterService interface {
	SmartPrint(ctx context.Context, sale *Sale, tenant TenantProfile, fallback func()) (PrintResult, error)
}
