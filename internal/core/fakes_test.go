package core_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testProduct(id int, name string, price string, stock int) core.Product {
	return core.Product{
		ID:           id,
		Name:         name,
		SKU:          strings.ToUpper(name),
		Barcode:      "100" + name,
		SellingPrice: dec(price),
		BaseCost:     dec(price).Mul(dec("0.5")),
		AvailableQty: stock,
	}
}

type fakeCatalog struct {
	mu        sync.Mutex
	products  []core.Product
	lookupErr error
	listErr   error
	listCalls int
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeCatalog) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeCatalog) LookupByCode(ctx context.Context, code string) (*core.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, p := range f.products {
		if p.Barcode == code {
			cp := p
			return &cp, nil
		}
	}
	for _, p := range f.products {
		if strings.EqualFold(p.SKU, code) {
			cp := p
			return &cp, nil
		}
	}
	return nil, &core.NotFoundError{Resource: "product", Key: code}
}

type fakeDirectory struct {
	mu      sync.Mutex
	results map[string][]core.CreditCustomer
	delays  map[string]time.Duration
	err     error
	queries []string
}

func (f *fakeDirectory) Search(ctx context.Context, query string) ([]core.CreditCustomer, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	delay := f.delays[query]
	err := f.err
	results := f.results[query]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (f *fakeDirectory) issued() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

type fakeLedger struct {
	mu       sync.Mutex
	sale     *core.Sale
	err      error
	calls    int
	requests []core.SaleRequest
	block    chan struct{} // when non-nil, CreateSale waits on it
}

func (f *fakeLedger) CreateSale(ctx context.Context, req core.SaleRequest) (*core.Sale, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.sale, nil
}

func (f *fakeLedger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePrinter struct {
	mu           sync.Mutex
	result       core.PrintResult
	err          error
	calls        int
	ranFallback  bool
	callFallback bool // simulate the direct path handing off to the dialog
}

func (f *fakePrinter) SmartPrint(ctx context.Context, sale *core.Sale, tenant core.TenantProfile, fallback func()) (core.PrintResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return core.PrintResult{}, f.err
	}
	if f.callFallback {
		f.ranFallback = true
		fallback()
		return core.PrintResult{UsedFallback: true, Message: "print dialog opened"}, nil
	}
	return f.result, nil
}

func (f *fakePrinter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// waitUntil polls cond for up to a second, failing the test when it never
// becomes true.
func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition never met: %s", msg)
}
