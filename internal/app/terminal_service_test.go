package app

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	mu       sync.Mutex
	products []core.Product
}

func (c *stubCatalog) ListProducts(ctx context.Context) ([]core.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *stubCatalog) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, &core.NotFoundError{Resource: "product", Key: strconv.Itoa(id)}
}

func (c *stubCatalog) LookupByCode(ctx context.Context, code string) (*core.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.Barcode == code || p.SKU == code {
			cp := p
			return &cp, nil
		}
	}
	return nil, &core.NotFoundError{Resource: "product", Key: code}
}

type stubDirectory struct {
	customers []core.CreditCustomer
}

func (d *stubDirectory) Search(ctx context.Context, query string) ([]core.CreditCustomer, error) {
	return d.customers, nil
}

type stubLedger struct {
	mu    sync.Mutex
	calls int
	sale  *core.Sale
	err   error
}

func (l *stubLedger) CreateSale(ctx context.Context, req core.SaleRequest) (*core.Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.sale, nil
}

type stubPrinter struct{}

func (p *stubPrinter) SmartPrint(ctx context.Context, sale *core.Sale, tenant core.TenantProfile, fallback func()) (core.PrintResult, error) {
	return core.PrintResult{Message: "printed"}, nil
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(catalog *stubCatalog, ledger *stubLedger) TerminalService {
	return NewTerminalService(
		core.TenantProfile{Name: "Demo", Currency: "KES", TaxRate: money("0.16")},
		catalog,
		&stubDirectory{customers: []core.CreditCustomer{{ID: 7, Name: "Jane Wanjiku"}}},
		ledger,
		&stubPrinter{},
	)
}

func soda() core.Product {
	return core.Product{
		ID: 1, Name: "Soda 500ml", SKU: "SODA500", Barcode: "5901234123457",
		SellingPrice: money("116.00"), BaseCost: money("60.00"), AvailableQty: 10,
	}
}

func openSession(t *testing.T, svc TerminalService) string {
	t.Helper()
	res, err := svc.OpenSession(context.Background(), OpenSessionRequest{ViewportWidth: 1280})
	require.NoError(t, err)
	return res.SessionID
}

func TestTerminalService_SessionLifecycle(t *testing.T) {
	svc := newService(&stubCatalog{products: []core.Product{soda()}}, &stubLedger{})
	ctx := context.Background()

	id := openSession(t, svc)

	cart, err := svc.CartSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StateIdle, cart.State)

	require.NoError(t, svc.CloseSession(ctx, id))

	_, err = svc.CartSummary(ctx, id)
	var nfe *core.NotFoundError
	assert.ErrorAs(t, err, &nfe)

	err = svc.CloseSession(ctx, id)
	assert.ErrorAs(t, err, &nfe)
}

func TestTerminalService_CartFlow(t *testing.T) {
	svc := newService(&stubCatalog{products: []core.Product{soda()}}, &stubLedger{})
	ctx := context.Background()
	id := openSession(t, svc)

	cart, err := svc.AddItem(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, core.StateReviewCart, cart.State)
	require.Len(t, cart.Summary.Lines, 1)

	cart, err = svc.AdjustQuantity(ctx, id, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Summary.Lines[0].Quantity)
	assert.True(t, cart.Summary.Total.Equal(money("232.00")))
	assert.True(t, cart.Summary.Subtotal.Equal(money("200.00")))

	priced, err := svc.SetPrice(ctx, id, SetPriceRequest{ProductID: 1, Price: money("50.00")})
	require.NoError(t, err)
	require.NotNil(t, priced.Advisory, "below-cost override must warn")
	assert.True(t, priced.Cart.Summary.Total.Equal(money("100.00")))

	cart, err = svc.ResetPrice(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, cart.Summary.Total.Equal(money("232.00")))

	cart, err = svc.ClearCart(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StateIdle, cart.State)
	assert.Empty(t, cart.Summary.Lines)

	_, err = svc.AddItem(ctx, id, 42)
	var nfe *core.NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestTerminalService_ScanFlow(t *testing.T) {
	svc := newService(&stubCatalog{products: []core.Product{soda()}}, &stubLedger{})
	ctx := context.Background()
	id := openSession(t, svc)

	res, err := svc.Scan(ctx, id, "5901234123457")
	require.NoError(t, err)
	assert.Equal(t, core.ScanAdded, res.Notice.Outcome)
	assert.Len(t, res.Cart.Summary.Lines, 1)
	assert.Equal(t, core.StateReviewCart, res.Cart.State)

	res, err = svc.Scan(ctx, id, "9999999")
	require.NoError(t, err, "a miss is a notice, not a request failure")
	assert.Equal(t, core.ScanNotFound, res.Notice.Outcome)
	assert.Contains(t, res.Notice.Message, "9999999")
	assert.Len(t, res.Cart.Summary.Lines, 1)
}

func TestTerminalService_ConfirmSale(t *testing.T) {
	ledger := &stubLedger{sale: &core.Sale{
		ID: 5, Subtotal: money("100.00"), Tax: money("16.00"), Total: money("116.00"),
	}}
	svc := newService(&stubCatalog{products: []core.Product{soda()}}, ledger)
	ctx := context.Background()
	id := openSession(t, svc)

	_, err := svc.AddItem(ctx, id, 1)
	require.NoError(t, err)
	_, err = svc.InitiateCheckout(ctx, id)
	require.NoError(t, err)

	res, err := svc.ConfirmSale(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, res.Sale)
	assert.Equal(t, 5, res.Sale.ID)
	assert.False(t, res.TotalMismatch)

	cart, err := svc.CartSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, cart.State)
	assert.Empty(t, cart.Summary.Lines)
}

func TestTerminalService_CreditNeedsCustomer(t *testing.T) {
	svc := newService(&stubCatalog{products: []core.Product{soda()}}, &stubLedger{})
	ctx := context.Background()
	id := openSession(t, svc)

	_, err := svc.AddItem(ctx, id, 1)
	require.NoError(t, err)
	due := time.Now().AddDate(0, 0, 14)
	require.NoError(t, svc.SetPayment(ctx, id, SetPaymentRequest{Method: core.Credit, DueDate: &due}))
	_, err = svc.InitiateCheckout(ctx, id)
	require.NoError(t, err)

	_, err = svc.ConfirmSale(ctx, id)
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)

	cart, err := svc.CartSummary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StateConfirming, cart.State)
	assert.Len(t, cart.Summary.Lines, 1, "cart untouched on validation failure")
}

func TestTerminalService_ReceiptStatus(t *testing.T) {
	ledger := &stubLedger{sale: &core.Sale{ID: 5, Total: money("116.00")}}
	svc := newService(&stubCatalog{products: []core.Product{soda()}}, ledger)
	ctx := context.Background()
	id := openSession(t, svc)

	_, err := svc.AddItem(ctx, id, 1)
	require.NoError(t, err)
	_, err = svc.InitiateCheckout(ctx, id)
	require.NoError(t, err)
	_, err = svc.ConfirmSale(ctx, id)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		res, err := svc.ReceiptStatus(ctx, id)
		return err == nil && res.Visible
	}, time.Second, 5*time.Millisecond, "receipt shows after completion")
}
