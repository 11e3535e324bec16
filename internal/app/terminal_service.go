package app

import (
	"context"
	"sync"

	"pos-terminal/internal/core"

	"github.com/google/uuid"
)

type terminalService struct {
	tenant    core.TenantProfile
	catalog   Catalog
	directory core.CustomerDirectory
	ledger    core.SaleLedger
	printer   core.PrinterService

	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewTerminalService constructs a terminalService that satisfies
// TerminalService.
func NewTerminalService(
	tenant core.TenantProfile,
	catalog Catalog,
	directory core.CustomerDirectory,
	ledger core.SaleLedger,
	printer core.PrinterService,
) TerminalService {
	return &terminalService{
		tenant:    tenant,
		catalog:   catalog,
		directory: directory,
		ledger:    ledger,
		printer:   printer,
		sessions:  make(map[string]*core.Session),
	}
}

func (s *terminalService) session(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &core.NotFoundError{Resource: "session", Key: id}
	}
	return sess, nil
}

func (s *terminalService) cartResult(sess *core.Session) CartResult {
	return CartResult{
		State:            sess.Checkout.State(),
		PaymentMethod:    sess.Checkout.PaymentMethod(),
		Summary:          sess.Summary(),
		SelectedCustomer: sess.Lookup.Selected(),
		FailureMessage:   sess.Checkout.FailureMessage(),
	}
}

func (s *terminalService) OpenSession(ctx context.Context, req OpenSessionRequest) (*SessionResult, error) {
	if req.ViewportWidth < 0 {
		return nil, &core.ValidationError{Message: "viewport width must be >= 0"}
	}

	sess := core.NewSession(core.SessionConfig{
		Tenant:        s.tenant,
		ViewportWidth: req.ViewportWidth,
		Catalog:       s.catalog,
		Directory:     s.directory,
		Ledger:        s.ledger,
		Printer:       s.printer,
	})

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return &SessionResult{SessionID: id, Tenant: s.tenant}, nil
}

func (s *terminalService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return &core.NotFoundError{Resource: "session", Key: sessionID}
	}
	sess.Close()
	return nil
}

func (s *terminalService) ListProducts(ctx context.Context) ([]core.Product, error) {
	return s.catalog.ListProducts(ctx)
}

func (s *terminalService) CartSummary(ctx context.Context, sessionID string) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) AddItem(ctx context.Context, sessionID string, productID int) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	sess.AddItem(*product)
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) RemoveItem(ctx context.Context, sessionID string, productID int) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.RemoveItem(productID)
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) AdjustQuantity(ctx context.Context, sessionID string, productID, delta int) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.AdjustQuantity(productID, delta)
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) SetPrice(ctx context.Context, sessionID string, req SetPriceRequest) (*PriceChangeResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	advisory, err := sess.SetPrice(req.ProductID, req.Price)
	if err != nil {
		return nil, err
	}
	return &PriceChangeResult{Advisory: advisory, Cart: s.cartResult(sess)}, nil
}

func (s *terminalService) ResetPrice(ctx context.Context, sessionID string, productID int) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.ResetPrice(productID)
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) ClearCart(ctx context.Context, sessionID string) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.ClearCart()
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) Scan(ctx context.Context, sessionID, code string) (*ScanResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Intake.Open()
	notice, err := sess.Intake.Resolve(ctx, code)
	if notice == nil {
		return nil, err
	}
	sess.Checkout.CartUpdated()

	// Lookup misses and backend errors are encoded in the notice; the scan
	// itself succeeded as an interaction.
	return &ScanResult{Notice: *notice, Cart: s.cartResult(sess)}, nil
}

func (s *terminalService) SetPayment(ctx context.Context, sessionID string, req SetPaymentRequest) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return sess.SetPaymentMethod(req.Method, req.DueDate)
}

func (s *terminalService) SearchCustomers(ctx context.Context, sessionID, query string) (*CustomerSearchResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lookup.SetQuery(query)
	return s.customerResult(sess), nil
}

func (s *terminalService) CustomerCandidates(ctx context.Context, sessionID string) (*CustomerSearchResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.customerResult(sess), nil
}

func (s *terminalService) customerResult(sess *core.Session) *CustomerSearchResult {
	return &CustomerSearchResult{
		Query:      sess.Lookup.Query(),
		Candidates: sess.Lookup.Candidates(),
		Selected:   sess.Lookup.Selected(),
	}
}

func (s *terminalService) SelectCustomer(ctx context.Context, sessionID string, customerID int) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	return sess.Lookup.Select(customerID)
}

func (s *terminalService) InitiateCheckout(ctx context.Context, sessionID string) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Checkout.InitiateCheckout(); err != nil {
		return nil, err
	}
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) ConfirmSale(ctx context.Context, sessionID string) (*SaleResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sale, err := sess.Checkout.ConfirmSale(ctx)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return &SaleResult{Duplicate: true}, nil
	}
	return &SaleResult{Sale: sale, TotalMismatch: sess.Checkout.TotalMismatch()}, nil
}

func (s *terminalService) CancelCheckout(ctx context.Context, sessionID string) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Checkout.Cancel(); err != nil {
		return nil, err
	}
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) NewSale(ctx context.Context, sessionID string) (*CartResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Checkout.NewSale(); err != nil {
		return nil, err
	}
	res := s.cartResult(sess)
	return &res, nil
}

func (s *terminalService) PrintReceipt(ctx context.Context, sessionID string) (*ReceiptResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Receipt.Print()
	return s.receiptResult(sess), nil
}

func (s *terminalService) DialogClosed(ctx context.Context, sessionID string) (*ReceiptResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Receipt.DialogClosed()
	return s.receiptResult(sess), nil
}

func (s *terminalService) ReceiptStatus(ctx context.Context, sessionID string) (*ReceiptResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.receiptResult(sess), nil
}

func (s *terminalService) receiptResult(sess *core.Session) *ReceiptResult {
	return &ReceiptResult{
		Visible:        sess.Receipt.Visible(),
		AwaitingDialog: sess.Receipt.AwaitingDialog(),
		Notice:         sess.Receipt.Notice(),
		LastResult:     sess.Receipt.LastResult(),
	}
}
