package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionConfig wires one register session to its collaborators.
type SessionConfig struct {
	Tenant        TenantProfile
	ViewportWidth int

	Catalog   ProductCatalog
	Directory CustomerDirectory
	Ledger    SaleLedger
	Printer   PrinterService

	// OpenDialog is the platform print dialog hook. Optional.
	OpenDialog func()
}

// Session bundles the cart/checkout subsystem for a single register. The cart
// is exclusively owned by the session; every mutation funnels through the
// store's single-writer operations.
type Session struct {
	Tenant   TenantProfile
	Cart     *CartStore
	Pricing  *PricingEngine
	Lookup   *CustomerLookup
	Intake   *BarcodeIntake
	Receipt  *ReceiptPrinter
	Checkout *CheckoutCoordinator
}

func NewSession(cfg SessionConfig) *Session {
	cart := NewCartStore()
	pricing := NewPricingEngine(cfg.Tenant.TaxRate)
	lookup := NewCustomerLookup(cfg.Directory)
	intake := NewBarcodeIntake(cfg.Catalog, cart)
	receipt := NewReceiptPrinter(cfg.Printer, cfg.Tenant, cfg.ViewportWidth, cfg.OpenDialog)
	checkout := NewCheckoutCoordinator(cart, pricing, lookup, cfg.Ledger, cfg.Catalog)
	checkout.OnCompleted(receipt.SaleCompleted)

	return &Session{
		Tenant:   cfg.Tenant,
		Cart:     cart,
		Pricing:  pricing,
		Lookup:   lookup,
		Intake:   intake,
		Receipt:  receipt,
		Checkout: checkout,
	}
}

// AddItem, RemoveItem, AdjustQuantity, SetPrice, ResetPrice and ClearCart
// wrap the cart store and re-derive the checkout browsing state afterwards.

func (s *Session) AddItem(p Product) {
	s.Cart.AddItem(p)
	s.Checkout.CartUpdated()
}

func (s *Session) RemoveItem(productID int) {
	s.Cart.RemoveItem(productID)
	s.Checkout.CartUpdated()
}

func (s *Session) AdjustQuantity(productID, delta int) {
	s.Cart.AdjustQuantity(productID, delta)
	s.Checkout.CartUpdated()
}

func (s *Session) SetPrice(productID int, price decimal.Decimal) (*PriceAdvisory, error) {
	return s.Cart.SetPrice(productID, price)
}

func (s *Session) ResetPrice(productID int) {
	s.Cart.ResetPrice(productID)
}

func (s *Session) ClearCart() {
	s.Cart.Clear()
	s.Checkout.CartUpdated()
}

// SetPaymentMethod records the method on the coordinator and toggles the
// credit-customer lookup: entering Credit activates it, leaving Credit
// cancels any in-flight search and clears the selection.
func (s *Session) SetPaymentMethod(m PaymentMethod, dueDate *time.Time) error {
	if err := s.Checkout.SetPaymentMethod(m, dueDate); err != nil {
		return err
	}
	if m == Credit {
		s.Lookup.Activate()
	} else {
		s.Lookup.Deactivate()
	}
	return nil
}

// Summary prices the live cart.
func (s *Session) Summary() CartSummary {
	return s.Pricing.Summarize(s.Cart.Items())
}

// Close tears the session down: pending debounces, scan notices and scheduled
// print work are all cancelled.
func (s *Session) Close() {
	s.Lookup.Close()
	s.Intake.Close()
	s.Receipt.Close()
}
