package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultNoticeTTL = 3 * time.Second

type ScanOutcome string

const (
	ScanAdded    ScanOutcome = "added"
	ScanNotFound ScanOutcome = "not_found"
	ScanError    ScanOutcome = "error"
)

// ScanNotice is the transient message shown after a scan. It auto-dismisses
// after the notice TTL.
type ScanNotice struct {
	Outcome ScanOutcome `json:"outcome"`
	Message string      `json:"message"`
	Product *Product    `json:"product,omitempty"`
}

// BarcodeIntake resolves a scanned code to a product and feeds the cart.
// The scan surface is one-shot: it closes after a single resolution, whatever
// the outcome, and must be re-opened for the next scan. That serializes
// scans by construction.
type BarcodeIntake struct {
	mu sync.Mutex

	catalog   ProductCatalog
	cart      *CartStore
	noticeTTL time.Duration

	open   bool
	notice *ScanNotice
	timer  *time.Timer
}

func NewBarcodeIntake(catalog ProductCatalog, cart *CartStore) *BarcodeIntake {
	return &BarcodeIntake{
		catalog:   catalog,
		cart:      cart,
		noticeTTL: defaultNoticeTTL,
	}
}

// SetNoticeTTL overrides the auto-dismiss window. Wiring/test hook.
func (b *BarcodeIntake) SetNoticeTTL(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.noticeTTL = d
}

// Open arms the scan surface for exactly one resolution.
func (b *BarcodeIntake) Open() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = true
}

func (b *BarcodeIntake) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Resolve looks the code up (barcode first, exact SKU second — the catalog
// owns that order) and on a match adds the product to the cart. The surface
// closes before the lookup result is handled, so a second scan cannot begin
// mid-resolution. The returned notice is also retained until it auto-
// dismisses.
func (b *BarcodeIntake) Resolve(ctx context.Context, code string) (*ScanNotice, error) {
	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return nil, &ValidationError{Message: "scan surface is not open"}
	}
	b.open = false
	b.mu.Unlock()

	code = strings.TrimSpace(code)
	product, err := b.catalog.LookupByCode(ctx, code)

	var n ScanNotice
	var nfe *NotFoundError
	switch {
	case err == nil:
		b.cart.AddItem(*product)
		n = ScanNotice{
			Outcome: ScanAdded,
			Message: fmt.Sprintf("%s added to cart", product.Name),
			Product: product,
		}
		err = nil
	case errors.As(err, &nfe):
		n = ScanNotice{
			Outcome: ScanNotFound,
			Message: fmt.Sprintf("no product matches code %q", code),
		}
	default:
		n = ScanNotice{
			Outcome: ScanError,
			Message: "product lookup failed, please try again",
		}
	}

	b.mu.Lock()
	b.notice = &n
	if b.timer != nil {
		b.timer.Stop()
	}
	notice := b.notice
	b.timer = time.AfterFunc(b.noticeTTL, func() {
		b.dismiss(notice)
	})
	b.mu.Unlock()

	return &n, err
}

func (b *BarcodeIntake) dismiss(n *ScanNotice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.notice == n {
		b.notice = nil
	}
}

// Notice returns the live transient notice, or nil once dismissed.
func (b *BarcodeIntake) Notice() *ScanNotice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

// Close stops the dismiss timer on session teardown.
func (b *BarcodeIntake) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.notice = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
