package core

import (
	"context"
	"log"
	"sync"
	"time"
)

// Receipt timing. Direct printing waits for the receipt view to settle;
// a successful direct print auto-dismisses the view shortly after.
const (
	desktopMinWidth     = 1024
	defaultSettleDelay  = 150 * time.Millisecond
	defaultDismissAfter = 2 * time.Second
)

// PrintResult is the printer service's verdict: either the direct path
// printed, or the platform print dialog was invoked instead.
type PrintResult struct {
	UsedFallback bool   `json:"used_fallback"`
	Message      string `json:"message"`
}

// ReceiptPrinter runs the post-completion print side effect. It can never
// block, roll back or flag a sale: print failures surface as a notice only.
//
// On desktop-class viewports the direct print path runs automatically after
// a settle delay; when the printer service falls back to the platform dialog,
// dismissal of the receipt view is deferred until the dialog's close signal.
type ReceiptPrinter struct {
	mu sync.Mutex

	printer    PrinterService
	tenant     TenantProfile
	openDialog func()

	viewportWidth int
	settleDelay   time.Duration
	dismissAfter  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	visible        bool
	sale           *Sale
	awaitingDialog bool
	lastResult     *PrintResult
	notice         string
}

// NewReceiptPrinter wires the printer for one register session. openDialog is
// the platform print dialog hook handed to the printer service as fallback;
// nil is replaced with a no-op.
func NewReceiptPrinter(printer PrinterService, tenant TenantProfile, viewportWidth int, openDialog func()) *ReceiptPrinter {
	if openDialog == nil {
		openDialog = func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReceiptPrinter{
		printer:       printer,
		tenant:        tenant,
		openDialog:    openDialog,
		viewportWidth: viewportWidth,
		settleDelay:   defaultSettleDelay,
		dismissAfter:  defaultDismissAfter,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// SetTimings overrides the settle and dismiss delays. Wiring/test hook.
func (p *ReceiptPrinter) SetTimings(settle, dismiss time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settleDelay = settle
	p.dismissAfter = dismiss
}

// SaleCompleted shows the receipt for a freshly persisted sale and, on
// desktop-class viewports, schedules the direct print attempt.
func (p *ReceiptPrinter) SaleCompleted(sale *Sale) {
	p.mu.Lock()
	p.sale = sale
	p.visible = true
	p.awaitingDialog = false
	p.lastResult = nil
	p.notice = ""
	settle := p.settleDelay
	desktop := p.viewportWidth >= desktopMinWidth
	p.mu.Unlock()

	if desktop {
		time.AfterFunc(settle, p.runPrint)
	}
}

// Print re-runs the same fallback chain on demand.
func (p *ReceiptPrinter) Print() {
	p.runPrint()
}

func (p *ReceiptPrinter) runPrint() {
	p.mu.Lock()
	if p.ctx.Err() != nil || !p.visible || p.sale == nil {
		p.mu.Unlock()
		return
	}
	sale := p.sale
	ctx := p.ctx
	p.mu.Unlock()

	res, err := p.printer.SmartPrint(ctx, sale, p.tenant, p.openDialog)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.Err() != nil || p.sale != sale {
		return
	}
	if err != nil {
		// Non-fatal: the sale is already persisted.
		log.Printf("receipt print for sale %d failed: %v", sale.ID, err)
		p.notice = "could not print receipt"
		return
	}

	p.lastResult = &res
	p.notice = res.Message
	if res.UsedFallback {
		// Dialog is up; wait for its close signal before dismissing.
		p.awaitingDialog = true
		return
	}
	time.AfterFunc(p.dismissAfter, func() {
		p.dismissFor(sale)
	})
}

// DialogClosed is the platform dialog's close signal.
func (p *ReceiptPrinter) DialogClosed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.awaitingDialog {
		p.awaitingDialog = false
		p.visible = false
	}
}

func (p *ReceiptPrinter) dismissFor(sale *Sale) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sale == sale && !p.awaitingDialog {
		p.visible = false
	}
}

// Visible reports whether the receipt view is showing.
func (p *ReceiptPrinter) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// AwaitingDialog reports whether dismissal is deferred on the print dialog.
func (p *ReceiptPrinter) AwaitingDialog() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.awaitingDialog
}

// Notice returns the latest print notice text.
func (p *ReceiptPrinter) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

// LastResult returns the most recent printer verdict, or nil.
func (p *ReceiptPrinter) LastResult() *PrintResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastResult
}

// Close cancels any scheduled print work on session teardown.
func (p *ReceiptPrinter) Close() {
	p.cancel()
}
