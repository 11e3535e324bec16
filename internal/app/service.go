package app

import (
	"context"

	"pos-terminal/internal/core"
)

// Catalog is the product backend as the terminal sees it: the core read side
// plus direct resolution by id for manual cart entry.
type Catalog interface {
	core.ProductCatalog
	GetProduct(ctx context.Context, id int) (*core.Product, error)
}

// TerminalService is the single interface the UI adapter calls. It decouples
// presentation from the register logic; implementations contain no display
// concerns.
type TerminalService interface {
	// OpenSession starts a register session for one operator/viewport.
	OpenSession(ctx context.Context, req OpenSessionRequest) (*SessionResult, error)

	// CloseSession tears the session down, cancelling any pending debounced
	// searches and scheduled print work.
	CloseSession(ctx context.Context, sessionID string) error

	// ListProducts returns the sellable catalog for manual cart entry.
	ListProducts(ctx context.Context) ([]core.Product, error)

	// CartSummary returns the live cart pricing and checkout state.
	CartSummary(ctx context.Context, sessionID string) (*CartResult, error)

	// AddItem puts one unit of the product into the cart (or increments it).
	AddItem(ctx context.Context, sessionID string, productID int) (*CartResult, error)

	// RemoveItem deletes the cart line.
	RemoveItem(ctx context.Context, sessionID string, productID int) (*CartResult, error)

	// AdjustQuantity applies a delta to the line's quantity.
	AdjustQuantity(ctx context.Context, sessionID string, productID, delta int) (*CartResult, error)

	// SetPrice overrides the line's unit price; a below-cost price still
	// applies but returns an advisory.
	SetPrice(ctx context.Context, sessionID string, req SetPriceRequest) (*PriceChangeResult, error)

	// ResetPrice restores the standard selling price.
	ResetPrice(ctx context.Context, sessionID string, productID int) (*CartResult, error)

	// ClearCart empties the cart.
	ClearCart(ctx context.Context, sessionID string) (*CartResult, error)

	// Scan resolves a barcode (or SKU) and feeds the cart. Each call is one
	// open-scan-close cycle of the scan surface.
	Scan(ctx context.Context, sessionID, code string) (*ScanResult, error)

	// SetPayment records the payment method; Credit activates the customer
	// lookup, anything else cancels it.
	SetPayment(ctx context.Context, sessionID string, req SetPaymentRequest) error

	// SearchCustomers registers a keystroke in the debounced credit-customer
	// search and returns the candidates known so far.
	SearchCustomers(ctx context.Context, sessionID, query string) (*CustomerSearchResult, error)

	// CustomerCandidates returns the current candidate set and selection.
	CustomerCandidates(ctx context.Context, sessionID string) (*CustomerSearchResult, error)

	// SelectCustomer pins a candidate for the credit sale.
	SelectCustomer(ctx context.Context, sessionID string, customerID int) error

	// InitiateCheckout moves the session from cart review to confirmation.
	InitiateCheckout(ctx context.Context, sessionID string) (*CartResult, error)

	// ConfirmSale submits the sale. Duplicate confirmations while one is in
	// flight are absorbed.
	ConfirmSale(ctx context.Context, sessionID string) (*SaleResult, error)

	// CancelCheckout returns from confirmation to cart review.
	CancelCheckout(ctx context.Context, sessionID string) (*CartResult, error)

	// NewSale closes the completed-sale screen and readies the register.
	NewSale(ctx context.Context, sessionID string) (*CartResult, error)

	// PrintReceipt re-runs the print fallback chain on demand.
	PrintReceipt(ctx context.Context, sessionID string) (*ReceiptResult, error)

	// DialogClosed is the platform print dialog's close signal.
	DialogClosed(ctx context.Context, sessionID string) (*ReceiptResult, error)

	// ReceiptStatus reports the receipt view state.
	ReceiptStatus(ctx context.Context, sessionID string) (*ReceiptResult, error)
}
