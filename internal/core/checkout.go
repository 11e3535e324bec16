package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type CheckoutState string

const (
	StateIdle       CheckoutState = "idle"
	StateReviewCart CheckoutState = "review_cart"
	StateConfirming CheckoutState = "confirming"
	StateSubmitting CheckoutState = "submitting"
	StateCompleted  CheckoutState = "completed"
	StateFailed     CheckoutState = "failed"
)

const genericCheckoutFailure = "could not complete the sale, please try again"

// CheckoutCoordinator drives the sale through
// Idle → ReviewCart → Confirming → Submitting → Completed | Failed.
//
// The submitting flag is the idempotency guard: it is set before the ledger
// call and cleared on every exit path, so a second ConfirmSale while one is
// in flight is a no-op rather than a duplicate sale.
type CheckoutCoordinator struct {
	mu sync.Mutex

	cart    *CartStore
	pricing *PricingEngine
	lookup  *CustomerLookup
	ledger  SaleLedger
	catalog ProductCatalog

	state      CheckoutState
	submitting bool

	payment PaymentMethod
	dueDate *time.Time

	lastSale      *Sale
	failureMsg    string
	totalMismatch bool

	// onCompleted fires after a sale persists (receipt hook). onRefresh
	// receives the re-read catalog after the post-sale stock refresh. Both
	// run on background goroutines and must not block checkout.
	onCompleted func(*Sale)
	onRefresh   func([]Product)
}

func NewCheckoutCoordinator(cart *CartStore, pricing *PricingEngine, lookup *CustomerLookup, ledger SaleLedger, catalog ProductCatalog) *CheckoutCoordinator {
	return &CheckoutCoordinator{
		cart:    cart,
		pricing: pricing,
		lookup:  lookup,
		ledger:  ledger,
		catalog: catalog,
		state:   StateIdle,
		payment: Cash,
	}
}

// OnCompleted registers the post-sale hook. Must be set during wiring,
// before any checkout runs.
func (c *CheckoutCoordinator) OnCompleted(fn func(*Sale)) { c.onCompleted = fn }

// OnRefresh registers an optional consumer for the re-read catalog. The
// post-sale refresh request fires regardless; the hook only observes it.
func (c *CheckoutCoordinator) OnRefresh(fn func([]Product)) { c.onRefresh = fn }

func (c *CheckoutCoordinator) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FailureMessage returns the message of the most recent failed submission.
func (c *CheckoutCoordinator) FailureMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failureMsg
}

// LastSale returns the most recently completed sale, or nil.
func (c *CheckoutCoordinator) LastSale() *Sale {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSale
}

// TotalMismatch reports whether the ledger's total disagreed with the
// terminal's on the last completed sale.
func (c *CheckoutCoordinator) TotalMismatch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalMismatch
}

// PaymentMethod returns the currently selected method.
func (c *CheckoutCoordinator) PaymentMethod() PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payment
}

// SetPaymentMethod records the method and, for Credit, the due date.
// dueDate is ignored for non-credit methods.
func (c *CheckoutCoordinator) SetPaymentMethod(m PaymentMethod, dueDate *time.Time) error {
	if !ValidPaymentMethod(m) {
		return &ValidationError{Message: "unknown payment method: " + string(m)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return &ValidationError{Message: "cannot change payment method while submitting"}
	}
	c.payment = m
	if m == Credit {
		c.dueDate = dueDate
	} else {
		c.dueDate = nil
	}
	return nil
}

// CartUpdated re-derives the browsing states after a cart mutation. It moves
// the machine between Idle and ReviewCart, and pulls a finished or failed
// checkout back into review when the operator starts editing again.
func (c *CheckoutCoordinator) CartUpdated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateIdle, StateReviewCart, StateCompleted, StateFailed:
		if c.cart.IsEmpty() {
			c.state = StateIdle
		} else {
			c.state = StateReviewCart
		}
	}
}

// InitiateCheckout moves ReviewCart → Confirming. A failed checkout may also
// be re-initiated, since its cart is preserved.
func (c *CheckoutCoordinator) InitiateCheckout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateReviewCart, StateFailed:
		if c.cart.IsEmpty() {
			return &ValidationError{Message: "cart is empty"}
		}
		c.state = StateConfirming
		return nil
	default:
		return &ValidationError{Message: "checkout can only start from cart review, current state: " + string(c.state)}
	}
}

// Cancel moves Confirming → ReviewCart. Pure state change, no side effects.
func (c *CheckoutCoordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConfirming {
		return &ValidationError{Message: "nothing to cancel, current state: " + string(c.state)}
	}
	c.state = StateReviewCart
	return nil
}

// NewSale closes the completed-sale screen. The register returns to Idle, or
// straight to ReviewCart when items scanned during submission are still
// waiting to be sold.
func (c *CheckoutCoordinator) NewSale() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCompleted {
		return &ValidationError{Message: "no completed sale to close, current state: " + string(c.state)}
	}
	if c.cart.IsEmpty() {
		c.state = StateIdle
	} else {
		c.state = StateReviewCart
	}
	c.failureMsg = ""
	return nil
}

// ConfirmSale submits the cart snapshot to the ledger. A call while another
// submission is in flight returns (nil, nil) without any effect. Validation
// failures happen before any network call, leave the cart untouched and
// return the machine to Confirming.
func (c *CheckoutCoordinator) ConfirmSale(ctx context.Context) (*Sale, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, nil
	}
	if c.state != StateConfirming {
		err := &ValidationError{Message: "sale must be confirmed from the confirmation step, current state: " + string(c.state)}
		c.mu.Unlock()
		return nil, err
	}

	// Guard up before anything else; every return below clears it.
	c.submitting = true

	if c.cart.IsEmpty() {
		c.submitting = false
		c.mu.Unlock()
		return nil, &ValidationError{Message: "cart is empty"}
	}

	var customerID *int
	if c.payment == Credit {
		cust := c.lookup.Selected()
		if cust == nil {
			c.submitting = false
			c.mu.Unlock()
			return nil, &ValidationError{Message: "a customer must be selected for a credit sale"}
		}
		if c.dueDate == nil {
			c.submitting = false
			c.mu.Unlock()
			return nil, &ValidationError{Message: "a due date is required for a credit sale"}
		}
		if c.dueDate.Before(time.Now().Truncate(24 * time.Hour)) {
			c.submitting = false
			c.mu.Unlock()
			return nil, &ValidationError{Message: "due date cannot be in the past"}
		}
		id := cust.ID
		customerID = &id
	}

	items := c.cart.Items()
	req := SaleRequest{
		IdempotencyKey: uuid.NewString(),
		PaymentMethod:  c.payment,
		CustomerID:     customerID,
		DueDate:        c.dueDate,
		Items:          make([]SaleItemInput, 0, len(items)),
	}
	for _, it := range items {
		req.Items = append(req.Items, SaleItemInput{
			ProductID:   it.Product.ID,
			Quantity:    it.Quantity,
			CustomPrice: it.Override,
		})
	}
	local := c.pricing.Summarize(items)

	c.state = StateSubmitting
	c.mu.Unlock()

	sale, err := c.ledger.CreateSale(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if err != nil {
		c.state = StateFailed
		c.failureMsg = failureMessage(err)
		return nil, err
	}

	c.totalMismatch = !sale.Total.Equal(local.Total)
	if c.totalMismatch {
		log.Printf("sale %d: ledger total %s differs from terminal total %s",
			sale.ID, sale.Total.StringFixed(2), local.Total.StringFixed(2))
	}

	// Only the snapshot that was sold leaves the cart: anything scanned or
	// grown while the submission was in flight stays behind, unsold.
	c.cart.RemoveSold(items)
	c.lastSale = sale
	c.failureMsg = ""
	c.state = StateCompleted

	if c.catalog != nil {
		go c.refreshStock()
	}
	if c.onCompleted != nil {
		go c.onCompleted(sale)
	}
	return sale, nil
}

func (c *CheckoutCoordinator) refreshStock() {
	products, err := c.catalog.ListProducts(context.Background())
	if err != nil {
		log.Printf("post-sale stock refresh failed: %v", err)
		return
	}
	if c.onRefresh != nil {
		c.onRefresh(products)
	}
}

// failureMessage surfaces the backend's own message verbatim when it sent
// one; everything else collapses to a generic retryable failure.
func failureMessage(err error) string {
	var be *BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return genericCheckoutFailure
}
