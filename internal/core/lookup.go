package core

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"
)

const defaultDebounce = 300 * time.Millisecond

// CustomerLookup is the debounced credit-customer search. Each keystroke
// restarts the debounce window; only the query active when the window elapses
// is sent. Results apply by last-issued query, not last-arrived: every
// (re)start bumps a generation counter and a response whose generation is no
// longer current is discarded.
type CustomerLookup struct {
	mu sync.Mutex

	directory CustomerDirectory
	debounce  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	timer *time.Timer
	gen   uint64

	active     bool
	query      string
	selected   *CreditCustomer
	candidates []CreditCustomer
}

func NewCustomerLookup(directory CustomerDirectory) *CustomerLookup {
	ctx, cancel := context.WithCancel(context.Background())
	return &CustomerLookup{
		directory: directory,
		debounce:  defaultDebounce,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetDebounce overrides the debounce window. Wiring/test hook.
func (l *CustomerLookup) SetDebounce(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debounce = d
}

// Activate enables the lookup while the payment method is Credit.
func (l *CustomerLookup) Activate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = true
}

// Deactivate cancels any pending or in-flight search, discards its eventual
// result, and clears the selection. Called when the payment method leaves
// Credit.
func (l *CustomerLookup) Deactivate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	l.gen++
	l.stopTimerLocked()
	l.query = ""
	l.selected = nil
	l.candidates = nil
}

// SetQuery records a keystroke and restarts the debounce window. Typing while
// a candidate is pinned un-pins it first.
func (l *CustomerLookup) SetQuery(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return
	}
	l.selected = nil
	l.query = q
	l.gen++
	gen := l.gen
	l.stopTimerLocked()
	l.timer = time.AfterFunc(l.debounce, func() {
		l.search(gen, q)
	})
}

func (l *CustomerLookup) search(gen uint64, q string) {
	l.mu.Lock()
	if !l.active || gen != l.gen || l.ctx.Err() != nil {
		l.mu.Unlock()
		return
	}
	ctx := l.ctx
	l.mu.Unlock()

	results, err := l.directory.Search(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	// Superseded or torn down while in flight: discard.
	if !l.active || gen != l.gen || l.ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Printf("customer search %q failed: %v", q, err)
		return
	}
	l.candidates = results
}

// Select pins the candidate with the given id and clears the query text.
func (l *CustomerLookup) Select(customerID int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active {
		return &ValidationError{Message: "customer selection requires credit payment"}
	}
	for i := range l.candidates {
		if l.candidates[i].ID == customerID {
			c := l.candidates[i]
			l.selected = &c
			l.query = ""
			l.gen++
			l.stopTimerLocked()
			return nil
		}
	}
	return &NotFoundError{Resource: "customer", Key: strconv.Itoa(customerID)}
}

// Selected returns a copy of the pinned candidate, or nil.
func (l *CustomerLookup) Selected() *CreditCustomer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.selected == nil {
		return nil
	}
	c := *l.selected
	return &c
}

// Candidates returns the current candidate set.
func (l *CustomerLookup) Candidates() []CreditCustomer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CreditCustomer, len(l.candidates))
	copy(out, l.candidates)
	return out
}

// Query returns the live query text.
func (l *CustomerLookup) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Close tears the lookup down: pending debounces are cancelled and late
// results suppressed.
func (l *CustomerLookup) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.stopTimerLocked()
	l.cancel()
}

func (l *CustomerLookup) stopTimerLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}
