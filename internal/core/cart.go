package core

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// priceEpsilon: an override this close to the standard price is not an
// override at all.
var priceEpsilon = decimal.New(1, -2) // 0.01

// CartItem is one cart line. Override is the operator's custom unit price;
// invalid means the standard selling price applies.
type CartItem struct {
	Product  Product             `json:"product"`
	Quantity int                 `json:"quantity"`
	Override decimal.NullDecimal `json:"override,omitempty"`
}

// PriceAdvisory is a non-blocking warning attached to a price override.
// The sale is still permitted.
type PriceAdvisory struct {
	ProductID int    `json:"product_id"`
	Message   string `json:"message"`
}

// CartStore owns the line items of the active register session. Items are
// ordered by insertion and unique by product id. All mutations are
// synchronous and funnel through the store's single mutex; nothing here
// touches the network.
type CartStore struct {
	mu    sync.Mutex
	items []CartItem
}

func NewCartStore() *CartStore {
	return &CartStore{}
}

func (c *CartStore) indexOf(productID int) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem appends a new line with quantity 1, or increments an existing one.
// For non-service products the increment is silently capped at the available
// stock.
func (c *CartStore) AddItem(p Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		it := &c.items[i]
		if !it.Product.IsService && it.Quantity >= it.Product.AvailableQty {
			return
		}
		it.Quantity++
		return
	}
	c.items = append(c.items, CartItem{Product: p, Quantity: 1})
}

// RemoveItem deletes the line entirely. Unknown ids are a no-op.
func (c *CartStore) RemoveItem(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// AdjustQuantity applies delta to the line's quantity, floored at 1. The
// change is rejected (no-op) if it would exceed stock for a non-service
// product.
func (c *CartStore) AdjustQuantity(productID, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	it := &c.items[i]
	next := it.Quantity + delta
	if next < 1 {
		next = 1
	}
	if !it.Product.IsService && next > it.Product.AvailableQty {
		return
	}
	it.Quantity = next
}

// SetPrice sets or clears the line's price override. A price within 0.01 of
// the standard selling price clears the override, keeping "custom" strictly
// meaningful. A price below base cost is permitted but returns an advisory.
func (c *CartStore) SetPrice(productID int, price decimal.Decimal) (*PriceAdvisory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("product %d is not in the cart", productID)}
	}
	if price.IsNegative() {
		return nil, &ValidationError{Message: "price must be >= 0"}
	}

	it := &c.items[i]
	if price.Sub(it.Product.SellingPrice).Abs().LessThan(priceEpsilon) {
		it.Override = decimal.NullDecimal{}
		return nil, nil
	}
	it.Override = decimal.NullDecimal{Decimal: price, Valid: true}

	if price.LessThan(it.Product.BaseCost) {
		return &PriceAdvisory{
			ProductID: productID,
			Message: fmt.Sprintf("%s priced at %s, below cost %s",
				it.Product.Name, price.StringFixed(2), it.Product.BaseCost.StringFixed(2)),
		}, nil
	}
	return nil, nil
}

// ResetPrice clears the override unconditionally.
func (c *CartStore) ResetPrice(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Override = decimal.NullDecimal{}
	}
}

// RemoveSold subtracts a sold snapshot from the cart. Quantities added after
// the snapshot was taken remain as a fresh line for the next sale; a line
// fully covered by the snapshot is removed.
func (c *CartStore) RemoveSold(sold []CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range sold {
		i := c.indexOf(s.Product.ID)
		if i < 0 {
			continue
		}
		c.items[i].Quantity -= s.Quantity
		if c.items[i].Quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
	}
}

// Clear empties the cart.
func (c *CartStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a snapshot copy of the lines in insertion order.
func (c *CartStore) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *CartStore) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
