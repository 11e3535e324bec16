package core

import "github.com/shopspring/decimal"

// SummaryLine is one cart line priced for display.
type SummaryLine struct {
	ProductID  int             `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
	Overridden bool            `json:"overridden"`
}

// CartSummary is the live pricing of a cart. All amounts are rounded to two
// decimal places; selling prices are VAT-inclusive, so Subtotal is recovered
// by dividing Total by (1 + taxRate) rather than adding tax on top.
type CartSummary struct {
	Lines    []SummaryLine   `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	// Variance is the aggregate of (standard - override) * quantity across
	// overridden lines: positive means net discount given, negative net
	// markup charged.
	Variance decimal.Decimal `json:"variance"`
}

// EffectiveUnitPrice is the override when present, else the standard selling
// price.
func EffectiveUnitPrice(it CartItem) decimal.Decimal {
	if it.Override.Valid {
		return it.Override.Decimal
	}
	return it.Product.SellingPrice
}

// LineTotal is the effective unit price times quantity, unrounded.
func LineTotal(it CartItem) decimal.Decimal {
	return EffectiveUnitPrice(it).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// PricingEngine is pure computation over cart items and the tenant tax rate.
type PricingEngine struct {
	taxRate decimal.Decimal
}

func NewPricingEngine(taxRate decimal.Decimal) *PricingEngine {
	return &PricingEngine{taxRate: taxRate}
}

// Summarize prices the given items. Accumulation is exact decimal arithmetic;
// rounding happens once, here, at the display/submission boundary.
func (e *PricingEngine) Summarize(items []CartItem) CartSummary {
	total := decimal.Zero
	variance := decimal.Zero
	lines := make([]SummaryLine, 0, len(items))

	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		unit := EffectiveUnitPrice(it)
		lineTotal := unit.Mul(qty)
		total = total.Add(lineTotal)

		if it.Override.Valid {
			variance = variance.Add(it.Product.SellingPrice.Sub(it.Override.Decimal).Mul(qty))
		}

		lines = append(lines, SummaryLine{
			ProductID:  it.Product.ID,
			Name:       it.Product.Name,
			Quantity:   it.Quantity,
			UnitPrice:  unit.Round(2),
			LineTotal:  lineTotal.Round(2),
			Overridden: it.Override.Valid,
		})
	}

	roundedTotal := total.Round(2)
	subtotal := total.Div(decimal.NewFromInt(1).Add(e.taxRate)).Round(2)
	// Tax is derived from the rounded figures so subtotal + tax == total
	// exactly, not merely within epsilon.
	tax := roundedTotal.Sub(subtotal)

	return CartSummary{
		Lines:    lines,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    roundedTotal,
		Variance: variance.Round(2),
	}
}

// TaxRate returns the rate the engine was built with.
func (e *PricingEngine) TaxRate() decimal.Decimal {
	return e.taxRate
}
