package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	Cash        PaymentMethod = "cash"
	MobileMoney PaymentMethod = "mobile_money"
	Card        PaymentMethod = "card"
	Credit      PaymentMethod = "credit"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case Cash, MobileMoney, Card, Credit:
		return true
	}
	return false
}

// Product is catalog master data. The terminal never writes it; the catalog
// backend owns it.
type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode,omitempty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	BaseCost     decimal.Decimal `json:"base_cost"`
	IsService    bool            `json:"is_service"`
	AvailableQty int             `json:"available_quantity"`
}

// CreditCustomer is a directory entry eligible for store-credit sales.
type CreditCustomer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// TenantProfile carries the per-tenant settings the terminal needs: the VAT
// rate already baked into selling prices, and the display currency.
type TenantProfile struct {
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
}

// SaleItemInput is one cart line flattened for submission. CustomPrice is
// valid only when the operator overrode the unit price.
type SaleItemInput struct {
	ProductID   int                 `json:"product_id"`
	Quantity    int                 `json:"quantity"`
	CustomPrice decimal.NullDecimal `json:"custom_price,omitempty"`
}

// SaleRequest is the snapshot the coordinator submits to the ledger.
// CustomerID and DueDate are present iff PaymentMethod is Credit.
type SaleRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Items          []SaleItemInput `json:"items"`
	CustomerID     *int            `json:"customer_id,omitempty"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
}

// SaleItem is a persisted sale line. UnitPrice snapshots the effective unit
// price at sale time; CustomPrice is valid when that price was an override.
type SaleItem struct {
	ID          int                 `json:"id"`
	ProductID   int                 `json:"product_id"`
	ProductName string              `json:"product_name"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	CustomPrice decimal.NullDecimal `json:"custom_price,omitempty"`
}

// Sale is the ledger's persisted record, immutable on the terminal. The
// delivery flags are owned by the notification backend and only read here.
type Sale struct {
	ID            int             `json:"id"`
	Items         []SaleItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CustomerID    *int            `json:"customer_id,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	EmailSent     bool            `json:"email_sent"`
	WhatsappSent  bool            `json:"whatsapp_sent"`
}
