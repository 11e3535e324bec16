package app

import (
	"time"

	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

type OpenSessionRequest struct {
	ViewportWidth int `json:"viewport_width"`
}

type SessionResult struct {
	SessionID string             `json:"session_id"`
	Tenant    core.TenantProfile `json:"tenant"`
}

type SetPriceRequest struct {
	ProductID int             `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
}

type SetPaymentRequest struct {
	Method  core.PaymentMethod `json:"method"`
	DueDate *time.Time         `json:"due_date,omitempty"`
}

// CartResult is the live register view: cart pricing plus checkout state.
type CartResult struct {
	State            core.CheckoutState   `json:"state"`
	PaymentMethod    core.PaymentMethod   `json:"payment_method"`
	Summary          core.CartSummary     `json:"summary"`
	SelectedCustomer *core.CreditCustomer `json:"selected_customer,omitempty"`
	FailureMessage   string               `json:"failure_message,omitempty"`
}

type PriceChangeResult struct {
	Advisory *core.PriceAdvisory `json:"advisory,omitempty"`
	Cart     CartResult          `json:"cart"`
}

type ScanResult struct {
	Notice core.ScanNotice `json:"notice"`
	Cart   CartResult      `json:"cart"`
}

type CustomerSearchResult struct {
	Query      string                `json:"query"`
	Candidates []core.CreditCustomer `json:"candidates"`
	Selected   *core.CreditCustomer  `json:"selected,omitempty"`
}

type SaleResult struct {
	Sale          *core.Sale `json:"sale,omitempty"`
	TotalMismatch bool       `json:"total_mismatch,omitempty"`
	// Duplicate is true when the confirmation was absorbed by an in-flight
	// submission and no new work happened.
	Duplicate bool `json:"duplicate,omitempty"`
}

type ReceiptResult struct {
	Visible        bool              `json:"visible"`
	AwaitingDialog bool              `json:"awaiting_dialog"`
	Notice         string            `json:"notice,omitempty"`
	LastResult     *core.PrintResult `json:"last_result,omitempty"`
}
