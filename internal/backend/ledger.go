package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pos-terminal/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgLedger persists sales. Subtotal, tax and total are computed here, on the
// server side of the boundary, with the same VAT-inclusive model the terminal
// displays; the terminal cross-checks the returned total against its own.
type PgLedger struct {
	pool     *pgxpool.Pool
	tenantID int
}

func NewPgLedger(pool *pgxpool.Pool, tenantID int) *PgLedger {
	return &PgLedger{pool: pool, tenantID: tenantID}
}

func (l *PgLedger) CreateSale(ctx context.Context, req core.SaleRequest) (*core.Sale, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback(ctx)

	// Replay of an idempotency key returns the already-persisted sale
	// instead of writing a duplicate.
	var existingID int
	err = tx.QueryRow(ctx,
		"SELECT id FROM sales WHERE idempotency_key = $1", req.IdempotencyKey,
	).Scan(&existingID)
	if err == nil {
		return l.loadSale(ctx, tx, existingID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &core.BackendError{Err: fmt.Errorf("idempotency check: %w", err)}
	}

	var taxRate decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT tax_rate FROM tenants WHERE id = $1", l.tenantID,
	).Scan(&taxRate); err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("load tenant %d: %w", l.tenantID, err)}
	}

	type pricedItem struct {
		input core.SaleItemInput
		name  string
		unit  decimal.Decimal
	}
	total := decimal.Zero
	priced := make([]pricedItem, 0, len(req.Items))

	for _, item := range req.Items {
		var (
			name         string
			sellingPrice decimal.Decimal
			isService    bool
			available    int
		)
		// Row lock serializes concurrent registers selling the same product.
		err := tx.QueryRow(ctx,
			"SELECT name, selling_price, is_service, available_quantity FROM products WHERE id = $1 AND tenant_id = $2 FOR UPDATE",
			item.ProductID, l.tenantID,
		).Scan(&name, &sellingPrice, &isService, &available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &core.NotFoundError{Resource: "product", Key: strconv.Itoa(item.ProductID)}
			}
			return nil, &core.BackendError{Err: fmt.Errorf("load product %d: %w", item.ProductID, err)}
		}

		if !isService {
			if available < item.Quantity {
				return nil, &core.ConflictError{
					Message: fmt.Sprintf("stock changed for %s: %d requested, %d available", name, item.Quantity, available),
				}
			}
			if _, err := tx.Exec(ctx,
				"UPDATE products SET available_quantity = available_quantity - $1 WHERE id = $2",
				item.Quantity, item.ProductID); err != nil {
				return nil, &core.BackendError{Err: fmt.Errorf("decrement stock for product %d: %w", item.ProductID, err)}
			}
		}

		unit := sellingPrice
		if item.CustomPrice.Valid {
			unit = item.CustomPrice.Decimal
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		priced = append(priced, pricedItem{input: item, name: name, unit: unit})
	}

	// Selling prices are VAT-inclusive: recover the subtotal by division.
	roundedTotal := total.Round(2)
	subtotal := total.Div(decimal.NewFromInt(1).Add(taxRate)).Round(2)
	tax := roundedTotal.Sub(subtotal)

	sale := &core.Sale{
		PaymentMethod: req.PaymentMethod,
		CustomerID:    req.CustomerID,
		DueDate:       req.DueDate,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         roundedTotal,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (tenant_id, idempotency_key, payment_method, customer_id, due_date, subtotal, tax, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		l.tenantID, req.IdempotencyKey, req.PaymentMethod, req.CustomerID, req.DueDate,
		subtotal, tax, roundedTotal,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("insert sale: %w", err)}
	}

	for _, pi := range priced {
		var itemID int
		err := tx.QueryRow(ctx, `
			INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, custom_price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			sale.ID, pi.input.ProductID, pi.name, pi.input.Quantity, pi.unit, pi.input.CustomPrice,
		).Scan(&itemID)
		if err != nil {
			return nil, &core.BackendError{Err: fmt.Errorf("insert sale item: %w", err)}
		}
		sale.Items = append(sale.Items, core.SaleItem{
			ID:          itemID,
			ProductID:   pi.input.ProductID,
			ProductName: pi.name,
			Quantity:    pi.input.Quantity,
			UnitPrice:   pi.unit,
			CustomPrice: pi.input.CustomPrice,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("commit sale: %w", err)}
	}
	return sale, nil
}

func (l *PgLedger) loadSale(ctx context.Context, tx pgx.Tx, saleID int) (*core.Sale, error) {
	sale := &core.Sale{ID: saleID}
	err := tx.QueryRow(ctx, `
		SELECT payment_method, customer_id, due_date, subtotal, tax, total, email_sent, whatsapp_sent, created_at
		FROM sales WHERE id = $1`, saleID,
	).Scan(&sale.PaymentMethod, &sale.CustomerID, &sale.DueDate,
		&sale.Subtotal, &sale.Tax, &sale.Total, &sale.EmailSent, &sale.WhatsappSent, &sale.CreatedAt)
	if err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("load sale %d: %w", saleID, err)}
	}

	rows, err := tx.Query(ctx, `
		SELECT id, product_id, product_name, quantity, unit_price, custom_price
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("load sale items: %w", err)}
	}
	defer rows.Close()

	for rows.Next() {
		var it core.SaleItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.CustomPrice); err != nil {
			return nil, &core.BackendError{Err: fmt.Errorf("scan sale item: %w", err)}
		}
		sale.Items = append(sale.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.BackendError{Err: err}
	}
	return sale, nil
}

func validateRequest(req core.SaleRequest) error {
	if req.IdempotencyKey == "" {
		return &core.ValidationError{Message: "sale request must carry an idempotency key"}
	}
	if !core.ValidPaymentMethod(req.PaymentMethod) {
		return &core.ValidationError{Message: "unknown payment method: " + string(req.PaymentMethod)}
	}
	if len(req.Items) == 0 {
		return &core.ValidationError{Message: "sale must have at least one item"}
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return &core.ValidationError{Message: fmt.Sprintf("quantity must be >= 1 for product %d", item.ProductID)}
		}
		if item.CustomPrice.Valid && item.CustomPrice.Decimal.IsNegative() {
			return &core.ValidationError{Message: fmt.Sprintf("custom price must be >= 0 for product %d", item.ProductID)}
		}
	}
	if req.PaymentMethod == core.Credit {
		if req.CustomerID == nil {
			return &core.ValidationError{Message: "credit sale requires a customer"}
		}
		if req.DueDate == nil {
			return &core.ValidationError{Message: "credit sale requires a due date"}
		}
	} else if req.CustomerID != nil || req.DueDate != nil {
		return &core.ValidationError{Message: "customer and due date are only valid for credit sales"}
	}
	return nil
}
