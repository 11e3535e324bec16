package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"pos-terminal/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, name, sku, COALESCE(barcode, ''), selling_price, base_cost, is_service, available_quantity"

// PgCatalog is the product read side over the backend database.
type PgCatalog struct {
	pool     *pgxpool.Pool
	tenantID int
}

func NewPgCatalog(pool *pgxpool.Pool, tenantID int) *PgCatalog {
	return &PgCatalog{pool: pool, tenantID: tenantID}
}

func scanProduct(row pgx.Row) (*core.Product, error) {
	var p core.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode,
		&p.SellingPrice, &p.BaseCost, &p.IsService, &p.AvailableQty)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *PgCatalog) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := c.pool.Query(ctx,
		"SELECT "+productColumns+" FROM products WHERE tenant_id = $1 ORDER BY name", c.tenantID)
	if err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("list products: %w", err)}
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, &core.BackendError{Err: fmt.Errorf("scan product: %w", err)}
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.BackendError{Err: err}
	}
	return products, nil
}

// GetProduct resolves a product by id for manual cart entry.
func (c *PgCatalog) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	p, err := scanProduct(c.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE tenant_id = $1 AND id = $2", c.tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Resource: "product", Key: strconv.Itoa(id)}
		}
		return nil, &core.BackendError{Err: fmt.Errorf("load product %d: %w", id, err)}
	}
	return p, nil
}

// LookupByCode resolves a scanned code: barcode match first, exact
// (case-insensitive) SKU second.
func (c *PgCatalog) LookupByCode(ctx context.Context, code string) (*core.Product, error) {
	p, err := scanProduct(c.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE tenant_id = $1 AND barcode = $2", c.tenantID, code))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &core.BackendError{Err: fmt.Errorf("lookup barcode %q: %w", code, err)}
	}

	p, err = scanProduct(c.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE tenant_id = $1 AND upper(sku) = upper($2)", c.tenantID, code))
	if err == nil {
		return p, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &core.NotFoundError{Resource: "product", Key: code}
	}
	return nil, &core.BackendError{Err: fmt.Errorf("lookup sku %q: %w", code, err)}
}
