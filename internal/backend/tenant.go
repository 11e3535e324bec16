package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"pos-terminal/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgTenantConfig reads the tenant profile from the backend database.
type PgTenantConfig struct {
	pool     *pgxpool.Pool
	tenantID int
}

func NewPgTenantConfig(pool *pgxpool.Pool, tenantID int) *PgTenantConfig {
	return &PgTenantConfig{pool: pool, tenantID: tenantID}
}

func (t *PgTenantConfig) Profile(ctx context.Context) (*core.TenantProfile, error) {
	var p core.TenantProfile
	err := t.pool.QueryRow(ctx,
		"SELECT name, currency, tax_rate FROM tenants WHERE id = $1", t.tenantID,
	).Scan(&p.Name, &p.Currency, &p.TaxRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Resource: "tenant", Key: strconv.Itoa(t.tenantID)}
		}
		return nil, &core.BackendError{Err: fmt.Errorf("load tenant %d: %w", t.tenantID, err)}
	}
	return &p, nil
}

// DefaultTenantID resolves the active tenant. Uses POS_TENANT_ID when set;
// otherwise expects exactly one tenant in the database.
func DefaultTenantID(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	if v := os.Getenv("POS_TENANT_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid POS_TENANT_ID %q", v)
		}
		return id, nil
	}

	rows, err := pool.Query(ctx, "SELECT id FROM tenants ORDER BY id")
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	switch len(ids) {
	case 0:
		return 0, fmt.Errorf("no tenants found; run cmd/seed-demo or set POS_TENANT_ID")
	case 1:
		return ids[0], nil
	default:
		return 0, fmt.Errorf("%d tenants found; set POS_TENANT_ID to pick one", len(ids))
	}
}
