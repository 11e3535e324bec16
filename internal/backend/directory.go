package backend

import (
	"context"
	"fmt"
	"strings"

	"pos-terminal/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultCandidateLimit caps the unfiltered candidate set returned for an
// empty query.
const defaultCandidateLimit = 20

// PgDirectory searches credit customers in the backend database.
type PgDirectory struct {
	pool     *pgxpool.Pool
	tenantID int
}

func NewPgDirectory(pool *pgxpool.Pool, tenantID int) *PgDirectory {
	return &PgDirectory{pool: pool, tenantID: tenantID}
}

func (d *PgDirectory) Search(ctx context.Context, query string) ([]core.CreditCustomer, error) {
	query = strings.TrimSpace(query)

	var rows pgx.Rows
	var err error
	if query == "" {
		rows, err = d.pool.Query(ctx,
			"SELECT id, name, COALESCE(email, '') FROM customers WHERE tenant_id = $1 ORDER BY name LIMIT $2",
			d.tenantID, defaultCandidateLimit)
	} else {
		rows, err = d.pool.Query(ctx,
			"SELECT id, name, COALESCE(email, '') FROM customers WHERE tenant_id = $1 AND (name ILIKE $2 OR email ILIKE $2) ORDER BY name LIMIT $3",
			d.tenantID, "%"+query+"%", defaultCandidateLimit)
	}
	if err != nil {
		return nil, &core.BackendError{Err: fmt.Errorf("search customers %q: %w", query, err)}
	}
	defer rows.Close()

	var customers []core.CreditCustomer
	for rows.Next() {
		var c core.CreditCustomer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email); err != nil {
			return nil, &core.BackendError{Err: fmt.Errorf("scan customer: %w", err)}
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.BackendError{Err: err}
	}
	return customers, nil
}
