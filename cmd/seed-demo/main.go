// seed-demo is a one-shot tool that applies the schema and loads a small demo
// tenant so a fresh database is immediately usable from the terminal.
//
// Usage: go run ./cmd/seed-demo
package main

import (
	"context"
	"log"
	"os"

	"pos-terminal/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("migrations/schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}

	log.Println("Applying schema...")
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Seeding demo tenant...")
	var tenantID int
	err = tx.QueryRow(ctx,
		"SELECT id FROM tenants WHERE name = 'Demo Duka'").Scan(&tenantID)
	if err != nil {
		err = tx.QueryRow(ctx, `
			INSERT INTO tenants (name, currency, tax_rate)
			VALUES ('Demo Duka', 'KES', 0.16)
			RETURNING id;
		`).Scan(&tenantID)
		if err != nil {
			log.Fatalf("Failed to seed tenant: %v", err)
		}
	}

	log.Println("Seeding demo products...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (tenant_id, name, sku, barcode, selling_price, base_cost, is_service, available_quantity)
		VALUES
		    ($1, 'Soda 500ml',      'SODA500', '5901234123457', 116.00,  60.00, FALSE, 48),
		    ($1, 'Bread Loaf',      'BREAD01', '6161100530034',  58.00,  40.00, FALSE, 12),
		    ($1, 'Cooking Oil 1L',  'OIL1L',   '6164000081319', 348.00, 290.00, FALSE, 20),
		    ($1, 'Sugar 2kg',       'SUGAR2',  '6161105370027', 290.00, 250.00, FALSE, 15),
		    ($1, 'Phone Repair',    'REPAIR',  NULL,            580.00,   0.00, TRUE,   0)
		ON CONFLICT (tenant_id, sku) DO UPDATE
		  SET selling_price      = EXCLUDED.selling_price,
		      base_cost          = EXCLUDED.base_cost,
		      available_quantity = EXCLUDED.available_quantity;
	`, tenantID)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Println("Seeding demo customers...")
	_, err = tx.Exec(ctx, `
		INSERT INTO customers (tenant_id, name, email)
		SELECT $1, v.name, v.email
		FROM (VALUES
		    ('Jane Wanjiku', 'jane.wanjiku@example.com'),
		    ('Amina Otieno', 'amina.otieno@example.com'),
		    ('Peter Kamau',  'peter.kamau@example.com')
		) AS v(name, email)
		WHERE NOT EXISTS (
		    SELECT 1 FROM customers c WHERE c.tenant_id = $1 AND c.name = v.name
		);
	`, tenantID)
	if err != nil {
		log.Fatalf("Failed to seed customers: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Printf("Done. Tenant id %d is ready; set POS_TENANT_ID=%d if you add more tenants.", tenantID, tenantID)
}
