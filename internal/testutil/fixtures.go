package testutil

import (
	"database/sql"
	"testing"
)

// Fixtures holds the ids of a minimal catalog: one client type, one product
// priced for credit and cash, a vendor, an evaluator and a client.
type Fixtures struct {
	ClientTypeID int64
	ProductID    int64
	VendorID     int64
	EvaluatorID  int64
	SupervisorID int64
	ClientID     int64
}

func mustInsert(t *testing.T, db *sql.DB, query string, args ...interface{}) int64 {
	t.Helper()
	res, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("inserting fixture: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("reading fixture id: %v", err)
	}
	return id
}

// SeedFixtures inserts a client with the given credit limit and usage.
func SeedFixtures(t *testing.T, db *sql.DB, creditLimit, creditUsed string) Fixtures {
	t.Helper()

	var f Fixtures
	f.ClientTypeID = mustInsert(t, db, `INSERT INTO client_types (name) VALUES ('bodega')`)
	f.ProductID = mustInsert(t, db, `INSERT INTO products (code, name) VALUES ('P-001', 'Arroz 5kg')`)
	mustInsert(t, db, `
		INSERT INTO price_entries (product_id, client_type_id, payment_method, unit_price,
		                           tier2_min_qty, tier2_discount_pct)
		VALUES (?, ?, 'credit', 10.00, 50, 5.00)`, f.ProductID, f.ClientTypeID)
	mustInsert(t, db, `
		INSERT INTO price_entries (product_id, client_type_id, payment_method, unit_price)
		VALUES (?, ?, 'cash', 9.50)`, f.ProductID, f.ClientTypeID)
	f.VendorID = mustInsert(t, db, `INSERT INTO actors (role, display_name) VALUES ('vendor', 'Rosa Vendedora')`)
	f.EvaluatorID = mustInsert(t, db, `
		INSERT INTO actors (role, display_name, approval_ceiling, department)
		VALUES ('evaluator', 'Luis Evaluador', 5000.00, 'Lima')`)
	f.SupervisorID = mustInsert(t, db, `
		INSERT INTO actors (role, display_name, approval_ceiling)
		VALUES ('supervisor', 'Ana Supervisora', 50000.00)`)
	f.ClientID = mustInsert(t, db, `
		INSERT INTO clients (code, tax_id, business_name, client_type_id, credit_limit, credit_used,
		                     department, province, district)
		VALUES ('C-001', '20123456789', 'Bodega Don Pepe', ?, ?, ?, 'Lima', 'Lima', 'Surco')`,
		f.ClientTypeID, creditLimit, creditUsed)

	return f
}
