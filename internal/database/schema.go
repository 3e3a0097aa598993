package database

import (
	"context"
	"fmt"
)

// CustomerTable is the table uploads are loaded into.
const CustomerTable = "customer"

// customerSchema is safe to run on every start.
const customerSchema = `
CREATE TABLE IF NOT EXISTS customer (
    id SERIAL PRIMARY KEY,
    customer_type TEXT,
    name TEXT,
    company_name TEXT,
    identity_number TEXT,
    email TEXT,
    tax_id TEXT,
    phone TEXT,
    address TEXT,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
)`

// Provision creates the customer table if it does not exist. Existing rows
// and columns are left untouched.
func Provision(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, customerSchema); err != nil {
		return fmt.Errorf("provision %s table: %w", CustomerTable, err)
	}
	return nil
}
