package sqlite

import "database/sql"

// schema del libro. Los montos son TEXT con dos decimales ("15.10"), escritos y leídos
// con money.Money (driver.Valuer / sql.Scanner); las sumas se hacen en centavos enteros.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    name_key    TEXT NOT NULL,
    total_debt  TEXT NOT NULL DEFAULT '0.00',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_customers_name_key ON customers(name_key);
CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers(created_at);

CREATE TABLE IF NOT EXISTS purchases (
    id              TEXT PRIMARY KEY,
    customer_id     TEXT NOT NULL,
    items           TEXT NOT NULL,
    purchase_total  TEXT NOT NULL,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL,
    FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_purchases_customer ON purchases(customer_id, created_at);

CREATE TABLE IF NOT EXISTS payments (
    id           TEXT PRIMARY KEY,
    customer_id  TEXT NOT NULL,
    amount_paid  TEXT NOT NULL,
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL,
    FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_payments_customer ON payments(customer_id, created_at);
`

// runMigrations ejecuta el esquema.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
