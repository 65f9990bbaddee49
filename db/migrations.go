package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migrate runs all table creation statements. Safe to call multiple times
// due to IF NOT EXISTS clauses.
func Migrate(db *sql.DB) error {
	slog.Info("running database migrations")

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w\nstatement: %s", err, stmt)
		}
	}

	slog.Info("database migrations complete")
	return nil
}

var migrations = []string{
	// Inventory items. Quantity may go negative only through a confirmed
	// over-committed credit or sale (operator-trust policy).
	`CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		shop_id TEXT NOT NULL DEFAULT 'main',
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		price INTEGER NOT NULL DEFAULT 0 CHECK(price >= 0),
		quantity INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Client credits: the aggregate root. total_amount is frozen at creation;
	// status is kept only for SQL filtering and is recomputed on every read.
	`CREATE TABLE IF NOT EXISTS credits (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL DEFAULT 'main',
		customer_name TEXT NOT NULL,
		customer_first_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL DEFAULT '',
		customer_address TEXT NOT NULL,
		appointment_date TEXT,
		total_amount INTEGER NOT NULL CHECK(total_amount >= 0),
		status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'partial', 'completed')),
		closed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Line snapshots: immutable after creation.
	`CREATE TABLE IF NOT EXISTS credit_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		credit_id TEXT NOT NULL,
		item_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK(quantity > 0),
		unit_price INTEGER NOT NULL CHECK(unit_price >= 0),
		FOREIGN KEY (credit_id) REFERENCES credits(id) ON DELETE CASCADE
	)`,

	// Payments: append-only, no edit or delete path.
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		credit_id TEXT NOT NULL,
		amount INTEGER NOT NULL CHECK(amount > 0),
		date TEXT NOT NULL DEFAULT '',
		comment TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (credit_id) REFERENCES credits(id) ON DELETE CASCADE
	)`,

	// Direct cash sales, settled at creation.
	`CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL DEFAULT 'main',
		customer TEXT NOT NULL DEFAULT '',
		total_amount INTEGER NOT NULL CHECK(total_amount >= 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS sale_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id TEXT NOT NULL,
		item_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK(quantity > 0),
		unit_price INTEGER NOT NULL CHECK(unit_price >= 0),
		FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE
	)`,

	// Finalized quotes/invoices with their issued sequence number.
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL DEFAULT 'main',
		kind TEXT NOT NULL CHECK(kind IN ('quote', 'invoice')),
		number TEXT NOT NULL,
		customer TEXT NOT NULL DEFAULT '',
		total INTEGER NOT NULL DEFAULT 0 CHECK(total >= 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Durable counters for document numbering, one per kind per epoch.
	`CREATE TABLE IF NOT EXISTS counters (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL DEFAULT 0
	)`,

	// Indexes for common queries
	`CREATE INDEX IF NOT EXISTS idx_items_shop ON items(shop_id)`,
	`CREATE INDEX IF NOT EXISTS idx_credits_shop ON credits(shop_id)`,
	`CREATE INDEX IF NOT EXISTS idx_credits_status ON credits(status)`,
	`CREATE INDEX IF NOT EXISTS idx_credit_lines_credit ON credit_lines(credit_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_credit ON payments(credit_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_shop ON sales(shop_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_lines_sale ON sale_lines(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_shop_kind ON documents(shop_id, kind)`,
}
