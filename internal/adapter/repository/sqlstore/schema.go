package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

var schemas = map[Dialect][]string{
	Postgres: {
		`CREATE TABLE IF NOT EXISTS resources (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			resource_type_id VARCHAR(64),
			max_qty INTEGER NOT NULL CHECK (max_qty >= 0),
			price_internal NUMERIC(10,2) NOT NULL DEFAULT 0,
			price_external NUMERIC(10,2) NOT NULL DEFAULT 0,
			booking_type VARCHAR(32) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			resource_id VARCHAR(64) NOT NULL REFERENCES resources(id),
			resource_name VARCHAR(255) NOT NULL,
			resource_qty INTEGER NOT NULL CHECK (resource_qty > 0),
			booking_date DATE NOT NULL,
			time_slot VARCHAR(32) NOT NULL,
			booking_type VARCHAR(32) NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			payment_mode VARCHAR(32) NOT NULL,
			transaction_id VARCHAR(128) NOT NULL UNIQUE,
			user_id VARCHAR(64) NOT NULL,
			status VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_slot ON orders (resource_id, booking_date, time_slot)`,
	},
	MySQL: {
		`CREATE TABLE IF NOT EXISTS resources (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			resource_type_id VARCHAR(64),
			max_qty INT NOT NULL,
			price_internal DECIMAL(10,2) NOT NULL DEFAULT 0,
			price_external DECIMAL(10,2) NOT NULL DEFAULT 0,
			booking_type VARCHAR(32) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		`CREATE TABLE IF NOT EXISTS orders (
			id CHAR(36) PRIMARY KEY,
			resource_id VARCHAR(64) NOT NULL,
			resource_name VARCHAR(255) NOT NULL,
			resource_qty INT NOT NULL,
			booking_date DATE NOT NULL,
			time_slot VARCHAR(32) NOT NULL,
			booking_type VARCHAR(32) NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			payment_mode VARCHAR(32) NOT NULL,
			transaction_id VARCHAR(128) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			status VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE KEY uq_orders_transaction (transaction_id),
			INDEX idx_orders_slot (resource_id, booking_date, time_slot),
			CONSTRAINT fk_orders_resource FOREIGN KEY (resource_id) REFERENCES resources(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
	},
}

// Migrate creates the resources and orders tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return nil
}
