package sqlstore

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

type queries struct {
	resourceByID string
	sumConfirmed string
	insertOrder  string
}

var dialectQueries = map[Dialect]queries{
	Postgres: {
		resourceByID: `
	SELECT id, name, resource_type_id, max_qty, price_internal, price_external, booking_type, active
	FROM resources
	WHERE id = $1
	`,
		sumConfirmed: `
	SELECT COALESCE(SUM(resource_qty), 0)
	FROM orders
	WHERE resource_id = $1 AND booking_date = $2 AND time_slot = $3 AND status = $4
	`,
		insertOrder: `
	INSERT INTO orders (id, resource_id, resource_name, resource_qty, booking_date, time_slot, booking_type,
		amount, payment_mode, transaction_id, user_id, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
	},
	MySQL: {
		resourceByID: `
	SELECT id, name, resource_type_id, max_qty, price_internal, price_external, booking_type, active
	FROM resources
	WHERE id = ?
	`,
		sumConfirmed: `
	SELECT COALESCE(SUM(resource_qty), 0)
	FROM orders
	WHERE resource_id = ? AND booking_date = ? AND time_slot = ? AND status = ?
	`,
		insertOrder: `
	INSERT INTO orders (id, resource_id, resource_name, resource_qty, booking_date, time_slot, booking_type,
		amount, payment_mode, transaction_id, user_id, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
	},
}

// queries falls back to Postgres, the default driver, for unknown dialects.
func (d Dialect) queries() queries {
	if q, ok := dialectQueries[d]; ok {
		return q
	}
	return dialectQueries[Postgres]
}
