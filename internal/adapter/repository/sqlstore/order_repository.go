package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

type OrderRepository struct {
	db      *sql.DB
	queries queries
}

func NewOrderRepository(db *sql.DB, dialect Dialect) *OrderRepository {
	return &OrderRepository{db: db, queries: dialect.queries()}
}

func (r *OrderRepository) SumConfirmedQty(ctx context.Context, resourceID, bookingDate string, slot domain.TimeSlot) (int, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, r.queries.sumConfirmed, resourceID, bookingDate, string(slot), string(domain.OrderConfirmed)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum confirmed quantity: %w", err)
	}

	return int(total), nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.queries.insertOrder,
		order.ID.String(),
		order.ResourceID,
		order.ResourceName,
		order.ResourceQty,
		order.BookingDate,
		string(order.TimeSlot),
		string(order.BookingType),
		order.Amount,
		order.PaymentMode,
		order.TransactionID,
		order.UserID,
		string(order.Status),
		order.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
