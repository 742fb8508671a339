package ports

import (
	"context"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

type ResourceRepository interface {
	GetByID(ctx context.Context, resourceID string) (*domain.Resource, error)
}

type OrderRepository interface {
	SumConfirmedQty(ctx context.Context, resourceID, bookingDate string, slot domain.TimeSlot) (int, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, order *domain.Order) error
	PublishBlockExpired(ctx context.Context, hold domain.Hold) error
}
