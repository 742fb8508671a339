package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

type ResourceRepository struct {
	db      *sql.DB
	queries queries
}

func NewResourceRepository(db *sql.DB, dialect Dialect) *ResourceRepository {
	return &ResourceRepository{db: db, queries: dialect.queries()}
}

func (r *ResourceRepository) GetByID(ctx context.Context, resourceID string) (*domain.Resource, error) {
	var resource domain.Resource
	var resourceTypeID sql.NullString

	err := r.db.QueryRowContext(ctx, r.queries.resourceByID, resourceID).Scan(
		&resource.ID,
		&resource.Name,
		&resourceTypeID,
		&resource.MaxQty,
		&resource.PriceInternal,
		&resource.PriceExternal,
		&resource.BookingType,
		&resource.Active,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}

		return nil, fmt.Errorf("failed to query resource %s: %w", resourceID, err)
	}

	if resourceTypeID.Valid {
		resource.ResourceTypeID = resourceTypeID.String
	}

	return &resource, nil
}
