package sales

import (
	"context"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
)

// Repository defines operations for sale documents.
// GetByID and GetByLineID return the sale with its lines loaded.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	Update(ctx context.Context, sale *Sale) error
	Delete(ctx context.Context, saleID id.ID) error

	// GetByLineID returns the sale owning the given line.
	GetByLineID(ctx context.Context, lineID id.ID) (*Sale, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	States     []State
}
