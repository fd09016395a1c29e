package production

import (
	"context"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
)

// Repository defines operations for production documents.
type Repository interface {
	Create(ctx context.Context, prod *Production) error
	GetByID(ctx context.Context, prodID id.ID) (*Production, error)
	Update(ctx context.Context, prod *Production) error

	// Delete removes productions outright (not a soft delete): a
	// reconciled-away draft production must not linger.
	Delete(ctx context.Context, prodIDs []id.ID) error

	// GetByOrigin returns all productions whose origin matches.
	GetByOrigin(ctx context.Context, origin Origin) ([]*Production, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Production], error)
}

// ListFilter for filtering productions.
type ListFilter struct {
	domain.ListFilter

	ProductID   *id.ID
	WarehouseID *id.ID
	States      []State
}
