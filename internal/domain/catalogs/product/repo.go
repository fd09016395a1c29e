package product

import (
	"context"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
)

// Repository defines operations for the product catalog.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetBOMs returns the product's BOM associations ordered by sequence.
	GetBOMs(ctx context.Context, productID id.ID) ([]BOMAssociation, error)
}
