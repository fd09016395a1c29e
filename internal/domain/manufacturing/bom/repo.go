package bom

import (
	"context"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
)

// Repository defines operations for the BOM catalog.
// GetByID returns the BOM with inputs and outputs loaded.
type Repository interface {
	domain.CatalogRepository[*BOM]

	// GetLines loads input and output lines for a BOM.
	GetLines(ctx context.Context, bomID id.ID) ([]Input, []Output, error)
}
