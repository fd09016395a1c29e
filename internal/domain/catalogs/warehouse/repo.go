package warehouse

import (
	"prodsupply/internal/domain"
)

// Repository defines operations for the warehouse catalog.
type Repository interface {
	domain.CatalogRepository[*Warehouse]
}
