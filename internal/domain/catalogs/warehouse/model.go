// Package warehouse provides the Warehouse catalog.
// Warehouses represent physical locations for storing goods; each carries
// the production location productions are materialized into.
package warehouse

import (
	"context"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsActive indicates if warehouse is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault indicates if this is the default warehouse
	IsDefault bool `db:"is_default" json:"isDefault"`

	// StorageLocationID is the main storage location
	StorageLocationID id.ID `db:"storage_location_id" json:"storageLocationId"`

	// ProductionLocationID is where production orders consume and yield
	// stock. Required before productions can be generated for this
	// warehouse.
	ProductionLocationID *id.ID `db:"production_location_id" json:"productionLocationId,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, name string, storageLocationID id.ID) *Warehouse {
	return &Warehouse{
		Catalog:           entity.NewCatalog(code, name),
		IsActive:          true,
		StorageLocationID: storageLocationID,
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(w.StorageLocationID) {
		return apperror.NewValidation("storage location is required").
			WithDetail("field", "storageLocationId")
	}

	return nil
}
