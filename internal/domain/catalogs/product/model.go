// Package product provides the Product catalog.
// Products carry the flags and BOM associations that drive production
// generation from sales.
package product

import (
	"context"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
)

// ProductType defines the type of item.
type ProductType string

const (
	TypeGoods   ProductType = "goods"
	TypeService ProductType = "service"
	TypeAssets  ProductType = "assets"
)

// BOMAssociation links a product to one of its BOMs, optionally with the
// route and process to use when producing via that BOM. The first
// association is the product's default.
type BOMAssociation struct {
	BOMID     id.ID  `db:"bom_id" json:"bomId"`
	RouteID   *id.ID `db:"route_id" json:"routeId,omitempty"`
	ProcessID *id.ID `db:"process_id" json:"processId,omitempty"`
	Sequence  int    `db:"sequence" json:"sequence"`
}

// Product represents a sellable and/or producible item.
type Product struct {
	entity.Catalog

	// Type defines item category
	Type ProductType `db:"type" json:"type"`

	// DefaultUomID is the reference to the default unit of measure
	DefaultUomID id.ID `db:"default_uom_id" json:"defaultUomId"`

	// Producible marks the product as manufacturable
	Producible bool `db:"producible" json:"producible"`

	// Salable marks the product as sellable
	Salable bool `db:"salable" json:"salable"`

	// Purchasable marks the product as purchasable
	Purchasable bool `db:"purchasable" json:"purchasable"`

	// SupplyProductionOnSale makes new sale lines for this product default
	// to automatic production supply
	SupplyProductionOnSale bool `db:"supply_production_on_sale" json:"supplyProductionOnSale"`

	// QualityTemplateID is an optional quality control template carried
	// onto productions of this product
	QualityTemplateID *id.ID `db:"quality_template_id" json:"qualityTemplateId,omitempty"`

	// BOMs are the product's BOM associations, first-is-default
	BOMs []BOMAssociation `db:"-" json:"boms,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string, defaultUomID id.ID) *Product {
	return &Product{
		Catalog:      entity.NewCatalog(code, name),
		Type:         TypeGoods,
		DefaultUomID: defaultUomID,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.DefaultUomID) {
		return apperror.NewValidation("default unit of measure is required").
			WithDetail("field", "defaultUomId")
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.Producible && p.Type != TypeGoods {
		return apperror.NewValidation("only goods can be producible").
			WithDetail("field", "producible")
	}

	return nil
}

// DefaultBOM returns the product's default BOM association (first entry)
// or nil when the product has no BOM.
func (p *Product) DefaultBOM() *BOMAssociation {
	if len(p.BOMs) == 0 {
		return nil
	}
	return &p.BOMs[0]
}

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeGoods, TypeService, TypeAssets:
		return true
	}
	return false
}
