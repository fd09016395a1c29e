package memory

import (
	"context"

	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/catalogs/warehouse"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/domain/manufacturing/routing"
)

// UnitRepo is an in-memory unit repository.
type UnitRepo struct {
	*CatalogRepo[*uom.Unit]
}

// NewUnitRepo creates an in-memory unit repository.
func NewUnitRepo() *UnitRepo {
	return &UnitRepo{
		CatalogRepo: NewCatalogRepo("unit", func(u *uom.Unit) *entity.Catalog { return &u.Catalog }),
	}
}

// Add stores a unit, panicking on duplicates. Test fixture helper.
func (r *UnitRepo) Add(units ...*uom.Unit) *UnitRepo {
	for _, u := range units {
		if err := r.Create(context.Background(), u); err != nil {
			panic(err)
		}
	}
	return r
}

// ProductRepo is an in-memory product repository.
type ProductRepo struct {
	*CatalogRepo[*product.Product]
}

// NewProductRepo creates an in-memory product repository.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		CatalogRepo: NewCatalogRepo("product", func(p *product.Product) *entity.Catalog { return &p.Catalog }),
	}
}

// Add stores products, panicking on duplicates. Test fixture helper.
func (r *ProductRepo) Add(products ...*product.Product) *ProductRepo {
	for _, p := range products {
		if err := r.Create(context.Background(), p); err != nil {
			panic(err)
		}
	}
	return r
}

// GetBOMs returns the product's BOM associations.
func (r *ProductRepo) GetBOMs(ctx context.Context, productID id.ID) ([]product.BOMAssociation, error) {
	p, err := r.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p.BOMs, nil
}

// WarehouseRepo is an in-memory warehouse repository.
type WarehouseRepo struct {
	*CatalogRepo[*warehouse.Warehouse]
}

// NewWarehouseRepo creates an in-memory warehouse repository.
func NewWarehouseRepo() *WarehouseRepo {
	return &WarehouseRepo{
		CatalogRepo: NewCatalogRepo("warehouse", func(w *warehouse.Warehouse) *entity.Catalog { return &w.Catalog }),
	}
}

// Add stores warehouses, panicking on duplicates. Test fixture helper.
func (r *WarehouseRepo) Add(warehouses ...*warehouse.Warehouse) *WarehouseRepo {
	for _, w := range warehouses {
		if err := r.Create(context.Background(), w); err != nil {
			panic(err)
		}
	}
	return r
}

// BOMRepo is an in-memory BOM repository.
type BOMRepo struct {
	*CatalogRepo[*bom.BOM]
}

// NewBOMRepo creates an in-memory BOM repository.
func NewBOMRepo() *BOMRepo {
	return &BOMRepo{
		CatalogRepo: NewCatalogRepo("bom", func(b *bom.BOM) *entity.Catalog { return &b.Catalog }),
	}
}

// Add stores BOMs, panicking on duplicates. Test fixture helper.
func (r *BOMRepo) Add(boms ...*bom.BOM) *BOMRepo {
	for _, b := range boms {
		if err := r.Create(context.Background(), b); err != nil {
			panic(err)
		}
	}
	return r
}

// GetLines loads input and output lines for a BOM.
func (r *BOMRepo) GetLines(ctx context.Context, bomID id.ID) ([]bom.Input, []bom.Output, error) {
	b, err := r.GetByID(ctx, bomID)
	if err != nil {
		return nil, nil, err
	}
	return b.Inputs, b.Outputs, nil
}

// RouteRepo is an in-memory route repository.
type RouteRepo struct {
	*CatalogRepo[*routing.Route]
}

// NewRouteRepo creates an in-memory route repository.
func NewRouteRepo() *RouteRepo {
	return &RouteRepo{
		CatalogRepo: NewCatalogRepo("route", func(rt *routing.Route) *entity.Catalog { return &rt.Catalog }),
	}
}

// Add stores routes, panicking on duplicates. Test fixture helper.
func (r *RouteRepo) Add(routes ...*routing.Route) *RouteRepo {
	for _, rt := range routes {
		if err := r.Create(context.Background(), rt); err != nil {
			panic(err)
		}
	}
	return r
}
