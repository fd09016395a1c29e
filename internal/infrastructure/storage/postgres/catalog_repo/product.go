package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const (
	productTable    = "cat_products"
	productBOMTable = "cat_product_boms"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByID retrieves a product with its BOM associations.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, err := r.BaseCatalogRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	boms, err := r.GetBOMs(ctx, productID)
	if err != nil {
		return nil, err
	}
	p.BOMs = boms
	return p, nil
}

// GetBOMs returns the product's BOM associations ordered by sequence.
func (r *ProductRepo) GetBOMs(ctx context.Context, productID id.ID) ([]product.BOMAssociation, error) {
	sql, args, err := r.Builder().
		Select("bom_id", "route_id", "process_id", "sequence").
		From(productBOMTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var boms []product.BOMAssociation
	if err := pgxscan.Select(ctx, r.Querier(ctx), &boms, sql, args...); err != nil {
		return nil, fmt.Errorf("get product boms: %w", err)
	}
	return boms, nil
}

// Create inserts the product and its BOM associations.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Create(ctx, p); err != nil {
		return err
	}
	return r.saveBOMs(ctx, p)
}

// Update modifies the product and replaces its BOM associations.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	if err := r.BaseCatalogRepo.Update(ctx, p); err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Delete(productBOMTable).
		Where(squirrel.Eq{"product_id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete product boms: %w", err)
	}

	return r.saveBOMs(ctx, p)
}

func (r *ProductRepo) saveBOMs(ctx context.Context, p *product.Product) error {
	if len(p.BOMs) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(productBOMTable).
		Columns("product_id", "bom_id", "route_id", "process_id", "sequence")
	for i, assoc := range p.BOMs {
		q = q.Values(p.ID, assoc.BOMID, assoc.RouteID, assoc.ProcessID, i+1)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product boms: %w", err)
	}
	return nil
}
