package memory

import (
	"context"
	"sort"
	"sync"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/sales"
)

// SaleRepo is an in-memory sale repository.
type SaleRepo struct {
	mu    sync.RWMutex
	sales map[id.ID]*sales.Sale
}

// NewSaleRepo creates an in-memory sale repository.
func NewSaleRepo() *SaleRepo {
	return &SaleRepo{sales: make(map[id.ID]*sales.Sale)}
}

// Create inserts a new sale.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sales[sale.ID]; exists {
		return apperror.NewDuplicate("sale", "id", sale.ID.String())
	}
	r.sales[sale.ID] = sale
	return nil
}

// GetByID retrieves a sale.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sale, ok := r.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return sale, nil
}

// GetByLineID returns the sale owning the given line.
func (r *SaleRepo) GetByLineID(ctx context.Context, lineID id.ID) (*sales.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sale := range r.sales {
		if sale.Line(lineID) != nil {
			return sale, nil
		}
	}
	return nil, apperror.NewNotFound("sale line", lineID.String())
}

// Update replaces an existing sale.
func (r *SaleRepo) Update(ctx context.Context, sale *sales.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sales[sale.ID]; !ok {
		return apperror.NewNotFound("sale", sale.ID.String())
	}
	r.sales[sale.ID] = sale
	return nil
}

// Delete removes a sale.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sales[saleID]; !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	delete(r.sales, saleID)
	return nil
}

// List retrieves sales with filtering.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.Sale], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*sales.Sale
	for _, sale := range r.sales {
		if filter.CustomerID != nil && sale.CustomerID != *filter.CustomerID {
			continue
		}
		if len(filter.States) > 0 && !containsState(filter.States, sale.State) {
			continue
		}
		items = append(items, sale)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	return domain.ListResult[*sales.Sale]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func containsState(states []sales.State, s sales.State) bool {
	for _, state := range states {
		if state == s {
			return true
		}
	}
	return false
}

// ProductionRepo is an in-memory production repository.
type ProductionRepo struct {
	mu          sync.RWMutex
	productions map[id.ID]*production.Production
}

// NewProductionRepo creates an in-memory production repository.
func NewProductionRepo() *ProductionRepo {
	return &ProductionRepo{productions: make(map[id.ID]*production.Production)}
}

// Create inserts a new production.
func (r *ProductionRepo) Create(ctx context.Context, p *production.Production) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.productions[p.ID]; exists {
		return apperror.NewDuplicate("production", "id", p.ID.String())
	}
	r.productions[p.ID] = p
	return nil
}

// GetByID retrieves a production.
func (r *ProductionRepo) GetByID(ctx context.Context, prodID id.ID) (*production.Production, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.productions[prodID]
	if !ok {
		return nil, apperror.NewNotFound("production", prodID.String())
	}
	return p, nil
}

// Update replaces an existing production.
func (r *ProductionRepo) Update(ctx context.Context, p *production.Production) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.productions[p.ID]; !ok {
		return apperror.NewNotFound("production", p.ID.String())
	}
	r.productions[p.ID] = p
	return nil
}

// Delete removes productions outright.
func (r *ProductionRepo) Delete(ctx context.Context, prodIDs []id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, prodID := range prodIDs {
		delete(r.productions, prodID)
	}
	return nil
}

// GetByOrigin returns all productions whose origin matches, in creation
// order.
func (r *ProductionRepo) GetByOrigin(ctx context.Context, origin production.Origin) ([]*production.Production, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var prods []*production.Production
	for _, p := range r.productions {
		if p.Origin == origin {
			prods = append(prods, p)
		}
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].CreatedAt.Before(prods[j].CreatedAt)
	})
	return prods, nil
}

// List retrieves productions with filtering.
func (r *ProductionRepo) List(ctx context.Context, filter production.ListFilter) (domain.ListResult[*production.Production], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*production.Production
	for _, p := range r.productions {
		if filter.ProductID != nil && p.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && p.WarehouseID != *filter.WarehouseID {
			continue
		}
		if len(filter.States) > 0 && !containsProductionState(filter.States, p.State) {
			continue
		}
		items = append(items, p)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	return domain.ListResult[*production.Production]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func containsProductionState(states []production.State, s production.State) bool {
	for _, state := range states {
		if state == s {
			return true
		}
	}
	return false
}

// CostPlanRepo is an in-memory cost plan repository.
type CostPlanRepo struct {
	mu    sync.RWMutex
	plans map[id.ID]*costplan.Plan
}

// NewCostPlanRepo creates an in-memory cost plan repository.
func NewCostPlanRepo() *CostPlanRepo {
	return &CostPlanRepo{plans: make(map[id.ID]*costplan.Plan)}
}

// Add stores plans, panicking on duplicates. Test fixture helper.
func (r *CostPlanRepo) Add(plans ...*costplan.Plan) *CostPlanRepo {
	for _, plan := range plans {
		if err := r.Create(context.Background(), plan); err != nil {
			panic(err)
		}
	}
	return r
}

// Create inserts a new plan.
func (r *CostPlanRepo) Create(ctx context.Context, plan *costplan.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plans[plan.ID]; exists {
		return apperror.NewDuplicate("cost plan", "id", plan.ID.String())
	}
	r.plans[plan.ID] = plan
	return nil
}

// GetByID retrieves a plan.
func (r *CostPlanRepo) GetByID(ctx context.Context, planID id.ID) (*costplan.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[planID]
	if !ok {
		return nil, apperror.NewNotFound("cost plan", planID.String())
	}
	return plan, nil
}

// Update replaces an existing plan.
func (r *CostPlanRepo) Update(ctx context.Context, plan *costplan.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[plan.ID]; !ok {
		return apperror.NewNotFound("cost plan", plan.ID.String())
	}
	r.plans[plan.ID] = plan
	return nil
}

// Delete removes a plan.
func (r *CostPlanRepo) Delete(ctx context.Context, planID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plans[planID]; !ok {
		return apperror.NewNotFound("cost plan", planID.String())
	}
	delete(r.plans, planID)
	return nil
}
