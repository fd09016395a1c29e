package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/manufacturing/routing"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const (
	routeTable     = "cat_routes"
	routeStepTable = "route_steps"
)

// RouteRepo implements routing.Repository.
type RouteRepo struct {
	*BaseCatalogRepo[*routing.Route]
}

// NewRouteRepo creates a new route repository.
func NewRouteRepo(txManager *postgres.TxManager) *RouteRepo {
	return &RouteRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			routeTable,
			postgres.ExtractDBColumns[routing.Route](),
			func() *routing.Route { return &routing.Route{} },
		),
	}
}

// GetByID retrieves a route with its steps loaded.
func (r *RouteRepo) GetByID(ctx context.Context, routeID id.ID) (*routing.Route, error) {
	route, err := r.BaseCatalogRepo.GetByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.Builder().
		Select("step_id", "name", "sequence", "work_center").
		From(routeStepTable).
		Where(squirrel.Eq{"route_id": routeID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &route.Steps, sql, args...); err != nil {
		return nil, fmt.Errorf("get route steps: %w", err)
	}
	return route, nil
}

// Create inserts the route and its steps.
func (r *RouteRepo) Create(ctx context.Context, route *routing.Route) error {
	if err := r.BaseCatalogRepo.Create(ctx, route); err != nil {
		return err
	}
	if len(route.Steps) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(routeStepTable).
		Columns("route_id", "step_id", "name", "sequence", "work_center")
	for _, step := range route.Steps {
		q = q.Values(route.ID, step.StepID, step.Name, step.Sequence, step.WorkCenter)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert route steps: %w", err)
	}
	return nil
}
