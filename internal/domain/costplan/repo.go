package costplan

import (
	"context"

	"prodsupply/internal/core/id"
)

// Repository defines operations for cost plans.
// GetByID returns the plan with its BOM lines loaded.
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, planID id.ID) (*Plan, error)
	Update(ctx context.Context, plan *Plan) error
	Delete(ctx context.Context, planID id.ID) error
}
