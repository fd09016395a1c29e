// Package routing provides production routes: the ordered operation steps
// a production order goes through on the shop floor.
package routing

import (
	"context"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
)

// Step is one operation template within a route.
type Step struct {
	StepID     id.ID  `db:"step_id" json:"stepId"`
	Name       string `db:"name" json:"name"`
	Sequence   int    `db:"sequence" json:"sequence"`
	WorkCenter string `db:"work_center" json:"workCenter,omitempty"`
}

// Route represents an ordered set of operation steps.
type Route struct {
	entity.Catalog

	Active bool `db:"active" json:"active"`

	Steps []Step `db:"-" json:"steps"`
}

// NewRoute creates a new active route.
func NewRoute(code, name string) *Route {
	return &Route{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// AddStep appends a step to the route.
func (r *Route) AddStep(name, workCenter string) {
	r.Steps = append(r.Steps, Step{
		StepID:     id.New(),
		Name:       name,
		Sequence:   len(r.Steps) + 1,
		WorkCenter: workCenter,
	})
}

// Validate implements entity.Validatable interface.
func (r *Route) Validate(ctx context.Context) error {
	if err := r.Catalog.Validate(ctx); err != nil {
		return err
	}

	for i, step := range r.Steps {
		if step.Name == "" {
			return apperror.NewValidation("step name is required").
				WithDetail("field", "steps").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// Repository defines read operations for routes.
type Repository interface {
	GetByID(ctx context.Context, routeID id.ID) (*Route, error)
}
