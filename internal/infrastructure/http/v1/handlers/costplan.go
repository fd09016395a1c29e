package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"prodsupply/internal/core/id"
	"prodsupply/internal/core/tx"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/infrastructure/http/v1/dto"
)

// CostPlanHandler serves cost plan endpoints.
type CostPlanHandler struct {
	BaseHandler

	plans     costplan.Repository
	txManager tx.Manager
}

// NewCostPlanHandler creates a cost plan handler.
func NewCostPlanHandler(plans costplan.Repository, txManager tx.Manager) *CostPlanHandler {
	return &CostPlanHandler{plans: plans, txManager: txManager}
}

// Create creates a cost plan.
// POST /api/v1/cost-plans
func (h *CostPlanHandler) Create(c *gin.Context) {
	var req dto.CreateCostPlanRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	plan := costplan.NewPlan(id.MustParse(req.ProductID), req.Quantity)
	plan.Number = req.Number
	if req.BOMID != "" {
		plan.BOMID = id.Ptr(id.MustParse(req.BOMID))
	}
	if req.RouteID != "" {
		plan.RouteID = id.Ptr(id.MustParse(req.RouteID))
	}
	if req.ProcessID != "" {
		plan.ProcessID = id.Ptr(id.MustParse(req.ProcessID))
	}
	for _, lr := range req.Lines {
		var bomID *id.ID
		if lr.BOMID != "" {
			bomID = id.Ptr(id.MustParse(lr.BOMID))
		}
		plan.AddLine(id.MustParse(lr.ProductID), bomID)
	}

	if err := plan.Validate(ctx); err != nil {
		h.Error(c, err)
		return
	}

	err := h.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return h.plans.Create(ctx, plan)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, plan.ID.String())
}

// Get returns a cost plan with its BOM lines.
// GET /api/v1/cost-plans/:id
func (h *CostPlanHandler) Get(c *gin.Context) {
	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	plan, err := h.plans.GetByID(c.Request.Context(), planID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, plan)
}

// Delete removes a cost plan.
// DELETE /api/v1/cost-plans/:id
func (h *CostPlanHandler) Delete(c *gin.Context) {
	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	err := h.txManager.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.plans.Delete(ctx, planID)
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
