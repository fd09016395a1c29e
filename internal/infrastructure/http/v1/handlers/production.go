package handlers

import (
	"github.com/gin-gonic/gin"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/supply"
	"prodsupply/internal/infrastructure/http/v1/dto"
)

// ProductionHandler serves production document endpoints.
type ProductionHandler struct {
	BaseHandler

	productions production.Repository
	supply      *supply.Service
}

// NewProductionHandler creates a production handler.
func NewProductionHandler(productions production.Repository, supplyService *supply.Service) *ProductionHandler {
	return &ProductionHandler{
		productions: productions,
		supply:      supplyService,
	}
}

// Get returns a production with its moves and operations.
// GET /api/v1/productions/:id
func (h *ProductionHandler) Get(c *gin.Context) {
	prodID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.productions.GetByID(c.Request.Context(), prodID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// List returns productions matching the query.
// GET /api/v1/productions
func (h *ProductionHandler) List(c *gin.Context) {
	var q dto.ProductionListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := production.ListFilter{ListFilter: q.ToListFilter()}
	if q.ProductID != "" {
		filter.ProductID = id.Ptr(id.MustParse(q.ProductID))
	}
	if q.WarehouseID != "" {
		filter.WarehouseID = id.Ptr(id.MustParse(q.WarehouseID))
	}
	for _, s := range q.States {
		filter.States = append(filter.States, production.State(s))
	}

	result, err := h.productions.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// ChangeQuantity changes a production quantity through its sale line, so the
// line and the production stay in sync.
// POST /api/v1/productions/:id/change-quantity
func (h *ProductionHandler) ChangeQuantity(c *gin.Context) {
	prodID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.supply.ChangeProductionQuantity(c.Request.Context(), prodID, req.Quantity); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "quantity changed")
}

// Delete removes productions and reprocesses the sales that originated them.
// POST /api/v1/productions/delete
func (h *ProductionHandler) Delete(c *gin.Context) {
	var req dto.DeleteProductionsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	prodIDs := make([]id.ID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		prodIDs = append(prodIDs, id.MustParse(raw))
	}

	if err := h.supply.DeleteProductions(c.Request.Context(), prodIDs); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "productions deleted")
}
