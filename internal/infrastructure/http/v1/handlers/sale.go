package handlers

import (
	"github.com/gin-gonic/gin"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/sales"
	"prodsupply/internal/domain/supply"
	"prodsupply/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves sale document endpoints, including the supply
// operations that derive and reconcile productions.
type SaleHandler struct {
	BaseHandler

	service  *sales.Service
	supply   *supply.Service
	products product.Repository
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(service *sales.Service, supplyService *supply.Service, products product.Repository) *SaleHandler {
	return &SaleHandler{
		service:  service,
		supply:   supplyService,
		products: products,
	}
}

// Create creates a draft sale.
// POST /api/v1/sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	sale := sales.NewSale(id.MustParse(req.CustomerID), id.MustParse(req.WarehouseID))
	sale.Number = req.Number
	sale.Reference = req.Reference
	sale.Comment = req.Comment

	for _, lr := range req.Lines {
		p, err := h.products.GetByID(ctx, id.MustParse(lr.ProductID))
		if err != nil {
			h.Error(c, err)
			return
		}

		line := sale.AddLine(p, lr.Quantity)
		if lr.UnitID != "" {
			line.UnitID = id.MustParse(lr.UnitID)
		}
		if lr.SupplyProduction != nil {
			line.SupplyProduction = *lr.SupplyProduction
		} else {
			line.SupplyProduction = h.supply.DefaultSupplyProduction(p)
		}
		if lr.CostPlanID != "" {
			line.CostPlanID = id.Ptr(id.MustParse(lr.CostPlanID))
		}
		line.ShippingDate = lr.ShippingDate
	}

	if err := h.service.Create(ctx, sale); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sale.ID.String())
}

// Get returns a sale with its lines.
// GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// List returns sales matching the query.
// GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	filter := sales.ListFilter{ListFilter: q.ToListFilter()}
	if q.CustomerID != "" {
		filter.CustomerID = id.Ptr(id.MustParse(q.CustomerID))
	}
	for _, s := range q.States {
		filter.States = append(filter.States, sales.State(s))
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Quote moves a draft sale to quotation.
// POST /api/v1/sales/:id/quote
func (h *SaleHandler) Quote(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Quote(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// Confirm moves a quotation to confirmed. May fail with an acknowledgeable
// warning when supply lines have no cost plan.
// POST /api/v1/sales/:id/confirm
func (h *SaleHandler) Confirm(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.Confirm(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// Process moves a confirmed sale to processing and derives the productions
// its supply lines request.
// POST /api/v1/sales/:id/process
func (h *SaleHandler) Process(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.supply.ProcessSale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sale)
}

// Copy duplicates a sale as a new draft.
// POST /api/v1/sales/:id/copy
func (h *SaleHandler) Copy(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cp, err := h.service.Copy(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cp.ID.String())
}

// Productions returns the productions derived from the sale's lines.
// GET /api/v1/sales/:id/productions
func (h *SaleHandler) Productions(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	prods, err := h.supply.SaleProductions(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": prods, "totalCount": len(prods)})
}

// ChangeLineQuantity updates a sale line quantity on a processing sale and
// reconciles the line's productions.
// POST /api/v1/sales/:id/lines/:lineId/change-quantity
func (h *SaleHandler) ChangeLineQuantity(c *gin.Context) {
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	var req dto.ChangeQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.supply.ChangeLineQuantity(c.Request.Context(), lineID, req.Quantity); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "quantity changed")
}

// MinimalLineQuantity returns the floor below which the line quantity can no
// longer be lowered.
// GET /api/v1/sales/:id/lines/:lineId/minimal-quantity
func (h *SaleHandler) MinimalLineQuantity(c *gin.Context) {
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	qty, err := h.supply.MinimalLineQuantity(c.Request.Context(), lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"quantity": qty})
}

// AcknowledgeWarning records that the user accepted a pending warning.
// POST /api/v1/warnings/acknowledge
func (h *SaleHandler) AcknowledgeWarning(c *gin.Context) {
	var req dto.AcknowledgeWarningRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.AcknowledgeWarning(c.Request.Context(), req.Key); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "warning acknowledged")
}
