package dto

// DeleteProductionsRequest names the productions to delete.
type DeleteProductionsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

// ProductionListQuery filters the production list.
type ProductionListQuery struct {
	ListQuery

	ProductID   string   `form:"productId" binding:"omitempty,uuid"`
	WarehouseID string   `form:"warehouseId" binding:"omitempty,uuid"`
	States      []string `form:"state"`
}
