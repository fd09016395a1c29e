// Package dto defines request and response payloads for the HTTP API.
package dto

import "prodsupply/internal/domain"

// IDResponse returns the identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListQuery carries common pagination parameters.
type ListQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset"`
}

// ToListFilter converts the query to a domain list filter.
func (q ListQuery) ToListFilter() domain.ListFilter {
	filter := domain.DefaultListFilter()
	filter.Search = q.Search
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	if q.Offset > 0 {
		filter.Offset = q.Offset
	}
	return filter
}
