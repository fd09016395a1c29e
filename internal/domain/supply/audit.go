package supply

import (
	"context"

	"prodsupply/internal/core/id"
)

// Audit event kinds.
const (
	AuditDerived    = "productions_derived"
	AuditReconciled = "productions_reconciled"
	AuditDeleted    = "productions_deleted"
)

// AuditEvent is one supply decision worth keeping: which sale line caused
// which productions to appear, change or disappear.
type AuditEvent struct {
	Kind          string  `json:"kind"`
	SaleID        id.ID   `json:"saleId"`
	LineID        id.ID   `json:"lineId"`
	ProductionIDs []id.ID `json:"productionIds,omitempty"`
	Detail        string  `json:"detail,omitempty"`
}

// AuditTrail records supply events for later inspection.
type AuditTrail interface {
	Record(ctx context.Context, event AuditEvent) error
}

// NopAuditTrail discards events. Used when no trail is configured.
type NopAuditTrail struct{}

func (NopAuditTrail) Record(ctx context.Context, event AuditEvent) error { return nil }
