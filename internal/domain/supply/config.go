// Package supply derives production orders from sale lines and keeps their
// quantities reconciled with the sale while it is being processed.
package supply

// Config carries the supply behaviour switches.
type Config struct {
	// SupplyProductionDefault is the default value of the supply flag for
	// new sale lines of products that do not set their own default.
	SupplyProductionDefault bool

	// CostPlanRequired makes derivation skip supply lines that have no
	// cost plan instead of falling back to the product default BOM. The
	// confirm-time warning tells the user those lines will stay empty.
	CostPlanRequired bool
}
