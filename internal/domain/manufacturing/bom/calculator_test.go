package bom_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/infrastructure/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculator_ComputeFactor(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)
	calc := bom.NewCalculator(units)

	productID := id.New()
	componentID := id.New()

	b := bom.NewBOM("BOM-1", "Product BOM")
	b.AddOutput(productID, dec("1"), unit.ID)
	b.AddInput(componentID, dec("5"), unit.ID)

	factor, err := calc.ComputeFactor(ctx, b, productID, dec("2"), unit.ID)
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("2")), "got %s", factor)

	qty, err := calc.ComputeInputQuantity(ctx, b.Inputs[0], factor)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("10")), "got %s", qty)
}

func TestCalculator_ComputeFactor_MultiOutput(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)
	calc := bom.NewCalculator(units)

	productID := id.New()

	// The BOM yields 4 per run, so demanding 10 scales lines by 2.5.
	b := bom.NewBOM("BOM-4", "Batch BOM")
	b.AddOutput(productID, dec("4"), unit.ID)

	factor, err := calc.ComputeFactor(ctx, b, productID, dec("10"), unit.ID)
	require.NoError(t, err)
	assert.True(t, factor.Equal(dec("2.5")), "got %s", factor)
}

func TestCalculator_ComputeFactor_NotAnOutput(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)
	calc := bom.NewCalculator(units)

	b := bom.NewBOM("BOM-1", "Product BOM")
	b.AddOutput(id.New(), dec("1"), unit.ID)

	_, err := calc.ComputeFactor(ctx, b, id.New(), dec("2"), unit.ID)
	assert.Error(t, err)
}

func TestCalculator_InputQuantityRoundsUp(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	unit.Rounding = dec("1")
	units := memory.NewUnitRepo().Add(unit)
	calc := bom.NewCalculator(units)

	in := bom.Input{ProductID: id.New(), Quantity: dec("3"), UnitID: unit.ID}

	// 3 * 1.1 = 3.3, consumption is rounded up to the unit precision.
	qty, err := calc.ComputeInputQuantity(ctx, in, dec("1.1"))
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec("4")), "got %s", qty)
}
