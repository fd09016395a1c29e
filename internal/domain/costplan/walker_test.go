package costplan_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/infrastructure/storage/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newWalker(boms *memory.BOMRepo, units *memory.UnitRepo) *costplan.Walker {
	return costplan.NewWalker(boms, bom.NewCalculator(units))
}

func TestWalker_EligibleProductions(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)

	productID := id.New()
	component1ID := id.New()
	componentAID := id.New()
	componentBID := id.New()

	// product = 5 component1 + 2 componentA
	// component1 = 1 componentB
	productBOM := bom.NewBOM("BOM-P", "Product BOM")
	productBOM.AddOutput(productID, dec("1"), unit.ID)
	productBOM.AddInput(component1ID, dec("5"), unit.ID)
	productBOM.AddInput(componentAID, dec("2"), unit.ID)

	component1BOM := bom.NewBOM("BOM-C1", "Component 1 BOM")
	component1BOM.AddOutput(component1ID, dec("1"), unit.ID)
	component1BOM.AddInput(componentBID, dec("1"), unit.ID)

	boms := memory.NewBOMRepo().Add(productBOM, component1BOM)

	plan := costplan.NewPlan(productID, dec("1"))
	plan.BOMID = id.Ptr(productBOM.ID)
	plan.RouteID = id.Ptr(id.New())
	// component1 is produced via its own BOM; componentA and componentB
	// are purchased.
	plan.AddLine(component1ID, id.Ptr(component1BOM.ID))
	plan.AddLine(componentAID, nil)

	specs, err := newWalker(boms, units).EligibleProductions(ctx, plan, unit.ID, dec("2"))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	main := specs[0]
	assert.Equal(t, productID, main.ProductID)
	assert.True(t, main.Quantity.Equal(dec("2")), "got %s", main.Quantity)
	assert.Equal(t, plan.BOMID, main.BOMID)
	assert.Equal(t, plan.RouteID, main.RouteID)
	require.NotNil(t, main.CostPlanID)
	assert.Equal(t, plan.ID, *main.CostPlanID)

	sub := specs[1]
	assert.Equal(t, component1ID, sub.ProductID)
	assert.True(t, sub.Quantity.Equal(dec("10")), "got %s", sub.Quantity)
	require.NotNil(t, sub.BOMID)
	assert.Equal(t, component1BOM.ID, *sub.BOMID)
	assert.Nil(t, sub.RouteID, "only the main production carries the plan route")
}

func TestWalker_MultiLevelQuantities(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)

	productID := id.New()
	comp1ID := id.New()
	comp2ID := id.New()

	// product = 2 comp1, comp1 = 3 comp2, comp2 has a leaf BOM.
	productBOM := bom.NewBOM("BOM-P", "Product BOM")
	productBOM.AddOutput(productID, dec("1"), unit.ID)
	productBOM.AddInput(comp1ID, dec("2"), unit.ID)

	comp1BOM := bom.NewBOM("BOM-C1", "Comp 1 BOM")
	comp1BOM.AddOutput(comp1ID, dec("1"), unit.ID)
	comp1BOM.AddInput(comp2ID, dec("3"), unit.ID)

	comp2BOM := bom.NewBOM("BOM-C2", "Comp 2 BOM")
	comp2BOM.AddOutput(comp2ID, dec("1"), unit.ID)

	boms := memory.NewBOMRepo().Add(productBOM, comp1BOM, comp2BOM)

	plan := costplan.NewPlan(productID, dec("1"))
	plan.BOMID = id.Ptr(productBOM.ID)
	plan.AddLine(comp1ID, id.Ptr(comp1BOM.ID))
	plan.AddLine(comp2ID, id.Ptr(comp2BOM.ID))

	specs, err := newWalker(boms, units).EligibleProductions(ctx, plan, unit.ID, dec("2"))
	require.NoError(t, err)
	require.Len(t, specs, 3)

	assert.True(t, specs[0].Quantity.Equal(dec("2")), "got %s", specs[0].Quantity)
	assert.True(t, specs[1].Quantity.Equal(dec("4")), "got %s", specs[1].Quantity)
	assert.True(t, specs[2].Quantity.Equal(dec("12")), "got %s", specs[2].Quantity)
}

func TestWalker_MissingBOM(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)
	boms := memory.NewBOMRepo()

	plan := costplan.NewPlan(id.New(), dec("1"))

	_, err := newWalker(boms, units).EligibleProductions(ctx, plan, unit.ID, dec("1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingBOM))
}

func TestWalker_CyclicPlan(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)

	p1 := id.New()
	p2 := id.New()

	bomX := bom.NewBOM("BOM-X", "X")
	bomX.AddOutput(p1, dec("1"), unit.ID)
	bomX.AddInput(p2, dec("1"), unit.ID)

	bomY := bom.NewBOM("BOM-Y", "Y")
	bomY.AddOutput(p2, dec("1"), unit.ID)
	bomY.AddInput(p1, dec("1"), unit.ID)

	boms := memory.NewBOMRepo().Add(bomX, bomY)

	plan := costplan.NewPlan(p1, dec("1"))
	plan.BOMID = id.Ptr(bomX.ID)
	plan.AddLine(p2, id.Ptr(bomY.ID))
	plan.AddLine(p1, id.Ptr(bomX.ID))

	_, err := newWalker(boms, units).EligibleProductions(ctx, plan, unit.ID, dec("1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeCyclicPlan))
}

func TestWalker_SharedComponentIsNotACycle(t *testing.T) {
	ctx := context.Background()

	unit := uom.NewUnit("u", "Unit", "u", uom.CategoryUnits)
	units := memory.NewUnitRepo().Add(unit)

	productID := id.New()
	leftID := id.New()
	rightID := id.New()
	sharedID := id.New()

	productBOM := bom.NewBOM("BOM-P", "Product BOM")
	productBOM.AddOutput(productID, dec("1"), unit.ID)
	productBOM.AddInput(leftID, dec("1"), unit.ID)
	productBOM.AddInput(rightID, dec("1"), unit.ID)

	sharedBOM := bom.NewBOM("BOM-S", "Shared BOM")
	sharedBOM.AddOutput(sharedID, dec("1"), unit.ID)

	leftBOM := bom.NewBOM("BOM-L", "Left BOM")
	leftBOM.AddOutput(leftID, dec("1"), unit.ID)
	leftBOM.AddInput(sharedID, dec("1"), unit.ID)

	rightBOM := bom.NewBOM("BOM-R", "Right BOM")
	rightBOM.AddOutput(rightID, dec("1"), unit.ID)
	rightBOM.AddInput(sharedID, dec("1"), unit.ID)

	boms := memory.NewBOMRepo().Add(productBOM, sharedBOM, leftBOM, rightBOM)

	plan := costplan.NewPlan(productID, dec("1"))
	plan.BOMID = id.Ptr(productBOM.ID)
	plan.AddLine(leftID, id.Ptr(leftBOM.ID))
	plan.AddLine(rightID, id.Ptr(rightBOM.ID))
	plan.AddLine(sharedID, id.Ptr(sharedBOM.ID))

	// The shared component appears on both branches; that is a diamond,
	// not a cycle.
	specs, err := newWalker(boms, units).EligibleProductions(ctx, plan, unit.ID, dec("1"))
	require.NoError(t, err)
	assert.Len(t, specs, 5)
}
